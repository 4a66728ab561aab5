// Package annotation holds the authoritative set of placed signature
// and initial images for a loaded document.
//
// Geometry is stored in PDF points with a top-left origin. Position and
// size change only through MoveTo, Resize and PlaceAt, which keep every
// box on its page; the render layer treats annotations as read-only.
package annotation

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/golang/geo/r2"

	"github.com/example/inkstamp/internal/coords"
)

// Kind distinguishes full signatures from initials.
type Kind string

const (
	KindSignature Kind = "signature"
	KindInitial   Kind = "initial"
)

// Default placement sizes in PDF points.
const (
	DefaultSignatureWidth  = 100.0
	DefaultSignatureHeight = 50.0
	DefaultInitialWidth    = 60.0
	DefaultInitialHeight   = 60.0
)

// Minimum sizes enforced during resize, in PDF points. Initials carry
// their own square floor so a resized initial stays legible.
const (
	MinSignatureWidth  = 50.0
	MinSignatureHeight = 25.0
	MinInitialWidth    = 25.0
	MinInitialHeight   = 25.0
)

// Image is an opaque image blob plus its MIME type.
type Image struct {
	Data []byte
	MIME string
}

// Annotation is one placed signature or initial.
type Annotation struct {
	ID        string
	Kind      Kind
	Image     Image
	PageIndex int

	// PDF points, top-left origin.
	X, Y          float64
	Width, Height float64
}

// Rect returns the annotation bounds in PDF points.
func (a *Annotation) Rect() r2.Rect {
	return r2.RectFromPoints(
		r2.Point{X: a.X, Y: a.Y},
		r2.Point{X: a.X + a.Width, Y: a.Y + a.Height},
	)
}

// MoveTo sets an explicit origin, clamped so the box stays on the page.
func (a *Annotation) MoveTo(g coords.PageGeometry, x, y float64) {
	a.X = coords.Clamp(x, 0, g.NativeWidth-a.Width)
	a.Y = coords.Clamp(y, 0, g.NativeHeight-a.Height)
}

// Resize sets an explicit size with the origin fixed. The kind's floor
// applies first; the far edge never crosses the page boundary, even
// when that pushes the size below its floor near the edge.
func (a *Annotation) Resize(g coords.PageGeometry, w, h float64) {
	minW, minH := MinSize(a.Kind)
	if w < minW {
		w = minW
	}
	if h < minH {
		h = minH
	}
	if limit := g.NativeWidth - a.X; w > limit {
		w = limit
	}
	if limit := g.NativeHeight - a.Y; h > limit {
		h = limit
	}
	a.Width = w
	a.Height = h
}

// PlaceAt applies an origin and size that arrive together, fully
// specified rather than via a gesture. The size is bounded by the
// kind's floor and the page itself, then the origin is clamped so the
// box stays on the page.
func (a *Annotation) PlaceAt(g coords.PageGeometry, x, y, w, h float64) {
	minW, minH := MinSize(a.Kind)
	if w < minW {
		w = minW
	}
	if h < minH {
		h = minH
	}
	if w > g.NativeWidth {
		w = g.NativeWidth
	}
	if h > g.NativeHeight {
		h = g.NativeHeight
	}
	a.Width = w
	a.Height = h
	a.MoveTo(g, x, y)
}

// DefaultSize returns the placement size for a freshly added annotation.
func DefaultSize(kind Kind) (w, h float64) {
	if kind == KindInitial {
		return DefaultInitialWidth, DefaultInitialHeight
	}
	return DefaultSignatureWidth, DefaultSignatureHeight
}

// MinSize returns the resize floor for the given kind.
func MinSize(kind Kind) (w, h float64) {
	if kind == KindInitial {
		return MinInitialWidth, MinInitialHeight
	}
	return MinSignatureWidth, MinSignatureHeight
}

var (
	pngMagic  = []byte{0x89, 'P', 'N', 'G'}
	jpegMagic = []byte{0xff, 0xd8, 0xff}
)

// DetectMIME sniffs the image type from its leading bytes. Anything that
// is not PNG is reported as JPEG, matching how placements are embedded.
func DetectMIME(data []byte) string {
	if bytes.HasPrefix(data, pngMagic) {
		return "image/png"
	}
	if bytes.HasPrefix(data, jpegMagic) {
		return "image/jpeg"
	}
	return "image/jpeg"
}

// ParseDataURL decodes a data: URL into an Image. The MIME type comes
// from the URL prefix: image/png keeps its type, everything else is
// treated as JPEG.
func ParseDataURL(s string) (Image, error) {
	if !strings.HasPrefix(s, "data:") {
		return Image{}, fmt.Errorf("annotation: not a data URL")
	}
	rest := s[len("data:"):]
	comma := strings.IndexByte(rest, ',')
	if comma < 0 {
		return Image{}, fmt.Errorf("annotation: malformed data URL")
	}
	meta := rest[:comma]
	payload := rest[comma+1:]

	var data []byte
	var err error
	if strings.HasSuffix(meta, ";base64") {
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return Image{}, fmt.Errorf("annotation: decode data URL: %w", err)
		}
	} else {
		data = []byte(payload)
	}

	mime := "image/jpeg"
	if strings.HasPrefix(meta, "image/png") {
		mime = "image/png"
	}
	return Image{Data: data, MIME: mime}, nil
}

// NewImage wraps raw bytes, sniffing the MIME type.
func NewImage(data []byte) Image {
	return Image{Data: data, MIME: DetectMIME(data)}
}

// CenteredOrigin computes the top-left position that centers a box of
// the given size on the page.
func CenteredOrigin(g coords.PageGeometry, w, h float64) (x, y float64) {
	return (g.NativeWidth - w) / 2, (g.NativeHeight - h) / 2
}
