// Package coords maps between PDF point space and the pixel space of a
// rendered page canvas.
//
// Annotations are stored in PDF points with a top-left origin while a
// document is being edited; the bottom-left flip the PDF format expects
// happens exactly once, at export time, via FlipYForExport.
package coords

import (
	"errors"

	"github.com/golang/geo/r2"
)

// ErrInvalidGeometry reports a page whose native dimensions are zero or
// negative. Interactions on such a page are disabled; the rest of the
// document stays usable.
var ErrInvalidGeometry = errors.New("coords: invalid page geometry")

// PageGeometry describes one rendered page. NativeWidth and NativeHeight
// are PDF points and never change after the document loads. The rendered
// pixel dimensions are measured from the raster actually produced, not
// derived from RenderScale, so that layout rounding in the host is
// absorbed by the mapping.
type PageGeometry struct {
	PageIndex    int
	NativeWidth  float64
	NativeHeight float64

	// RenderScale is the nominal multiplier requested from the rasterizer.
	RenderScale float64

	// Measured size of the page canvas on screen.
	RenderedWidthPx  float64
	RenderedHeightPx float64
}

// ScalePolicy selects a render scale from the viewport width. The
// reference width normalizes every page as if it were A4 portrait
// (595pt); non-square and landscape pages scale slightly inconsistently
// as a result. That approximation is deliberate and kept.
type ScalePolicy struct {
	ReferenceWidth float64
	MobileMaxPx    float64
	TabletMaxPx    float64
	MobileCap      float64
	TabletCap      float64
	DesktopCap     float64
	DesktopWidthPx float64
}

// DefaultScalePolicy returns the stock mobile/tablet/desktop tiers.
func DefaultScalePolicy() ScalePolicy {
	return ScalePolicy{
		ReferenceWidth: 595,
		MobileMaxPx:    768,
		TabletMaxPx:    1024,
		MobileCap:      1.2,
		TabletCap:      1.4,
		DesktopCap:     1.6,
		DesktopWidthPx: 1200,
	}
}

// RenderScale computes the nominal scale for the given viewport width.
func (p ScalePolicy) RenderScale(viewportWidthPx float64) float64 {
	switch {
	case viewportWidthPx <= p.MobileMaxPx:
		return min(p.MobileCap, 0.85*viewportWidthPx/p.ReferenceWidth)
	case viewportWidthPx <= p.TabletMaxPx:
		return min(p.TabletCap, 0.9*viewportWidthPx/p.ReferenceWidth)
	default:
		return min(p.DesktopCap, p.DesktopWidthPx/p.ReferenceWidth)
	}
}

// ComputeRenderScale applies the default scale policy.
func ComputeRenderScale(viewportWidthPx float64) float64 {
	return DefaultScalePolicy().RenderScale(viewportWidthPx)
}

// Validate reports ErrInvalidGeometry for degenerate page dimensions.
func (g PageGeometry) Validate() error {
	if g.NativeWidth <= 0 || g.NativeHeight <= 0 {
		return ErrInvalidGeometry
	}
	if g.RenderedWidthPx <= 0 || g.RenderedHeightPx <= 0 {
		return ErrInvalidGeometry
	}
	return nil
}

// ScaleX returns the measured horizontal pixels-per-point factor.
func (g PageGeometry) ScaleX() float64 { return g.RenderedWidthPx / g.NativeWidth }

// ScaleY returns the measured vertical pixels-per-point factor.
func (g PageGeometry) ScaleY() float64 { return g.RenderedHeightPx / g.NativeHeight }

// ToScreen maps a PDF point (top-left origin) to canvas pixels.
func (g PageGeometry) ToScreen(pdfX, pdfY float64) (float64, float64, error) {
	if err := g.Validate(); err != nil {
		return 0, 0, err
	}
	return pdfX * g.ScaleX(), pdfY * g.ScaleY(), nil
}

// ToPdf maps canvas pixels back to PDF points (top-left origin).
func (g PageGeometry) ToPdf(screenX, screenY float64) (float64, float64, error) {
	if err := g.Validate(); err != nil {
		return 0, 0, err
	}
	return screenX / g.ScaleX(), screenY / g.ScaleY(), nil
}

// FlipYForExport converts a top-left y coordinate to the bottom-left
// origin the PDF format uses. Call it once per annotation when building
// export placements, never while editing.
func (g PageGeometry) FlipYForExport(pdfTopY, heightPdf float64) (float64, error) {
	if g.NativeWidth <= 0 || g.NativeHeight <= 0 {
		return 0, ErrInvalidGeometry
	}
	return g.NativeHeight - pdfTopY - heightPdf, nil
}

// Bounds returns the page rectangle in PDF points.
func (g PageGeometry) Bounds() r2.Rect {
	return r2.RectFromPoints(r2.Point{X: 0, Y: 0}, r2.Point{X: g.NativeWidth, Y: g.NativeHeight})
}

// Clamp bounds v to [lo, hi]. When the interval is inverted (a page
// smaller than the thing being clamped) lo wins.
func Clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
