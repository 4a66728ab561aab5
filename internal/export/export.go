// Package export flattens placed annotations into a new PDF.
//
// Placements are expressed in PDF points with a bottom-left origin; the
// top-left coordinates used during editing are flipped exactly once, in
// BuildPlacements. Embedding is per annotation: one bad image is
// skipped and reported without failing the batch.
package export

import (
	"bytes"
	"fmt"

	"github.com/mgmeyers/unipdf/v3/creator"
	pdfmodel "github.com/mgmeyers/unipdf/v3/model"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfcpumodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/example/inkstamp/internal/annotation"
	"github.com/example/inkstamp/internal/coords"
)

// Placement is one image to draw onto a page. X and Y are PDF points
// with a bottom-left origin, Y already flipped.
type Placement struct {
	AnnotationID string
	PageIndex    int
	X, Y         float64
	Width        float64
	Height       float64
	PageHeight   float64
	Image        annotation.Image
}

// PlacementError records why a single annotation was left out of the
// export.
type PlacementError struct {
	AnnotationID string
	Err          error
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("export: annotation %s: %v", e.AnnotationID, e.Err)
}

func (e *PlacementError) Unwrap() error { return e.Err }

// GeometryFunc resolves page geometry at export time.
type GeometryFunc func(pageIndex int) (coords.PageGeometry, bool)

// BuildPlacements converts every registered annotation into an export
// placement, flipping Y into the PDF's bottom-left origin. Annotations
// on pages with unusable geometry are skipped and reported.
func BuildPlacements(reg *annotation.Registry, geom GeometryFunc) ([]Placement, []error) {
	var placements []Placement
	var skipped []error
	for _, a := range reg.All() {
		g, ok := geom(a.PageIndex)
		if !ok {
			skipped = append(skipped, &PlacementError{a.ID, fmt.Errorf("no geometry for page %d", a.PageIndex)})
			continue
		}
		y, err := g.FlipYForExport(a.Y, a.Height)
		if err != nil {
			skipped = append(skipped, &PlacementError{a.ID, err})
			continue
		}
		placements = append(placements, Placement{
			AnnotationID: a.ID,
			PageIndex:    a.PageIndex,
			X:            a.X,
			Y:            y,
			Width:        a.Width,
			Height:       a.Height,
			PageHeight:   g.NativeHeight,
			Image:        a.Image,
		})
	}
	return placements, skipped
}

// Flatten draws the placements onto the original PDF and returns the
// new document bytes. Failures embedding individual images are
// collected, not fatal.
func Flatten(original []byte, placements []Placement) ([]byte, []error, error) {
	reader, err := pdfmodel.NewPdfReader(bytes.NewReader(original))
	if err != nil {
		return nil, nil, fmt.Errorf("export: read pdf: %w", err)
	}
	numPages, err := reader.GetNumPages()
	if err != nil {
		return nil, nil, fmt.Errorf("export: page count: %w", err)
	}

	byPage := make(map[int][]Placement)
	for _, p := range placements {
		byPage[p.PageIndex] = append(byPage[p.PageIndex], p)
	}

	c := creator.New()
	var skipped []error
	for i := 0; i < numPages; i++ {
		page, err := reader.GetPage(i + 1)
		if err != nil {
			return nil, skipped, fmt.Errorf("export: get page %d: %w", i+1, err)
		}
		if err := c.AddPage(page); err != nil {
			return nil, skipped, fmt.Errorf("export: add page %d: %w", i+1, err)
		}
		for _, p := range byPage[i] {
			img, err := c.NewImageFromData(p.Image.Data)
			if err != nil {
				skipped = append(skipped, &PlacementError{p.AnnotationID, err})
				continue
			}
			// The creator measures y from the top of the page.
			img.SetPos(p.X, p.PageHeight-p.Y-p.Height)
			img.SetWidth(p.Width)
			img.SetHeight(p.Height)
			if err := c.Draw(img); err != nil {
				skipped = append(skipped, &PlacementError{p.AnnotationID, err})
			}
		}
	}

	var buf bytes.Buffer
	if err := c.Write(&buf); err != nil {
		return nil, skipped, fmt.Errorf("export: write pdf: %w", err)
	}
	return buf.Bytes(), skipped, nil
}

// PageGeometries derives identity page geometry (one pixel per point)
// straight from the document's MediaBoxes. Headless placement does not
// render, so PDF points and "screen" units coincide.
func PageGeometries(data []byte) ([]coords.PageGeometry, error) {
	conf := pdfcpumodel.NewDefaultConfiguration()
	dims, err := api.PageDims(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("export: page dimensions: %w", err)
	}
	geoms := make([]coords.PageGeometry, len(dims))
	for i, d := range dims {
		geoms[i] = coords.PageGeometry{
			PageIndex:        i,
			NativeWidth:      d.Width,
			NativeHeight:     d.Height,
			RenderScale:      1,
			RenderedWidthPx:  d.Width,
			RenderedHeightPx: d.Height,
		}
	}
	return geoms, nil
}

// Optimize runs the output through pdfcpu's optimizer.
func Optimize(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	conf := pdfcpumodel.NewDefaultConfiguration()
	if err := api.Optimize(bytes.NewReader(data), &buf, conf); err != nil {
		return nil, fmt.Errorf("export: optimize: %w", err)
	}
	return buf.Bytes(), nil
}

// flattenFn is swapped out by tests.
var flattenFn = Flatten

// Exporter drives a full export: placement building, flattening, an
// optional optimizer pass, then the completion hook the host uses for
// persistence or upload. Hook work happens after the interactive path
// is done, never inside it.
type Exporter struct {
	Optimize   bool
	OnComplete func(data []byte) error
}

// Export flattens reg onto the original document bytes. The returned
// error slice lists annotations that were skipped; the export itself
// still succeeds.
func (e *Exporter) Export(original []byte, reg *annotation.Registry, geom GeometryFunc) ([]byte, []error, error) {
	placements, skipped := BuildPlacements(reg, geom)
	data, embedErrs, err := flattenFn(original, placements)
	skipped = append(skipped, embedErrs...)
	if err != nil {
		return nil, skipped, err
	}
	if e.Optimize {
		optimized, err := Optimize(data)
		if err != nil {
			return nil, skipped, err
		}
		data = optimized
	}
	if e.OnComplete != nil {
		if err := e.OnComplete(data); err != nil {
			return data, skipped, fmt.Errorf("export: completion hook: %w", err)
		}
	}
	return data, skipped, nil
}
