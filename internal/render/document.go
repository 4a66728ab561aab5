// Package render wraps the external rasterizer. Pages come back as
// plain images together with their measured geometry; everything that
// interprets coordinates lives in internal/coords.
package render

import (
	"bytes"
	"fmt"
	"image"
	"os"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/example/inkstamp/internal/coords"
)

// Document pairs a rasterizer handle with the native page dimensions of
// the underlying PDF. The original bytes are retained for export.
type Document struct {
	data []byte
	doc  *fitz.Document
	dims []types.Dim
}

// Page is one rendered page raster plus the geometry that maps it.
type Page struct {
	Index    int
	Image    image.Image
	Geometry coords.PageGeometry
}

// Open loads a PDF from disk.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return OpenBytes(data)
}

// OpenBytes loads a PDF from memory. The input is validated before any
// page is touched so a corrupt file fails here, not mid-render.
func OpenBytes(data []byte) (*Document, error) {
	conf := model.NewDefaultConfiguration()
	if err := api.Validate(bytes.NewReader(data), conf); err != nil {
		return nil, fmt.Errorf("render: validate pdf: %w", err)
	}
	dims, err := api.PageDims(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("render: page dimensions: %w", err)
	}
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("render: open rasterizer: %w", err)
	}
	if doc.NumPage() != len(dims) {
		doc.Close()
		return nil, fmt.Errorf("render: rasterizer reports %d pages, reader %d", doc.NumPage(), len(dims))
	}
	return &Document{data: data, doc: doc, dims: dims}, nil
}

// Close releases the rasterizer handle.
func (d *Document) Close() error {
	if d.doc == nil {
		return nil
	}
	err := d.doc.Close()
	d.doc = nil
	return err
}

// Bytes returns the original PDF bytes.
func (d *Document) Bytes() []byte { return d.data }

// PageCount reports the number of pages.
func (d *Document) PageCount() int { return len(d.dims) }

// NativeSize returns a page's MediaBox dimensions in PDF points.
func (d *Document) NativeSize(pageIndex int) (w, h float64, err error) {
	if pageIndex < 0 || pageIndex >= len(d.dims) {
		return 0, 0, fmt.Errorf("render: page %d out of range [0,%d)", pageIndex, len(d.dims))
	}
	dim := d.dims[pageIndex]
	if dim.Width <= 0 || dim.Height <= 0 {
		return 0, 0, coords.ErrInvalidGeometry
	}
	return dim.Width, dim.Height, nil
}

// RenderPage rasterizes one page at the given nominal scale. The
// returned geometry carries the pixel dimensions measured from the
// raster that actually came back, which is what the coordinate mapping
// must use.
func (d *Document) RenderPage(pageIndex int, scale float64) (*Page, error) {
	w, h, err := d.NativeSize(pageIndex)
	if err != nil {
		return nil, err
	}
	if scale <= 0 {
		return nil, fmt.Errorf("render: non-positive scale %v", scale)
	}
	img, err := d.doc.ImageDPI(pageIndex, 72*scale)
	if err != nil {
		return nil, fmt.Errorf("render: page %d: %w", pageIndex, err)
	}
	b := img.Bounds()
	g := coords.PageGeometry{
		PageIndex:        pageIndex,
		NativeWidth:      w,
		NativeHeight:     h,
		RenderScale:      scale,
		RenderedWidthPx:  float64(b.Dx()),
		RenderedHeightPx: float64(b.Dy()),
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &Page{Index: pageIndex, Image: img, Geometry: g}, nil
}

// RenderAll rasterizes every page at the same scale. The rasterizer
// handle is not safe for concurrent use, so pages render in order.
func (d *Document) RenderAll(scale float64) ([]*Page, error) {
	pages := make([]*Page, 0, d.PageCount())
	for i := 0; i < d.PageCount(); i++ {
		p, err := d.RenderPage(i, scale)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, nil
}
