package render

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// OverlayStyle controls how an annotation is painted on top of a page
// raster while editing.
type OverlayStyle struct {
	Border     color.RGBA
	Handle     color.RGBA
	HandleSize int
}

// DefaultOverlayStyle matches the stock theme.
func DefaultOverlayStyle() OverlayStyle {
	return OverlayStyle{
		Border:     color.RGBA{30, 110, 220, 255},
		Handle:     color.RGBA{30, 110, 220, 255},
		HandleSize: 20,
	}
}

// DrawAnnotation paints img scaled into rect on dst, then the border
// and the bottom-right resize handle. The handle square drawn here is
// the same region the session hit test treats as Resizing.
func DrawAnnotation(dst *image.RGBA, rect image.Rectangle, img image.Image, style OverlayStyle) {
	if rect.Empty() {
		return
	}
	if img != nil {
		xdraw.ApproxBiLinear.Scale(dst, rect, img, img.Bounds(), draw.Over, nil)
	}
	drawOutline(dst, rect, style.Border)

	hs := style.HandleSize
	if hs <= 0 {
		return
	}
	handle := image.Rect(rect.Max.X-hs, rect.Max.Y-hs, rect.Max.X, rect.Max.Y).Intersect(rect)
	draw.Draw(dst, handle, &image.Uniform{style.Handle}, image.Point{}, draw.Over)
}

func drawOutline(dst *image.RGBA, rect image.Rectangle, col color.RGBA) {
	for x := rect.Min.X; x < rect.Max.X; x++ {
		dst.SetRGBA(x, rect.Min.Y, col)
		dst.SetRGBA(x, rect.Max.Y-1, col)
	}
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		dst.SetRGBA(rect.Min.X, y, col)
		dst.SetRGBA(rect.Max.X-1, y, col)
	}
}
