package render

import (
	"image"
	"image/color"
	"testing"
)

func TestDrawAnnotationBorderAndHandle(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 100, 100))
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			src.SetRGBA(x, y, color.RGBA{255, 0, 0, 255})
		}
	}

	style := DefaultOverlayStyle()
	rect := image.Rect(20, 20, 60, 50)
	DrawAnnotation(dst, rect, src, style)

	if got := dst.RGBAAt(20, 20); got != style.Border {
		t.Errorf("top-left border pixel = %+v", got)
	}
	if got := dst.RGBAAt(59, 35); got != style.Border {
		t.Errorf("right border pixel = %+v", got)
	}
	// Inside the body the scaled source should show through.
	if got := dst.RGBAAt(30, 30); got.R == 0 {
		t.Errorf("annotation image not drawn, pixel %+v", got)
	}
	// Bottom-right handle square.
	if got := dst.RGBAAt(58, 48); got != style.Handle {
		t.Errorf("handle pixel = %+v", got)
	}
}

func TestDrawAnnotationNilImage(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 40, 40))
	DrawAnnotation(dst, image.Rect(5, 5, 30, 30), nil, DefaultOverlayStyle())
	if got := dst.RGBAAt(5, 5); got.A == 0 {
		t.Error("border not drawn for nil image")
	}
}

func TestDrawAnnotationEmptyRect(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 10, 10))
	DrawAnnotation(dst, image.Rectangle{}, nil, DefaultOverlayStyle())
	// Nothing to assert beyond not panicking and not writing pixels.
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if dst.RGBAAt(x, y).A != 0 {
				t.Fatalf("pixel written at (%d,%d)", x, y)
			}
		}
	}
}
