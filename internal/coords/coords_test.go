package coords

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r2"
)

func pt(x, y float64) r2.Point { return r2.Point{X: x, Y: y} }

// letterish matches a US Letter page rendered at roughly 1.5x.
var letterish = PageGeometry{
	PageIndex:        0,
	NativeWidth:      595,
	NativeHeight:     842,
	RenderScale:      1.5,
	RenderedWidthPx:  893,
	RenderedHeightPx: 1263,
}

func TestComputeRenderScaleTiers(t *testing.T) {
	cases := []struct {
		name     string
		viewport float64
		want     float64
	}{
		{"mobile narrow", 375, 0.85 * 375 / 595},
		{"mobile capped", 768, 0.85 * 768 / 595},
		{"tablet", 900, 0.9 * 900 / 595},
		{"tablet capped", 1024, 1.4},
		{"desktop", 1440, 1200.0 / 595},
		{"desktop wide", 3840, 1200.0 / 595},
	}
	for _, tc := range cases {
		got := ComputeRenderScale(tc.viewport)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("%s: ComputeRenderScale(%v) = %v, want %v", tc.name, tc.viewport, got, tc.want)
		}
		if got > 1.6 {
			t.Errorf("%s: scale %v exceeds desktop cap", tc.name, got)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	points := [][2]float64{
		{0, 0},
		{1, 1},
		{247.5, 396},
		{594.9, 841.9},
		{320, 326.6666},
	}
	for _, p := range points {
		sx, sy, err := letterish.ToScreen(p[0], p[1])
		if err != nil {
			t.Fatalf("ToScreen(%v): %v", p, err)
		}
		px, py, err := letterish.ToPdf(sx, sy)
		if err != nil {
			t.Fatalf("ToPdf(%v): %v", p, err)
		}
		if math.Abs(px-p[0]) > 1e-6 || math.Abs(py-p[1]) > 1e-6 {
			t.Errorf("round trip (%v,%v) -> (%v,%v)", p[0], p[1], px, py)
		}
	}
}

func TestToPdfUsesMeasuredScale(t *testing.T) {
	// Rendered width deliberately off from NativeWidth*RenderScale to mimic
	// layout rounding; the measured ratio must win over the nominal scale.
	g := letterish
	g.RenderedWidthPx = 892 // nominal would be 892.5

	x, _, err := g.ToPdf(892, 0)
	if err != nil {
		t.Fatalf("ToPdf: %v", err)
	}
	if math.Abs(x-595) > 1e-6 {
		t.Errorf("right edge maps to %v, want 595", x)
	}
}

func TestFlipYForExport(t *testing.T) {
	y, err := letterish.FlipYForExport(50, 50)
	if err != nil {
		t.Fatalf("FlipYForExport: %v", err)
	}
	if y != 742 {
		t.Errorf("FlipYForExport(50, 50) = %v, want 742", y)
	}
}

func TestInvalidGeometry(t *testing.T) {
	bad := []PageGeometry{
		{NativeWidth: 0, NativeHeight: 842, RenderedWidthPx: 100, RenderedHeightPx: 100},
		{NativeWidth: 595, NativeHeight: -1, RenderedWidthPx: 100, RenderedHeightPx: 100},
		{NativeWidth: 595, NativeHeight: 842, RenderedWidthPx: 0, RenderedHeightPx: 100},
	}
	for i, g := range bad {
		if _, _, err := g.ToScreen(10, 10); !errors.Is(err, ErrInvalidGeometry) {
			t.Errorf("case %d: ToScreen err = %v, want ErrInvalidGeometry", i, err)
		}
		if _, _, err := g.ToPdf(10, 10); !errors.Is(err, ErrInvalidGeometry) {
			t.Errorf("case %d: ToPdf err = %v, want ErrInvalidGeometry", i, err)
		}
	}
	if _, err := (PageGeometry{NativeWidth: 0, NativeHeight: 842}).FlipYForExport(0, 0); !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("FlipYForExport on degenerate page: err = %v", err)
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(-5, 0, 10); got != 0 {
		t.Errorf("Clamp(-5,0,10) = %v", got)
	}
	if got := Clamp(15, 0, 10); got != 10 {
		t.Errorf("Clamp(15,0,10) = %v", got)
	}
	if got := Clamp(5, 0, 10); got != 5 {
		t.Errorf("Clamp(5,0,10) = %v", got)
	}
	// Inverted interval: annotation wider than the page pins to the origin.
	if got := Clamp(5, 0, -20); got != 0 {
		t.Errorf("Clamp(5,0,-20) = %v, want 0", got)
	}
}

func TestBounds(t *testing.T) {
	b := letterish.Bounds()
	if !b.ContainsPoint(pt(594, 841)) || b.ContainsPoint(pt(596, 10)) {
		t.Errorf("unexpected bounds %v", b)
	}
}
