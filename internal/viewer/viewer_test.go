package viewer

import (
	"image"
	"testing"

	"github.com/example/inkstamp/internal/annotation"
)

func TestPageLabel(t *testing.T) {
	if got := pageLabel(0); got != "Pg 1" {
		t.Errorf("pageLabel(0) = %q", got)
	}
}

// The event loop hit-tests tabs with the same rects the paint worker
// draws, so the strip layout must be disjoint and inside the tab bar.
func TestTabRects(t *testing.T) {
	for i := 0; i < 4; i++ {
		r := tabRect(i)
		if r.Min.Y != 0 || r.Max.Y != tabHeight {
			t.Errorf("tab %d = %v, not within the strip", i, r)
		}
		if i > 0 && tabRect(i-1).Overlaps(r) {
			t.Errorf("tab %d overlaps tab %d", i, i-1)
		}
	}
	if p := image.Pt(tabRect(2).Min.X+1, 5); !p.In(tabRect(2)) {
		t.Errorf("point %v misses its own tab", p)
	}
}

func TestPlaceholderFor(t *testing.T) {
	for _, kind := range []annotation.Kind{annotation.KindSignature, annotation.KindInitial} {
		img, dec, err := placeholderFor(kind)
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		if img.MIME != "image/png" {
			t.Errorf("%s: mime %q", kind, img.MIME)
		}
		if dec == nil || dec.Bounds().Empty() {
			t.Errorf("%s: empty decoded image", kind)
		}
	}
}
