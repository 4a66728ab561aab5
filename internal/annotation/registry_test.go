package annotation

import (
	"testing"

	"github.com/example/inkstamp/internal/coords"
)

var testGeom = coords.PageGeometry{
	NativeWidth:      595,
	NativeHeight:     842,
	RenderScale:      1.5,
	RenderedWidthPx:  893,
	RenderedHeightPx: 1263,
}

func TestAddCentersAnnotation(t *testing.T) {
	r := NewRegistry(3)
	a, err := r.Add(KindSignature, 0, testGeom, NewImage([]byte{0xff, 0xd8, 0xff}))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if a.X != 247.5 || a.Y != 396 {
		t.Errorf("default position = (%v,%v), want (247.5,396)", a.X, a.Y)
	}
	if a.Width != 100 || a.Height != 50 {
		t.Errorf("default size = %vx%v", a.Width, a.Height)
	}
	if a.ID == "" {
		t.Error("empty id")
	}
}

func TestAddRejectsBadPage(t *testing.T) {
	r := NewRegistry(2)
	if _, err := r.Add(KindSignature, 2, testGeom, Image{}); err == nil {
		t.Error("expected out-of-range error for page 2")
	}
	if _, err := r.Add(KindSignature, -1, testGeom, Image{}); err == nil {
		t.Error("expected out-of-range error for page -1")
	}
	if _, err := r.Add(KindSignature, 0, coords.PageGeometry{}, Image{}); err == nil {
		t.Error("expected invalid geometry error")
	}
	if r.Len() != 0 {
		t.Errorf("registry grew on failed adds: %d", r.Len())
	}
}

func TestIDsUnique(t *testing.T) {
	r := NewRegistry(1)
	a1, _ := r.Add(KindInitial, 0, testGeom, Image{})
	a2, _ := r.Add(KindInitial, 0, testGeom, Image{})
	if a1.ID == a2.ID {
		t.Errorf("duplicate ids %q", a1.ID)
	}
}

func TestRemoveAndClear(t *testing.T) {
	r := NewRegistry(1)
	a, _ := r.Add(KindSignature, 0, testGeom, Image{})
	if !r.Remove(a.ID) {
		t.Error("Remove reported missing id")
	}
	if r.Remove(a.ID) {
		t.Error("second Remove should report false")
	}
	r.Add(KindSignature, 0, testGeom, Image{})
	r.Add(KindInitial, 0, testGeom, Image{})
	r.Clear()
	if r.Len() != 0 {
		t.Errorf("Clear left %d annotations", r.Len())
	}
}

func TestGroupByPageStableOrder(t *testing.T) {
	r := NewRegistry(3)
	first, _ := r.Add(KindSignature, 1, testGeom, Image{})
	r.Add(KindSignature, 0, testGeom, Image{})
	second, _ := r.Add(KindInitial, 1, testGeom, Image{})

	byPage := r.GroupByPage()
	if len(byPage[1]) != 2 {
		t.Fatalf("page 1 has %d annotations", len(byPage[1]))
	}
	if byPage[1][0].ID != first.ID || byPage[1][1].ID != second.ID {
		t.Error("insertion order not preserved within page")
	}
	if got := r.ForPage(2); len(got) != 0 {
		t.Errorf("page 2 should be empty, got %d", len(got))
	}
}
