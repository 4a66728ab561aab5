package session

import (
	"math"
	"testing"

	"github.com/example/inkstamp/internal/annotation"
	"github.com/example/inkstamp/internal/coords"
)

var letterish = coords.PageGeometry{
	NativeWidth:      595,
	NativeHeight:     842,
	RenderScale:      1.5,
	RenderedWidthPx:  893,
	RenderedHeightPx: 1263,
}

func singlePage(g coords.PageGeometry) GeometryFunc {
	return func(int) (coords.PageGeometry, bool) { return g, true }
}

func newFixture(t *testing.T) (*annotation.Registry, *Tracker, *annotation.Annotation) {
	t.Helper()
	reg := annotation.NewRegistry(1)
	a, err := reg.Add(annotation.KindSignature, 0, letterish, annotation.Image{})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	return reg, NewTracker(reg, singlePage(letterish)), a
}

func TestAddThenDragScenario(t *testing.T) {
	_, tr, a := newFixture(t)
	if a.X != 247.5 || a.Y != 396 {
		t.Fatalf("default position = (%v,%v)", a.X, a.Y)
	}

	// Grab the annotation 20x10px inside its top-left corner.
	ox, oy, err := letterish.ToScreen(a.X, a.Y)
	if err != nil {
		t.Fatal(err)
	}
	tr.Begin(a.ID, Dragging, 7, ox+20, oy+10)
	if tr.Mode() != Dragging {
		t.Fatal("session did not open")
	}

	tr.Update(7, 500, 500)

	wantX, wantY, err := letterish.ToPdf(480, 490)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(a.X-wantX) > 1e-9 || math.Abs(a.Y-wantY) > 1e-9 {
		t.Errorf("dragged to (%v,%v), want (%v,%v)", a.X, a.Y, wantX, wantY)
	}
	// Roughly 480/1.5 x 490/1.5, well inside the page, so unclamped.
	if math.Abs(a.X-320) > 0.5 || math.Abs(a.Y-326.67) > 0.5 {
		t.Errorf("dragged to (%v,%v), expected near (320,326.67)", a.X, a.Y)
	}

	tr.End(7)
	if tr.Active() {
		t.Error("session still active after End")
	}
}

func TestDragClampsToPage(t *testing.T) {
	_, tr, a := newFixture(t)
	ox, oy, _ := letterish.ToScreen(a.X, a.Y)
	tr.Begin(a.ID, Dragging, 1, ox, oy)

	tr.Update(1, -5000, -5000)
	if a.X != 0 || a.Y != 0 {
		t.Errorf("far negative drag landed at (%v,%v), want (0,0)", a.X, a.Y)
	}

	tr.Update(1, 1e7, 1e7)
	if a.X != letterish.NativeWidth-a.Width || a.Y != letterish.NativeHeight-a.Height {
		t.Errorf("far positive drag landed at (%v,%v), want (%v,%v)",
			a.X, a.Y, letterish.NativeWidth-a.Width, letterish.NativeHeight-a.Height)
	}
	tr.End(1)
}

func TestResizeFloor(t *testing.T) {
	_, tr, a := newFixture(t)
	brX, brY, _ := letterish.ToScreen(a.X+a.Width, a.Y+a.Height)
	tr.Begin(a.ID, Resizing, 2, brX, brY)

	// Collapse toward the anchor; floors must hold.
	tr.Update(2, 0, 0)
	if a.Width != annotation.MinSignatureWidth || a.Height != annotation.MinSignatureHeight {
		t.Errorf("resize floor broken: %vx%v", a.Width, a.Height)
	}
	tr.End(2)
}

func TestResizeMaxExtentWinsAtPageEdge(t *testing.T) {
	reg := annotation.NewRegistry(1)
	tr := NewTracker(reg, singlePage(letterish))
	a, _ := reg.Add(annotation.KindSignature, 0, letterish, annotation.Image{})
	a.X = 550
	a.Y = 100

	brX, brY, _ := letterish.ToScreen(a.X+a.Width, a.Y+a.Height)
	tr.Begin(a.ID, Resizing, 3, brX, brY)

	// Ask for width 200 on a page with only 45pt of room; the page edge
	// beats the 50pt minimum width.
	sx, sy, _ := letterish.ToScreen(750, 150)
	tr.Update(3, sx, sy)
	if math.Abs(a.Width-45) > 1e-9 {
		t.Errorf("width = %v, want 45 (max extent wins over the floor)", a.Width)
	}
	tr.End(3)
}

func TestSingleSessionFirstWins(t *testing.T) {
	reg := annotation.NewRegistry(1)
	tr := NewTracker(reg, singlePage(letterish))
	first, _ := reg.Add(annotation.KindSignature, 0, letterish, annotation.Image{})
	second, _ := reg.Add(annotation.KindInitial, 0, letterish, annotation.Image{})
	secondX, secondY := second.X, second.Y

	ox, oy, _ := letterish.ToScreen(first.X, first.Y)
	tr.Begin(first.ID, Dragging, 1, ox, oy)
	tr.Begin(second.ID, Dragging, 2, 100, 100) // ignored

	if tr.TargetID() != first.ID {
		t.Fatalf("active target = %q, want %q", tr.TargetID(), first.ID)
	}

	tr.Update(1, 300, 300)
	tr.Update(2, 10, 10) // stale pointer, dropped

	if second.X != secondX || second.Y != secondY {
		t.Error("second annotation moved while first session active")
	}
	if first.X == 247.5 && first.Y == 396 {
		t.Error("first annotation did not move")
	}

	tr.End(1)
	// Now the second gesture can start.
	tr.Begin(second.ID, Dragging, 2, 100, 100)
	if tr.TargetID() != second.ID {
		t.Error("second session did not open after first ended")
	}
	tr.End(2)
}

func TestStalePointerRejected(t *testing.T) {
	_, tr, a := newFixture(t)
	ox, oy, _ := letterish.ToScreen(a.X, a.Y)
	tr.Begin(a.ID, Dragging, 5, ox, oy)
	x, y := a.X, a.Y

	tr.Update(6, 999, 999)
	if a.X != x || a.Y != y {
		t.Error("update from foreign pointer mutated the annotation")
	}

	tr.End(6) // stale end ignored
	if !tr.Active() {
		t.Error("stale End closed the session")
	}
	tr.End(5)
}

func TestEndIdempotent(t *testing.T) {
	_, tr, a := newFixture(t)
	tr.End(1) // no session: no-op, no panic
	if tr.Active() {
		t.Fatal("End with no session left tracker active")
	}
	ox, oy, _ := letterish.ToScreen(a.X, a.Y)
	tr.Begin(a.ID, Dragging, 1, ox, oy)
	tr.End(1)
	tr.End(1)
	if tr.Active() {
		t.Error("tracker active after double End")
	}
}

func TestBeginNoOps(t *testing.T) {
	_, tr, a := newFixture(t)
	tr.Begin("no-such-id", Dragging, 1, 0, 0)
	if tr.Active() {
		t.Error("session opened for unknown annotation")
	}
	tr.Begin(a.ID, Idle, 1, 0, 0)
	if tr.Active() {
		t.Error("session opened with Idle mode")
	}

	// A page with broken geometry refuses interactions but nothing panics.
	broken := NewTracker(trRegistry(t), func(int) (coords.PageGeometry, bool) {
		return coords.PageGeometry{}, true
	})
	broken.Begin(a.ID, Dragging, 1, 0, 0)
	if broken.Active() {
		t.Error("session opened on degenerate geometry")
	}
}

func trRegistry(t *testing.T) *annotation.Registry {
	t.Helper()
	reg := annotation.NewRegistry(1)
	if _, err := reg.Add(annotation.KindSignature, 0, letterish, annotation.Image{}); err != nil {
		t.Fatal(err)
	}
	return reg
}

func TestCaptureHooksBalanced(t *testing.T) {
	reg := annotation.NewRegistry(1)
	a, _ := reg.Add(annotation.KindSignature, 0, letterish, annotation.Image{})

	var captured, released int
	tr := NewTracker(reg, singlePage(letterish), WithCaptureHooks(
		func(int64) { captured++ },
		func(int64) { released++ },
	))

	ox, oy, _ := letterish.ToScreen(a.X, a.Y)
	for i := 0; i < 50; i++ {
		pid := int64(i + 1)
		tr.Begin(a.ID, Dragging, pid, ox, oy)
		tr.Update(pid, ox+1, oy+1)
		if i%3 == 0 {
			tr.Abort() // cancellation path
		} else {
			tr.End(pid)
		}
	}
	if captured != 50 || released != 50 {
		t.Errorf("capture/release = %d/%d, want 50/50", captured, released)
	}
	if tr.Active() {
		t.Error("tracker left active")
	}
}

func TestAbortKeepsLastClampedGeometry(t *testing.T) {
	_, tr, a := newFixture(t)
	ox, oy, _ := letterish.ToScreen(a.X, a.Y)
	tr.Begin(a.ID, Dragging, 9, ox, oy)
	tr.Update(9, -1e6, -1e6)
	tr.Abort()
	if a.X != 0 || a.Y != 0 {
		t.Errorf("abort rolled geometry to (%v,%v)", a.X, a.Y)
	}
	if tr.Active() {
		t.Error("tracker active after Abort")
	}
	tr.Abort() // idempotent
}

func TestHit(t *testing.T) {
	reg := annotation.NewRegistry(1)
	a, _ := reg.Add(annotation.KindSignature, 0, letterish, annotation.Image{})
	annots := reg.ForPage(0)

	x0, y0, _ := letterish.ToScreen(a.X, a.Y)
	x1, y1, _ := letterish.ToScreen(a.X+a.Width, a.Y+a.Height)

	if id, mode, ok := Hit(letterish, annots, x0+2, y0+2); !ok || id != a.ID || mode != Dragging {
		t.Errorf("body hit = (%q,%v,%v)", id, mode, ok)
	}
	if id, mode, ok := Hit(letterish, annots, x1-2, y1-2); !ok || id != a.ID || mode != Resizing {
		t.Errorf("handle hit = (%q,%v,%v)", id, mode, ok)
	}
	if _, _, ok := Hit(letterish, annots, x0-50, y0-50); ok {
		t.Error("hit reported outside annotation")
	}
}

func TestHitPrefersTopmost(t *testing.T) {
	reg := annotation.NewRegistry(1)
	bottom, _ := reg.Add(annotation.KindSignature, 0, letterish, annotation.Image{})
	top, _ := reg.Add(annotation.KindSignature, 0, letterish, annotation.Image{})
	_ = bottom

	x0, y0, _ := letterish.ToScreen(top.X, top.Y)
	id, _, ok := Hit(letterish, reg.ForPage(0), x0+5, y0+5)
	if !ok || id != top.ID {
		t.Errorf("hit = %q, want topmost %q", id, top.ID)
	}
}
