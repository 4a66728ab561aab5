// Package session owns the single live drag or resize gesture.
//
// The host event glue subscribes to its input sources once at startup
// and forwards everything into Begin/Update/End; the tracker never
// attaches or detaches listeners itself, so there is nothing to leak
// across gestures. Misbehaving event streams degrade to no-ops rather
// than panics: a stale pointer, an unknown annotation, or an update
// with no open session all fall through silently.
package session

import (
	"github.com/example/inkstamp/internal/annotation"
	"github.com/example/inkstamp/internal/coords"
)

// Mode is the tracker state.
type Mode int

const (
	Idle Mode = iota
	Dragging
	Resizing
)

// HandleSizePx is the edge length of the square resize region anchored
// at the bottom-right corner of an annotation's rendered bounds.
const HandleSizePx = 20.0

// GeometryFunc resolves the rendered geometry for a page. Returning
// false disables interactions for annotations on that page.
type GeometryFunc func(pageIndex int) (coords.PageGeometry, bool)

// Tracker runs the Idle -> Dragging/Resizing -> Idle state machine.
// At most one session is open at a time; a Begin while a session is
// active is ignored (first session wins).
type Tracker struct {
	reg  *annotation.Registry
	geom GeometryFunc

	capture func(pointerID int64)
	release func(pointerID int64)

	mode      Mode
	target    *annotation.Annotation
	pointerID int64

	// Screen-pixel offset from the annotation origin to the grab point,
	// recorded at Begin so the annotation does not jump under the pointer.
	grabDX, grabDY float64
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithCaptureHooks registers callbacks fired when a session acquires and
// releases its pointer. Every successful Begin is guaranteed a matching
// release on End or cancel.
func WithCaptureHooks(capture, release func(pointerID int64)) Option {
	return func(t *Tracker) {
		t.capture = capture
		t.release = release
	}
}

// NewTracker creates an idle tracker over the given registry.
func NewTracker(reg *annotation.Registry, geom GeometryFunc, opts ...Option) *Tracker {
	t := &Tracker{reg: reg, geom: geom}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Mode returns the current state.
func (t *Tracker) Mode() Mode { return t.mode }

// Active reports whether a session is open.
func (t *Tracker) Active() bool { return t.mode != Idle }

// TargetID returns the id of the annotation under interaction, or "".
func (t *Tracker) TargetID() string {
	if t.target == nil {
		return ""
	}
	return t.target.ID
}

// Begin opens a session for the given annotation. It is a no-op when a
// session is already active, the annotation is unknown, the mode is
// Idle, or the page geometry is unusable.
func (t *Tracker) Begin(id string, mode Mode, pointerID int64, screenX, screenY float64) {
	if t.mode != Idle || mode == Idle {
		return
	}
	a := t.reg.Get(id)
	if a == nil {
		return
	}
	g, ok := t.geom(a.PageIndex)
	if !ok || g.Validate() != nil {
		return
	}
	if mode == Dragging {
		ox, oy, err := g.ToScreen(a.X, a.Y)
		if err != nil {
			return
		}
		t.grabDX = screenX - ox
		t.grabDY = screenY - oy
	}
	t.mode = mode
	t.target = a
	t.pointerID = pointerID
	if t.capture != nil {
		t.capture(pointerID)
	}
}

// Update moves or resizes the target annotation. Events from pointers
// other than the session's origin pointer are dropped, which shields the
// gesture from a second simultaneous touch.
func (t *Tracker) Update(pointerID int64, screenX, screenY float64) {
	if t.mode == Idle || pointerID != t.pointerID || t.target == nil {
		return
	}
	a := t.target
	g, ok := t.geom(a.PageIndex)
	if !ok || g.Validate() != nil {
		return
	}
	switch t.mode {
	case Dragging:
		x, y, err := g.ToPdf(screenX-t.grabDX, screenY-t.grabDY)
		if err != nil {
			return
		}
		a.MoveTo(g, x, y)
	case Resizing:
		px, py, err := g.ToPdf(screenX, screenY)
		if err != nil {
			return
		}
		a.Resize(g, px-a.X, py-a.Y)
	}
}

// End closes the session if pointerID matches. Calling it twice, with a
// stale pointer, or with no session open is a no-op.
func (t *Tracker) End(pointerID int64) {
	if t.mode == Idle || pointerID != t.pointerID {
		return
	}
	t.finish()
}

// Abort cancels whatever session is open. Pointer-cancel and loss of the
// input source route through here so a gesture can never get stuck; the
// annotation keeps its last clamped geometry.
func (t *Tracker) Abort() {
	if t.mode == Idle {
		return
	}
	t.finish()
}

func (t *Tracker) finish() {
	released := t.pointerID
	t.mode = Idle
	t.target = nil
	t.pointerID = 0
	t.grabDX = 0
	t.grabDY = 0
	if t.release != nil {
		t.release(released)
	}
}

// Hit locates the annotation under a screen point and the interaction it
// would start: the bottom-right HandleSizePx square maps to Resizing,
// the rest of the body to Dragging. Later annotations win, matching
// their paint order.
func Hit(g coords.PageGeometry, annots []*annotation.Annotation, screenX, screenY float64) (string, Mode, bool) {
	if g.Validate() != nil {
		return "", Idle, false
	}
	for i := len(annots) - 1; i >= 0; i-- {
		a := annots[i]
		x0, y0, err := g.ToScreen(a.X, a.Y)
		if err != nil {
			return "", Idle, false
		}
		x1, y1, err := g.ToScreen(a.X+a.Width, a.Y+a.Height)
		if err != nil {
			return "", Idle, false
		}
		if screenX < x0 || screenX > x1 || screenY < y0 || screenY > y1 {
			continue
		}
		if screenX >= x1-HandleSizePx && screenY >= y1-HandleSizePx {
			return a.ID, Resizing, true
		}
		return a.ID, Dragging, true
	}
	return "", Idle, false
}
