package session

import (
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/touch"
)

// Pointer is the single input shape the tracker consumes. Adapters at
// the host boundary translate whatever the input source delivers; the
// tracker never inspects event types itself.
type Pointer struct {
	X, Y float64
	ID   int64
}

// MousePointerID is the pointer id shared by all mouse events; a host
// has one mouse cursor.
const MousePointerID int64 = 0

// FromMouse adapts a shiny mouse event.
func FromMouse(e mouse.Event) Pointer {
	return Pointer{X: float64(e.X), Y: float64(e.Y), ID: MousePointerID}
}

// FromTouch adapts a touch event, keyed by its contact sequence so each
// finger gets a distinct pointer id.
func FromTouch(e touch.Event) Pointer {
	return Pointer{X: float64(e.X), Y: float64(e.Y), ID: int64(e.Sequence) + 1}
}

// RawEvent mirrors the loosely shaped input records embedded WebView
// hosts deliver, where any of the coordinate carriers may be missing
// depending on the event that fired.
type RawEvent struct {
	ClientX, ClientY *float64
	Touches          []Pointer
	ChangedTouches   []Pointer
	PageX, PageY     float64
	PointerID        int64
}

// Pointer resolves the event coordinates, trying in order: direct
// client fields, the first active touch, the first changed touch (the
// only carrier on touch-end), and finally page coordinates.
func (e RawEvent) Pointer() Pointer {
	if e.ClientX != nil && e.ClientY != nil {
		return Pointer{X: *e.ClientX, Y: *e.ClientY, ID: e.PointerID}
	}
	if len(e.Touches) > 0 {
		return e.Touches[0]
	}
	if len(e.ChangedTouches) > 0 {
		return e.ChangedTouches[0]
	}
	return Pointer{X: e.PageX, Y: e.PageY, ID: e.PointerID}
}
