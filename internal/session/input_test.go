package session

import (
	"testing"

	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/touch"
)

func TestFromMouse(t *testing.T) {
	p := FromMouse(mouse.Event{X: 12.5, Y: 40})
	if p.X != 12.5 || p.Y != 40 || p.ID != MousePointerID {
		t.Errorf("unexpected pointer %+v", p)
	}
}

func TestFromTouchDistinctIDs(t *testing.T) {
	a := FromTouch(touch.Event{X: 1, Y: 2, Sequence: 0})
	b := FromTouch(touch.Event{X: 3, Y: 4, Sequence: 1})
	if a.ID == b.ID {
		t.Error("touch sequences mapped to the same pointer id")
	}
	if a.ID == MousePointerID || b.ID == MousePointerID {
		t.Error("touch pointer id collides with the mouse pointer")
	}
}

func TestRawEventFallbackChain(t *testing.T) {
	cx, cy := 10.0, 20.0
	touches := []Pointer{{X: 30, Y: 40, ID: 2}}
	changed := []Pointer{{X: 50, Y: 60, ID: 3}}

	cases := []struct {
		name string
		ev   RawEvent
		want Pointer
	}{
		{
			"client fields win",
			RawEvent{ClientX: &cx, ClientY: &cy, Touches: touches, ChangedTouches: changed, PageX: 70, PageY: 80, PointerID: 1},
			Pointer{X: 10, Y: 20, ID: 1},
		},
		{
			"active touches next",
			RawEvent{Touches: touches, ChangedTouches: changed, PageX: 70, PageY: 80},
			Pointer{X: 30, Y: 40, ID: 2},
		},
		{
			"changed touches on touch-end",
			RawEvent{ChangedTouches: changed, PageX: 70, PageY: 80},
			Pointer{X: 50, Y: 60, ID: 3},
		},
		{
			"page coordinates last",
			RawEvent{PageX: 70, PageY: 80, PointerID: 4},
			Pointer{X: 70, Y: 80, ID: 4},
		},
	}
	for _, tc := range cases {
		if got := tc.ev.Pointer(); got != tc.want {
			t.Errorf("%s: got %+v, want %+v", tc.name, got, tc.want)
		}
	}
}

func TestRawEventHalfClientFields(t *testing.T) {
	// A record with only one client coordinate is treated as missing both.
	cx := 10.0
	ev := RawEvent{ClientX: &cx, Touches: []Pointer{{X: 5, Y: 6, ID: 9}}}
	if got := ev.Pointer(); got.X != 5 || got.Y != 6 {
		t.Errorf("half-populated client fields resolved to %+v", got)
	}
}
