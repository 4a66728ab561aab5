//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

// X11 fallback used when the cgo bindings are unavailable. The viewer
// only ever reads the clipboard: pasting a signature image is its one
// clipboard interaction, so this side speaks just enough ICCCM to ask
// the selection owner for a PNG. Each read opens a short-lived
// connection and window of its own; there is no owner state to serve
// and nothing to keep alive between pastes.

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

var errNoDisplay = errors.New("clipboard requires DISPLAY or WAYLAND_DISPLAY")

// ReadImage retrieves PNG image data from the clipboard and decodes it.
func ReadImage() (image.Image, error) {
	if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
		return nil, errNoDisplay
	}
	data, err := readSelection("image/png")
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("clipboard does not contain image data")
	}
	return png.Decode(bytes.NewReader(data))
}

// readSelection asks the CLIPBOARD owner to convert its contents to the
// named target and returns the transferred property payload.
func readSelection(target string) ([]byte, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	intern := func(name string) (xproto.Atom, error) {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			return 0, err
		}
		return reply.Atom, nil
	}
	selection, err := intern("CLIPBOARD")
	if err != nil {
		return nil, err
	}
	targetAtom, err := intern(target)
	if err != nil {
		return nil, err
	}
	property, err := intern("INKSTAMP_CLIPBOARD")
	if err != nil {
		return nil, err
	}

	screen := xproto.Setup(conn).DefaultScreen(conn)
	window, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, err
	}
	if err := xproto.CreateWindowChecked(conn, 0, window, screen.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOnly, 0, xproto.CwEventMask,
		[]uint32{xproto.EventMaskPropertyChange}).Check(); err != nil {
		return nil, err
	}
	defer xproto.DestroyWindow(conn, window)

	if err := xproto.ConvertSelectionChecked(conn, window, selection, targetAtom,
		property, xproto.TimeCurrentTime).Check(); err != nil {
		return nil, err
	}

	for {
		ev, err := conn.WaitForEvent()
		if err != nil {
			return nil, err
		}
		e, ok := ev.(xproto.SelectionNotifyEvent)
		if !ok {
			continue
		}
		if e.Property == xproto.AtomNone {
			return nil, fmt.Errorf("clipboard target %s unavailable", target)
		}
		if e.Property != property {
			continue
		}
		reply, replyErr := xproto.GetProperty(conn, true, window, property,
			xproto.GetPropertyTypeAny, 0, (1<<31)-1).Reply()
		if replyErr != nil {
			return nil, replyErr
		}
		return append([]byte(nil), reply.Value...), nil
	}
}
