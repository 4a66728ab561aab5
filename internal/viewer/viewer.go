// Package viewer runs the interactive placement window. Pages show as
// tabs; signatures and initials are dragged and resized on the page
// canvas and flattened into a new PDF on export.
package viewer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"sync"
	"time"
	"unicode"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
	"golang.org/x/mobile/event/touch"

	"github.com/example/inkstamp/assets"
	"github.com/example/inkstamp/internal/annotation"
	"github.com/example/inkstamp/internal/clipboard"
	"github.com/example/inkstamp/internal/coords"
	"github.com/example/inkstamp/internal/export"
	"github.com/example/inkstamp/internal/notify"
	"github.com/example/inkstamp/internal/render"
	"github.com/example/inkstamp/internal/session"
	"github.com/example/inkstamp/internal/theme"
)

// Viewer holds configuration for the placement window.
type Viewer struct {
	Doc      *render.Document
	Output   string
	Theme    *theme.Theme
	Policy   coords.ScalePolicy
	Exporter *export.Exporter
	Notifier *notify.Notifier

	onClose   func()
	closeOnce sync.Once
}

// Option modifies a Viewer during creation.
type Option func(*Viewer)

// WithDocument sets the document being signed.
func WithDocument(doc *render.Document) Option { return func(v *Viewer) { v.Doc = doc } }

// WithOutput sets the output file path used when exporting.
func WithOutput(out string) Option { return func(v *Viewer) { v.Output = out } }

// WithTheme sets the color palette.
func WithTheme(th *theme.Theme) Option { return func(v *Viewer) { v.Theme = th } }

// WithScalePolicy overrides the render scale tiers.
func WithScalePolicy(p coords.ScalePolicy) Option { return func(v *Viewer) { v.Policy = p } }

// WithExporter sets the export pipeline invoked on save.
func WithExporter(e *export.Exporter) Option { return func(v *Viewer) { v.Exporter = e } }

// WithNotifier sets the desktop notifier.
func WithNotifier(n *notify.Notifier) Option { return func(v *Viewer) { v.Notifier = n } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(v *Viewer) { v.onClose = fn } }

// New creates a Viewer with the provided options.
func New(opts ...Option) *Viewer {
	v := &Viewer{
		Theme:    theme.Default(),
		Policy:   coords.DefaultScalePolicy(),
		Exporter: &export.Exporter{},
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

func (v *Viewer) notifyClose() {
	v.closeOnce.Do(func() {
		if v.onClose != nil {
			v.onClose()
		}
	})
}

func pageLabel(i int) string { return fmt.Sprintf("Pg %d", i+1) }

// placeholderFor loads the embedded stamp image for a kind.
func placeholderFor(kind annotation.Kind) (annotation.Image, image.Image, error) {
	data, err := assets.PlaceholderPNG(string(kind))
	if err != nil {
		return annotation.Image{}, nil, err
	}
	img, err := assets.PlaceholderImage(string(kind))
	if err != nil {
		return annotation.Image{}, nil, err
	}
	return annotation.NewImage(data), img, nil
}

// Run executes the UI loop using shiny's driver.
func (v *Viewer) Run() { driver.Main(v.Main) }

func (v *Viewer) Main(s screen.Screen) {
	doc := v.Doc
	th := v.Theme
	output := v.Output

	scale := v.Policy.RenderScale(v.Policy.DesktopWidthPx)
	pages, err := doc.RenderAll(scale)
	if err != nil {
		log.Fatalf("render document: %v", err)
	}

	geomFor := func(pageIndex int) (coords.PageGeometry, bool) {
		if pageIndex < 0 || pageIndex >= len(pages) {
			return coords.PageGeometry{}, false
		}
		return pages[pageIndex].Geometry, true
	}

	reg := annotation.NewRegistry(doc.PageCount())
	tracker := session.NewTracker(reg, geomFor)

	// Decoded annotation images, keyed by annotation id.
	decoded := map[string]image.Image{}

	first := pages[0].Image.Bounds()
	width := first.Dx() + 2*pageMargin
	height := first.Dy() + 2*pageMargin + tabHeight + bottomHeight
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: "Inkstamp"})
	if err != nil {
		log.Fatalf("new window: %v", err)
	}
	defer w.Release()

	defer v.notifyClose()

	current := 0
	hoverTab := -1
	selected := ""
	var message string
	var messageUntil time.Time
	var confirmDelete bool

	showMessage := func(msg string) {
		message = msg
		log.Print(msg)
		messageUntil = time.Now().Add(2 * time.Second)
	}

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan frameState, 1)
	go func() {
		for st := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			drawFrame(ctx, s, w, st)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
		}
	}()

	// rerender rebuilds every page raster after the scale tier changes.
	rerender := func(viewportWidth float64) {
		ns := v.Policy.RenderScale(viewportWidth)
		if ns == scale {
			return
		}
		np, err := doc.RenderAll(ns)
		if err != nil {
			log.Printf("re-render: %v", err)
			return
		}
		scale = ns
		pages = np
	}

	buildOverlays := func() []overlayBox {
		g := pages[current].Geometry
		var out []overlayBox
		for _, a := range reg.ForPage(current) {
			x0, y0, err := g.ToScreen(a.X, a.Y)
			if err != nil {
				continue
			}
			x1, y1, err := g.ToScreen(a.X+a.Width, a.Y+a.Height)
			if err != nil {
				continue
			}
			r := image.Rect(int(x0), int(y0), int(x1), int(y1)).
				Add(image.Pt(pageMargin, tabHeight+pageMargin))
			out = append(out, overlayBox{Rect: r, Image: decoded[a.ID], Selected: a.ID == selected})
		}
		return out
	}

	addStamp := func(kind annotation.Kind) {
		img, dec, err := placeholderFor(kind)
		if err != nil {
			log.Printf("placeholder %s: %v", kind, err)
			return
		}
		a, err := reg.Add(kind, current, pages[current].Geometry, img)
		if err != nil {
			log.Printf("add %s: %v", kind, err)
			return
		}
		decoded[a.ID] = dec
		selected = a.ID
		showMessage(fmt.Sprintf("added %s", kind))
	}

	doExport := func() {
		data, skipped, err := v.Exporter.Export(doc.Bytes(), reg, export.GeometryFunc(geomFor))
		for _, serr := range skipped {
			log.Printf("export: %v", serr)
		}
		if err != nil {
			log.Printf("export: %v", err)
			showMessage("export failed")
			return
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			log.Printf("export: %v", err)
			showMessage("export failed")
			return
		}
		if v.Notifier != nil {
			v.Notifier.Export(output)
		}
		showMessage(fmt.Sprintf("exported %s", output))
	}

	pasteStamp := func() {
		img, err := clipboard.ReadImage()
		if err != nil {
			log.Printf("paste: %v", err)
			return
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			log.Printf("paste: %v", err)
			return
		}
		a, err := reg.Add(annotation.KindSignature, current, pages[current].Geometry, annotation.NewImage(buf.Bytes()))
		if err != nil {
			log.Printf("paste: %v", err)
			return
		}
		decoded[a.ID] = img
		selected = a.ID
		showMessage("pasted signature from clipboard")
	}

	deleteSelected := func() {
		if selected == "" {
			return
		}
		if tracker.TargetID() == selected {
			tracker.Abort()
		}
		if reg.Remove(selected) {
			delete(decoded, selected)
			showMessage("deleted annotation")
		}
		selected = ""
	}

	clearAll := func() {
		tracker.Abort()
		reg.Clear()
		decoded = map[string]image.Image{}
		selected = ""
		showMessage("cleared all annotations")
	}

	repaint := func() { w.Send(paint.Event{}) }

	// toCanvas maps a window point to page canvas pixels.
	toCanvas := func(x, y float64) (float64, float64) {
		return x - pageMargin, y - tabHeight - pageMargin
	}

	handlePointerDown := func(p session.Pointer) {
		sx, sy := toCanvas(p.X, p.Y)
		g := pages[current].Geometry
		id, mode, ok := session.Hit(g, reg.ForPage(current), sx, sy)
		if !ok {
			selected = ""
			repaint()
			return
		}
		selected = id
		tracker.Begin(id, mode, p.ID, sx, sy)
		repaint()
	}

	handlePointerMove := func(p session.Pointer) {
		if !tracker.Active() {
			return
		}
		sx, sy := toCanvas(p.X, p.Y)
		tracker.Update(p.ID, sx, sy)
		repaint()
	}

	handlePointerUp := func(p session.Pointer) {
		tracker.End(p.ID)
		repaint()
	}

	for {
		e := w.NextEvent()
		switch e := e.(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				paintMu.Lock()
				if paintCancel != nil {
					paintCancel()
				}
				paintMu.Unlock()
				tracker.Abort()
				return
			}
			if e.Crosses(lifecycle.StageFocused) == lifecycle.CrossOff {
				// Losing the window mid-gesture must not strand a session.
				tracker.Abort()
			}
		case size.Event:
			width = e.WidthPx
			height = e.HeightPx
			rerender(float64(e.WidthPx))
			repaint()
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil {
				if dropCount < frameDropThreshold {
					paintCancel()
					dropCount++
				}
			}
			paintMu.Unlock()
			st := frameState{
				width:        width,
				height:       height,
				page:         pages[current],
				pageCount:    len(pages),
				current:      current,
				hover:        hoverTab,
				overlays:     buildOverlays(),
				theme:        th,
				message:      message,
				messageUntil: messageUntil,
			}
			select {
			case paintCh <- st:
			default:
				<-paintCh
				paintCh <- st
			}
		case mouse.Event:
			if int(e.Y) < tabHeight {
				hoverTab = -1
				p := image.Point{int(e.X), int(e.Y)}
				for i := 0; i < len(pages); i++ {
					if p.In(tabRect(i)) {
						hoverTab = i
						if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
							tracker.Abort()
							current = i
							selected = ""
						}
						break
					}
				}
				repaint()
				continue
			}
			ptr := session.FromMouse(e)
			switch {
			case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress:
				handlePointerDown(ptr)
			case e.Direction == mouse.DirNone:
				handlePointerMove(ptr)
			case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirRelease:
				handlePointerUp(ptr)
			}
		case touch.Event:
			ptr := session.FromTouch(e)
			switch e.Type {
			case touch.TypeBegin:
				handlePointerDown(ptr)
			case touch.TypeMove:
				handlePointerMove(ptr)
			case touch.TypeEnd:
				handlePointerUp(ptr)
			}
		case key.Event:
			if e.Direction != key.DirPress {
				continue
			}
			r := unicode.ToLower(e.Rune)
			ctrl := e.Modifiers&key.ModControl != 0
			if r != 'd' {
				confirmDelete = false
			}
			switch {
			case r == 'q' && !ctrl:
				return
			case e.Code == key.CodeEscape:
				tracker.Abort()
				selected = ""
				repaint()
			case r == 's' && ctrl:
				doExport()
				repaint()
			case r == 's':
				addStamp(annotation.KindSignature)
				repaint()
			case r == 'i':
				addStamp(annotation.KindInitial)
				repaint()
			case r == 'v' && ctrl:
				pasteStamp()
				repaint()
			case r == 'd' && ctrl:
				if !confirmDelete {
					confirmDelete = true
					showMessage("press ^D again to delete")
					repaint()
					continue
				}
				confirmDelete = false
				deleteSelected()
				repaint()
			case r == 'x' && ctrl:
				clearAll()
				repaint()
			case e.Code == key.CodePageDown || e.Code == key.CodeRightArrow:
				if current < len(pages)-1 {
					tracker.Abort()
					current++
					selected = ""
					repaint()
				}
			case e.Code == key.CodePageUp || e.Code == key.CodeLeftArrow:
				if current > 0 {
					tracker.Abort()
					current--
					selected = ""
					repaint()
				}
			}
		}
	}
}
