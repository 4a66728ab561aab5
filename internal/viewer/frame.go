package viewer

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"log"
	"time"

	"golang.org/x/exp/shiny/screen"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/inkstamp/internal/render"
	"github.com/example/inkstamp/internal/theme"
)

const (
	tabHeight    = 24
	bottomHeight = 24
	pageMargin   = 8
)

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

// overlayBox is one annotation resolved to canvas pixels for painting.
type overlayBox struct {
	Rect     image.Rectangle
	Image    image.Image
	Selected bool
}

// frameState is a snapshot of everything one frame needs. It is built on
// the event loop and handed to the paint worker, so painting never reads
// mutable viewer state.
type frameState struct {
	width, height int
	page          *render.Page
	pageCount     int
	current       int
	hover         int
	overlays      []overlayBox
	theme         *theme.Theme
	message       string
	messageUntil  time.Time
}

// backdropCache holds a cached checkerboard backdrop.
var backdropCache *image.RGBA

// drawCheckerboard fills rect of dst with a checkerboard pattern of the given
// colors. size controls the checker square size.
func drawCheckerboard(dst *image.RGBA, rect image.Rectangle, size int, light, dark color.Color) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if ((x/size)+(y/size))%2 == 0 {
				dst.Set(x, y, light)
			} else {
				dst.Set(x, y, dark)
			}
		}
	}
}

func drawBackdrop(dst *image.RGBA, th *theme.Theme) {
	b := dst.Bounds()
	if backdropCache == nil || backdropCache.Bounds() != b {
		backdropCache = image.NewRGBA(b)
		drawCheckerboard(backdropCache, backdropCache.Bounds(), 8, th.CheckerLight, th.CheckerDark)
	}
	draw.Draw(dst, b, backdropCache, image.Point{}, draw.Src)
}

func drawRectOutline(dst *image.RGBA, rect image.Rectangle, col color.RGBA) {
	for x := rect.Min.X; x < rect.Max.X; x++ {
		dst.SetRGBA(x, rect.Min.Y, col)
		dst.SetRGBA(x, rect.Max.Y-1, col)
	}
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		dst.SetRGBA(rect.Min.X, y, col)
		dst.SetRGBA(rect.Max.X-1, y, col)
	}
}

// tabRect returns the tab strip rectangle for one page. The paint
// worker draws with it and the event loop hit-tests with it, so the two
// never share mutable state.
func tabRect(i int) image.Rectangle {
	x := 80 + 64*i
	return image.Rect(x, 0, x+64, tabHeight)
}

func drawTabs(dst *image.RGBA, pageCount, current, hover, width int, th *theme.Theme) {
	draw.Draw(dst, image.Rect(0, 0, width, tabHeight),
		&image.Uniform{th.ToolbarBackground}, image.Point{}, draw.Src)

	// program title in the top-left corner
	title := &font.Drawer{Dst: dst, Src: image.NewUniform(th.Foreground), Face: basicfont.Face7x13,
		Dot: fixed.P(4, 16)}
	title.DrawString("Inkstamp")

	for i := 0; i < pageCount; i++ {
		r := tabRect(i)
		bg := th.TabBackground
		fg := th.TabText
		if i == current {
			bg = th.TabActive
			fg = th.TabTextActive
		} else if i == hover {
			bg = th.TabActive
		}
		draw.Draw(dst, r, &image.Uniform{bg}, image.Point{}, draw.Src)
		d := &font.Drawer{Dst: dst, Src: image.NewUniform(fg), Face: basicfont.Face7x13,
			Dot: fixed.P(r.Min.X+6, 16)}
		d.DrawString(pageLabel(i))
	}
}

func drawShortcutBar(dst *image.RGBA, width, height int, th *theme.Theme) {
	rect := image.Rect(0, height-bottomHeight, width, height)
	draw.Draw(dst, rect, &image.Uniform{th.ToolbarBackground}, image.Point{}, draw.Src)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(th.Foreground), Face: basicfont.Face7x13,
		Dot: fixed.P(6, height-bottomHeight+16)}
	d.DrawString("S:sign  I:initial  ^V:paste  ^D:delete  ^X:clear  ^S:export  PgUp/PgDn:page  Q:quit")
}

func drawBanner(dst *image.RGBA, width, height int, msg string, th *theme.Theme) {
	d := &font.Drawer{Face: basicfont.Face7x13}
	w := d.MeasureString(msg).Ceil()
	px := (width - w) / 2
	py := height - bottomHeight - 24
	rect := image.Rect(px-8, py-14, px+w+8, py+6)
	draw.Draw(dst, rect, &image.Uniform{th.BannerBackground}, image.Point{}, draw.Over)
	d = &font.Drawer{Dst: dst, Src: image.NewUniform(th.BannerText), Face: basicfont.Face7x13,
		Dot: fixed.P(px, py)}
	d.DrawString(msg)
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, st frameState) {
	b, err := s.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()

	drawBackdrop(b.RGBA(), st.theme)
	if ctx.Err() != nil {
		return
	}

	if st.page != nil {
		img := st.page.Image
		dst := img.Bounds().Add(image.Pt(pageMargin, tabHeight+pageMargin))
		xdraw.NearestNeighbor.Scale(b.RGBA(), dst, img, img.Bounds(), draw.Over, nil)
		drawRectOutline(b.RGBA(), dst, st.theme.PageBorder)
	}
	if ctx.Err() != nil {
		return
	}

	style := render.OverlayStyle{
		Border:     st.theme.OverlayBorder,
		Handle:     st.theme.OverlayHandle,
		HandleSize: 20,
	}
	for _, ob := range st.overlays {
		if ctx.Err() != nil {
			return
		}
		render.DrawAnnotation(b.RGBA(), ob.Rect, ob.Image, style)
		if ob.Selected {
			drawRectOutline(b.RGBA(), ob.Rect.Inset(-1), st.theme.OverlayHandle)
		}
	}

	drawTabs(b.RGBA(), st.pageCount, st.current, st.hover, st.width, st.theme)
	drawShortcutBar(b.RGBA(), st.width, st.height, st.theme)

	if ctx.Err() != nil {
		return
	}

	if st.message != "" && time.Now().Before(st.messageUntil) {
		drawBanner(b.RGBA(), st.width, st.height, st.message, st.theme)
	}

	if ctx.Err() != nil {
		return
	}

	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}
