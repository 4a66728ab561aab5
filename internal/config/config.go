package config

import (
	"fmt"
	"image/color"
	"sort"
	"strconv"
	"strings"

	"github.com/example/inkstamp/internal/coords"
	"github.com/example/inkstamp/internal/theme"
)

// Notify holds notification settings.
type Notify struct {
	Export   bool
	Upload   bool
	Complete bool
}

// Envelope holds envelope store settings.
type Envelope struct {
	Dir       string
	UploadDir string
}

// Render holds the scale policy overrides. Zero values fall back to
// the stock policy.
type Render struct {
	ReferenceWidth float64
	MobileMax      float64
	TabletMax      float64
	MobileCap      float64
	TabletCap      float64
	DesktopCap     float64
	DesktopWidth   float64
}

// Config holds the application configuration.
type Config struct {
	Theme    string
	SaveDir  string
	Optimize bool
	Notify   Notify
	Envelope Envelope
	Render   Render
	Themes   map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Theme: "", // Default to empty to allow fallback to Env/Default
		Notify: Notify{
			Export:   false,
			Upload:   false,
			Complete: false,
		},
		Themes: make(map[string]*theme.Theme),
	}
}

// ScalePolicy merges the configured render overrides onto the stock
// policy.
func (c *Config) ScalePolicy() coords.ScalePolicy {
	p := coords.DefaultScalePolicy()
	if c.Render.ReferenceWidth > 0 {
		p.ReferenceWidth = c.Render.ReferenceWidth
	}
	if c.Render.MobileMax > 0 {
		p.MobileMaxPx = c.Render.MobileMax
	}
	if c.Render.TabletMax > 0 {
		p.TabletMaxPx = c.Render.TabletMax
	}
	if c.Render.MobileCap > 0 {
		p.MobileCap = c.Render.MobileCap
	}
	if c.Render.TabletCap > 0 {
		p.TabletCap = c.Render.TabletCap
	}
	if c.Render.DesktopCap > 0 {
		p.DesktopCap = c.Render.DesktopCap
	}
	if c.Render.DesktopWidth > 0 {
		p.DesktopWidthPx = c.Render.DesktopWidth
	}
	return p
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	// Root section
	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	fmt.Fprintf(&sb, "optimize = %v\n", c.Optimize)
	sb.WriteString("\n")

	// Notify section
	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "export = %v\n", c.Notify.Export)
	fmt.Fprintf(&sb, "upload = %v\n", c.Notify.Upload)
	fmt.Fprintf(&sb, "complete = %v\n", c.Notify.Complete)
	sb.WriteString("\n")

	// Envelope section
	if c.Envelope.Dir != "" || c.Envelope.UploadDir != "" {
		sb.WriteString("[envelope]\n")
		if c.Envelope.Dir != "" {
			fmt.Fprintf(&sb, "dir = %s\n", c.Envelope.Dir)
		}
		if c.Envelope.UploadDir != "" {
			fmt.Fprintf(&sb, "upload_dir = %s\n", c.Envelope.UploadDir)
		}
		sb.WriteString("\n")
	}

	// Render section: only keys that override the stock policy.
	renderLines := []struct {
		key string
		val float64
	}{
		{"reference_width", c.Render.ReferenceWidth},
		{"mobile_max", c.Render.MobileMax},
		{"tablet_max", c.Render.TabletMax},
		{"mobile_cap", c.Render.MobileCap},
		{"tablet_cap", c.Render.TabletCap},
		{"desktop_cap", c.Render.DesktopCap},
		{"desktop_width", c.Render.DesktopWidth},
	}
	any := false
	for _, rl := range renderLines {
		if rl.val > 0 {
			any = true
		}
	}
	if any {
		sb.WriteString("[render]\n")
		for _, rl := range renderLines {
			if rl.val > 0 {
				fmt.Fprintf(&sb, "%s = %s\n", rl.key, strconv.FormatFloat(rl.val, 'g', -1, 64))
			}
		}
		sb.WriteString("\n")
	}

	// Themes sections
	// Sort keys for deterministic output
	var themeNames []string
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)

	for _, name := range themeNames {
		t := c.Themes[name]
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		fmt.Fprintf(&sb, "Name: %s\n", t.Name)
		fmt.Fprintf(&sb, "Background: %s\n", toHex(t.Background))
		fmt.Fprintf(&sb, "Foreground: %s\n", toHex(t.Foreground))
		fmt.Fprintf(&sb, "ToolbarBackground: %s\n", toHex(t.ToolbarBackground))
		fmt.Fprintf(&sb, "TabBackground: %s\n", toHex(t.TabBackground))
		fmt.Fprintf(&sb, "TabActive: %s\n", toHex(t.TabActive))
		fmt.Fprintf(&sb, "TabText: %s\n", toHex(t.TabText))
		fmt.Fprintf(&sb, "TabTextActive: %s\n", toHex(t.TabTextActive))
		fmt.Fprintf(&sb, "PageBorder: %s\n", toHex(t.PageBorder))
		fmt.Fprintf(&sb, "CheckerLight: %s\n", toHex(t.CheckerLight))
		fmt.Fprintf(&sb, "CheckerDark: %s\n", toHex(t.CheckerDark))
		fmt.Fprintf(&sb, "OverlayBorder: %s\n", toHex(t.OverlayBorder))
		fmt.Fprintf(&sb, "OverlayHandle: %s\n", toHex(t.OverlayHandle))
		fmt.Fprintf(&sb, "BannerBackground: %s\n", toHex(t.BannerBackground))
		fmt.Fprintf(&sb, "BannerText: %s\n", toHex(t.BannerText))
		sb.WriteString("\n")
	}

	return sb.String()
}

func toHex(c interface{ RGBA() (r, g, b, a uint32) }) string {
	if rgba, ok := c.(color.RGBA); ok {
		if rgba.A == 255 {
			return fmt.Sprintf("#%02X%02X%02X", rgba.R, rgba.G, rgba.B)
		}
		return fmt.Sprintf("#%02X%02X%02X%02X", rgba.R, rgba.G, rgba.B, rgba.A)
	}

	r, g, b, a := c.RGBA()
	if a == 0 {
		return "#00000000"
	}
	r8 := uint8(r >> 8)
	g8 := uint8(g >> 8)
	b8 := uint8(b >> 8)
	a8 := uint8(a >> 8)

	if a8 == 255 {
		return fmt.Sprintf("#%02X%02X%02X", r8, g8, b8)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", r8, g8, b8, a8)
}
