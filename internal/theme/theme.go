package theme

import (
	"image/color"
)

// Theme defines the color palette for the viewer UI.
type Theme struct {
	Name string

	// General
	Background color.RGBA // Area behind the page canvas
	Foreground color.RGBA // Main text color

	// Page tab strip
	ToolbarBackground color.RGBA
	TabBackground     color.RGBA // Inactive page tab
	TabActive         color.RGBA // Current page tab
	TabText           color.RGBA
	TabTextActive     color.RGBA

	// Page canvas
	PageBorder   color.RGBA
	CheckerLight color.RGBA
	CheckerDark  color.RGBA

	// Annotation overlay
	OverlayBorder color.RGBA
	OverlayHandle color.RGBA

	// Status banner (export/upload feedback)
	BannerBackground color.RGBA
	BannerText       color.RGBA
}

// Default returns the hardcoded default light theme (fallback).
func Default() *Theme {
	return &Theme{
		Name:              "Default",
		Background:        color.RGBA{220, 220, 220, 255},
		Foreground:        color.RGBA{0, 0, 0, 255},
		ToolbarBackground: color.RGBA{220, 220, 220, 255},
		TabBackground:     color.RGBA{220, 220, 220, 255},
		TabActive:         color.RGBA{200, 200, 200, 255},
		TabText:           color.RGBA{60, 60, 60, 255},
		TabTextActive:     color.RGBA{0, 0, 0, 255},
		PageBorder:        color.RGBA{150, 150, 150, 255},
		CheckerLight:      color.RGBA{220, 220, 220, 255},
		CheckerDark:       color.RGBA{192, 192, 192, 255},
		OverlayBorder:     color.RGBA{30, 110, 220, 255},
		OverlayHandle:     color.RGBA{30, 110, 220, 255},
		BannerBackground:  color.RGBA{40, 40, 40, 230},
		BannerText:        color.RGBA{255, 255, 255, 255},
	}
}
