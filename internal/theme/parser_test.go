package theme

import (
	"image/color"
	"strings"
	"testing"
)

func TestParseOverridesDefaults(t *testing.T) {
	in := strings.NewReader(`
Name: Test
OverlayBorder: #FF0000
BannerBackground: #00000080
# comment
Unknown: #123456
`)
	th, err := Parse(in)
	if err != nil {
		t.Fatal(err)
	}
	if th.Name != "Test" {
		t.Errorf("Name = %q", th.Name)
	}
	if th.OverlayBorder != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("OverlayBorder = %+v", th.OverlayBorder)
	}
	if th.BannerBackground != (color.RGBA{0, 0, 0, 128}) {
		t.Errorf("BannerBackground = %+v", th.BannerBackground)
	}
	// Untouched keys keep defaults.
	if th.CheckerDark != Default().CheckerDark {
		t.Errorf("CheckerDark = %+v", th.CheckerDark)
	}
}

func TestParseBadColor(t *testing.T) {
	if _, err := Parse(strings.NewReader("OverlayBorder: notacolor")); err == nil {
		t.Error("bad color accepted")
	}
}

func TestEmbeddedThemesLoad(t *testing.T) {
	l := NewLoader()
	for _, name := range []string{"light", "dark"} {
		th, err := l.Load(name)
		if err != nil {
			t.Fatalf("load %s: %v", name, err)
		}
		if th.Name == "" {
			t.Errorf("%s theme has no name", name)
		}
	}
}
