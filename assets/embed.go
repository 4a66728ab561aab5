package assets

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
)

// Embedded placeholder stamp images for Inkstamp.
//
//go:embed placeholders/*.png
var embeddedPlaceholders embed.FS

var (
	loadOnce sync.Once
	loadErr  error

	placeholderImages = map[string]image.Image{}
	placeholderData   = map[string][]byte{}
)

func loadPlaceholders() {
	entries, err := fs.ReadDir(embeddedPlaceholders, "placeholders")
	if err != nil {
		loadErr = err
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".png") {
			continue
		}
		// embed paths use forward slashes on every platform.
		data, err := embeddedPlaceholders.ReadFile(path.Join("placeholders", name))
		if err != nil {
			loadErr = err
			return
		}
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			loadErr = err
			return
		}
		key := strings.TrimSuffix(name, ".png")
		placeholderImages[key] = img
		placeholderData[key] = append([]byte(nil), data...)
	}
}

func ensurePlaceholders() error {
	loadOnce.Do(loadPlaceholders)
	return loadErr
}

// PlaceholderImage returns the decoded placeholder image for a stamp kind.
func PlaceholderImage(kind string) (image.Image, error) {
	if err := ensurePlaceholders(); err != nil {
		return nil, err
	}
	img, ok := placeholderImages[kind]
	if !ok {
		return nil, fmt.Errorf("placeholder %q not embedded", kind)
	}
	return img, nil
}

// PlaceholderPNG returns a copy of the raw PNG bytes for a stamp kind.
func PlaceholderPNG(kind string) ([]byte, error) {
	if err := ensurePlaceholders(); err != nil {
		return nil, err
	}
	data, ok := placeholderData[kind]
	if !ok {
		return nil, fmt.Errorf("placeholder %q not embedded", kind)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// PlaceholderKinds lists the stamp kinds embedded in the binary.
func PlaceholderKinds() []string {
	if err := ensurePlaceholders(); err != nil {
		return nil
	}
	kinds := make([]string, 0, len(placeholderImages))
	for kind := range placeholderImages {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}
