package export

import (
	"errors"
	"testing"

	"github.com/example/inkstamp/internal/annotation"
	"github.com/example/inkstamp/internal/coords"
)

var letterish = coords.PageGeometry{
	PageIndex:        0,
	NativeWidth:      595,
	NativeHeight:     842,
	RenderScale:      1.5,
	RenderedWidthPx:  893,
	RenderedHeightPx: 1263,
}

func geomFor(pages map[int]coords.PageGeometry) GeometryFunc {
	return func(pageIndex int) (coords.PageGeometry, bool) {
		g, ok := pages[pageIndex]
		return g, ok
	}
}

func TestBuildPlacementsFlipsY(t *testing.T) {
	reg := annotation.NewRegistry(1)
	a, err := reg.Add(annotation.KindSignature, 0, letterish, annotation.Image{Data: []byte{1}, MIME: "image/png"})
	if err != nil {
		t.Fatal(err)
	}
	a.X, a.Y = 100, 50
	a.Width, a.Height = 100, 50

	placements, skipped := BuildPlacements(reg, geomFor(map[int]coords.PageGeometry{0: letterish}))
	if len(skipped) != 0 {
		t.Fatalf("unexpected skips: %v", skipped)
	}
	if len(placements) != 1 {
		t.Fatalf("got %d placements", len(placements))
	}
	p := placements[0]
	// 842 - 50 - 50: bottom-left origin.
	if p.Y != 742 {
		t.Errorf("flipped Y = %v, want 742", p.Y)
	}
	if p.X != 100 || p.Width != 100 || p.Height != 50 {
		t.Errorf("placement geometry %+v", p)
	}
	if p.PageHeight != 842 {
		t.Errorf("page height = %v", p.PageHeight)
	}
}

func TestBuildPlacementsSkipsMissingGeometry(t *testing.T) {
	reg := annotation.NewRegistry(2)
	if _, err := reg.Add(annotation.KindSignature, 0, letterish, annotation.Image{}); err != nil {
		t.Fatal(err)
	}
	second := letterish
	second.PageIndex = 1
	if _, err := reg.Add(annotation.KindInitial, 1, second, annotation.Image{}); err != nil {
		t.Fatal(err)
	}

	// Only page 0 has geometry at export time.
	placements, skipped := BuildPlacements(reg, geomFor(map[int]coords.PageGeometry{0: letterish}))
	if len(placements) != 1 {
		t.Fatalf("got %d placements, want 1", len(placements))
	}
	if len(skipped) != 1 {
		t.Fatalf("got %d skips, want 1", len(skipped))
	}
	var pe *PlacementError
	if !errors.As(skipped[0], &pe) {
		t.Fatalf("skip error type %T", skipped[0])
	}
	if pe.AnnotationID == placements[0].AnnotationID {
		t.Error("skipped the placed annotation")
	}
}

func TestExporterRunsCompletionHook(t *testing.T) {
	orig := flattenFn
	defer func() { flattenFn = orig }()

	embedErr := &PlacementError{AnnotationID: "sig-x", Err: errors.New("bad image")}
	flattenFn = func(original []byte, placements []Placement) ([]byte, []error, error) {
		return []byte("flat"), []error{embedErr}, nil
	}

	var completed []byte
	e := &Exporter{OnComplete: func(data []byte) error {
		completed = append([]byte(nil), data...)
		return nil
	}}

	reg := annotation.NewRegistry(1)
	data, skipped, err := e.Export([]byte("orig"), reg, geomFor(nil))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "flat" {
		t.Errorf("export output %q", data)
	}
	if string(completed) != "flat" {
		t.Errorf("completion hook saw %q", completed)
	}
	if len(skipped) != 1 || skipped[0] != error(embedErr) {
		t.Errorf("skipped = %v", skipped)
	}
}

func TestExporterHookFailureSurfaces(t *testing.T) {
	orig := flattenFn
	defer func() { flattenFn = orig }()
	flattenFn = func([]byte, []Placement) ([]byte, []error, error) {
		return []byte("flat"), nil, nil
	}

	hookErr := errors.New("disk full")
	e := &Exporter{OnComplete: func([]byte) error { return hookErr }}
	data, _, err := e.Export(nil, annotation.NewRegistry(1), geomFor(nil))
	if !errors.Is(err, hookErr) {
		t.Fatalf("err = %v", err)
	}
	// The flattened document is still handed back so the caller can retry
	// persistence without re-rendering.
	if string(data) != "flat" {
		t.Errorf("data = %q", data)
	}
}
