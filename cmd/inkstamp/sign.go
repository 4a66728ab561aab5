package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/example/inkstamp/assets"
	"github.com/example/inkstamp/internal/annotation"
	"github.com/example/inkstamp/internal/coords"
	"github.com/example/inkstamp/internal/export"
)

// placementSpec is one parsed kind:page[:x:y[:w:h]] argument. Coordinates
// are PDF points with a top-left origin; missing coordinates center the
// stamp on the page.
type placementSpec struct {
	kind          annotation.Kind
	page          int
	x, y          float64
	hasPos        bool
	width, height float64
	hasSize       bool
}

type signCmd struct {
	*root
	fs        *flag.FlagSet
	file      string
	output    string
	imagePath string
	specs     []placementSpec
}

func (s *signCmd) FlagSet() *flag.FlagSet { return s.fs }

func parseSignCmd(args []string, r *root) (*signCmd, error) {
	fs := flag.NewFlagSet("sign", flag.ExitOnError)
	cmd := &signCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	fs.StringVar(&cmd.file, "file", "", "path to the PDF to sign")
	fs.StringVar(&cmd.output, "output", "", "path for the signed PDF")
	fs.StringVar(&cmd.imagePath, "image", "", "image file to stamp (default: embedded placeholder)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cmd.file == "" || cmd.output == "" || fs.NArg() < 1 {
		return nil, &UsageError{of: cmd}
	}
	for _, arg := range fs.Args() {
		spec, err := parsePlacementSpec(arg)
		if err != nil {
			return nil, err
		}
		cmd.specs = append(cmd.specs, spec)
	}
	return cmd, nil
}

func parsePlacementSpec(s string) (placementSpec, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 4 && len(parts) != 6 {
		return placementSpec{}, fmt.Errorf("placement %q: want kind:page[:x:y[:w:h]]", s)
	}
	var spec placementSpec
	switch annotation.Kind(parts[0]) {
	case annotation.KindSignature, annotation.KindInitial:
		spec.kind = annotation.Kind(parts[0])
	default:
		return placementSpec{}, fmt.Errorf("placement %q: unknown kind %q", s, parts[0])
	}
	page, err := strconv.Atoi(parts[1])
	if err != nil || page < 1 {
		return placementSpec{}, fmt.Errorf("placement %q: bad page number %q", s, parts[1])
	}
	spec.page = page - 1

	nums := make([]float64, 0, 4)
	for _, p := range parts[2:] {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return placementSpec{}, fmt.Errorf("placement %q: bad coordinate %q", s, p)
		}
		nums = append(nums, f)
	}
	if len(nums) >= 2 {
		spec.x, spec.y = nums[0], nums[1]
		spec.hasPos = true
	}
	if len(nums) == 4 {
		spec.width, spec.height = nums[2], nums[3]
		spec.hasSize = true
	}
	return spec, nil
}

func (s *signCmd) stampImage(kind annotation.Kind) (annotation.Image, error) {
	if s.imagePath != "" {
		data, err := os.ReadFile(s.imagePath)
		if err != nil {
			return annotation.Image{}, fmt.Errorf("read stamp image: %w", err)
		}
		return annotation.NewImage(data), nil
	}
	data, err := assets.PlaceholderPNG(string(kind))
	if err != nil {
		return annotation.Image{}, err
	}
	return annotation.NewImage(data), nil
}

// applySpec overrides the centered default placement with the explicit
// coordinates from a placement argument. The same bounds rules the
// interactive gestures follow apply here, so an off-page spec lands
// clamped to the page instead of exporting invisible.
func applySpec(a *annotation.Annotation, g coords.PageGeometry, spec placementSpec) {
	if spec.hasSize {
		a.PlaceAt(g, spec.x, spec.y, spec.width, spec.height)
		return
	}
	if spec.hasPos {
		a.MoveTo(g, spec.x, spec.y)
	}
}

// readFileFn and writeFileFn are swapped out by tests.
var (
	readFileFn  = os.ReadFile
	writeFileFn = os.WriteFile
)

func (s *signCmd) Run() error {
	data, err := readFileFn(s.file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", s.file, err)
	}
	geoms, err := export.PageGeometries(data)
	if err != nil {
		return fmt.Errorf("failed to read page geometry: %w", err)
	}
	geomFor := func(pageIndex int) (coords.PageGeometry, bool) {
		if pageIndex < 0 || pageIndex >= len(geoms) {
			return coords.PageGeometry{}, false
		}
		return geoms[pageIndex], true
	}

	reg := annotation.NewRegistry(len(geoms))
	for _, spec := range s.specs {
		if spec.page < 0 || spec.page >= len(geoms) {
			return fmt.Errorf("page %d out of range: document has %d pages", spec.page+1, len(geoms))
		}
		img, err := s.stampImage(spec.kind)
		if err != nil {
			return err
		}
		a, err := reg.Add(spec.kind, spec.page, geoms[spec.page], img)
		if err != nil {
			return fmt.Errorf("failed to place %s: %w", spec.kind, err)
		}
		applySpec(a, geoms[spec.page], spec)
	}

	exp := &export.Exporter{Optimize: s.root.optimize}
	out, skipped, err := exp.Export(data, reg, geomFor)
	for _, serr := range skipped {
		fmt.Fprintf(os.Stderr, "warning: %v\n", serr)
	}
	if err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}
	if err := writeFileFn(s.output, out, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.output, err)
	}
	fmt.Printf("signed %s -> %s (%d placements)\n", s.file, s.output, reg.Len())
	s.root.notifyExport(s.output)
	return nil
}
