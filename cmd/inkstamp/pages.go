package main

import (
	"flag"
	"fmt"

	"github.com/example/inkstamp/internal/export"
)

type pagesCmd struct {
	*root
	fs       *flag.FlagSet
	file     string
	viewport float64
}

func (p *pagesCmd) FlagSet() *flag.FlagSet { return p.fs }

func parsePagesCmd(args []string, r *root) (*pagesCmd, error) {
	fs := flag.NewFlagSet("pages", flag.ExitOnError)
	cmd := &pagesCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	fs.StringVar(&cmd.file, "file", "", "path to the PDF to inspect")
	fs.Float64Var(&cmd.viewport, "viewport", 1200, "viewport width in pixels used for the scale report")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cmd.file == "" {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (p *pagesCmd) Run() error {
	data, err := readFileFn(p.file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", p.file, err)
	}
	geoms, err := export.PageGeometries(data)
	if err != nil {
		return fmt.Errorf("failed to read page geometry: %w", err)
	}
	policy := p.root.config.ScalePolicy()
	scale := policy.RenderScale(p.viewport)
	fmt.Printf("%s: %d pages, render scale %.3f at %.0fpx viewport\n", p.file, len(geoms), scale, p.viewport)
	for _, g := range geoms {
		fmt.Printf("  page %d: %.2f x %.2f pt -> %.0f x %.0f px\n",
			g.PageIndex+1, g.NativeWidth, g.NativeHeight,
			g.NativeWidth*scale, g.NativeHeight*scale)
	}
	return nil
}
