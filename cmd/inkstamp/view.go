package main

import (
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/example/inkstamp/internal/export"
	"github.com/example/inkstamp/internal/render"
	"github.com/example/inkstamp/internal/viewer"
)

type viewCmd struct {
	*root
	fs     *flag.FlagSet
	file   string
	output string
}

func (v *viewCmd) FlagSet() *flag.FlagSet { return v.fs }

func parseViewCmd(args []string, r *root) (*viewCmd, error) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	cmd := &viewCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	fs.StringVar(&cmd.file, "file", "", "path to the PDF to open")
	fs.StringVar(&cmd.output, "output", "", "path for the signed PDF (default: <file>-signed.pdf)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cmd.file == "" {
		return nil, &UsageError{of: cmd}
	}
	if cmd.output == "" {
		ext := filepath.Ext(cmd.file)
		cmd.output = strings.TrimSuffix(cmd.file, ext) + "-signed" + ext
	}
	return cmd, nil
}

func (v *viewCmd) Run() error {
	doc, err := render.Open(v.file)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", v.file, err)
	}
	defer doc.Close()

	ui := viewer.New(
		viewer.WithDocument(doc),
		viewer.WithOutput(v.output),
		viewer.WithTheme(v.root.activeTheme),
		viewer.WithScalePolicy(v.root.config.ScalePolicy()),
		viewer.WithExporter(&export.Exporter{Optimize: v.root.optimize}),
		viewer.WithNotifier(v.root.notifier),
	)
	ui.Run()
	return nil
}
