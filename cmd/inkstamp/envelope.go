package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/inkstamp/internal/envelope"
)

type envelopeCmd struct {
	*root
	fs   *flag.FlagSet
	dir  string
	id   string
	name string
	file string
	op   string
	args []string
}

func (e *envelopeCmd) FlagSet() *flag.FlagSet { return e.fs }

func defaultEnvelopeDir(r *root) string {
	if r != nil && r.config != nil && r.config.Envelope.Dir != "" {
		return r.config.Envelope.Dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "inkstamp", "envelopes")
}

func parseEnvelopeCmd(args []string, r *root) (*envelopeCmd, error) {
	fs := flag.NewFlagSet("envelope", flag.ExitOnError)
	cmd := &envelopeCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	fs.StringVar(&cmd.dir, "dir", defaultEnvelopeDir(r), "envelope store directory")
	fs.StringVar(&cmd.id, "id", "", "envelope id")
	fs.StringVar(&cmd.name, "name", "", "envelope display name")
	fs.StringVar(&cmd.file, "file", "", "document name within the envelope")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() < 1 {
		return nil, &UsageError{of: cmd}
	}
	cmd.op = strings.ToLower(fs.Arg(0))
	cmd.args = fs.Args()[1:]
	return cmd, nil
}

func (e *envelopeCmd) Run() error {
	store, err := envelope.NewStore(e.dir)
	if err != nil {
		return err
	}
	switch e.op {
	case "create":
		return e.runCreate(store)
	case "list":
		return e.runList(store)
	case "show":
		return e.runShow(store)
	case "sign":
		return e.runSign(store)
	default:
		return &UsageError{of: e}
	}
}

func (e *envelopeCmd) runCreate(store *envelope.Store) error {
	if e.id == "" || len(e.args) == 0 {
		return &UsageError{of: e}
	}
	name := e.name
	if name == "" {
		name = e.id
	}
	env, err := store.Create(e.id, name, e.args)
	if err != nil {
		return err
	}
	fmt.Printf("created envelope %s with %d files\n", env.ID, len(env.Files))
	return nil
}

func (e *envelopeCmd) runList(store *envelope.Store) error {
	envs, err := store.List()
	if err != nil {
		return err
	}
	for _, env := range envs {
		fmt.Printf("%s\t%s\t%s\t%d/%d signed\n",
			env.ID, env.Name, env.Status, env.SignedCount(), len(env.Files))
	}
	return nil
}

func (e *envelopeCmd) runShow(store *envelope.Store) error {
	if e.id == "" {
		return &UsageError{of: e}
	}
	env, err := store.Get(e.id)
	if err != nil {
		return err
	}
	fmt.Printf("envelope %s (%s): %s\n", env.ID, env.Name, env.Status)
	for _, f := range env.Files {
		mark := " "
		if f.Signed {
			mark = "x"
		}
		line := fmt.Sprintf("  [%s] %s", mark, f.Name)
		if f.URL != "" {
			line += "  " + f.URL
		}
		fmt.Println(line)
	}
	return nil
}

// runSign records a signature on one envelope file. When the signed
// document exists next to the store it is uploaded first.
func (e *envelopeCmd) runSign(store *envelope.Store) error {
	if e.id == "" || e.file == "" {
		return &UsageError{of: e}
	}
	url := ""
	if len(e.args) == 1 {
		// Positional argument: path to the signed document to upload.
		data, err := readFileFn(e.args[0])
		if err != nil {
			return fmt.Errorf("failed to read signed document: %w", err)
		}
		uploadDir := e.root.config.Envelope.UploadDir
		if uploadDir == "" {
			uploadDir = filepath.Join(e.dir, "uploads")
		}
		up := envelope.DirUploader{Dir: uploadDir}
		urls, err := envelope.UploadAll(context.Background(), up, map[string][]byte{e.file: data})
		if err != nil {
			return err
		}
		url = urls[e.file]
		e.root.notifyUpload(url)
	}

	env, completed, err := store.MarkSigned(e.id, e.file, url)
	if err != nil {
		return err
	}
	fmt.Printf("marked %s signed in %s (%d/%d)\n", e.file, env.ID, env.SignedCount(), len(env.Files))
	if completed {
		fmt.Printf("envelope %s completed\n", env.ID)
		e.root.notifyComplete(env.ID)
	}
	return nil
}
