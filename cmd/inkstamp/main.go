package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/example/inkstamp/internal/config"
	"github.com/example/inkstamp/internal/notify"
	"github.com/example/inkstamp/internal/theme"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs             *flag.FlagSet
	program        string
	notifier       *notify.Notifier
	config         *config.Config
	exportAlerts   bool
	uploadAlerts   bool
	completeAlerts bool
	themeName      string
	optimize       bool
	activeTheme    *theme.Theme
}

func (r *root) Program() string {
	return r.program
}

func (r *root) subcommand(name string) *root {
	program := strings.TrimSpace(strings.Join([]string{r.program, name}, " "))
	return &root{
		program:        program,
		notifier:       r.notifier,
		config:         r.config,
		exportAlerts:   r.exportAlerts,
		uploadAlerts:   r.uploadAlerts,
		completeAlerts: r.completeAlerts,
		themeName:      r.themeName,
		optimize:       r.optimize,
		activeTheme:    r.activeTheme,
	}
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot() *root {
	prefs := notify.LoadPreferences()
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}

	r := &root{
		fs:       flag.NewFlagSet("inkstamp", flag.ExitOnError),
		program:  "inkstamp",
		notifier: notify.New(prefs),
		config:   cfg,
	}
	r.fs.BoolVar(&r.exportAlerts, "notify-export", cfg.Notify.Export, "show a desktop notification after exporting a signed document")
	r.fs.BoolVar(&r.uploadAlerts, "notify-upload", cfg.Notify.Upload, "show a desktop notification after uploading a document")
	r.fs.BoolVar(&r.completeAlerts, "notify-complete", cfg.Notify.Complete, "show a desktop notification when an envelope completes")
	r.fs.BoolVar(&r.optimize, "optimize", cfg.Optimize, "run exported documents through the PDF optimizer")

	// Precedence: CLI > Env > Config > Default
	// We set the default value for the flag to "", and handle fallback logic in Run if it remains empty.
	r.fs.StringVar(&r.themeName, "theme", "", "color theme to use (light, dark)")
	r.fs.Usage = usageFunc(r)
	return r
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if r.notifier != nil {
		r.notifier.Enable(notify.EventExport, r.exportAlerts)
		r.notifier.Enable(notify.EventUpload, r.uploadAlerts)
		r.notifier.Enable(notify.EventComplete, r.completeAlerts)
	}

	// Load theme if specified via CLI, Env, or Config
	themeName := r.themeName
	if themeName == "" {
		themeName = os.Getenv("INKSTAMP_THEME")
	}
	if themeName == "" {
		themeName = r.config.Theme
	}

	var t *theme.Theme
	// 1. Check loaded themes from Config
	if cfgTheme, ok := r.config.Themes[themeName]; ok {
		t = cfgTheme
	} else {
		// 2. Fallback to standard theme loader (File / Embedded / System)
		loader := theme.NewLoader()
		var loadErr error
		t, loadErr = loader.Load(themeName)
		if loadErr != nil {
			if themeName != "" && themeName != "default" {
				fmt.Fprintf(os.Stderr, "warning: failed to load theme '%s': %v. using default.\n", themeName, loadErr)
			}
			t = theme.Default()
		}
	}
	r.activeTheme = t

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "sign":
		cmd, err = parseSignCmd(subArgs, r)
	case "view":
		cmd, err = parseViewCmd(subArgs, r)
	case "pages":
		cmd, err = parsePagesCmd(subArgs, r)
	case "envelope":
		cmd, err = parseEnvelopeCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "version":
		cmd = &versionCmd{r: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	if runErr := cmd.Run(); runErr != nil {
		return runErr
	}
	return nil
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
		} else {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}

func (r *root) notifyExport(path string) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Export(path)
}

func (r *root) notifyUpload(url string) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Upload(url)
}

func (r *root) notifyComplete(envelopeID string) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Complete(envelopeID)
}
