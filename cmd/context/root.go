package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"context_cli/pkg/capture"
	"context_cli/pkg/config"
	"context_cli/pkg/locator"
	"context_cli/pkg/logging"
	"context_cli/pkg/version"

	"github.com/spf13/cobra"
)

// exitError carries a process exit code once the diagnostic has been
// printed.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func fail(err error) error { return &exitError{code: 1, err: err} }

// negativeCount matches pflag's complaint about a count like "-5".
var negativeCount = regexp.MustCompile(`^unknown shorthand flag: ['"]\d['"] in (-\d\S*)$`)

// logFinder resolves a transcript path for the current terminal.
type logFinder interface {
	Locate(hint string, useOriginal bool) (string, error)
}

// app holds the process-level collaborators so tests can replace them.
type app struct {
	getenv     func(string) string
	newLocator func(dir string) logFinder

	environment bool
	all         bool
	original    bool
	debug       bool
	configPath  string
	logDir      string

	cfg config.Config
}

func newApp() *app {
	return &app{
		getenv:     os.Getenv,
		newLocator: func(dir string) logFinder { return locator.New(dir) },
	}
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context [count]",
		Short: "Show recent commands and output from this terminal's session log",
		Long: `context prints the last commands run in the current terminal together
with their output, read from the session log written by the Terminator
auto-logger.

count is a positive integer or "all" (default 1).

Environment:
  TERMINAL_LOG_FILE   Explicit log file to read instead of searching`,
		Example: `  context            # last command
  context 5          # last five commands
  context -a         # every command in the session
  eval "$(context -e)"`,
		Args:              cobra.MaximumNArgs(1),
		Version:           version.Summary(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE:              a.run,
	}

	cmd.SetVersionTemplate("context version {{.Version}}\n" + version.Details() + "\n")
	cmd.SetFlagErrorFunc(a.flagError)

	flags := cmd.Flags()
	flags.BoolVarP(&a.environment, "environment", "e", false, "Print an export line for the sanitized log path")
	flags.BoolVarP(&a.all, "all", "a", false, "Show every command (same as count=all)")
	flags.BoolVar(&a.original, "original", false, "Read the original (unsanitized) log")
	flags.BoolVar(&a.debug, "debug", false, "Write debug diagnostics to stderr and the tool's own log")
	flags.StringVar(&a.configPath, "config", "", "Config file (default ~/.context_cli/config.json)")
	flags.StringVar(&a.logDir, "log-dir", "", "Directory holding terminal logs (default $TMPDIR/terminator_logs)")

	return cmd
}

// setup loads configuration and logging. Neither failure stops the run.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	path := a.configPath
	if path == "" {
		path = config.GetConfigPath()
	}

	cfg, err := config.Load(path)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: ignoring config %s: %v\n", path, err)
		cfg = config.Default()
	}
	if a.debug {
		cfg.LogLevel = "debug"
		cfg.LogToStderr = true
	}
	if a.logDir != "" {
		cfg.LogDir = a.logDir
	}
	a.cfg = cfg

	logging.Init(cfg)
	slog.Debug("context started", "version", version.Summary(), "config", path, "log_dir", cfg.LogDir)
	return nil
}

func (a *app) run(cmd *cobra.Command, args []string) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	hint := a.getenv(a.cfg.EnvVar)
	finder := a.newLocator(a.cfg.LogDir)

	if a.environment {
		path, err := finder.Locate(hint, false)
		if err != nil {
			return a.notFound(stderr, err)
		}
		fmt.Fprintf(stdout, "export %s=%s\n", a.cfg.EnvVar, shellQuote(path))
		return nil
	}

	count, err := a.count(args)
	if err != nil {
		return invalidCount(cmd, args[0], err)
	}

	path, err := finder.Locate(hint, a.original)
	if err != nil {
		return a.notFound(stderr, err)
	}
	slog.Debug("reading transcript", "path", path, "count", count, "original", a.original)

	text, err := capture.Segment(path, count)
	if err != nil {
		slog.Error("transcript read failed", "path", path, "error", err)
		fmt.Fprintf(stderr, "Error reading log file: %v\n", err)
		return fail(err)
	}

	fmt.Fprintln(stdout, text)
	return nil
}

func (a *app) count(args []string) (int, error) {
	if a.all {
		return capture.AllBlocks, nil
	}
	if len(args) == 0 {
		return a.cfg.DefaultCount, nil
	}
	return capture.ParseCount(args[0])
}

func (a *app) notFound(stderr io.Writer, err error) error {
	if !errors.Is(err, locator.ErrNotFound) {
		slog.Error("log lookup failed", "error", err)
	}
	variant := "sanitized"
	if a.original && !a.environment {
		variant = "original"
	}
	slog.Debug("no terminal log found", "variant", variant, "log_dir", a.cfg.LogDir)
	fmt.Fprintf(stderr, "Error: Could not find the %s log file for this terminal session.\n", variant)
	fmt.Fprintf(stderr, "Set %s or make sure terminal logging is enabled.\n", a.cfg.EnvVar)
	return fail(err)
}

// flagError sends negative counts down the invalid-count path; pflag
// would otherwise read them as shorthand flags.
func (a *app) flagError(cmd *cobra.Command, err error) error {
	if m := negativeCount.FindStringSubmatch(err.Error()); m != nil {
		return invalidCount(cmd, m[1], fmt.Errorf("%w: %q must be a positive integer or 'all'", capture.ErrInvalidCount, m[1]))
	}
	return err
}

func invalidCount(cmd *cobra.Command, arg string, err error) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: Invalid count '%s'. Use a positive integer or 'all'.\n", arg)
	_ = cmd.Help()
	return fail(err)
}

// shellQuote wraps s in single quotes for eval.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
