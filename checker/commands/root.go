package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/makeitchaccha/fluent-locale-checker/checker"
	"github.com/makeitchaccha/fluent-locale-checker/checker/check"
	"github.com/makeitchaccha/fluent-locale-checker/checker/report"
)

// UsageError is returned for command lines that cannot be parsed. It is
// raised before any file is touched.
type UsageError struct {
	err error
}

func (e *UsageError) Error() string { return e.err.Error() }

func (e *UsageError) Unwrap() error { return e.err }

type app struct {
	fs         afero.Fs
	v          *viper.Viper
	stdout     io.Writer
	stderr     io.Writer
	configPath string
	version    string
	status     int
}

// flag name -> config key
var flagBindings = map[string]string{
	"strict":         "check.strict",
	"recursive":      "check.recursive",
	"concurrency":    "check.concurrency",
	"default-locale": "check.default_locale",
	"check":          "check.only_check",
	"format":         "output.format",
	"log-level":      "log.level",
	"log-format":     "log.format",
}

func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fluent-locale-checker [root]",
		Short: "Check that every locale matches the structure of the reference locale",
		Long: `fluent-locale-checker compares the localization resources of every locale
directory under root (default "locales") with the reference locale (default en-US).

It reports missing files, missing entries and entries whose placeables,
attributes or selectors differ from the reference. Files are never modified.`,
		Version:       a.version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
				return &UsageError{err: err}
			}
			return nil
		},
		RunE: a.run,
	}
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{err: err}
	})

	flags := cmd.Flags()
	flags.Bool("check", false, "validation only; suppresses informational notes")
	flags.Bool("strict", false, "report entries missing from the reference as problems")
	flags.Bool("recursive", false, "descend into subdirectories of each locale")
	flags.Int("concurrency", 0, "maximum number of files and locales loaded at once")
	flags.String("default-locale", checker.DefaultLocale, "reference locale")
	flags.String("format", string(report.FormatText), "output format: text, json or toml")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")
	flags.String("log-format", "text", "log format: text or json")
	flags.Bool("no-color", false, "disable colored output")
	flags.StringVar(&a.configPath, "config", "", "path to a TOML config file")

	return cmd
}

func (a *app) bindFlags(flags *pflag.FlagSet) error {
	for name, key := range flagBindings {
		if err := a.v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	if noColor, _ := flags.GetBool("no-color"); noColor {
		a.v.Set("output.color", false)
	}
	return nil
}

func (a *app) run(cmd *cobra.Command, args []string) error {
	if err := a.bindFlags(cmd.Flags()); err != nil {
		return err
	}
	if len(args) == 1 {
		a.v.Set("root", args[0])
	}

	cfg, err := checker.LoadConfig(a.v, a.configPath)
	if err != nil {
		return err
	}
	setupLogger(cfg.Log, a.stderr)

	format, err := report.ParseFormat(cfg.Output.Format)
	if err != nil {
		return &UsageError{err: err}
	}

	slog.Info("Checking locales", "root", cfg.Root, "reference", cfg.Check.DefaultLocale, "strict", cfg.Check.Strict)
	rep, err := checker.NewRunner(*cfg, a.fs, checker.DefaultRegistry()).Run(cmd.Context())
	if err != nil {
		return err
	}

	reporter := report.New(format,
		report.WithColor(cfg.Output.Color),
		report.WithNotes(!cfg.Check.OnlyCheck),
	)
	if err := reporter.Write(a.stdout, rep); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	a.status = report.ExitStatus(rep)
	return nil
}

// Run executes the command line against fs and returns the process exit
// status.
func Run(ctx context.Context, fs afero.Fs, args []string, stdout, stderr io.Writer, version string) int {
	a := &app{
		fs:      fs,
		v:       checker.NewViper(),
		stdout:  stdout,
		stderr:  stderr,
		version: version,
	}
	cmd := newRootCommand(a)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return a.status
	}

	var usage *UsageError
	switch {
	case errors.As(err, &usage):
		fmt.Fprintf(stderr, "Error: %v\n\n%s", err, cmd.UsageString())
		return report.ExitSetup
	case errors.Is(err, check.ErrParserInvariantViolated):
		fmt.Fprintf(stderr, "Internal error: %v\n", err)
		return report.ExitInternal
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return report.ExitSetup
	}
}
