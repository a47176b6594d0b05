package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/bfi/internal/config"
	"github.com/roach88/bfi/internal/logs"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string
	LogFile    string

	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Settings returns the loaded configuration, reading ConfigFile on first
// use. Without a file the defaults apply.
func (o *RootOptions) Settings() (config.Config, error) {
	if o.cfg != nil {
		return *o.cfg, nil
	}
	cfg := config.Default()
	if o.ConfigFile != "" {
		loaded, err := config.Load(o.ConfigFile)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	o.cfg = &cfg
	return cfg, nil
}

// Logger returns the command logger, or slog.Default before setup.
func (o *RootOptions) Logger() *slog.Logger {
	if o.logger != nil {
		return o.logger
	}
	return slog.Default()
}

// setupLogging builds the logger from the config log section and the
// --verbose and --log-file flags.
func (o *RootOptions) setupLogging(cfg config.Config, stderr io.Writer) error {
	level, err := logs.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	if o.Verbose {
		level = slog.LevelDebug
	}

	logOpts := logs.Options{Level: level, Writer: stderr}
	path := o.LogFile
	if path == "" {
		path = cfg.Log.File
	}
	if path != "" {
		f, err := logs.OpenFile(path)
		if err != nil {
			return err
		}
		o.logCloser = f
		logOpts.File = f
	}

	o.logger = logs.New(logOpts)
	slog.SetDefault(o.logger)
	return nil
}

func (o *RootOptions) closeLog() error {
	if o.logCloser == nil {
		return nil
	}
	err := o.logCloser.Close()
	o.logCloser = nil
	return err
}

// NewRootCommand creates the root command for the bfi CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bfi",
		Short: "bfi - a Brainfuck interpreter",
		Long: `A Brainfuck interpreter with a bounded tape, pluggable I/O presets,
an interactive shell, run history and a scenario conformance harness.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			cfg, err := opts.Settings()
			if err != nil {
				return newFormatter(opts, cmd).Fail(ExitCommandError, "failed to load config", err, nil)
			}
			if err := opts.setupLogging(cfg, cmd.ErrOrStderr()); err != nil {
				return WrapExitError(ExitCommandError, "failed to set up logging", err)
			}
			opts.Logger().Debug("config loaded", "file", opts.ConfigFile)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.closeLog()
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (.yaml, .yml, .json or .toml)")
	cmd.PersistentFlags().StringVar(&opts.LogFile, "log-file", "", "append JSON log records to this file")

	// Add subcommands
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewCleanCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewREPLCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))

	return cmd
}

// Execute runs the root command with os.Args and returns the process exit
// code. Errors not already printed by a command go to stderr. Plain errors
// come from cobra's flag and argument parsing and count as command errors.
func Execute() int {
	opts := &RootOptions{}
	return executeRoot(newRootCommand(opts), opts)
}

// executeRoot runs cmd and maps its error to an exit code. cobra skips the
// post-run hook when a command fails, so the log file is closed here too.
func executeRoot(cmd *cobra.Command, opts *RootOptions) int {
	err := cmd.Execute()
	if closeErr := opts.closeLog(); closeErr != nil && err == nil {
		err = WrapExitError(ExitFailure, "failed to close log file", closeErr)
	}
	if err == nil {
		return ExitSuccess
	}
	if !IsReported(err) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		return ExitCommandError
	}
	return exitErr.Code
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
