package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/bfi/internal/engine"
	"github.com/roach88/bfi/internal/ioport"
	"github.com/roach88/bfi/internal/logs"
	"github.com/roach88/bfi/internal/repl"
	"github.com/roach88/bfi/internal/store"
)

// REPLOptions holds flags for the repl command.
type REPLOptions struct {
	*RootOptions
	EngineFlags

	Prompt      string
	HistoryFile string
	Database    string
}

// NewREPLCommand creates the repl command.
func NewREPLCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &REPLOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive shell",
		Long: `Start an interactive shell on one persistent tape.

Each line is a shell command or program text. The tape and pointer carry over
between lines; a fault is reported and the tape is kept. Type help for the
command list and q to leave.

On a terminal the shell has line editing and history. Otherwise lines are
read from stdin without prompts.

Examples:
  bfi repl
  bfi repl --output decimal --tape-size 100
  bfi repl --db ./bfi.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(opts, cmd)
		},
	}

	opts.EngineFlags.register(cmd)
	cmd.Flags().StringVar(&opts.Prompt, "prompt", repl.DefaultPrompt, "command prompt")
	cmd.Flags().StringVar(&opts.HistoryFile, "history-file", "", "line history file")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record every program line in this SQLite database")

	return cmd
}

func runREPL(opts *REPLOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	logger := opts.Logger()

	exec, err := resolveExecution(opts.RootOptions, &opts.EngineFlags, cmd)
	if err != nil {
		return f.Fail(ExitCommandError, "invalid settings", err, nil)
	}
	prompt := exec.Config.REPL.Prompt
	if cmd.Flags().Changed("prompt") {
		prompt = opts.Prompt
	}
	historyFile := exec.Config.REPL.HistoryFile
	if cmd.Flags().Changed("history-file") {
		historyFile = opts.HistoryFile
	}

	session, err := engine.NewSession(exec.Engine, engine.WithLogger(logger))
	if err != nil {
		return f.Fail(ExitCommandError, "invalid settings", err, nil)
	}

	var lines ioport.LineReader
	if cmd.InOrStdin() == os.Stdin && logs.IsTerminal(os.Stdin) {
		rl, err := repl.NewReadline(prompt, historyFile)
		if err != nil {
			return f.Fail(ExitCommandError, "failed to open terminal", err, nil)
		}
		defer rl.Close()
		lines = rl
		fmt.Fprintln(cmd.OutOrStdout(), "bfi interactive shell. Type help for commands, q to quit.")
	} else {
		lines = repl.NewScannerReader(cmd.InOrStdin(), nil)
	}

	shellOpts := []repl.Option{
		repl.WithPrompt(prompt),
		repl.WithEOF(exec.EOF),
		repl.WithSeparator(exec.Separator),
		repl.WithLogger(logger),
	}
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return f.Fail(ExitCommandError, "failed to open database", err, nil)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
		shellOpts = append(shellOpts, repl.WithHistory(st, engine.UUIDv7Generator{}))
	}

	sh := repl.New(session, lines, cmd.OutOrStdout(), shellOpts...)
	if err := sh.SetInput(exec.Input.Name); err != nil {
		return f.Fail(ExitCommandError, "invalid settings", err, nil)
	}
	if err := sh.SetOutput(exec.Output.Name); err != nil {
		return f.Fail(ExitCommandError, "invalid settings", err, nil)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := sh.Run(ctx); err != nil {
		return f.Fail(ExitFailure, "shell error", err, nil)
	}
	return nil
}
