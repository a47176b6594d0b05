package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/bfi/internal/engine"
	"github.com/roach88/bfi/internal/ioport"
	"github.com/roach88/bfi/internal/ir"
	"github.com/roach88/bfi/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	EngineFlags

	Inline    string
	MaxSource int
	Truncate  bool
	StdinFile string
	Database  string
	Dump      bool

	// IDs allows overriding the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDs engine.RunIDGenerator
}

// RunSummary is the JSON payload of the run command.
type RunSummary struct {
	RunID     string `json:"run_id,omitempty"`
	ProgramID string `json:"program_id"`
	Status    string `json:"status"`
	Steps     int    `json:"steps"`
	Pointer   int    `json:"pointer"`
	Cell      int    `json:"cell"`
	Output    []int  `json:"output"`
	Text      string `json:"text"`
	Tape      []int  `json:"tape,omitempty"`
	Truncated bool   `json:"truncated,omitempty"`
	Dropped   int    `json:"dropped,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Execute a program",
		Long: `Execute a Brainfuck program from a file, from stdin ('-') or inline (-e).

Program output goes to stdout and program input is read from stdin, or from
--stdin-file. A program read from stdin that uses ',' needs --stdin-file.
In json format the rendered output is returned in the summary
object instead of being printed.

Exit codes:
  0 - Program halted
  1 - Program faulted (pointer out of bounds, step limit, I/O error)
  2 - Command error (unreadable file, unmatched bracket, truncated program, bad settings)

Examples:
  bfi run hello.b
  bfi run -e '++++++++[>++++++++<-]>+.'
  bfi run --input decimal --output decimal add.b
  bfi run --max-steps 100000 --dump loop.b
  bfi run --db ./bfi.db --format json hello.b`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProgram(opts, cmd, args)
		},
	}

	opts.EngineFlags.register(cmd)
	cmd.Flags().StringVarP(&opts.Inline, "expr", "e", "", "program text to run")
	cmd.Flags().IntVar(&opts.MaxSource, "max-source", 0, "maximum cleaned program length (0 = unlimited)")
	cmd.Flags().BoolVar(&opts.Truncate, "truncate", false, "run a program cut by --max-source")
	cmd.Flags().StringVar(&opts.StdinFile, "stdin-file", "", "read program input from this file")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")
	cmd.Flags().BoolVar(&opts.Dump, "dump", false, "print the tape and pointer after the run")

	return cmd
}

func runProgram(opts *RunOptions, cmd *cobra.Command, args []string) error {
	f := newFormatter(opts.RootOptions, cmd)
	logger := opts.Logger()

	ref, err := sourceRef(cmd, args, "expr")
	if err != nil {
		return f.Report(err, nil)
	}
	exec, err := resolveExecution(opts.RootOptions, &opts.EngineFlags, cmd)
	if err != nil {
		return f.Fail(ExitCommandError, "invalid settings", err, nil)
	}
	if cmd.Flags().Changed("max-source") {
		exec.Config.Source.MaxLength = opts.MaxSource
	}
	if cmd.Flags().Changed("truncate") {
		exec.Config.Source.Truncate = opts.Truncate
	}

	loaded, err := loadProgram(cmd, ref, exec.Config.Source.MaxLength, exec.Config.Source.Truncate)
	if err != nil {
		return f.Report(err, loaded.Clean)
	}
	if loaded.Clean.Truncated {
		logger.Warn("program truncated", "kept", len(loaded.Clean.Code), "dropped", loaded.Clean.Dropped)
	}

	// A program read from stdin has already consumed it.
	if ref.File == stdinName && opts.StdinFile == "" && strings.IndexByte(loaded.Program.Code, byte(ir.OpInput)) >= 0 {
		return f.Report(NewExitError(ExitCommandError, "program from stdin reads input; give the input with --stdin-file"), nil)
	}

	stdin := cmd.InOrStdin()
	if opts.StdinFile != "" {
		file, err := os.Open(opts.StdinFile)
		if err != nil {
			return f.Fail(ExitCommandError, "failed to open input file", err, nil)
		}
		defer file.Close()
		stdin = file
	}

	session, err := engine.NewSession(exec.Engine, engine.WithLogger(logger))
	if err != nil {
		return f.Fail(ExitCommandError, "invalid settings", err, nil)
	}

	// JSON mode keeps the rendered text for the summary.
	var (
		text   strings.Builder
		sink   io.Writer = &text
		stdout *bufio.Writer
	)
	if opts.Format != "json" {
		stdout = bufio.NewWriter(cmd.OutOrStdout())
		sink = stdout
	}

	var values []int
	rendered := exec.Output.NewOutput(sink, ioport.OutputOptions{Separator: exec.Separator})
	out := engine.OutputFunc(func(v int) error {
		values = append(values, v)
		return rendered.Write(v)
	})
	in := exec.Input.NewInput(ioport.NewStreamSource(stdin), ioport.InputOptions{EOF: exec.EOF})

	logger.Debug("run starting",
		"program", ref.Name(),
		"program_id", loaded.Program.ID,
		"instructions", loaded.Program.Len(),
		"tape_size", exec.Engine.TapeSize,
		"cell_bits", exec.Engine.CellBits,
		"bounds", exec.Engine.Bounds)

	runErr := session.Process(loaded.Program.Code, out, in)
	if stdout != nil {
		if err := stdout.Flush(); err != nil && runErr == nil {
			runErr = fmt.Errorf("write output: %w", err)
		}
	}

	summary := RunSummary{
		ProgramID: loaded.Program.ID,
		Status:    store.StatusHalted,
		Steps:     session.Stats().Steps,
		Pointer:   session.Pointer(),
		Cell:      session.Cell(),
		Output:    values,
		Text:      text.String(),
		Truncated: loaded.Clean.Truncated,
		Dropped:   loaded.Clean.Dropped,
	}
	if summary.Output == nil {
		summary.Output = []int{}
	}
	if runErr != nil {
		summary.Status = store.StatusFaulted
	}
	if opts.Dump {
		summary.Tape = session.UsedTape()
	}

	if opts.Database != "" {
		id, err := recordRun(cmd.Context(), opts, session, exec, loaded.Program.Code, values, runErr)
		if err != nil {
			return f.Fail(ExitCommandError, "failed to record run", err, nil)
		}
		summary.RunID = id
	}

	if opts.Dump && opts.Format != "json" {
		w := f.GetErrWriter()
		cfg := session.Config()
		fmt.Fprintf(w, "cells: %d of %d, %d bits (max %d)\n", len(summary.Tape), session.Capacity(), cfg.CellBits, cfg.CellMax())
		fmt.Fprintf(w, "tape: %v\n", summary.Tape)
		fmt.Fprintf(w, "pointer: %d\n", summary.Pointer)
	}
	f.VerboseLog("steps=%d reads=%d writes=%d", summary.Steps, session.Stats().Reads, session.Stats().Writes)

	if runErr != nil {
		return f.Fail(ExitFailure, faultMessage(loaded.Program, summary, runErr), runErr, summary)
	}
	return f.Success(summary, "")
}

// recordRun writes the finished run to the history database and returns
// its ID.
func recordRun(ctx context.Context, opts *RunOptions, session *engine.Session, exec Execution, code string, values []int, runErr error) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return "", err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			opts.Logger().Error("error closing database", "error", closeErr)
		}
	}()

	ids := opts.IDs
	if ids == nil {
		ids = engine.UUIDv7Generator{}
	}
	run := store.NewRun(session, code, store.Outcome{
		ID:           ids.Generate(),
		Origin:       store.OriginRun,
		InputFormat:  exec.Input.Name,
		OutputFormat: exec.Output.Name,
		Output:       values,
		Err:          runErr,
	})
	if _, err := st.WriteRun(ctx, run); err != nil {
		return "", err
	}
	opts.Logger().Debug("run recorded", "id", run.ID, "db", opts.Database)
	return run.ID, nil
}

// faultMessage names the faulting instruction when the error records it,
// and the pointer and cell the run stopped at.
func faultMessage(prog ir.Program, summary RunSummary, runErr error) string {
	at := -1
	var oob *engine.OutOfBoundsError
	var steps *engine.StepsExceededError
	switch {
	case errors.As(runErr, &oob):
		at = oob.Instruction
	case errors.As(runErr, &steps):
		at = steps.Instruction
	}

	msg := "program faulted"
	if at >= 0 && at < prog.Len() {
		msg = fmt.Sprintf("program faulted at %s instruction %d", prog.At(at).Name(), at)
	}
	return fmt.Sprintf("%s (pointer %d, cell %d)", msg, summary.Pointer, summary.Cell)
}
