package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/bfi/internal/engine"
	"github.com/roach88/bfi/internal/ioport"
	"github.com/roach88/bfi/internal/ir"
	"github.com/roach88/bfi/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - specific run only
}

// ReplayRunResult holds the replay result for a single run.
type ReplayRunResult struct {
	RunID         string   `json:"run_id"`
	ProgramID     string   `json:"program_id"`
	Skipped       bool     `json:"skipped,omitempty"`
	Deterministic bool     `json:"deterministic"`
	Differences   []string `json:"differences,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs             []ReplayRunResult `json:"runs"`
	TotalRuns        int               `json:"total_runs"`
	Skipped          int               `json:"skipped"`
	AllDeterministic bool              `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-execute recorded runs and verify determinism",
		Long: `Re-execute recorded runs with their recorded settings and compare the
outcome with the record: status, error code, steps, pointer, used tape and
output digest.

Input is not recorded, so runs of programs that read input are skipped, as
are shell runs, which start from the tape left by earlier lines.

Exit codes:
  0 - All replayed runs matched
  1 - At least one run diverged
  2 - Command error (database not found, unknown run, etc.)

Examples:
  bfi replay --db ./bfi.db
  bfi replay --db ./bfi.db --run 0190f7c2-...
  bfi replay --db ./bfi.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "replay a specific run only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Open database
	st, err := openExistingStore(opts.Database)
	if err != nil {
		return f.Fail(ExitCommandError, "failed to open database", err, nil)
	}
	defer st.Close()

	// Get runs to process
	var runs []store.Run
	if opts.RunID != "" {
		run, err := st.ReadRun(ctx, opts.RunID)
		if err != nil {
			return f.Fail(ExitCommandError, "failed to read run", err, nil)
		}
		runs = []store.Run{run}
	} else {
		runs, err = st.ListRuns(ctx, store.ListOptions{})
		if err != nil {
			return f.Fail(ExitCommandError, "failed to list runs", err, nil)
		}
	}

	result := ReplayResult{
		Runs:             make([]ReplayRunResult, 0, len(runs)),
		TotalRuns:        len(runs),
		AllDeterministic: true,
	}
	if len(runs) == 0 {
		if opts.Format == "json" {
			return f.Success(result, "")
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No runs found in database.")
		return nil
	}

	for _, run := range runs {
		runResult, err := replayRun(run)
		if err != nil {
			return f.Fail(ExitCommandError, fmt.Sprintf("failed to replay run %s", run.ID), err, nil)
		}
		opts.Logger().Debug("run replayed", "id", run.ID, "deterministic", runResult.Deterministic, "skipped", runResult.Skipped)

		result.Runs = append(result.Runs, runResult)
		if runResult.Skipped {
			result.Skipped++
		}
		if !runResult.Deterministic {
			result.AllDeterministic = false
		}
	}

	// Output results
	if opts.Format == "json" {
		return outputReplayJSON(f, result)
	}
	return outputReplayText(cmd, result, opts.Verbose)
}

// replayRun executes a recorded run again on a fresh session.
func replayRun(run store.Run) (ReplayRunResult, error) {
	res := ReplayRunResult{RunID: run.ID, ProgramID: run.ProgramID, Deterministic: true}
	// Shell runs start from the tape left by earlier lines.
	if run.Origin == store.OriginREPL || strings.IndexByte(run.Code, byte(ir.OpInput)) >= 0 {
		res.Skipped = true
		return res, nil
	}

	bounds, err := engine.ParseBoundsPolicy(run.Bounds)
	if err != nil {
		return res, err
	}
	session, err := engine.NewSession(engine.Config{
		TapeSize: run.TapeSize,
		CellBits: run.CellBits,
		Bounds:   bounds,
		MaxSteps: run.MaxSteps,
	})
	if err != nil {
		return res, err
	}

	// Rendering into io.Discard reproduces encoding faults of the recorded
	// output preset.
	var values []int
	var rendered engine.Output
	if preset, err := ioport.Lookup(run.OutputFormat); err == nil {
		rendered = preset.NewOutput(io.Discard, ioport.OutputOptions{})
	}
	out := engine.OutputFunc(func(v int) error {
		values = append(values, v)
		if rendered == nil {
			return nil
		}
		return rendered.Write(v)
	})
	replayErr := session.Process(run.Code, out, nil)
	replayed := store.NewRun(session, run.Code, store.Outcome{
		ID:     run.ID,
		Output: values,
		Err:    replayErr,
	})
	digest, err := ir.OutputDigest(replayed.Output)
	if err != nil {
		return res, err
	}

	diff := func(field string, recorded, replayed any) {
		res.Differences = append(res.Differences, fmt.Sprintf("%s: recorded %v, replayed %v", field, recorded, replayed))
	}
	if run.ProgramID != replayed.ProgramID {
		diff("program_id", run.ProgramID, replayed.ProgramID)
	}
	if run.Status != replayed.Status {
		diff("status", run.Status, replayed.Status)
	}
	if run.ErrorCode != replayed.ErrorCode {
		diff("error_code", run.ErrorCode, replayed.ErrorCode)
	}
	if run.Steps != replayed.Steps {
		diff("steps", run.Steps, replayed.Steps)
	}
	if run.Pointer != replayed.Pointer {
		diff("pointer", run.Pointer, replayed.Pointer)
	}
	if !slices.Equal(run.Tape, replayed.Tape) {
		diff("tape", run.Tape, replayed.Tape)
	}
	if run.OutputDigest != digest {
		diff("output_digest", run.OutputDigest, digest)
	}
	res.Deterministic = len(res.Differences) == 0
	return res, nil
}

// requireFile fails when path does not name an existing file.
func requireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("database not found: %s", path)
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("database path is a directory: %s", path)
	}
	return nil
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(f *OutputFormatter, result ReplayResult) error {
	if result.AllDeterministic {
		return f.Success(result, "")
	}

	response := CLIResponse{
		Status: "error",
		Data:   result,
		Error: &CLIError{
			Code:    "E_NONDETERMINISTIC",
			Message: "replay diverged from the recorded run",
		},
	}
	if err := f.encode(response); err != nil {
		return err
	}

	exitErr := NewExitError(ExitFailure, "determinism verification failed")
	exitErr.reported = true
	return exitErr
}

// outputReplayText outputs the replay result as text.
func outputReplayText(cmd *cobra.Command, result ReplayResult, verbose bool) error {
	w := cmd.OutOrStdout()

	for _, r := range result.Runs {
		switch {
		case r.Skipped:
			if verbose {
				fmt.Fprintf(w, "- %s (skipped)\n", r.RunID)
			}
		case r.Deterministic:
			fmt.Fprintf(w, "✓ %s\n", r.RunID)
		default:
			fmt.Fprintf(w, "✗ %s\n", r.RunID)
			for _, d := range r.Differences {
				fmt.Fprintf(w, "  %s\n", d)
			}
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Replayed %d run(s), %d skipped\n", result.TotalRuns-result.Skipped, result.Skipped)

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	fmt.Fprintln(w, "✓ All runs deterministic")
	return nil
}
