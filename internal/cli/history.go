package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/bfi/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database  string
	ProgramID string
	Limit     int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List or show recorded runs",
		Long: `List the runs recorded with --db, oldest first, or show one run in detail.

Examples:
  bfi history --db ./bfi.db
  bfi history --db ./bfi.db --limit 10
  bfi history --db ./bfi.db --program <program-id>
  bfi history --db ./bfi.db 0190f7c2-... --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd, args)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.ProgramID, "program", "", "only runs of this program ID")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "only the most recent N runs (0 = all)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command, args []string) error {
	f := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := openExistingStore(opts.Database)
	if err != nil {
		return f.Fail(ExitCommandError, "failed to open database", err, nil)
	}
	defer st.Close()

	if len(args) == 1 {
		run, err := st.ReadRun(ctx, args[0])
		if err != nil {
			if errors.Is(err, store.ErrRunNotFound) {
				return f.Fail(ExitCommandError, "unknown run", err, nil)
			}
			return f.Fail(ExitCommandError, "failed to read run", err, nil)
		}
		if opts.Format == "json" {
			return f.Success(run, "")
		}
		printRun(cmd.OutOrStdout(), run)
		return nil
	}

	runs, err := st.ListRuns(ctx, store.ListOptions{ProgramID: opts.ProgramID, Limit: opts.Limit})
	if err != nil {
		return f.Fail(ExitCommandError, "failed to list runs", err, nil)
	}
	if opts.Format == "json" {
		return f.Success(runs, "")
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
		return nil
	}
	total, err := st.CountRuns(ctx)
	if err != nil {
		return f.Fail(ExitCommandError, "failed to count runs", err, nil)
	}
	printRuns(cmd.OutOrStdout(), runs)
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d run(s)\n", len(runs), total)
	return nil
}

// openExistingStore opens a database without creating a new file.
func openExistingStore(path string) (*store.Store, error) {
	if err := requireFile(path); err != nil {
		return nil, err
	}
	return store.Open(path)
}

func printRuns(w io.Writer, runs []store.Run) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tID\tPROGRAM\tSTATUS\tSTEPS\tOUTPUT\tCREATED")
	for _, r := range runs {
		status := r.Status
		if r.ErrorCode != "" {
			status += " " + r.ErrorCode
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t%s\n",
			r.Seq, r.ID, shortID(r.ProgramID), status, r.Steps, len(r.Output), r.CreatedAt.Local().Format(time.DateTime))
	}
	tw.Flush()
}

func printRun(w io.Writer, r store.Run) {
	fmt.Fprintf(w, "Run %s (seq %d)\n", r.ID, r.Seq)
	fmt.Fprintf(w, "  Program:  %s\n", r.ProgramID)
	fmt.Fprintf(w, "  Code:     %s\n", r.Code)
	fmt.Fprintf(w, "  Formats:  %s -> %s\n", r.InputFormat, r.OutputFormat)
	fmt.Fprintf(w, "  Tape:     %d cells x %d bits, bounds %s, max steps %d\n", r.TapeSize, r.CellBits, r.Bounds, r.MaxSteps)
	fmt.Fprintf(w, "  Status:   %s\n", r.Status)
	if r.ErrorMessage != "" {
		fmt.Fprintf(w, "  Error:    %s\n", r.ErrorMessage)
	}
	fmt.Fprintf(w, "  Steps:    %d\n", r.Steps)
	fmt.Fprintf(w, "  Pointer:  %d\n", r.Pointer)
	fmt.Fprintf(w, "  Cells:    %v\n", r.Tape)
	fmt.Fprintf(w, "  Output:   %v\n", r.Output)
	fmt.Fprintf(w, "  Digest:   %s\n", r.OutputDigest)
	fmt.Fprintf(w, "  Engine:   %s (ir %s)\n", r.EngineVersion, r.IRVersion)
	fmt.Fprintf(w, "  Created:  %s\n", r.CreatedAt.Format(time.RFC3339))
}

// shortID abbreviates a content hash for tables.
func shortID(id string) string {
	const n = 12
	if len(id) <= n {
		return id
	}
	return id[:n]
}
