package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/bfi/internal/compiler"
	"github.com/roach88/bfi/internal/ir"
)

// CleanOptions holds flags for the clean command.
type CleanOptions struct {
	*RootOptions
	Inline    string
	MaxLength int
	Output    string // output file path
}

// CleanSummary is the JSON payload of the clean command.
type CleanSummary struct {
	compiler.CleanResult
	ProgramID string `json:"program_id"`
}

// NewCleanCommand creates the clean command.
func NewCleanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CleanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "clean [file]",
		Short: "Strip everything but instructions from a program",
		Long: `Print the program with every non-instruction character removed.

Brackets are not checked; use check for that. With --max-length the output is
cut at that many instructions and the truncation is reported.

Examples:
  bfi clean hello.b
  bfi clean -e 'add: ,>,[-<+>]<.'
  bfi clean --max-length 100 -o hello.min.b hello.b`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(opts, cmd, args)
		},
	}

	cmd.Flags().StringVarP(&opts.Inline, "expr", "e", "", "program text to clean")
	cmd.Flags().IntVar(&opts.MaxLength, "max-length", 0, "maximum cleaned length (0 = unlimited)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the cleaned program to this file")

	return cmd
}

func runClean(opts *CleanOptions, cmd *cobra.Command, args []string) error {
	f := newFormatter(opts.RootOptions, cmd)

	ref, err := sourceRef(cmd, args, "expr")
	if err != nil {
		return f.Report(err, nil)
	}
	source, err := readSource(cmd, ref)
	if err != nil {
		return f.Fail(ExitCommandError, "failed to load program", err, nil)
	}

	cleaned := compiler.Clean(source, opts.MaxLength)
	id, err := ir.ProgramID(cleaned.Code)
	if err != nil {
		return f.Fail(ExitFailure, "failed to hash program", err, nil)
	}

	if compiler.IsClean(source) {
		f.VerboseLog("%s: already clean, %d instructions", ref.Name(), len(cleaned.Code))
	} else {
		f.VerboseLog("%s: kept %d instructions, ignored %d bytes", ref.Name(), len(cleaned.Code), cleaned.Ignored)
	}
	if cleaned.Truncated {
		fmt.Fprintf(f.GetErrWriter(), "warning: truncated at %d instructions, dropped %d\n", len(cleaned.Code), cleaned.Dropped)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(cleaned.Code+"\n"), 0o644); err != nil {
			return f.Fail(ExitCommandError, "failed to write output file", err, nil)
		}
		f.VerboseLog("wrote %s", opts.Output)
	}

	text := cleaned.Code
	if opts.Output != "" {
		text = ""
	}
	return f.Success(CleanSummary{CleanResult: cleaned, ProgramID: id}, text)
}
