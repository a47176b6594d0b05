package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/bfi/internal/compiler"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Inline string
}

// CheckResult holds the outcome of a successful check.
type CheckResult struct {
	Valid        bool            `json:"valid"`
	ProgramID    string          `json:"program_id"`
	Instructions int             `json:"instructions"`
	Pairs        []compiler.Pair `json:"pairs"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Validate brackets without running",
		Long: `Clean a program and check that every '[' has a matching ']'.

The position of an unmatched bracket is an index into the cleaned program.
In json format the matched bracket pairs are listed.

Exit codes:
  0 - Brackets are balanced
  2 - Unmatched bracket or unreadable file`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, cmd, args)
		},
	}

	cmd.Flags().StringVarP(&opts.Inline, "expr", "e", "", "program text to check")

	return cmd
}

func runCheck(opts *CheckOptions, cmd *cobra.Command, args []string) error {
	f := newFormatter(opts.RootOptions, cmd)

	ref, err := sourceRef(cmd, args, "expr")
	if err != nil {
		return f.Report(err, nil)
	}
	loaded, err := loadProgram(cmd, ref, 0, false)
	if err != nil {
		var details any
		var mismatch *compiler.BracketMismatch
		if errors.As(err, &mismatch) {
			details = map[string]any{"kind": mismatch.Kind.String(), "position": mismatch.Position}
		}
		return f.Report(err, details)
	}

	// Compile already validated the brackets.
	table, _ := compiler.BuildJumpTable(loaded.Program.Code)
	result := CheckResult{
		Valid:        true,
		ProgramID:    loaded.Program.ID,
		Instructions: loaded.Program.Len(),
		Pairs:        table.Pairs(),
	}

	text := fmt.Sprintf("✓ %s: %d instructions, %d bracket pair(s)", ref.Name(), result.Instructions, table.Len())
	return f.Success(result, text)
}
