package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/bfi/internal/compiler"
	"github.com/roach88/bfi/internal/ir"
)

// stdinName selects standard input as the program file.
const stdinName = "-"

// SourceRef says where a program comes from: a file path, "-" for stdin,
// or inline code.
type SourceRef struct {
	File   string
	Inline string
	inline bool
}

// Name returns a label for logs and error messages.
func (r SourceRef) Name() string {
	switch {
	case r.inline:
		return "<inline>"
	case r.File == stdinName:
		return "<stdin>"
	default:
		return r.File
	}
}

// sourceRef resolves the positional file argument and the -e flag.
// Exactly one of them must be given.
func sourceRef(cmd *cobra.Command, args []string, inlineFlag string) (SourceRef, error) {
	inline := cmd.Flags().Changed(inlineFlag)
	switch {
	case inline && len(args) > 0:
		return SourceRef{}, NewExitError(ExitCommandError, fmt.Sprintf("give a program file or -%s, not both", inlineFlag))
	case inline:
		code, _ := cmd.Flags().GetString(inlineFlag)
		return SourceRef{Inline: code, inline: true}, nil
	case len(args) == 1:
		return SourceRef{File: args[0]}, nil
	default:
		return SourceRef{}, NewExitError(ExitCommandError, fmt.Sprintf("a program file, '-' or -%s is required", inlineFlag))
	}
}

// readSource returns the raw program text.
func readSource(cmd *cobra.Command, ref SourceRef) (string, error) {
	if ref.inline {
		return ref.Inline, nil
	}

	var (
		data []byte
		err  error
	)
	if ref.File == stdinName {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(ref.File)
	}
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("program file not found: %s", ref.File)
		}
		return "", fmt.Errorf("failed to read %s: %w", ref.Name(), err)
	}
	return string(data), nil
}

// LoadedProgram is a compiled program with its cleaning report.
type LoadedProgram struct {
	Program ir.Program
	Clean   compiler.CleanResult
}

// loadProgram reads, cleans and validates a program.
//
// A program cut by maxLength is refused with ErrTruncated unless
// allowTruncate is set. All failures are ExitCommandError.
func loadProgram(cmd *cobra.Command, ref SourceRef, maxLength int, allowTruncate bool) (LoadedProgram, error) {
	source, err := readSource(cmd, ref)
	if err != nil {
		return LoadedProgram{}, WrapExitError(ExitCommandError, "failed to load program", err)
	}

	prog, cleaned, err := compiler.Compile(source, maxLength)
	if cleaned.Truncated && !allowTruncate {
		return LoadedProgram{Clean: cleaned}, WrapExitError(ExitCommandError, "refusing to run truncated program",
			fmt.Errorf("%w: kept %d instructions, dropped %d (use --truncate to run anyway)", ErrTruncated, len(cleaned.Code), cleaned.Dropped))
	}
	if err != nil {
		return LoadedProgram{Clean: cleaned}, WrapExitError(ExitCommandError, "invalid program", err)
	}
	return LoadedProgram{Program: prog, Clean: cleaned}, nil
}
