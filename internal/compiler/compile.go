package compiler

import (
	"fmt"

	"github.com/roach88/bfi/internal/ir"
)

// Compile cleans source and validates its brackets.
//
// The CleanResult is returned even when validation fails so callers can
// report truncation alongside the bracket error. Truncation alone is not an
// error here; whether a shortened program may run is the caller's decision.
func Compile(source string, maxLength int) (ir.Program, CleanResult, error) {
	cleaned := Clean(source, maxLength)

	if _, err := BuildJumpTable(cleaned.Code); err != nil {
		return ir.Program{}, cleaned, err
	}

	prog, err := ir.NewProgram(cleaned.Code)
	if err != nil {
		return ir.Program{}, cleaned, fmt.Errorf("compile: %w", err)
	}
	return prog, cleaned, nil
}
