package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/bfi/internal/ir"
)

// Runtime error codes (E300-E309).
const (
	ErrCodeOutOfBounds   = "E301" // pointer left the tape under BoundsReject
	ErrCodeStepsExceeded = "E302" // MaxSteps reached
)

// Missing capability errors, returned before any instruction runs.
var (
	ErrNoOutput = errors.New("program uses '.' but no output capability was supplied")
	ErrNoInput  = errors.New("program uses ',' but no input capability was supplied")
)

// OutOfBoundsError is returned when '>' or '<' would move the pointer off
// the tape under BoundsReject.
//
// The pointer is left at Last, the last valid position, and Cell holds the
// value there at the time of the fault. Pointer is the rejected target.
type OutOfBoundsError struct {
	// Pointer is the position the instruction tried to move to.
	Pointer int `json:"pointer"`

	// Last is the pointer before the faulting instruction.
	Last int `json:"last"`

	// Cell is the value of the cell at Last.
	Cell int `json:"cell"`

	// Instruction is the index of the faulting instruction in the code.
	Instruction int `json:"instruction"`

	// Op is the faulting instruction.
	Op ir.Instruction `json:"-"`

	// TapeSize is the tape capacity.
	TapeSize int `json:"tape_size"`
}

// Error implements the error interface.
func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("[%s] pointer out of bounds: %q at instruction %d moves pointer from %d to %d (tape size %d, cell[%d]=%d)",
		ErrCodeOutOfBounds, rune(e.Op), e.Instruction, e.Last, e.Pointer, e.TapeSize, e.Last, e.Cell)
}

// Code returns the stable error code.
func (e *OutOfBoundsError) Code() string {
	return ErrCodeOutOfBounds
}

// IsOutOfBounds returns true if err is or wraps an *OutOfBoundsError.
func IsOutOfBounds(err error) bool {
	var oob *OutOfBoundsError
	return errors.As(err, &oob)
}

// ErrorCode returns the stable code carried by err, or "" if it has none.
// Bracket mismatches, bounds faults and step limits carry codes; capability
// errors do not.
func ErrorCode(err error) string {
	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return ""
}
