package compiler

import (
	"errors"
	"fmt"
)

// Bracket error codes (E200-E209).
const (
	ErrCodeUnmatchedOpen  = "E201" // '[' without a matching ']'
	ErrCodeUnmatchedClose = "E202" // ']' without a matching '['
)

// MismatchKind identifies which side of a bracket pair is missing.
type MismatchKind int

const (
	// UnmatchedOpen is a '[' that is never closed.
	UnmatchedOpen MismatchKind = iota + 1
	// UnmatchedClose is a ']' with no open '[' before it.
	UnmatchedClose
)

func (k MismatchKind) String() string {
	switch k {
	case UnmatchedOpen:
		return "unmatched-open"
	case UnmatchedClose:
		return "unmatched-close"
	default:
		return "unknown"
	}
}

// BracketMismatch is returned when cleaned code has unbalanced brackets.
// Position is an index into the cleaned code.
type BracketMismatch struct {
	Kind     MismatchKind `json:"kind"`
	Position int          `json:"position"`
}

// Error implements the error interface.
func (e *BracketMismatch) Error() string {
	switch e.Kind {
	case UnmatchedOpen:
		return fmt.Sprintf("[%s] unmatched '[' at position %d", e.Code(), e.Position)
	case UnmatchedClose:
		return fmt.Sprintf("[%s] unmatched ']' at position %d", e.Code(), e.Position)
	default:
		return fmt.Sprintf("bracket mismatch at position %d", e.Position)
	}
}

// Code returns the stable error code for the mismatch kind.
func (e *BracketMismatch) Code() string {
	if e.Kind == UnmatchedOpen {
		return ErrCodeUnmatchedOpen
	}
	return ErrCodeUnmatchedClose
}

// IsBracketMismatch returns true if err is or wraps a *BracketMismatch.
func IsBracketMismatch(err error) bool {
	var bm *BracketMismatch
	return errors.As(err, &bm)
}

// Pair is one matched loop: Open is the '[' index, Close the ']' index.
type Pair struct {
	Open  int `json:"open"`
	Close int `json:"close"`
}

// JumpTable maps every bracket in cleaned code to its partner.
//
// The table is immutable once built. Lookups are O(1) from either side.
type JumpTable struct {
	partner []int // partner[i] is the matching bracket of i, or -1
	pairs   int
}

// BuildJumpTable scans cleaned code once and pairs its brackets.
//
// On '[' the index is pushed; on ']' the top is popped and both directions
// are recorded. A ']' with an empty stack fails with UnmatchedClose at that
// index. Anything left on the stack at the end fails with UnmatchedOpen at
// the innermost (top-of-stack) position.
func BuildJumpTable(code string) (*JumpTable, error) {
	partner := make([]int, len(code))
	var stack []int
	pairs := 0

	for i := 0; i < len(code); i++ {
		partner[i] = -1
		switch code[i] {
		case '[':
			stack = append(stack, i)
		case ']':
			if len(stack) == 0 {
				return nil, &BracketMismatch{Kind: UnmatchedClose, Position: i}
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			partner[open] = i
			partner[i] = open
			pairs++
		}
	}

	if len(stack) > 0 {
		return nil, &BracketMismatch{Kind: UnmatchedOpen, Position: stack[len(stack)-1]}
	}

	return &JumpTable{partner: partner, pairs: pairs}, nil
}

// Match returns the index of the bracket paired with the bracket at i.
// ok is false when i is out of range or not a bracket.
func (t *JumpTable) Match(i int) (int, bool) {
	if i < 0 || i >= len(t.partner) || t.partner[i] < 0 {
		return 0, false
	}
	return t.partner[i], true
}

// Len returns the number of matched pairs.
func (t *JumpTable) Len() int {
	return t.pairs
}

// Pairs returns every matched pair ordered by opening index.
func (t *JumpTable) Pairs() []Pair {
	out := make([]Pair, 0, t.pairs)
	for i, p := range t.partner {
		if p > i {
			out = append(out, Pair{Open: i, Close: p})
		}
	}
	return out
}
