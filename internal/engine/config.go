package engine

import (
	"fmt"
	"strings"
)

// Defaults for a new session.
const (
	DefaultTapeSize = 30000
	DefaultCellBits = 8
)

// BoundsPolicy decides what happens when the pointer leaves the tape.
type BoundsPolicy int

const (
	// BoundsReject faults the run with an *OutOfBoundsError.
	BoundsReject BoundsPolicy = iota
	// BoundsWrap moves the pointer modulo the tape size.
	BoundsWrap
)

func (p BoundsPolicy) String() string {
	switch p {
	case BoundsReject:
		return "reject"
	case BoundsWrap:
		return "wrap"
	default:
		return fmt.Sprintf("BoundsPolicy(%d)", int(p))
	}
}

// ParseBoundsPolicy converts "reject" or "wrap" into a BoundsPolicy.
func ParseBoundsPolicy(s string) (BoundsPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return BoundsReject, nil
	case "wrap":
		return BoundsWrap, nil
	default:
		return BoundsReject, fmt.Errorf("invalid bounds policy %q: must be reject or wrap", s)
	}
}

// Config fixes the shape of a session for its whole life.
type Config struct {
	// TapeSize is the number of cells. Must be positive.
	TapeSize int

	// CellBits is the cell width: 8, 16 or 32.
	CellBits int

	// Bounds selects the out-of-range pointer policy.
	Bounds BoundsPolicy

	// MaxSteps limits instructions executed per Process call. 0 means unlimited.
	MaxSteps int
}

// DefaultConfig returns a 30000-cell tape of 8-bit cells that rejects
// out-of-range pointers and has no step limit.
func DefaultConfig() Config {
	return Config{
		TapeSize: DefaultTapeSize,
		CellBits: DefaultCellBits,
		Bounds:   BoundsReject,
	}
}

// Validate checks that the configuration can build a session.
func (c Config) Validate() error {
	if c.TapeSize <= 0 {
		return fmt.Errorf("tape size must be positive, got %d", c.TapeSize)
	}
	switch c.CellBits {
	case 8, 16, 32:
	default:
		return fmt.Errorf("cell bits must be 8, 16 or 32, got %d", c.CellBits)
	}
	if c.Bounds != BoundsReject && c.Bounds != BoundsWrap {
		return fmt.Errorf("unknown bounds policy %d", int(c.Bounds))
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("max steps must not be negative, got %d", c.MaxSteps)
	}
	return nil
}

// CellMax returns the largest value a cell can hold, 2^CellBits - 1.
func (c Config) CellMax() int {
	return int(uint64(1)<<uint(c.CellBits) - 1)
}
