package engine

import "fmt"

// Tape is a fixed-size sequence of unsigned cells of one width.
//
// Every store is masked to the cell width, so arithmetic and input values
// wrap the same way: 0 - 1 becomes the width maximum, max + 1 becomes 0.
type Tape struct {
	cells []uint32
	mask  uint32
}

// NewTape allocates a zeroed tape of size cells, each bits wide.
func NewTape(size, bits int) (*Tape, error) {
	if size <= 0 {
		return nil, fmt.Errorf("tape size must be positive, got %d", size)
	}
	var mask uint32
	switch bits {
	case 8:
		mask = 0xFF
	case 16:
		mask = 0xFFFF
	case 32:
		mask = 0xFFFFFFFF
	default:
		return nil, fmt.Errorf("cell bits must be 8, 16 or 32, got %d", bits)
	}
	return &Tape{cells: make([]uint32, size), mask: mask}, nil
}

// Len returns the number of cells.
func (t *Tape) Len() int {
	return len(t.cells)
}

// Get returns the value of cell i.
func (t *Tape) Get(i int) int {
	return int(t.cells[i])
}

// Set stores v into cell i, wrapping it to the cell width.
// Negative values wrap from the top: -1 stores the width maximum.
func (t *Tape) Set(i int, v int) {
	t.cells[i] = uint32(v) & t.mask
}

// Add adds delta to cell i with wraparound.
func (t *Tape) Add(i int, delta int) {
	t.cells[i] = (t.cells[i] + uint32(delta)) & t.mask
}

// Snapshot returns a copy of every cell.
func (t *Tape) Snapshot() []int {
	out := make([]int, len(t.cells))
	for i, c := range t.cells {
		out[i] = int(c)
	}
	return out
}

// Clear zeroes every cell.
func (t *Tape) Clear() {
	clear(t.cells)
}
