package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/bfi/internal/ir"
)

// createTestStore opens a fresh database in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a halted run with minimal required fields.
func createTestRun(id, code string) Run {
	return Run{
		ID:           id,
		ProgramID:    ir.MustProgramID(code),
		Code:         code,
		InputFormat:  "ascii",
		OutputFormat: "ascii",
		TapeSize:     30000,
		CellBits:     8,
		Bounds:       "reject",
		Status:       StatusHalted,
		Steps:        len(code),
		Tape:         []int{0},
		Output:       []int{},
		CreatedAt:    time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC),
	}
}
