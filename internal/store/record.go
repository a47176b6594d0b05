package store

import (
	"github.com/roach88/bfi/internal/engine"
	"github.com/roach88/bfi/internal/ir"
)

// Outcome is what a caller knows about a finished Process call beyond the
// session itself.
type Outcome struct {
	ID           string
	Origin       string
	InputFormat  string
	OutputFormat string
	Output       []int
	Err          error
}

// NewRun builds a record of the last Process call on session.
// code must be the cleaned code that was processed.
func NewRun(session *engine.Session, code string, o Outcome) Run {
	cfg := session.Config()
	run := Run{
		ID:           o.ID,
		Origin:       o.Origin,
		ProgramID:    ir.MustProgramID(code),
		Code:         code,
		InputFormat:  o.InputFormat,
		OutputFormat: o.OutputFormat,
		TapeSize:     cfg.TapeSize,
		CellBits:     cfg.CellBits,
		Bounds:       cfg.Bounds.String(),
		MaxSteps:     cfg.MaxSteps,
		Status:       StatusHalted,
		Steps:        session.Stats().Steps,
		Pointer:      session.Pointer(),
		Tape:         session.UsedTape(),
		Output:       o.Output,
	}
	if o.Err != nil {
		run.Status = StatusFaulted
		run.ErrorCode = engine.ErrorCode(o.Err)
		run.ErrorMessage = o.Err.Error()
	}
	return run
}
