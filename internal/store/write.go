package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/bfi/internal/ir"
)

// Run statuses.
const (
	StatusHalted  = "halted"
	StatusFaulted = "faulted"
)

// Run origins: the front end that executed the run.
const (
	OriginRun     = "run"
	OriginREPL    = "repl"
	OriginHarness = "harness"
)

// Run is one recorded execution.
type Run struct {
	Seq          int64     `json:"seq"`
	ID           string    `json:"id"`
	Origin       string    `json:"origin"`
	ProgramID    string    `json:"program_id"`
	Code         string    `json:"code"`
	InputFormat  string    `json:"input_format"`
	OutputFormat string    `json:"output_format"`
	TapeSize     int       `json:"tape_size"`
	CellBits     int       `json:"cell_bits"`
	Bounds       string    `json:"bounds"`
	MaxSteps     int       `json:"max_steps"`
	Status       string    `json:"status"`
	ErrorCode    string    `json:"error_code,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	Steps        int       `json:"steps"`
	Pointer      int       `json:"pointer"`
	Tape         []int     `json:"tape"`
	Output       []int     `json:"output"`
	OutputDigest string    `json:"output_digest"`
	CreatedAt    time.Time `json:"created_at"`

	EngineVersion string `json:"engine_version"`
	IRVersion     string `json:"ir_version"`
}

// validate checks the fields the schema cannot.
func (r Run) validate() error {
	var errs []error
	if r.ID == "" {
		errs = append(errs, errors.New("id is required"))
	}
	if r.ProgramID == "" {
		errs = append(errs, errors.New("program_id is required"))
	}
	switch r.Origin {
	case "", OriginRun, OriginREPL, OriginHarness:
	default:
		errs = append(errs, fmt.Errorf("unknown origin %q", r.Origin))
	}
	if r.Status != StatusHalted && r.Status != StatusFaulted {
		errs = append(errs, fmt.Errorf("status must be %q or %q, got %q", StatusHalted, StatusFaulted, r.Status))
	}
	if r.Status == StatusFaulted && r.ErrorMessage == "" {
		errs = append(errs, errors.New("faulted run needs an error message"))
	}
	return errors.Join(errs...)
}

// WriteRun inserts a run and returns its seq.
// Uses ON CONFLICT(id) DO NOTHING for idempotency: writing an existing ID
// keeps the stored record and returns its seq.
//
// Empty Origin, OutputDigest, EngineVersion and IRVersion are filled in; a
// zero CreatedAt becomes the current time.
func (s *Store) WriteRun(ctx context.Context, run Run) (int64, error) {
	if err := run.validate(); err != nil {
		return 0, fmt.Errorf("write run: %w", err)
	}

	tapeJSON, err := marshalValues(run.Tape)
	if err != nil {
		return 0, fmt.Errorf("write run: %w", err)
	}
	outputJSON, err := marshalValues(run.Output)
	if err != nil {
		return 0, fmt.Errorf("write run: %w", err)
	}
	if run.OutputDigest == "" {
		if run.OutputDigest, err = ir.OutputDigest(run.Output); err != nil {
			return 0, fmt.Errorf("write run: %w", err)
		}
	}
	if run.EngineVersion == "" {
		run.EngineVersion = ir.EngineVersion
	}
	if run.IRVersion == "" {
		run.IRVersion = ir.IRVersion
	}
	if run.Origin == "" {
		run.Origin = OriginRun
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, origin, program_id, code, input_format, output_format, tape_size, cell_bits, bounds, max_steps,
		 status, error_code, error_message, steps, pointer, tape, output, output_digest,
		 engine_version, ir_version, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Origin,
		run.ProgramID,
		run.Code,
		run.InputFormat,
		run.OutputFormat,
		run.TapeSize,
		run.CellBits,
		run.Bounds,
		run.MaxSteps,
		run.Status,
		run.ErrorCode,
		run.ErrorMessage,
		run.Steps,
		run.Pointer,
		tapeJSON,
		outputJSON,
		run.OutputDigest,
		run.EngineVersion,
		run.IRVersion,
		formatTime(run.CreatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("write run: %w", err)
	}

	var seq int64
	if err := s.db.QueryRowContext(ctx, `SELECT seq FROM runs WHERE id = ?`, run.ID).Scan(&seq); err != nil {
		return 0, fmt.Errorf("write run: read seq: %w", err)
	}
	return seq, nil
}
