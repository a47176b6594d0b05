package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrRunNotFound is returned by ReadRun for an unknown ID.
var ErrRunNotFound = errors.New("run not found")

const runColumns = `
	seq, id, origin, program_id, code, input_format, output_format, tape_size, cell_bits, bounds, max_steps,
	status, error_code, error_message, steps, pointer, tape, output, output_digest,
	engine_version, ir_version, created_at`

// ListOptions filters ListRuns.
type ListOptions struct {
	// ProgramID limits the result to runs of one program.
	ProgramID string
	// Limit keeps only the most recent runs. Zero means no limit.
	Limit int
}

// ReadRun retrieves a single run by ID.
// Returns ErrRunNotFound if no run has that ID.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// ListRuns returns runs ordered by seq ASC.
// With a limit, the most recent runs are kept, still in ascending order.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ListRuns(ctx context.Context, opts ListOptions) ([]Run, error) {
	if opts.Limit < 0 {
		return nil, fmt.Errorf("list runs: negative limit %d", opts.Limit)
	}

	query := `SELECT ` + runColumns + ` FROM runs WHERE (? = '' OR program_id = ?) ORDER BY seq DESC`
	args := []any{opts.ProgramID, opts.ProgramID}
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT * FROM (`+query+`) ORDER BY seq ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// CountRuns returns how many runs are recorded.
func (s *Store) CountRuns(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return n, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var tapeJSON, outputJSON, createdAt string

	if err := row.Scan(
		&run.Seq, &run.ID, &run.Origin, &run.ProgramID, &run.Code, &run.InputFormat, &run.OutputFormat,
		&run.TapeSize, &run.CellBits, &run.Bounds, &run.MaxSteps,
		&run.Status, &run.ErrorCode, &run.ErrorMessage, &run.Steps, &run.Pointer,
		&tapeJSON, &outputJSON, &run.OutputDigest,
		&run.EngineVersion, &run.IRVersion, &createdAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	var err error
	if run.Tape, err = unmarshalValues(tapeJSON); err != nil {
		return Run{}, fmt.Errorf("run %s tape: %w", run.ID, err)
	}
	if run.Output, err = unmarshalValues(outputJSON); err != nil {
		return Run{}, fmt.Errorf("run %s output: %w", run.ID, err)
	}
	if run.CreatedAt, err = parseTime(createdAt); err != nil {
		return Run{}, fmt.Errorf("run %s: %w", run.ID, err)
	}
	return run, nil
}
