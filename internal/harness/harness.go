package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/bfi/internal/compiler"
	"github.com/roach88/bfi/internal/engine"
	"github.com/roach88/bfi/internal/ioport"
	"github.com/roach88/bfi/internal/store"
	"github.com/roach88/bfi/internal/testutil"
)

// Harness is the scenario execution engine.
// It runs one scenario on a fresh session and records it in its own store.
type Harness struct {
	store  *store.Store
	ids    engine.RunIDGenerator
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Clean the program and build its jump table
// 3. Run it with the scenario's presets and engine settings
// 4. Record the run, read it back and check expectations
//
// Program faults are part of the result, not errors. An error is returned
// only when the scenario itself cannot be executed.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		ids:    testutil.NewSequentialIDGenerator("run"),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	return h.run(context.Background(), scenario)
}

func (h *Harness) run(ctx context.Context, scenario *Scenario) (*Result, error) {
	source, err := scenario.source()
	if err != nil {
		return nil, err
	}
	cfg, err := scenario.engineConfig()
	if err != nil {
		return nil, err
	}
	eof, err := ioport.ParseEOFPolicy(scenario.EOF)
	if err != nil {
		return nil, err
	}
	inPreset, err := ioport.Lookup(formatOrDefault(scenario.InputFormat))
	if err != nil {
		return nil, err
	}
	outPreset, err := ioport.Lookup(formatOrDefault(scenario.OutputFormat))
	if err != nil {
		return nil, err
	}

	session, err := engine.NewSession(cfg, engine.WithLogger(h.logger))
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	rendered := outPreset.NewOutput(&text, ioport.OutputOptions{Separator: scenario.Separator})
	recorder := testutil.NewRecordingOutput()
	out := engine.OutputFunc(func(v int) error {
		_ = recorder.Write(v)
		return rendered.Write(v)
	})

	var in engine.Input
	if scenario.InputValues != nil {
		in = testutil.NewScriptedInput(scenario.InputValues...)
	} else {
		in = inPreset.NewInput(ioport.NewStreamSource(strings.NewReader(scenario.Input)), ioport.InputOptions{EOF: eof})
	}

	cleaned := compiler.Clean(source, 0)
	runErr := session.Process(cleaned.Code, out, in)

	run := store.NewRun(session, cleaned.Code, store.Outcome{
		ID:           h.ids.Generate(),
		Origin:       store.OriginHarness,
		InputFormat:  inPreset.Name,
		OutputFormat: outPreset.Name,
		Output:       recorder.Values(),
		Err:          runErr,
	})

	if _, err := h.store.WriteRun(ctx, run); err != nil {
		return nil, err
	}
	stored, err := h.store.ReadRun(ctx, run.ID)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	result.RunID = stored.ID
	result.ProgramID = stored.ProgramID
	result.Status = stored.Status
	result.Output = stored.Output
	result.Text = text.String()
	result.Tape = stored.Tape
	result.Pointer = stored.Pointer
	result.Steps = stored.Steps
	result.ErrorCode = stored.ErrorCode
	result.Error = stored.ErrorMessage

	for _, failure := range checkExpect(scenario.Expect, result) {
		result.AddError(failure.Error())
	}

	h.logger.Debug("scenario complete",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"status", result.Status)

	return result, nil
}
