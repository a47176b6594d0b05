package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/bfi/internal/ir"
)

// RunSnapshot captures the observable outcome of a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type RunSnapshot struct {
	ScenarioName string
	Result       *Result
}

// toCanonicalMap converts a RunSnapshot to a map[string]any for canonical JSON serialization.
// This is required because ir.MarshalCanonical only handles primitives, slices and maps.
func (s *RunSnapshot) toCanonicalMap() map[string]any {
	m := map[string]any{
		"scenario_name": s.ScenarioName,
		"run_id":        s.Result.RunID,
		"program_id":    s.Result.ProgramID,
		"status":        s.Result.Status,
		"output":        s.Result.Output,
		"text":          s.Result.Text,
		"tape":          s.Result.Tape,
		"pointer":       s.Result.Pointer,
		"steps":         s.Result.Steps,
	}
	if s.Result.ErrorCode != "" {
		m["error_code"] = s.Result.ErrorCode
	}
	return m
}

// MarshalSnapshot returns the canonical JSON snapshot of a result.
func MarshalSnapshot(scenarioName string, result *Result) ([]byte, error) {
	snapshot := RunSnapshot{ScenarioName: scenarioName, Result: result}
	return ir.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
