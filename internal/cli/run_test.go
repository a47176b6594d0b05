package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bfi/internal/testutil"
)

func TestRun_Inline(t *testing.T) {
	res := execute(NewRunCommand(textOpts()), "", "-e", testutil.HelloWorldCode)
	require.NoError(t, res.Err)
	assert.Equal(t, testutil.HelloWorldText, res.Stdout)
	assert.Empty(t, res.Stderr)
}

func TestRun_File(t *testing.T) {
	path := writeFile(t, t.TempDir(), "hello.b", testutil.HelloWorldSource)

	res := execute(NewRunCommand(textOpts()), "", path)
	require.NoError(t, res.Err)
	assert.Equal(t, testutil.HelloWorldText, res.Stdout)
}

func TestRun_ProgramFromStdin(t *testing.T) {
	res := execute(NewRunCommand(textOpts()), "+++.", "--output", "decimal", "-")
	require.NoError(t, res.Err)
	assert.Equal(t, "3\n", res.Stdout)
}

func TestRun_MissingFile(t *testing.T) {
	res := execute(NewRunCommand(textOpts()), "", filepath.Join(t.TempDir(), "nope.b"))
	require.Error(t, res.Err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.Err))
	assert.Contains(t, res.Stderr, "program file not found")
}

func TestRun_DecimalIO(t *testing.T) {
	res := execute(NewRunCommand(textOpts()), "3 4",
		"--input", "decimal", "--output", "decimal", "-e", ",>,[-<+>]<.")
	require.NoError(t, res.Err)
	assert.Equal(t, "7\n", res.Stdout)
}

func TestRun_StdinFile(t *testing.T) {
	input := writeFile(t, t.TempDir(), "input.txt", "hi")

	res := execute(NewRunCommand(textOpts()), "ignored", "--stdin-file", input, "-e", ",.,.")
	require.NoError(t, res.Err)
	assert.Equal(t, "hi", res.Stdout)
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		exitCode int
		code     string
	}{
		{"pointer out of bounds", []string{"-e", "<"}, ExitFailure, ErrCodeBounds},
		{"unmatched open", []string{"-e", "+["}, ExitCommandError, ErrCodeBracket},
		{"unmatched close", []string{"-e", "+]"}, ExitCommandError, ErrCodeBracket},
		{"step limit", []string{"--max-steps", "10", "-e", "+[]"}, ExitFailure, ErrCodeSteps},
		{"truncated", []string{"--max-source", "3", "-e", "+++++."}, ExitCommandError, ErrCodeTruncated},
		{"unknown preset", []string{"--output", "hex", "-e", "+."}, ExitCommandError, ErrCodeFormat},
		{"bad cell width", []string{"--cell-bits", "12", "-e", "+."}, ExitCommandError, ErrCodeConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := execute(NewRunCommand(textOpts()), "", tt.args...)
			require.Error(t, res.Err)
			assert.Equal(t, tt.exitCode, GetExitCode(res.Err))
			assert.True(t, IsReported(res.Err))
			assert.Contains(t, res.Stderr, "Error ["+tt.code+"]")
		})
	}
}

func TestRun_FaultReportsPointerAndCell(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"step limit", []string{"--max-steps", "10", "-e", ">+++[]"},
			"Error [E003]: program faulted at loop-close instruction 5 (pointer 1, cell 3)"},
		{"out of bounds", []string{"-e", "++<"},
			"Error [E002]: program faulted at move-left instruction 2 (pointer 0, cell 2)"},
		{"output encoding", []string{"--cell-bits", "16", "--output", "latin1", "-e", ">-."},
			"Error [E004]: program faulted (pointer 1, cell 65535)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := execute(NewRunCommand(textOpts()), "", tt.args...)
			require.Error(t, res.Err)
			assert.Equal(t, ExitFailure, GetExitCode(res.Err))
			assert.Contains(t, res.Stderr, tt.want)
		})
	}
}

func TestRun_StdinProgramReadingInput(t *testing.T) {
	res := execute(NewRunCommand(textOpts()), ",.", "-")
	require.Error(t, res.Err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.Err))
	assert.Contains(t, res.Stderr, "--stdin-file")
	assert.Empty(t, res.Stdout)

	input := writeFile(t, t.TempDir(), "input.txt", "z")
	res = execute(NewRunCommand(textOpts()), ",.", "--stdin-file", input, "-")
	require.NoError(t, res.Err)
	assert.Equal(t, "z", res.Stdout)
}

func TestRun_FileAndExpr(t *testing.T) {
	path := writeFile(t, t.TempDir(), "p.b", "+")

	res := execute(NewRunCommand(textOpts()), "", "-e", "+", path)
	require.Error(t, res.Err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.Err))
	assert.Contains(t, res.Stderr, "not both")
}

func TestRun_NoProgram(t *testing.T) {
	res := execute(NewRunCommand(textOpts()), "")
	require.Error(t, res.Err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.Err))
}

func TestRun_Truncate(t *testing.T) {
	res := execute(NewRunCommand(jsonOpts()), "", "--max-source", "3", "--truncate", "-e", "+++++.")
	require.NoError(t, res.Err)

	resp, data := decodeResponse(t, res.Stdout)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, true, data["truncated"])
	assert.Equal(t, float64(3), data["dropped"])
	assert.Equal(t, float64(3), data["cell"])
	assert.Equal(t, []any{}, data["output"])
}

func TestRun_JSONSummary(t *testing.T) {
	res := execute(NewRunCommand(jsonOpts()), "", "-e", "++++++++[>++++++++<-]>+.")
	require.NoError(t, res.Err)

	resp, data := decodeResponse(t, res.Stdout)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "halted", data["status"])
	assert.Equal(t, "A", data["text"])
	assert.Equal(t, []any{float64(65)}, data["output"])
	assert.Equal(t, float64(1), data["pointer"])
	assert.NotEmpty(t, data["program_id"])
	assert.NotContains(t, data, "run_id")
	assert.NotContains(t, data, "tape")
}

func TestRun_JSONFault(t *testing.T) {
	res := execute(NewRunCommand(jsonOpts()), "", "-e", "+.<")
	require.Error(t, res.Err)
	assert.Equal(t, ExitFailure, GetExitCode(res.Err))

	resp, _ := decodeResponse(t, res.Stdout)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeBounds, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "pointer out of bounds")

	details, ok := resp.Error.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "faulted", details["status"])
	assert.Equal(t, "\x01", details["text"])
}

func TestRun_Dump(t *testing.T) {
	res := execute(NewRunCommand(textOpts()), "", "--dump", "-e", "+++>++>+<")
	require.NoError(t, res.Err)
	assert.Empty(t, res.Stdout)
	assert.Equal(t, "cells: 3 of 30000, 8 bits (max 255)\ntape: [3 2 1]\npointer: 1\n", res.Stderr)
}

func TestRun_Wrap(t *testing.T) {
	res := execute(NewRunCommand(textOpts()), "",
		"--bounds", "wrap", "--tape-size", "4", "--output", "decimal", "-e", "<+++.")
	require.NoError(t, res.Err)
	assert.Equal(t, "3\n", res.Stdout)
}

func TestRun_RecordsToDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "bfi.db")

	res := execute(NewRunCommand(jsonOpts()), "", "--db", db, "-e", "+++.")
	require.NoError(t, res.Err)
	_, data := decodeResponse(t, res.Stdout)
	runID, _ := data["run_id"].(string)
	require.NotEmpty(t, runID)

	res = execute(NewHistoryCommand(jsonOpts()), "", "--db", db)
	require.NoError(t, res.Err)
	resp, _ := decodeResponse(t, res.Stdout)
	runs, ok := resp.Data.([]any)
	require.True(t, ok, "data: %#v", resp.Data)
	require.Len(t, runs, 1)

	run := runs[0].(map[string]any)
	assert.Equal(t, runID, run["id"])
	assert.Equal(t, "run", run["origin"])
	assert.Equal(t, "+++.", run["code"])
	assert.Equal(t, []any{float64(3)}, run["output"])
}
