package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bfi/internal/compiler"
	"github.com/roach88/bfi/internal/config"
	"github.com/roach88/bfi/internal/engine"
	"github.com/roach88/bfi/internal/ioport"
)

func TestOutputFormatter_JSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Success(map[string]int{"steps": 3}, "ignored"))
	assert.JSONEq(t, `{"status":"ok","data":{"steps":3}}`, buf.String())

	buf.Reset()
	require.NoError(t, f.Error(ErrCodeBounds, "pointer out of bounds", map[string]int{"pointer": -1}))
	assert.JSONEq(t, `{"status":"error","error":{"code":"E002","message":"pointer out of bounds","details":{"pointer":-1}}}`, buf.String())
}

func TestOutputFormatter_Text(t *testing.T) {
	var out, diag bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &out, ErrWriter: &diag}

	require.NoError(t, f.Success(nil, "done"))
	require.NoError(t, f.Success(nil, ""))
	assert.Equal(t, "done\n", out.String())

	require.NoError(t, f.Error(ErrCodeIO, "broken pipe", "ignored without verbose"))
	assert.Equal(t, "Error [E004]: broken pipe\n", diag.String())
}

func TestOutputFormatter_VerboseDetails(t *testing.T) {
	var out bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &out, Verbose: true}

	_ = f.Error(ErrCodeSteps, "step limit", "at 10")
	f.VerboseLog("steps=%d", 10)
	assert.Equal(t, "Error [E003]: step limit\nDetails: at 10\nsteps=10\n", out.String())
	assert.Same(t, &out, f.GetErrWriter())
}

func TestOutputFormatter_VerboseLogQuiet(t *testing.T) {
	var out bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &out}
	f.VerboseLog("hidden")
	assert.Empty(t, out.String())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))
	assert.Equal(t, ExitFailure, GetExitCode(fmt.Errorf("outer: %w", NewExitError(ExitFailure, "fault"))))
}

func TestExitError(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapExitError(ExitCommandError, "failed to record run", cause)

	assert.Equal(t, "failed to record run: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "bad flag", NewExitError(ExitCommandError, "bad flag").Error())
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"bracket", &compiler.BracketMismatch{Kind: compiler.UnmatchedOpen, Position: 0}, ErrCodeBracket},
		{"bounds", &engine.OutOfBoundsError{Pointer: -1}, ErrCodeBounds},
		{"steps", &engine.StepsExceededError{Limit: 5}, ErrCodeSteps},
		{"truncated", fmt.Errorf("%w: kept 3", ErrTruncated), ErrCodeTruncated},
		{"config", &config.ValidationError{Err: errors.New("cell_bits")}, ErrCodeConfig},
		{"format", &ioport.FormatError{Name: "hex"}, ErrCodeFormat},
		{"other", errors.New("read error"), ErrCodeIO},
		{"wrapped", WrapExitError(ExitFailure, "program faulted", &engine.StepsExceededError{Limit: 1}), ErrCodeSteps},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCode(tt.err))
		})
	}
}

func TestReport(t *testing.T) {
	var out bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &out}

	err := f.Report(errors.New("boom"), nil)
	assert.True(t, IsReported(err))
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "Error [E004]: command failed: boom\n", out.String())

	assert.False(t, IsReported(NewExitError(ExitFailure, "fresh")))
	assert.False(t, IsReported(errors.New("plain")))
}

func TestFail(t *testing.T) {
	var out bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &out}

	err := f.Fail(ExitCommandError, "invalid settings", &ioport.FormatError{Name: "hex"}, nil)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.True(t, IsReported(err))
	assert.Contains(t, out.String(), `"code": "E007"`)
}
