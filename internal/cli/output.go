package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/bfi/internal/compiler"
	"github.com/roach88/bfi/internal/config"
	"github.com/roach88/bfi/internal/engine"
	"github.com/roach88/bfi/internal/ioport"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Program fault, failing scenarios, non-deterministic replay
	ExitCommandError = 2 // Command error (bad flags, unreadable file, invalid program or config)
)

// Error codes in JSON responses.
const (
	ErrCodeBracket   = "E001" // unmatched bracket
	ErrCodeBounds    = "E002" // pointer left the tape
	ErrCodeSteps     = "E003" // step limit reached
	ErrCodeIO        = "E004" // input, output or file error
	ErrCodeTruncated = "E005" // program longer than --max-source
	ErrCodeConfig    = "E006" // invalid configuration
	ErrCodeFormat    = "E007" // unknown preset
)

// ErrTruncated is returned when a program was cut by --max-source and
// --truncate was not given.
var ErrTruncated = errors.New("program exceeds maximum source length")

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)

	reported bool // already printed by an OutputFormatter
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil and ExitFailure if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// ErrorCode classifies err for JSON responses.
func ErrorCode(err error) string {
	var cfgErr *config.ValidationError
	switch {
	case compiler.IsBracketMismatch(err):
		return ErrCodeBracket
	case engine.IsOutOfBounds(err):
		return ErrCodeBounds
	case engine.IsStepsExceeded(err):
		return ErrCodeSteps
	case errors.Is(err, ErrTruncated):
		return ErrCodeTruncated
	case errors.As(err, &cfgErr):
		return ErrCodeConfig
	case errors.Is(err, ioport.ErrFormatNotAvailable):
		return ErrCodeFormat
	default:
		return ErrCodeIO
	}
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// newFormatter builds a formatter for cmd's writers.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E002", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
// text is printed as-is in text mode; data is encoded in JSON mode.
func (f *OutputFormatter) Success(data any, text string) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}
	if text != "" {
		fmt.Fprintln(f.Writer, text)
	}
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	// Human-readable error goes to the diagnostic writer.
	w := f.GetErrWriter()
	fmt.Fprintf(w, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(w, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err in the configured format and returns it as an
// ExitError with exitCode.
func (f *OutputFormatter) Fail(exitCode int, message string, err error, details any) error {
	return f.Report(WrapExitError(exitCode, message, err), details)
}

// Report prints err in the configured format and marks it as reported.
// Errors that are not an *ExitError are wrapped with ExitFailure.
func (f *OutputFormatter) Report(err error, details any) error {
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		exitErr = WrapExitError(ExitFailure, "command failed", err)
		err = exitErr
	}
	_ = f.Error(ErrorCode(err), err.Error(), details)
	exitErr.reported = true
	return err
}

// IsReported reports whether err was already printed by an OutputFormatter.
func IsReported(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.reported
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	encoder := json.NewEncoder(f.Writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(resp)
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
