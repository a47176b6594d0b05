package ioport

import (
	"errors"
	"fmt"
)

// ErrFormatNotAvailable matches every *FormatError via errors.Is.
var ErrFormatNotAvailable = errors.New("format not available")

// FormatError is returned by Lookup for an unknown preset name.
type FormatError struct {
	Name string
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	return fmt.Sprintf("'%s' format not available (choose one of %v)", e.Name, Names())
}

// Is reports whether target is ErrFormatNotAvailable.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormatNotAvailable
}

// ParseError is returned by the decimal input for a malformed token.
type ParseError struct {
	Token string
	Err   error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid decimal input %q: %v", e.Token, e.Err)
}

// Unwrap returns the underlying strconv error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// EncodingError is returned when a value has no representation in a preset.
type EncodingError struct {
	Preset string
	Value  int
}

// Error implements the error interface.
func (e *EncodingError) Error() string {
	return fmt.Sprintf("%s: value %d cannot be encoded", e.Preset, e.Value)
}
