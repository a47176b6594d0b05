package compiler

import (
	"strings"

	"github.com/roach88/bfi/internal/ir"
)

// CleanResult is the outcome of Clean.
type CleanResult struct {
	// Code holds only instruction characters, in source order.
	Code string `json:"code"`

	// Truncated is true when the capacity was reached before the end of the
	// source and at least one instruction was discarded.
	Truncated bool `json:"truncated"`

	// Dropped counts instructions discarded because of truncation.
	Dropped int `json:"dropped,omitempty"`

	// Ignored counts non-instruction bytes (comments, whitespace).
	Ignored int `json:"ignored"`
}

// Clean strips every non-instruction character from source.
//
// maxLength is the output capacity. When it is zero or negative the output
// grows as needed. When it is positive the output is cut at that many
// instructions and the result reports Truncated and Dropped, so a caller can
// always tell a shortened program from a complete one.
//
// Clean never fails and does not check bracket balance.
func Clean(source string, maxLength int) CleanResult {
	var b strings.Builder
	if maxLength > 0 && maxLength < len(source) {
		b.Grow(maxLength)
	} else {
		b.Grow(len(source))
	}

	var res CleanResult
	written := 0
	for i := 0; i < len(source); i++ {
		c := source[i]
		if !ir.IsInstruction(c) {
			res.Ignored++
			continue
		}
		if maxLength > 0 && written >= maxLength {
			res.Dropped++
			continue
		}
		b.WriteByte(c)
		written++
	}

	res.Code = b.String()
	res.Truncated = res.Dropped > 0
	return res
}

// IsClean reports whether s consists only of instruction characters.
func IsClean(s string) bool {
	for i := 0; i < len(s); i++ {
		if !ir.IsInstruction(s[i]) {
			return false
		}
	}
	return true
}
