package testutil

import (
	"errors"
	"strings"
	"sync"
)

// ErrInputExhausted is returned by ScriptedInput once every value is consumed.
var ErrInputExhausted = errors.New("scripted input exhausted")

// ScriptedInput returns predetermined values in order.
//
// It satisfies engine.Input. After the script runs out, Read returns
// ErrInputExhausted so tests notice programs that read more than expected.
//
// Thread-safety: ScriptedInput is safe for concurrent use via internal mutex.
type ScriptedInput struct {
	mu     sync.Mutex
	values []int
	idx    int
}

// NewScriptedInput creates an input that yields values in order.
func NewScriptedInput(values ...int) *ScriptedInput {
	return &ScriptedInput{values: values}
}

// NewScriptedText creates an input that yields the code points of s.
func NewScriptedText(s string) *ScriptedInput {
	var values []int
	for _, r := range s {
		values = append(values, int(r))
	}
	return NewScriptedInput(values...)
}

// Read returns the next scripted value.
func (in *ScriptedInput) Read() (int, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.idx >= len(in.values) {
		return 0, ErrInputExhausted
	}
	v := in.values[in.idx]
	in.idx++
	return v, nil
}

// Consumed returns how many values have been read.
func (in *ScriptedInput) Consumed() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.idx
}

// RecordingOutput captures every value written to it.
//
// It satisfies engine.Output. Use Values for raw cell values and Text to
// read them back as characters.
type RecordingOutput struct {
	mu     sync.Mutex
	values []int
}

// NewRecordingOutput creates an empty recorder.
func NewRecordingOutput() *RecordingOutput {
	return &RecordingOutput{}
}

// Write records v.
func (out *RecordingOutput) Write(v int) error {
	out.mu.Lock()
	defer out.mu.Unlock()
	out.values = append(out.values, v)
	return nil
}

// Values returns a copy of the recorded values.
func (out *RecordingOutput) Values() []int {
	out.mu.Lock()
	defer out.mu.Unlock()
	return append([]int(nil), out.values...)
}

// Text renders the recorded values as characters.
func (out *RecordingOutput) Text() string {
	out.mu.Lock()
	defer out.mu.Unlock()
	var b strings.Builder
	for _, v := range out.values {
		b.WriteRune(rune(v))
	}
	return b.String()
}

// FailingOutput accepts a fixed number of writes, then returns Err.
type FailingOutput struct {
	After  int
	Err    error
	writes int
}

// Write fails once After writes have succeeded.
func (out *FailingOutput) Write(v int) error {
	if out.writes >= out.After {
		return out.Err
	}
	out.writes++
	return nil
}

// Writes returns the number of successful writes.
func (out *FailingOutput) Writes() int {
	return out.writes
}
