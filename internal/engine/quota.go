package engine

import (
	"errors"
	"fmt"
)

// stepQuota counts executed instructions and enforces Config.MaxSteps.
//
// It guards against programs that never halt, such as "+[]". A limit of 0
// disables the check.
type stepQuota struct {
	limit   int
	current int
}

func newStepQuota(limit int) *stepQuota {
	return &stepQuota{limit: limit}
}

// check counts one more step and fails once the limit is passed.
func (q *stepQuota) check(instruction int) error {
	q.current++
	if q.limit > 0 && q.current > q.limit {
		return &StepsExceededError{
			Steps:       q.current,
			Limit:       q.limit,
			Instruction: instruction,
		}
	}
	return nil
}

// executed returns the number of instructions actually run. The step that
// tripped the limit is counted by check but never executed.
func (q *stepQuota) executed() int {
	if q.limit > 0 && q.current > q.limit {
		return q.limit
	}
	return q.current
}

// StepsExceededError is returned when a run passes Config.MaxSteps.
//
// The instruction at Instruction was not executed.
type StepsExceededError struct {
	Steps       int `json:"steps"`
	Limit       int `json:"limit"`
	Instruction int `json:"instruction"`
}

// Error implements the error interface.
func (e *StepsExceededError) Error() string {
	return fmt.Sprintf("[%s] exceeded max steps: %d steps > %d limit (at instruction %d)",
		ErrCodeStepsExceeded, e.Steps, e.Limit, e.Instruction)
}

// Code returns the stable error code.
func (e *StepsExceededError) Code() string {
	return ErrCodeStepsExceeded
}

// IsStepsExceeded returns true if err is or wraps a *StepsExceededError.
func IsStepsExceeded(err error) bool {
	var se *StepsExceededError
	return errors.As(err, &se)
}
