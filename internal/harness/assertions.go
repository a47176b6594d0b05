package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an expectation fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Field    string // expect field that failed
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Field)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// checkExpect compares a result against every field set in e.
func checkExpect(e Expect, r *Result) []error {
	var failures []error
	add := func(err error) {
		if err != nil {
			failures = append(failures, err)
		}
	}

	add(assertStatus(e.wantStatus(), r))
	if e.Output != nil {
		add(assertText(*e.Output, r.Text))
	}
	if e.OutputValues != nil {
		add(assertValues("output_values", e.OutputValues, r.Output))
	}
	if e.Tape != nil {
		add(assertTapePrefix(e.Tape, r.Tape))
	}
	if e.Pointer != nil && *e.Pointer != r.Pointer {
		add(&AssertionError{
			Field:    "pointer",
			Expected: fmt.Sprint(*e.Pointer),
			Actual:   fmt.Sprint(r.Pointer),
		})
	}
	if e.Error != nil {
		add(assertError(*e.Error, r))
	}
	return failures
}

func assertStatus(want string, r *Result) error {
	if r.Status == want {
		return nil
	}
	actual := r.Status
	if r.Error != "" {
		actual += " (" + r.Error + ")"
	}
	return &AssertionError{Field: "status", Expected: want, Actual: actual}
}

func assertText(want, got string) error {
	if want == got {
		return nil
	}
	return &AssertionError{
		Field:    "output",
		Expected: fmt.Sprintf("%q", want),
		Actual:   fmt.Sprintf("%q", got),
	}
}

func assertValues(field string, want, got []int) error {
	if slices.Equal(want, got) {
		return nil
	}
	return &AssertionError{
		Field:    field,
		Expected: fmt.Sprint(want),
		Actual:   fmt.Sprint(got),
	}
}

// assertTapePrefix checks the first len(want) cells. Cells past the used
// prefix are zero.
func assertTapePrefix(want, used []int) error {
	got := make([]int, len(want))
	copy(got, used)
	if slices.Equal(want, got) {
		return nil
	}
	return &AssertionError{
		Field:    "tape",
		Expected: fmt.Sprint(want),
		Actual:   fmt.Sprint(got),
	}
}

func assertError(want ErrorExpect, r *Result) error {
	if r.Error == "" {
		return &AssertionError{
			Field:    "error",
			Expected: describeErrorExpect(want),
			Actual:   "no error",
		}
	}
	if want.Code != "" && want.Code != r.ErrorCode {
		return &AssertionError{
			Field:    "error.code",
			Expected: want.Code,
			Actual:   fmt.Sprintf("%q (%s)", r.ErrorCode, r.Error),
		}
	}
	if want.Contains != "" && !strings.Contains(r.Error, want.Contains) {
		return &AssertionError{
			Field:    "error.contains",
			Expected: fmt.Sprintf("message containing %q", want.Contains),
			Actual:   r.Error,
		}
	}
	return nil
}

func describeErrorExpect(e ErrorExpect) string {
	var parts []string
	if e.Code != "" {
		parts = append(parts, "code "+e.Code)
	}
	if e.Contains != "" {
		parts = append(parts, fmt.Sprintf("message containing %q", e.Contains))
	}
	return strings.Join(parts, " and ")
}
