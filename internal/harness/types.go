package harness

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expectation matched.
	Pass bool `json:"pass"`

	// RunID is the ID the run was recorded under.
	RunID string `json:"run_id"`

	// ProgramID is the content address of the cleaned program.
	ProgramID string `json:"program_id"`

	// Status is halted or faulted.
	Status string `json:"status"`

	// Output holds the raw values written by '.'.
	Output []int `json:"output"`

	// Text is what the output preset rendered.
	Text string `json:"text"`

	// Tape is the used prefix of the final tape.
	Tape []int `json:"tape"`

	Pointer int `json:"pointer"`
	Steps   int `json:"steps"`

	// ErrorCode and Error describe the fault, if any.
	ErrorCode string `json:"error_code,omitempty"`
	Error     string `json:"error,omitempty"`

	// Errors contains expectation failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Output: []int{},
		Tape:   []int{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
