package harness

import "github.com/roach88/gearmatrix/internal/ir"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every assertion held.
	Pass bool `json:"pass"`

	// Train is the name of the calculated train.
	Train string `json:"train"`

	// Calculation is the engine result, nil when the calculation failed.
	Calculation *ir.Result `json:"calculation,omitempty"`

	// Error is the calculation error message, empty on success.
	Error string `json:"error,omitempty"`

	// ErrorCode is the graph error code of a failed calculation.
	ErrorCode string `json:"error_code,omitempty"`

	// Report is the text report of a successful calculation.
	Report string `json:"-"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Snapshot returns the text compared against golden files: the report of a
// successful calculation, or the error of a failed one.
func (r *Result) Snapshot() string {
	if r.Calculation == nil {
		return "error: " + r.Error + "\n"
	}
	return r.Report
}
