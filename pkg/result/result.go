// Package result holds the serializable record of a definition
// run: the run itself, each case, and each assertion.
package result

import "time"

// Status constants for runs and cases.
const (
	StatusPending = "pending"
	StatusRunning = "running"
	StatusPassed  = "passed"
	StatusFailed  = "failed"
	// StatusError marks a definition that could not run because
	// its arrangement failed. It is distinct from StatusFailed.
	StatusError = "error"
	// StatusEmpty marks a definition that arranged zero cases.
	StatusEmpty = "empty"
)

// Run captures the complete outcome of running one definition.
type Run struct {
	// RunID uniquely identifies this run.
	RunID string `json:"run_id"`

	// Definition is the name of the definition that was run.
	Definition string `json:"definition"`

	// Status is one of the Status* constants.
	Status string `json:"status"`

	// StartTime is when the run began.
	StartTime time.Time `json:"start_time"`

	// EndTime is when the run finished.
	EndTime time.Time `json:"end_time"`

	// Duration is the wall-clock run time.
	Duration time.Duration `json:"duration"`

	// Cases holds per-case results in case order.
	Cases []Case `json:"cases"`

	// Error holds the arrangement failure message when Status is
	// StatusError.
	Error string `json:"error,omitempty"`
}

// Case captures the outcome of a single case.
type Case struct {
	// Index is the case position in the generated product.
	Index int `json:"index"`

	// Description renders the case's prerequisite values.
	Description string `json:"description"`

	// Status is StatusPassed or StatusFailed.
	Status string `json:"status"`

	// Outcome renders what the operation did, e.g. "returned 3".
	Outcome string `json:"outcome"`

	// Threw reports whether the operation failed.
	Threw bool `json:"threw"`

	// Duration is the time spent acting and evaluating.
	Duration time.Duration `json:"duration"`

	// Assertions holds the evaluations in declared order.
	Assertions []Assertion `json:"assertions"`

	// Error explains a case that failed before its assertions
	// ran, such as a rejected before-case hook.
	Error string `json:"error,omitempty"`
}

// Assertion captures one evaluated assertion.
type Assertion struct {
	// Description is the user-facing assertion text.
	Description string `json:"description"`

	// Expectation is "none", "returns" or "throws".
	Expectation string `json:"expectation"`

	// Passed indicates whether the assertion succeeded.
	Passed bool `json:"passed"`

	// Message is the failure message when Passed is false.
	Message string `json:"message,omitempty"`
}

// AllPassed returns true if every assertion in the case passed.
func (c *Case) AllPassed() bool {
	for _, a := range c.Assertions {
		if !a.Passed {
			return false
		}
	}
	return true
}

// FailedAssertions returns the assertions that did not pass.
func (c *Case) FailedAssertions() []Assertion {
	var out []Assertion
	for _, a := range c.Assertions {
		if !a.Passed {
			out = append(out, a)
		}
	}
	return out
}

// CaseCounts returns the number of passed and failed cases.
func (r *Run) CaseCounts() (passed, failed int) {
	for _, c := range r.Cases {
		if c.Status == StatusPassed {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}

// IsFinal returns true if the status is a terminal state.
func (r *Run) IsFinal() bool {
	switch r.Status {
	case StatusPassed, StatusFailed, StatusError, StatusEmpty:
		return true
	}
	return false
}

// Succeeded reports whether the run should count as green. An
// empty run is green; an arrangement error is not.
func (r *Run) Succeeded() bool {
	return r.Status == StatusPassed || r.Status == StatusEmpty
}

// StatusFor derives a run status from its case results.
func StatusFor(cases []Case) string {
	if len(cases) == 0 {
		return StatusEmpty
	}
	for _, c := range cases {
		if c.Status != StatusPassed {
			return StatusFailed
		}
	}
	return StatusPassed
}
