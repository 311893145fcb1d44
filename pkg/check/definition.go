// Package check provides reusable, named checks for Then
// assertions. Checks are evaluated by an Engine holding a
// registry of evaluators; failures are reported as *Failure,
// which carries expected and actual values and passes through
// assertion evaluation unwrapped.
package check

import (
	"fmt"
)

// Definition describes a single named check.
type Definition struct {
	// Type is the evaluator type (e.g. "equals", "contains",
	// "min_length").
	Type string `json:"type" yaml:"type"`

	// Value is the expected value for single-value checks.
	Value any `json:"value,omitempty" yaml:"value,omitempty"`

	// Values holds expected values for multi-value checks
	// (e.g. "one_of").
	Values []any `json:"values,omitempty" yaml:"values,omitempty"`

	// Message is a human-readable description shown on failure.
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Evaluator evaluates one check type against a concrete value.
// It returns whether the check passed and an explanation.
type Evaluator func(def Definition, value any) (bool, string)

// Failure reports a failed check with its expected and actual
// values.
type Failure struct {
	Type     string `json:"type"`
	Expected any    `json:"expected"`
	Actual   any    `json:"actual"`
	Reason   string `json:"reason"`
	Message  string `json:"message,omitempty"`
}

// Error returns the check type and reason, prefixed by the
// definition's message when present.
func (f *Failure) Error() string {
	if f.Message != "" {
		return fmt.Sprintf("%s: %s (%s)", f.Message, f.Reason, f.Type)
	}
	return fmt.Sprintf("%s: %s", f.Type, f.Reason)
}

// FailureDetail marks Failure as a structured failure so it is
// reported as is.
func (f *Failure) FailureDetail() {}
