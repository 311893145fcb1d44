// Package outcome captures the result of invoking a test's When
// operation: either it finished (optionally with a value) or it
// failed with an error. Exactly one of the two is ever populated.
package outcome

import "fmt"

// Kind distinguishes the two branches of an Outcome.
type Kind int

const (
	// KindSuccess means the operation returned normally.
	KindSuccess Kind = iota + 1
	// KindFailure means the operation returned an error or
	// panicked.
	KindFailure
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Outcome is an immutable capture of a finished operation. The
// zero value is not a valid Outcome; use Returned, Completed or
// Threw.
type Outcome struct {
	kind     Kind
	value    any
	hasValue bool
	err      error
}

// Returned creates a successful Outcome carrying the value
// produced by a function.
func Returned(v any) Outcome {
	return Outcome{kind: KindSuccess, value: v, hasValue: true}
}

// Completed creates a successful Outcome for an operation that
// produces no value.
func Completed() Outcome {
	return Outcome{kind: KindSuccess}
}

// Threw creates a failed Outcome. A nil error is a programming
// error and panics.
func Threw(err error) Outcome {
	if err == nil {
		panic("outcome: Threw called with nil error")
	}
	return Outcome{kind: KindFailure, err: err}
}

// Kind reports which branch is populated.
func (o Outcome) Kind() Kind { return o.kind }

// IsSuccess returns true if the operation returned normally.
func (o Outcome) IsSuccess() bool { return o.kind == KindSuccess }

// IsFailure returns true if the operation failed.
func (o Outcome) IsFailure() bool { return o.kind == KindFailure }

// Value returns the returned value. The second result is false
// for failures and for operations that produce no value.
func (o Outcome) Value() (any, bool) {
	return o.value, o.hasValue
}

// Err returns the captured error, or nil on success.
func (o Outcome) Err() error { return o.err }

// String renders the outcome for logs and reports.
func (o Outcome) String() string {
	switch o.kind {
	case KindSuccess:
		if !o.hasValue {
			return "completed"
		}
		return fmt.Sprintf("returned %v", o.value)
	case KindFailure:
		return fmt.Sprintf("threw %v", o.err)
	default:
		return "unset"
	}
}
