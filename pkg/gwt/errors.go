package gwt

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// Programming faults. These signal misuse of the API and are never
// reported as test failures. They are always returned wrapped in a
// *UsageError.
var (
	// ErrNotArranged is returned when cases are read before a
	// successful Arrange.
	ErrNotArranged = errors.New("test definition has not been arranged")

	// ErrAlreadyActed is returned when Act is called twice on the
	// same case.
	ErrAlreadyActed = errors.New("case has already been acted")

	// ErrNotActed is returned when an assertion is evaluated
	// before its case has been acted.
	ErrNotActed = errors.New("case has not been acted")
)

// UsageError reports a programming fault. A correct runner never
// triggers one.
type UsageError struct {
	// Op is the API call that was misused.
	Op string

	// Err is one of the Err* sentinels.
	Err error
}

func usage(op string, err error) *UsageError {
	return &UsageError{Op: op, Err: err}
}

// Error returns the operation and fault.
func (e *UsageError) Error() string {
	return fmt.Sprintf("gwt: %s: %v", e.Op, e.Err)
}

// Unwrap returns the sentinel.
func (e *UsageError) Unwrap() error { return e.Err }

// IsUsageError reports whether err is a programming fault.
func IsUsageError(err error) bool {
	var u *UsageError
	return errors.As(err, &u)
}

// FailureDetail marks errors produced by a richer failure
// reporting layer. Assertion.Evaluate returns such errors
// unchanged instead of wrapping them in an AssertionFailure.
type FailureDetail interface {
	error
	FailureDetail()
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// ArrangementFailure is returned by Definition.Arrange when a
// Given clause fails or a case cannot be constructed. It is fatal
// to the whole definition.
type ArrangementFailure struct {
	// Err is the original error.
	Err error

	at error
}

func newArrangementFailure(err error) *ArrangementFailure {
	return &ArrangementFailure{Err: err, at: errors.WithStack(err)}
}

// Error returns "Arrangement failed: " followed by the original
// message.
func (e *ArrangementFailure) Error() string {
	return "Arrangement failed: " + e.Err.Error()
}

// Unwrap returns the original error.
func (e *ArrangementFailure) Unwrap() error { return e.Err }

// StackTrace returns the stack recorded by the original error if
// it carries one, otherwise the stack of the Arrange call.
func (e *ArrangementFailure) StackTrace() errors.StackTrace {
	return stackOf(e.Err, e.at)
}

// Format supports %+v, which appends the stack trace.
func (e *ArrangementFailure) Format(s fmt.State, verb rune) {
	formatWithStack(s, verb, e.Error(), e.StackTrace())
}

// AssertionFailure is returned by Assertion.Evaluate when a check
// fails or the outcome does not match the declared expectation.
// It is scoped to one assertion.
type AssertionFailure struct {
	// Description is the failing assertion's description.
	Description string

	// Case describes the case the assertion belongs to.
	Case string

	// Err is the original error.
	Err error

	at error
}

func newAssertionFailure(
	description, caseDesc string,
	err error,
) *AssertionFailure {
	return &AssertionFailure{
		Description: description,
		Case:        caseDesc,
		Err:         err,
		at:          errors.WithStack(err),
	}
}

// Error returns the assertion description and the original
// message.
func (e *AssertionFailure) Error() string {
	return fmt.Sprintf(
		"assertion %q failed: %v", e.Description, e.Err,
	)
}

// Unwrap returns the original error.
func (e *AssertionFailure) Unwrap() error { return e.Err }

// StackTrace returns the stack of the original error if it
// carries one, otherwise the stack of the evaluation.
func (e *AssertionFailure) StackTrace() errors.StackTrace {
	return stackOf(e.Err, e.at)
}

// Format supports %+v, which appends the stack trace.
func (e *AssertionFailure) Format(s fmt.State, verb rune) {
	formatWithStack(s, verb, e.Error(), e.StackTrace())
}

// stackOf returns the innermost stack recorded in err's chain,
// falling back to the stack captured by at.
func stackOf(err, at error) errors.StackTrace {
	var found errors.StackTrace
	for e := err; e != nil; e = errors.Unwrap(e) {
		if st, ok := e.(stackTracer); ok {
			found = st.StackTrace()
		}
	}
	if found != nil {
		return found
	}
	if st, ok := at.(stackTracer); ok {
		return st.StackTrace()
	}
	return nil
}

func formatWithStack(
	s fmt.State,
	verb rune,
	msg string,
	st errors.StackTrace,
) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = io.WriteString(s, msg)
			st.Format(s, verb)
			return
		}
		_, _ = io.WriteString(s, msg)
	case 's':
		_, _ = io.WriteString(s, msg)
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", msg)
	}
}
