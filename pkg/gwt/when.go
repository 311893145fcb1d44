package gwt

import (
	"github.com/pkg/errors"

	"digital.vasic.gwt/pkg/outcome"
	"digital.vasic.gwt/pkg/prereq"
)

// Action is a When operation that produces no value.
type Action func(t prereq.Tuple) error

// Function is a When operation that produces a value.
type Function func(t prereq.Tuple) (any, error)

// When is the single operation under test. Build it with Do or
// Call.
type When struct {
	action   Action
	function Function
}

// Do wraps an action.
func Do(a Action) When {
	return When{action: a}
}

// Call wraps a function.
func Call(f Function) When {
	return When{function: f}
}

// IsZero reports whether no operation has been set.
func (w When) IsZero() bool {
	return w.action == nil && w.function == nil
}

// IsFunction reports whether the operation produces a value.
func (w When) IsFunction() bool { return w.function != nil }

// invoke runs the operation and captures whatever happens. An
// error return or a panic becomes a failed Outcome; nothing
// escapes.
func (w When) invoke(t prereq.Tuple) (o outcome.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			o = outcome.Threw(panicError("operation", r))
		}
	}()

	switch {
	case w.function != nil:
		v, err := w.function(t)
		if err != nil {
			return outcome.Threw(err)
		}
		return outcome.Returned(v)
	case w.action != nil:
		if err := w.action(t); err != nil {
			return outcome.Threw(err)
		}
		return outcome.Completed()
	default:
		return outcome.Threw(errors.New("no operation to invoke"))
	}
}

// panicError converts a recovered value into an error, keeping
// the value itself if it already is one.
func panicError(what string, r any) error {
	if err, ok := r.(error); ok {
		return errors.Wrapf(err, "%s panicked", what)
	}
	return errors.Errorf("%s panicked: %v", what, r)
}
