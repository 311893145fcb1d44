package gwt

import (
	"github.com/pkg/errors"

	"digital.vasic.gwt/pkg/outcome"
	"digital.vasic.gwt/pkg/prereq"
)

// Expectation constrains the kind of Outcome an assertion
// accepts before its check runs.
type Expectation int

const (
	// ExpectNone passes the raw Outcome to the check.
	ExpectNone Expectation = iota
	// ExpectReturn requires the operation to have returned.
	ExpectReturn
	// ExpectThrow requires the operation to have failed.
	ExpectThrow
)

// String returns the lower-case name of the expectation.
func (e Expectation) String() string {
	switch e {
	case ExpectNone:
		return "none"
	case ExpectReturn:
		return "returns"
	case ExpectThrow:
		return "throws"
	default:
		return "unknown"
	}
}

// Check inspects the raw outcome of a case.
type Check func(t prereq.Tuple, o outcome.Outcome) error

// ReturnCheck inspects the value returned by a function (nil
// for actions).
type ReturnCheck func(t prereq.Tuple, v any) error

// ThrowCheck inspects the error produced by the operation.
type ThrowCheck func(t prereq.Tuple, err error) error

// AssertionSpec declares an assertion before it is bound to a
// case. Build one with Then, ThenReturns or ThenThrows.
type AssertionSpec struct {
	description string
	expectation Expectation
	check       Check
	returns     ReturnCheck
	throws      ThrowCheck
}

// Then declares an unconstrained assertion. The check decides on
// its own whether success or failure is acceptable.
func Then(description string, check Check) AssertionSpec {
	return AssertionSpec{
		description: description,
		expectation: ExpectNone,
		check:       check,
	}
}

// ThenReturns declares an assertion that requires the operation
// to return. A nil check only asserts that it returned.
func ThenReturns(
	description string,
	check ReturnCheck,
) AssertionSpec {
	return AssertionSpec{
		description: description,
		expectation: ExpectReturn,
		returns:     check,
	}
}

// ThenThrows declares an assertion that requires the operation
// to fail. A nil check only asserts that it failed.
func ThenThrows(
	description string,
	check ThrowCheck,
) AssertionSpec {
	return AssertionSpec{
		description: description,
		expectation: ExpectThrow,
		throws:      check,
	}
}

// Description returns the declared description.
func (s AssertionSpec) Description() string { return s.description }

// Expectation returns the declared expectation.
func (s AssertionSpec) Expectation() Expectation {
	return s.expectation
}

// AssertionFactory materializes the assertions of a case. It is
// called once per case, at construction.
type AssertionFactory func(c *Case) []*Assertion

// Assertions returns a factory binding each spec to the case in
// the given order.
func Assertions(specs ...AssertionSpec) AssertionFactory {
	specs = append([]AssertionSpec(nil), specs...)
	return func(c *Case) []*Assertion {
		out := make([]*Assertion, len(specs))
		for i, s := range specs {
			out[i] = NewAssertion(c, s)
		}
		return out
	}
}

// Assertion is an AssertionSpec bound to its owning case.
type Assertion struct {
	owner *Case
	spec  AssertionSpec
}

// NewAssertion binds spec to c. Custom factories use it to build
// their assertions.
func NewAssertion(c *Case, spec AssertionSpec) *Assertion {
	return &Assertion{owner: c, spec: spec}
}

// Description returns the human-readable description.
func (a *Assertion) Description() string {
	return a.spec.description
}

// Expectation returns the declared expectation.
func (a *Assertion) Expectation() Expectation {
	return a.spec.expectation
}

// Case returns the owning case.
func (a *Assertion) Case() *Case { return a.owner }

// Evaluate runs the check against the owning case's prerequisites
// and outcome. It returns nil on success, an *AssertionFailure or
// a FailureDetail error on failure, and a *UsageError if the case
// has not been acted. Each call re-runs the check.
func (a *Assertion) Evaluate() error {
	o, ok := a.owner.Outcome()
	if !ok {
		return usage("evaluate", ErrNotActed)
	}

	switch a.spec.expectation {
	case ExpectReturn:
		if o.IsFailure() {
			return a.fail(errors.Wrap(
				o.Err(),
				"expected a return but an unexpected error was thrown",
			))
		}
	case ExpectThrow:
		if o.IsSuccess() {
			return a.fail(errors.New(
				"expected an error to be thrown but the operation returned",
			))
		}
	}

	err := a.run(o)
	if err == nil {
		return nil
	}
	var detail FailureDetail
	if errors.As(err, &detail) {
		return err
	}
	return a.fail(err)
}

func (a *Assertion) run(o outcome.Outcome) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError("check", r)
		}
	}()

	t := a.owner.Prerequisites()
	switch a.spec.expectation {
	case ExpectReturn:
		if a.spec.returns == nil {
			return nil
		}
		v, _ := o.Value()
		return a.spec.returns(t, v)
	case ExpectThrow:
		if a.spec.throws == nil {
			return nil
		}
		return a.spec.throws(t, o.Err())
	default:
		if a.spec.check == nil {
			return nil
		}
		return a.spec.check(t, o)
	}
}

func (a *Assertion) fail(err error) *AssertionFailure {
	return newAssertionFailure(
		a.spec.description, a.owner.Describe(), err,
	)
}
