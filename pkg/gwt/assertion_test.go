package gwt

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.gwt/pkg/outcome"
	"digital.vasic.gwt/pkg/prereq"
)

type detailedFailure struct {
	expected, actual any
}

func (d *detailedFailure) Error() string {
	return fmt.Sprintf("expected %v, got %v", d.expected, d.actual)
}

func (d *detailedFailure) FailureDetail() {}

func returning(v any) When {
	return Call(func(prereq.Tuple) (any, error) { return v, nil })
}

func throwing(err error) When {
	return Do(func(prereq.Tuple) error { return err })
}

func TestAssertion_EvaluateBeforeAct(t *testing.T) {
	var checked bool
	c := singleCase(t, returning(1),
		Then("raw", func(prereq.Tuple, outcome.Outcome) error {
			checked = true
			return nil
		}),
		ThenReturns("returns", nil),
		ThenThrows("throws", nil),
	)

	for _, a := range c.Assertions() {
		err := a.Evaluate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotActed)
		assert.True(t, IsUsageError(err))

		var af *AssertionFailure
		assert.False(t, errors.As(err, &af))
	}
	assert.False(t, checked)
}

func TestAssertion_Then_SeesRawOutcome(t *testing.T) {
	boom := errors.New("boom")

	var seen outcome.Outcome
	c := singleCase(t, throwing(boom),
		Then("inspects", func(_ prereq.Tuple, o outcome.Outcome) error {
			seen = o
			return nil
		}),
	)
	require.NoError(t, c.Act())
	require.NoError(t, c.Assertions()[0].Evaluate())
	assert.True(t, seen.IsFailure())
	assert.Same(t, boom, seen.Err())
}

func TestAssertion_ThenThrows_OnReturnNeverRunsCheck(t *testing.T) {
	var checked bool
	c := singleCase(t, returning("fine"),
		ThenThrows("throws", func(prereq.Tuple, error) error {
			checked = true
			return nil
		}),
	)
	require.NoError(t, c.Act())

	err := c.Assertions()[0].Evaluate()
	var af *AssertionFailure
	require.ErrorAs(t, err, &af)
	assert.Contains(t, err.Error(), "expected an error to be thrown")
	assert.Equal(t, "throws", af.Description)
	assert.Equal(t, NoPrerequisites, af.Case)
	assert.False(t, checked)
}

func TestAssertion_ThenThrows_PassesErrorToCheck(t *testing.T) {
	boom := errors.New("boom")
	var got error
	c := singleCase(t, throwing(boom),
		ThenThrows("throws boom", func(_ prereq.Tuple, err error) error {
			got = err
			return nil
		}),
	)
	require.NoError(t, c.Act())
	require.NoError(t, c.Assertions()[0].Evaluate())
	assert.Same(t, boom, got)
}

func TestAssertion_ThenReturns_ActionPassesNil(t *testing.T) {
	var got any = "unset"
	c := singleCase(t, Do(func(prereq.Tuple) error { return nil }),
		ThenReturns("void", func(_ prereq.Tuple, v any) error {
			got = v
			return nil
		}),
	)
	require.NoError(t, c.Act())
	require.NoError(t, c.Assertions()[0].Evaluate())
	assert.Nil(t, got)
}

func TestAssertion_CheckErrorIsWrapped(t *testing.T) {
	c := singleCase(t, returning(41),
		ThenReturns("is 42", func(_ prereq.Tuple, v any) error {
			return errors.Errorf("want 42, got %v", v)
		}),
	)
	require.NoError(t, c.Act())

	err := c.Assertions()[0].Evaluate()
	var af *AssertionFailure
	require.ErrorAs(t, err, &af)
	assert.Equal(t, `assertion "is 42" failed: want 42, got 41`, err.Error())
	assert.NotEmpty(t, af.StackTrace())
	assert.Contains(t, fmt.Sprintf("%+v", af), "assertion_test.go")
	assert.Equal(t, `"assertion \"is 42\" failed: want 42, got 41"`,
		fmt.Sprintf("%q", af))
}

func TestAssertion_CheckPanicIsWrapped(t *testing.T) {
	c := singleCase(t, returning(1),
		ThenReturns("panics", func(prereq.Tuple, any) error {
			panic("check broke")
		}),
	)
	require.NoError(t, c.Act())

	err := c.Assertions()[0].Evaluate()
	var af *AssertionFailure
	require.ErrorAs(t, err, &af)
	assert.Contains(t, err.Error(), "check panicked: check broke")
}

func TestAssertion_FailureDetailPassesThrough(t *testing.T) {
	detail := &detailedFailure{expected: 2, actual: 1}
	c := singleCase(t, returning(1),
		ThenReturns("detailed", func(prereq.Tuple, any) error {
			return detail
		}),
		Then("wrapped detail", func(prereq.Tuple, outcome.Outcome) error {
			return fmt.Errorf("context: %w", detail)
		}),
	)
	require.NoError(t, c.Act())

	as := c.Assertions()
	err := as[0].Evaluate()
	assert.Same(t, detail, err)

	err = as[1].Evaluate()
	var af *AssertionFailure
	assert.False(t, errors.As(err, &af))
	assert.EqualError(t, err, "context: expected 2, got 1")
}

func TestAssertion_ExpectationViolationNotPassedThrough(t *testing.T) {
	detail := &detailedFailure{expected: "x", actual: "y"}
	c := singleCase(t, throwing(detail),
		ThenReturns("returns", nil),
	)
	require.NoError(t, c.Act())

	err := c.Assertions()[0].Evaluate()
	var af *AssertionFailure
	require.ErrorAs(t, err, &af)
}

func TestAssertion_EvaluateReRunsCheck(t *testing.T) {
	var calls int
	c := singleCase(t, returning(1),
		ThenReturns("counts", func(prereq.Tuple, any) error {
			calls++
			return nil
		}),
	)
	require.NoError(t, c.Act())
	a := c.Assertions()[0]
	require.NoError(t, a.Evaluate())
	require.NoError(t, a.Evaluate())
	assert.Equal(t, 2, calls)
}

func TestAssertion_NilUnconstrainedCheckPasses(t *testing.T) {
	c := singleCase(t, throwing(errors.New("x")), Then("noop", nil))
	require.NoError(t, c.Act())
	assert.NoError(t, c.Assertions()[0].Evaluate())
}

func TestAssertion_CheckReceivesPrerequisites(t *testing.T) {
	d, err := NewDefinition("prereqs",
		Call(func(tp prereq.Tuple) (any, error) {
			return prereq.At[int](tp, 0) * 2, nil
		}),
		Assertions(ThenReturns("doubles", func(tp prereq.Tuple, v any) error {
			if v != prereq.At[int](tp, 0)*2 {
				return errors.New("not doubled")
			}
			return nil
		})),
		WithGiven("n", prereq.Values(1, 2, 3)),
	)
	require.NoError(t, err)
	for _, c := range arranged(t, d) {
		require.NoError(t, c.Act())
		assert.NoError(t, c.Assertions()[0].Evaluate())
	}
}

func TestExpectation_String(t *testing.T) {
	assert.Equal(t, "none", ExpectNone.String())
	assert.Equal(t, "returns", ExpectReturn.String())
	assert.Equal(t, "throws", ExpectThrow.String())
	assert.Equal(t, "unknown", Expectation(9).String())

	spec := ThenThrows("d", nil)
	assert.Equal(t, "d", spec.Description())
	assert.Equal(t, ExpectThrow, spec.Expectation())
}
