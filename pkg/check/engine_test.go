package check

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.gwt/pkg/builder"
	"digital.vasic.gwt/pkg/gwt"
	"digital.vasic.gwt/pkg/prereq"
)

func TestNewEngine_RegistersAllBuiltins(t *testing.T) {
	e := NewEngine()

	builtins := []string{
		"equals", "not_empty", "contains", "contains_any",
		"min_length", "min_count", "exact_count", "regex",
		"one_of", "no_duplicates",
	}
	for _, name := range builtins {
		assert.True(t, e.HasEvaluator(name),
			"missing built-in evaluator: %s", name)
	}
}

func TestDefaultEngine_Register(t *testing.T) {
	e := NewEngine()

	err := e.Register("even", func(_ Definition, v any) (bool, string) {
		n, _ := v.(int)
		return n%2 == 0, "parity"
	})
	require.NoError(t, err)
	assert.True(t, e.HasEvaluator("even"))
	assert.NoError(t, e.Evaluate(Definition{Type: "even"}, 4))
	assert.Error(t, e.Evaluate(Definition{Type: "even"}, 3))

	err = e.Register("equals", evaluateEquals)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestDefaultEngine_Evaluate_UnknownType(t *testing.T) {
	err := NewEngine().Evaluate(Definition{Type: "nonexistent"}, "x")

	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Contains(t, f.Reason, "unknown check type")
}

func TestDefaultEngine_Evaluate_Failure(t *testing.T) {
	err := NewEngine().Evaluate(Definition{
		Type:    "equals",
		Value:   42,
		Message: "answer",
	}, 41)

	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, 42, f.Expected)
	assert.Equal(t, 41, f.Actual)
	assert.Equal(t, "answer: 41 != 42 (equals)", f.Error())

	err = NewEngine().Evaluate(Definition{
		Type:   "one_of",
		Values: []any{"a", "b"},
	}, "c")
	require.ErrorAs(t, err, &f)
	assert.Equal(t, []any{"a", "b"}, f.Expected)
	assert.Equal(t, "one_of: c is not one of [a b]", f.Error())
}

func TestReturns_FailurePassesThroughEvaluate(t *testing.T) {
	e := NewEngine()
	def, err := builder.Test("greeting").
		WhenReturns(func(prereq.Tuple) (any, error) {
			return "hello world", nil
		}).
		ThenReturns("mentions world", Returns(e,
			Definition{Type: "not_empty"},
			Definition{Type: "contains", Value: "WORLD"},
		)).
		And("is long", Returns(e,
			Definition{Type: "min_length", Value: 50},
		)).
		Build()
	require.NoError(t, err)

	require.NoError(t, def.Arrange(context.Background()))
	cases, err := def.Cases()
	require.NoError(t, err)
	require.NoError(t, cases[0].Act())

	as := cases[0].Assertions()
	assert.NoError(t, as[0].Evaluate())

	err = as[1].Evaluate()
	var f *Failure
	require.ErrorAs(t, err, &f)
	var af *gwt.AssertionFailure
	assert.False(t, errors.As(err, &af))
	assert.Equal(t, "length 11 < 50", f.Reason)
}

func TestThrows(t *testing.T) {
	e := NewEngine()
	check := Throws(e, Definition{Type: "contains", Value: "timeout"})

	assert.NoError(t, check(nil, errors.New("dial: timeout")))
	assert.Error(t, check(nil, errors.New("refused")))
	assert.Error(t, check(nil, nil))
}
