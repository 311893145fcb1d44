// Package demo holds the example definitions run by gwt-demo.
package demo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"digital.vasic.gwt/pkg/builder"
	"digital.vasic.gwt/pkg/check"
	"digital.vasic.gwt/pkg/config"
	"digital.vasic.gwt/pkg/gwt"
	"digital.vasic.gwt/pkg/prereq"
	"digital.vasic.gwt/pkg/registry"
)

// DivisorsEnv names the environment key read by the divide
// definition's Given clause.
const DivisorsEnv = "DIVISORS"

// Catalog returns a registry holding the demo definitions.
// Failing examples, which show an assertion failure and an
// arrangement failure, are included only when requested.
func Catalog(includeFailing bool) *registry.DefaultRegistry {
	engine := check.NewEngine()
	reg := registry.NewRegistry()
	reg.MustRegister(
		answer(),
		concat(engine),
		throws(engine),
		divide(),
		upper(engine),
	)
	if includeFailing {
		reg.MustRegister(throwsButExpectedReturn(), dbDown())
	}
	return reg
}

func answer() *gwt.Definition {
	return builder.Test("answer").
		WhenReturns(func(prereq.Tuple) (any, error) { return 42, nil }).
		ThenReturns("is 42", func(_ prereq.Tuple, v any) error {
			if v != 42 {
				return fmt.Errorf("expected 42, got %v", v)
			}
			return nil
		}).
		MustBuild()
}

func concat(engine check.Engine) *gwt.Definition {
	return builder.Test("concat").
		GivenValues("number", 1, 2).
		GivenValues("letter", "a", "b").
		WhenReturns(func(t prereq.Tuple) (any, error) {
			return fmt.Sprintf("%d%s",
				prereq.At[int](t, 0), prereq.At[string](t, 1)), nil
		}).
		ThenReturns("returns", nil).
		And("has two characters", check.Returns(engine,
			check.Definition{Type: "min_length", Value: 2})).
		MustBuild()
}

func boom(prereq.Tuple) error { return errors.New("boom") }

func throws(engine check.Engine) *gwt.Definition {
	return builder.Test("boom/throws").
		When(boom).
		ThenThrows("throws", nil).
		And("mentions boom", check.Throws(engine,
			check.Definition{Type: "contains", Value: "boom"})).
		MustBuild()
}

func throwsButExpectedReturn() *gwt.Definition {
	return builder.Test("failing/boom-returns").
		When(boom).
		ThenReturns("returns", nil).
		MustBuild()
}

func dbDown() *gwt.Definition {
	return builder.Test("failing/db-down").
		Given("rows", func(context.Context) ([]any, error) {
			return nil, errors.New("db down")
		}).
		When(func(prereq.Tuple) error { return nil }).
		ThenReturns("returns", nil).
		MustBuild()
}

// divisors reads a comma-separated list of integers from the
// run configuration, defaulting to 1,2,5.
func divisors(ctx context.Context) ([]any, error) {
	raw := "1,2,5"
	if cfg := config.FromContext(ctx); cfg != nil {
		raw = cfg.GetEnv(DivisorsEnv, raw)
	}
	var out []any
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("parse divisor %q: %w", part, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func divide() *gwt.Definition {
	return builder.Test("divide").
		Configure(func(c *config.Config) {
			if c.Parallelism < 2 {
				c.Parallelism = 2
			}
		}).
		GivenValues("dividend", 100, 30).
		Given("divisor", divisors).
		WhenReturns(func(t prereq.Tuple) (any, error) {
			a, b := prereq.At[int](t, 0), prereq.At[int](t, 1)
			if b == 0 {
				return nil, errors.New("division by zero")
			}
			return a / b, nil
		}).
		ThenReturns("quotient times divisor is within one divisor",
			func(t prereq.Tuple, v any) error {
				a, b := prereq.At[int](t, 0), prereq.At[int](t, 1)
				q, ok := v.(int)
				if !ok {
					return fmt.Errorf("expected int, got %T", v)
				}
				if rem := a - q*b; rem < 0 || rem >= b {
					return fmt.Errorf("remainder %d out of range", rem)
				}
				return nil
			}).
		MustBuild()
}

func upper(engine check.Engine) *gwt.Definition {
	return builder.Test("strings/upper").
		GivenValues("word", "given", "when", "then").
		WhenReturns(func(t prereq.Tuple) (any, error) {
			return strings.ToUpper(prereq.At[string](t, 0)), nil
		}).
		ThenReturns("is upper case", check.Returns(engine,
			check.Definition{Type: "not_empty"},
			check.Definition{Type: "regex", Value: "^[A-Z]+$"},
		)).
		MustBuild()
}
