// Package builder provides the fluent surface for declaring
// Given/When/Then tests:
//
//	def, err := builder.Test("adds numbers").
//		GivenValues("a", 1, 2).
//		GivenValues("b", 10).
//		WhenReturns(add).
//		ThenReturns("sums", checkSum).
//		And("is positive", checkPositive).
//		Build()
//
// Build is the terminal step and returns a *gwt.Definition.
package builder

import (
	"errors"
	"fmt"

	"digital.vasic.gwt/pkg/config"
	"digital.vasic.gwt/pkg/gwt"
	"digital.vasic.gwt/pkg/prereq"
)

// Builder accumulates Given clauses, configuration overrides and
// the When operation.
type Builder struct {
	name  string
	opts  []gwt.DefinitionOption
	when  gwt.When
	specs []gwt.AssertionSpec
	errs  []error
}

// Test starts a new definition.
func Test(name string) *Builder {
	return &Builder{name: name}
}

// Given appends a Given clause.
func (b *Builder) Given(name string, src prereq.Source) *Builder {
	if src == nil {
		b.errs = append(b.errs, fmt.Errorf(
			"given %q: source must not be nil", name,
		))
		return b
	}
	b.opts = append(b.opts, gwt.WithGiven(name, src))
	return b
}

// GivenValues appends a Given clause with fixed values.
func (b *Builder) GivenValues(name string, vs ...any) *Builder {
	return b.Given(name, prereq.Values(vs...))
}

// Configure appends a configuration override applied before
// arrangement.
func (b *Builder) Configure(o config.Override) *Builder {
	if o == nil {
		b.errs = append(b.errs, errors.New(
			"configure: override must not be nil",
		))
		return b
	}
	b.opts = append(b.opts, gwt.WithOverride(o))
	return b
}

// When sets an operation that produces no value.
func (b *Builder) When(a gwt.Action) *Builder {
	if a == nil {
		return b.whenErr(errors.New("when: action must not be nil"))
	}
	return b.setWhen(gwt.Do(a))
}

// WhenReturns sets an operation that produces a value.
func (b *Builder) WhenReturns(f gwt.Function) *Builder {
	if f == nil {
		return b.whenErr(errors.New("when: function must not be nil"))
	}
	return b.setWhen(gwt.Call(f))
}

func (b *Builder) setWhen(w gwt.When) *Builder {
	if !b.when.IsZero() {
		return b.whenErr(errors.New("when: operation already set"))
	}
	b.when = w
	return b
}

func (b *Builder) whenErr(err error) *Builder {
	b.errs = append(b.errs, err)
	return b
}

// Then adds an assertion that receives the raw outcome.
func (b *Builder) Then(desc string, check gwt.Check) *ThenChain {
	c := &ThenChain{b: b}
	return c.And(desc, check)
}

// ThenReturns adds an assertion requiring the operation to
// return. A nil check only asserts that it returned.
func (b *Builder) ThenReturns(
	desc string,
	check gwt.ReturnCheck,
) *ReturnsChain {
	b.specs = append(b.specs, gwt.ThenReturns(desc, check))
	return &ReturnsChain{b: b}
}

// ThenThrows adds an assertion requiring the operation to fail.
// A nil check only asserts that it failed.
func (b *Builder) ThenThrows(
	desc string,
	check gwt.ThrowCheck,
) *ThrowsChain {
	b.specs = append(b.specs, gwt.ThenThrows(desc, check))
	return &ThrowsChain{b: b}
}

// Build validates the declaration and returns the definition.
func (b *Builder) Build() (*gwt.Definition, error) {
	errs := append([]error(nil), b.errs...)
	if b.when.IsZero() {
		errs = append(errs, errors.New("no when operation declared"))
	}
	if len(b.specs) == 0 {
		errs = append(errs, errors.New("no then assertion declared"))
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf(
			"build %q: %w", b.name, errors.Join(errs...),
		)
	}
	return gwt.NewDefinition(
		b.name, b.when, gwt.Assertions(b.specs...), b.opts...,
	)
}

// MustBuild is like Build but panics on error. It is meant for
// package-level definition catalogs.
func (b *Builder) MustBuild() *gwt.Definition {
	d, err := b.Build()
	if err != nil {
		panic(err)
	}
	return d
}

// ThenChain continues a Then declaration.
type ThenChain struct{ b *Builder }

// And adds another unconstrained assertion.
func (c *ThenChain) And(desc string, check gwt.Check) *ThenChain {
	if check == nil {
		c.b.errs = append(c.b.errs, fmt.Errorf(
			"then %q: check must not be nil", desc,
		))
		return c
	}
	c.b.specs = append(c.b.specs, gwt.Then(desc, check))
	return c
}

// Build finishes the declaration.
func (c *ThenChain) Build() (*gwt.Definition, error) {
	return c.b.Build()
}

// MustBuild finishes the declaration and panics on error.
func (c *ThenChain) MustBuild() *gwt.Definition {
	return c.b.MustBuild()
}

// ReturnsChain continues a ThenReturns declaration.
type ReturnsChain struct{ b *Builder }

// And adds another must-return assertion.
func (c *ReturnsChain) And(
	desc string,
	check gwt.ReturnCheck,
) *ReturnsChain {
	c.b.specs = append(c.b.specs, gwt.ThenReturns(desc, check))
	return c
}

// Build finishes the declaration.
func (c *ReturnsChain) Build() (*gwt.Definition, error) {
	return c.b.Build()
}

// MustBuild finishes the declaration and panics on error.
func (c *ReturnsChain) MustBuild() *gwt.Definition {
	return c.b.MustBuild()
}

// ThrowsChain continues a ThenThrows declaration.
type ThrowsChain struct{ b *Builder }

// And adds another must-throw assertion.
func (c *ThrowsChain) And(
	desc string,
	check gwt.ThrowCheck,
) *ThrowsChain {
	c.b.specs = append(c.b.specs, gwt.ThenThrows(desc, check))
	return c
}

// Build finishes the declaration.
func (c *ThrowsChain) Build() (*gwt.Definition, error) {
	return c.b.Build()
}

// MustBuild finishes the declaration and panics on error.
func (c *ThrowsChain) MustBuild() *gwt.Definition {
	return c.b.MustBuild()
}
