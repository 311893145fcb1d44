// Package gwt is the core of the Given/When/Then test model. A
// Definition combines prerequisite sources, one operation and an
// assertion factory. Arrange expands it into independent cases;
// each case is acted once and its assertions evaluated in order.
//
// Only Given evaluation receives a context. Act and Evaluate do
// not observe cancellation; a runner that needs to bound them
// must do so around the calls.
package gwt

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/pkg/errors"

	"digital.vasic.gwt/pkg/config"
	"digital.vasic.gwt/pkg/prereq"
)

// Definition is an immutable test description. It may be
// arranged more than once; every Arrange builds a fresh case
// list and never mutates a list handed out earlier.
type Definition struct {
	name      string
	overrides []config.Override
	sources   []prereq.NamedSource
	when      When
	factory   AssertionFactory

	cases atomic.Pointer[[]*Case]
}

// DefinitionOption configures a Definition at construction.
type DefinitionOption func(*Definition)

// WithGiven appends a Given clause. Clauses combine in the order
// they are added, the first varying slowest.
func WithGiven(name string, src prereq.Source) DefinitionOption {
	return func(d *Definition) {
		d.sources = append(d.sources, prereq.NamedSource{
			Name: name, Source: src,
		})
	}
}

// WithOverride appends a configuration override.
func WithOverride(o config.Override) DefinitionOption {
	return func(d *Definition) {
		d.overrides = append(d.overrides, o)
	}
}

// NewDefinition creates a Definition. The operation and the
// assertion factory are required.
func NewDefinition(
	name string,
	when When,
	factory AssertionFactory,
	opts ...DefinitionOption,
) (*Definition, error) {
	if when.IsZero() {
		return nil, fmt.Errorf(
			"definition %q: when operation must not be nil", name,
		)
	}
	if factory == nil {
		return nil, fmt.Errorf(
			"definition %q: assertion factory must not be nil",
			name,
		)
	}
	d := &Definition{
		name:    name,
		when:    when,
		factory: factory,
	}
	for _, opt := range opts {
		opt(d)
	}
	for i, s := range d.sources {
		if s.Source == nil {
			return nil, fmt.Errorf(
				"definition %q: given #%d has no source",
				name, i+1,
			)
		}
	}
	return d, nil
}

// Name returns the definition name.
func (d *Definition) Name() string { return d.name }

// Givens returns the clause names in declaration order.
func (d *Definition) Givens() []string {
	names := make([]string, len(d.sources))
	for i, s := range d.sources {
		names[i] = s.Name
	}
	return names
}

// HasOverrides reports whether any configuration override was
// declared.
func (d *Definition) HasOverrides() bool {
	return len(d.overrides) > 0
}

// ApplyOverrides folds the overrides over cfg in declaration
// order and returns it.
func (d *Definition) ApplyOverrides(cfg *config.Config) *config.Config {
	return cfg.Apply(d.overrides...)
}

// Arrange evaluates every Given clause once, builds one case per
// combination and publishes the case list. On failure it returns
// an *ArrangementFailure and Cases stays unavailable.
//
// If ctx carries a config (config.WithConfig) with
// SourceConcurrency above one, clauses are evaluated concurrently.
// Only the Given clauses observe ctx; Act and Evaluate take no
// context and are not cancelled.
func (d *Definition) Arrange(ctx context.Context) error {
	d.cases.Store(nil)

	cases, err := d.arrange(ctx)
	if err != nil {
		return newArrangementFailure(err)
	}
	d.cases.Store(&cases)
	return nil
}

func (d *Definition) arrange(
	ctx context.Context,
) (cases []*Case, err error) {
	defer func() {
		if r := recover(); r != nil {
			cases = nil
			err = panicError("arrangement", r)
		}
	}()

	var opts []prereq.Option
	if cfg := config.FromContext(ctx); cfg != nil &&
		cfg.SourceConcurrency > 1 {
		opts = append(opts,
			prereq.WithConcurrency(cfg.SourceConcurrency),
		)
	}

	tuples, err := prereq.Product(ctx, d.sources, opts...)
	if err != nil {
		return nil, err
	}

	cases = make([]*Case, 0, len(tuples))
	for i, t := range tuples {
		c, err := newCase(i, t, d.when, d.factory)
		if err != nil {
			return nil, errors.Wrapf(
				err, "construct case %d %s", i, t,
			)
		}
		cases = append(cases, c)
	}
	return cases, nil
}

// Arranged reports whether Cases is available.
func (d *Definition) Arranged() bool {
	return d.cases.Load() != nil
}

// Cases returns the cases of the latest successful Arrange in
// generation order. Before that it returns a *UsageError
// wrapping ErrNotArranged.
func (d *Definition) Cases() ([]*Case, error) {
	p := d.cases.Load()
	if p == nil {
		return nil, usage("cases", ErrNotArranged)
	}
	return slices.Clone(*p), nil
}
