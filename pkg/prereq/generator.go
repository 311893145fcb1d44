package prereq

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// SourceError reports which Given clause failed during
// generation.
type SourceError struct {
	// Index is the zero-based clause position.
	Index int

	// Name is the clause name, possibly empty.
	Name string

	// Err is the error returned (or panic raised) by the source.
	Err error
}

// Error returns the clause name and the underlying message.
func (e *SourceError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("given #%d: %v", e.Index+1, e.Err)
	}
	return fmt.Sprintf("given %q: %v", e.Name, e.Err)
}

// Unwrap returns the source's error.
func (e *SourceError) Unwrap() error { return e.Err }

// Option configures Product.
type Option func(*options)

type options struct {
	concurrency int
}

// WithConcurrency evaluates up to n sources at the same time.
// Values below 2 keep the default sequential evaluation. The
// order of the generated tuples does not depend on this setting.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// Product evaluates every source exactly once and returns the
// Cartesian product of their values in nested-loop order: the
// first source varies slowest and the last source fastest.
//
// With no sources the result is a single empty tuple. A source
// yielding no values collapses the product to zero tuples. If any
// source fails, no tuples are returned.
func Product(
	ctx context.Context,
	sources []NamedSource,
	opts ...Option,
) ([]Tuple, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		sets [][]any
		err  error
	)
	if o.concurrency > 1 && len(sources) > 1 {
		sets, err = materializeConcurrent(
			ctx, sources, o.concurrency,
		)
	} else {
		sets, err = materialize(ctx, sources)
	}
	if err != nil {
		return nil, err
	}

	return combine(sets), nil
}

// materialize evaluates sources in declaration order, stopping
// at the first failure.
func materialize(
	ctx context.Context,
	sources []NamedSource,
) ([][]any, error) {
	sets := make([][]any, len(sources))
	for i, s := range sources {
		values, err := evaluate(ctx, s)
		if err != nil {
			return nil, &SourceError{
				Index: i, Name: s.Name, Err: err,
			}
		}
		sets[i] = values
	}
	return sets, nil
}

func materializeConcurrent(
	ctx context.Context,
	sources []NamedSource,
	limit int,
) ([][]any, error) {
	sets := make([][]any, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, s := range sources {
		g.Go(func() error {
			values, err := evaluate(gctx, s)
			if err != nil {
				return &SourceError{
					Index: i, Name: s.Name, Err: err,
				}
			}
			sets[i] = values
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sets, nil
}

// evaluate invokes a single source, converting a panic into an
// error and copying the values so later mutation by the source
// cannot leak into generated tuples.
func evaluate(
	ctx context.Context,
	s NamedSource,
) (values []any, err error) {
	if s.Source == nil {
		return nil, errors.New("source is nil")
	}

	defer func() {
		if r := recover(); r != nil {
			values = nil
			err = errors.Errorf("source panicked: %v", r)
		}
	}()

	got, err := s.Source(ctx)
	if err != nil {
		return nil, err
	}
	values = make([]any, len(got))
	copy(values, got)
	return values, nil
}

func combine(sets [][]any) []Tuple {
	tuples := []Tuple{{}}
	for _, set := range sets {
		next := make([]Tuple, 0, len(tuples)*len(set))
		for _, prefix := range tuples {
			for _, v := range set {
				t := make(Tuple, len(prefix)+1)
				copy(t, prefix)
				t[len(prefix)] = v
				next = append(next, t)
			}
		}
		tuples = next
	}
	return tuples
}
