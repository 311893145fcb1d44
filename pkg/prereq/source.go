// Package prereq provides Given-clause prerequisite sources and
// the generator that combines them into per-case tuples.
package prereq

import (
	"context"
	"fmt"
	"strings"
)

// Source lazily produces the ordered values of one Given clause.
// It may block (e.g. to load fixture data) and should honor
// cancellation of ctx.
type Source func(ctx context.Context) ([]any, error)

// NamedSource pairs a Source with the clause name used in
// descriptions and error messages.
type NamedSource struct {
	// Name identifies the clause (e.g. "an empty cart").
	Name string

	// Source produces the clause's values.
	Source Source
}

// Values returns a Source yielding the given values in order.
func Values(vs ...any) Source {
	return func(_ context.Context) ([]any, error) {
		out := make([]any, len(vs))
		copy(out, vs)
		return out, nil
	}
}

// Slice returns a Source yielding the elements of items.
func Slice[T any](items []T) Source {
	return func(_ context.Context) ([]any, error) {
		return box(items), nil
	}
}

// Of adapts a typed getter into a Source.
func Of[T any](
	fn func(ctx context.Context) ([]T, error),
) Source {
	return func(ctx context.Context) ([]any, error) {
		items, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return box(items), nil
	}
}

func box[T any](items []T) []any {
	out := make([]any, len(items))
	for i, v := range items {
		out[i] = v
	}
	return out
}

// Tuple is the ordered list of prerequisite values of one case,
// one element per Given clause in declaration order.
type Tuple []any

// Len returns the number of prerequisites.
func (t Tuple) Len() int { return len(t) }

// Get returns the i-th prerequisite.
func (t Tuple) Get(i int) any { return t[i] }

// String renders the tuple as "(v1, v2, ...)". Strings are
// quoted so that ("1") and (1) are distinguishable.
func (t Tuple) String() string {
	parts := make([]string, len(t))
	for i, v := range t {
		if s, ok := v.(string); ok {
			parts[i] = fmt.Sprintf("%q", s)
			continue
		}
		parts[i] = fmt.Sprintf("%v", v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// At returns the i-th prerequisite converted to T. It panics if
// the index is out of range or the value has a different type.
func At[T any](t Tuple, i int) T {
	if i < 0 || i >= len(t) {
		panic(fmt.Sprintf(
			"prereq: index %d out of range for tuple of %d",
			i, len(t),
		))
	}
	if t[i] == nil {
		var zero T
		return zero
	}
	v, ok := t[i].(T)
	if !ok {
		var zero T
		panic(fmt.Sprintf(
			"prereq: value %d is %T, not %T", i, t[i], zero,
		))
	}
	return v
}
