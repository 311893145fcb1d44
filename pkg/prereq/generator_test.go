package prereq

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingSource(
	calls *atomic.Int32, vs ...any,
) Source {
	return func(_ context.Context) ([]any, error) {
		calls.Add(1)
		return vs, nil
	}
}

func TestProduct_NoSources(t *testing.T) {
	tuples, err := Product(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, tuples, 1)
	assert.Equal(t, 0, tuples[0].Len())
}

func TestProduct_NestedLoopOrder(t *testing.T) {
	sources := []NamedSource{
		{Name: "numbers", Source: Values(1, 2)},
		{Name: "letters", Source: Values("a", "b")},
	}

	tuples, err := Product(context.Background(), sources)
	require.NoError(t, err)

	want := []Tuple{
		{1, "a"}, {1, "b"}, {2, "a"}, {2, "b"},
	}
	if diff := cmp.Diff(want, tuples); diff != "" {
		t.Errorf("tuples mismatch (-want +got):\n%s", diff)
	}
}

func TestProduct_Cardinality(t *testing.T) {
	tests := []struct {
		name  string
		sizes []int
		want  int
	}{
		{"single", []int{3}, 3},
		{"two", []int{2, 3}, 6},
		{"three", []int{2, 3, 4}, 24},
		{"with empty", []int{2, 0, 4}, 0},
		{"all empty", []int{0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sources := make([]NamedSource, len(tt.sizes))
			for i, n := range tt.sizes {
				vals := make([]any, n)
				for j := range vals {
					vals[j] = j
				}
				sources[i] = NamedSource{Source: Values(vals...)}
			}

			tuples, err := Product(
				context.Background(), sources,
			)
			require.NoError(t, err)
			assert.Len(t, tuples, tt.want)
		})
	}
}

func TestProduct_EachSourceInvokedOnce(t *testing.T) {
	var a, b, c atomic.Int32
	sources := []NamedSource{
		{Source: countingSource(&a, 1, 2, 3)},
		{Source: countingSource(&b, "x", "y")},
		{Source: countingSource(&c, true, false)},
	}

	tuples, err := Product(context.Background(), sources)
	require.NoError(t, err)
	assert.Len(t, tuples, 12)
	assert.Equal(t, int32(1), a.Load())
	assert.Equal(t, int32(1), b.Load())
	assert.Equal(t, int32(1), c.Load())
}

func TestProduct_SourceError(t *testing.T) {
	dbDown := errors.New("db down")
	var after atomic.Int32
	sources := []NamedSource{
		{Name: "users", Source: Values(1, 2)},
		{
			Name: "rows",
			Source: func(_ context.Context) ([]any, error) {
				return nil, dbDown
			},
		},
		{Name: "flags", Source: countingSource(&after, true)},
	}

	tuples, err := Product(context.Background(), sources)
	require.Error(t, err)
	assert.Nil(t, tuples)
	assert.ErrorIs(t, err, dbDown)
	assert.Contains(t, err.Error(), "db down")
	assert.Contains(t, err.Error(), `"rows"`)

	var srcErr *SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, 1, srcErr.Index)
	assert.Equal(t, int32(0), after.Load())
}

func TestProduct_SourcePanic(t *testing.T) {
	sources := []NamedSource{
		{Source: func(_ context.Context) ([]any, error) {
			panic("fixture exploded")
		}},
	}

	tuples, err := Product(context.Background(), sources)
	require.Error(t, err)
	assert.Nil(t, tuples)
	assert.Contains(t, err.Error(), "fixture exploded")
	assert.Contains(t, err.Error(), "given #1")
}

func TestProduct_NilSource(t *testing.T) {
	_, err := Product(
		context.Background(),
		[]NamedSource{{Name: "missing"}},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source is nil")
}

func TestProduct_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	_, err := Product(ctx, []NamedSource{
		{Source: countingSource(&calls, 1)},
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), calls.Load())
}

func TestProduct_SourceSeesContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "fixture")

	tuples, err := Product(ctx, []NamedSource{{
		Source: func(ctx context.Context) ([]any, error) {
			return []any{ctx.Value(key{})}, nil
		},
	}})
	require.NoError(t, err)
	assert.Equal(t, []Tuple{{"fixture"}}, tuples)
}

func TestProduct_SourceMutationDoesNotLeak(t *testing.T) {
	backing := []any{1, 2}
	tuples, err := Product(context.Background(), []NamedSource{{
		Source: func(_ context.Context) ([]any, error) {
			return backing, nil
		},
	}})
	require.NoError(t, err)

	backing[0] = 99
	assert.Equal(t, []Tuple{{1}, {2}}, tuples)
}

func TestProduct_Concurrent(t *testing.T) {
	slow := func(vs ...any) Source {
		return func(ctx context.Context) ([]any, error) {
			select {
			case <-time.After(10 * time.Millisecond):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			return vs, nil
		}
	}
	sources := []NamedSource{
		{Source: slow(1, 2)},
		{Source: slow("a", "b")},
		{Source: slow(true)},
	}

	tuples, err := Product(
		context.Background(), sources, WithConcurrency(3),
	)
	require.NoError(t, err)

	want := []Tuple{
		{1, "a", true}, {1, "b", true},
		{2, "a", true}, {2, "b", true},
	}
	assert.Equal(t, want, tuples)
}

func TestProduct_ConcurrentError(t *testing.T) {
	boom := errors.New("boom")
	sources := []NamedSource{
		{Source: Values(1)},
		{Name: "bad", Source: func(_ context.Context) ([]any, error) {
			return nil, boom
		}},
	}

	tuples, err := Product(
		context.Background(), sources, WithConcurrency(2),
	)
	assert.Nil(t, tuples)
	assert.ErrorIs(t, err, boom)
}
