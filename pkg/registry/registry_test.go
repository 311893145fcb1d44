package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.gwt/pkg/gwt"
	"digital.vasic.gwt/pkg/prereq"
)

func newDef(t *testing.T, name string) *gwt.Definition {
	t.Helper()
	def, err := gwt.NewDefinition(
		name,
		gwt.Do(func(prereq.Tuple) error { return nil }),
		gwt.Assertions(gwt.Then("ok", nil)),
	)
	require.NoError(t, err)
	return def
}

func names(defs []*gwt.Definition) []string {
	out := make([]string, len(defs))
	for i, d := range defs {
		out[i] = d.Name()
	}
	return out
}

func TestDefaultRegistry_Register_Success(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(newDef(t, "a")))
	assert.Equal(t, 1, r.Count())
}

func TestDefaultRegistry_Register_Duplicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(newDef(t, "a")))

	err := r.Register(newDef(t, "a"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
	assert.Equal(t, 1, r.Count())
}

func TestDefaultRegistry_Register_Nil(t *testing.T) {
	err := NewRegistry().Register(nil)
	require.Error(t, err)
}

func TestDefaultRegistry_MustRegister_Panics(t *testing.T) {
	r := NewRegistry()
	d := newDef(t, "a")
	assert.Panics(t, func() { r.MustRegister(d, d) })
}

func TestDefaultRegistry_Get(t *testing.T) {
	r := NewRegistry()
	d := newDef(t, "a")
	r.MustRegister(d)

	got, err := r.Get("a")
	require.NoError(t, err)
	assert.Same(t, d, got)

	_, err = r.Get("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestDefaultRegistry_List_Sorted(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(newDef(t, "c"), newDef(t, "a"), newDef(t, "b"))
	assert.Equal(t, []string{"a", "b", "c"}, names(r.List()))
}

func TestDefaultRegistry_Match(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(
		newDef(t, "math/add"),
		newDef(t, "math/div"),
		newDef(t, "strings/upper"),
	)

	tests := []struct {
		pattern string
		want    []string
	}{
		{"", []string{"math/add", "math/div", "strings/upper"}},
		{"math/*", []string{"math/add", "math/div"}},
		{"*/upper", []string{"strings/upper"}},
		{"nothing", nil},
	}
	for _, tc := range tests {
		t.Run(tc.pattern, func(t *testing.T) {
			got, err := r.Match(tc.pattern)
			require.NoError(t, err)
			if tc.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tc.want, names(got))
		})
	}

	_, err := r.Match("[")
	require.Error(t, err)
}

func TestDefaultRegistry_Clear(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(newDef(t, "a"), newDef(t, "b"))
	r.Clear()
	assert.Equal(t, 0, r.Count())
	assert.Empty(t, r.List())
}

func TestDefaultRegistry_ConcurrentRegister(t *testing.T) {
	r := NewRegistry()
	defs := make([]*gwt.Definition, 50)
	for i := range defs {
		defs[i] = newDef(t, string(rune('A'+i)))
	}

	var wg sync.WaitGroup
	for _, d := range defs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.Register(d)
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, r.Count())
}
