// Package registry provides definition registration and
// name-ordered discovery.
package registry

import (
	"fmt"
	"path"
	"sort"
	"sync"

	"digital.vasic.gwt/pkg/gwt"
)

// Registry defines the interface for managing test definitions.
type Registry interface {
	// Register adds a definition. Names must be unique.
	Register(def *gwt.Definition) error

	// Get retrieves a definition by name.
	Get(name string) (*gwt.Definition, error)

	// List returns all registered definitions sorted by name.
	List() []*gwt.Definition

	// Match returns the definitions whose name matches the
	// shell-style pattern, sorted by name.
	Match(pattern string) ([]*gwt.Definition, error)

	// Clear removes all definitions.
	Clear()

	// Count returns the number of registered definitions.
	Count() int
}

// DefaultRegistry is the standard Registry implementation.
// It is safe for concurrent use.
type DefaultRegistry struct {
	mu          sync.RWMutex
	definitions map[string]*gwt.Definition
}

// NewRegistry creates a new, empty DefaultRegistry.
func NewRegistry() *DefaultRegistry {
	return &DefaultRegistry{
		definitions: make(map[string]*gwt.Definition),
	}
}

// Default is the package-level default registry instance.
var Default = NewRegistry()

// Register adds a definition to the registry. Returns an error
// if the definition is nil or its name is already registered.
func (r *DefaultRegistry) Register(def *gwt.Definition) error {
	if def == nil {
		return fmt.Errorf("definition must not be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name := def.Name()
	if _, exists := r.definitions[name]; exists {
		return fmt.Errorf(
			"definition already registered: %s", name,
		)
	}

	r.definitions[name] = def
	return nil
}

// MustRegister is like Register but panics on error. It is
// meant for package-level catalog setup.
func (r *DefaultRegistry) MustRegister(defs ...*gwt.Definition) {
	for _, d := range defs {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
}

// Get retrieves a definition by name.
func (r *DefaultRegistry) Get(name string) (*gwt.Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, exists := r.definitions[name]
	if !exists {
		return nil, fmt.Errorf(
			"definition not found: %s", name,
		)
	}
	return def, nil
}

// List returns all registered definitions sorted by name.
func (r *DefaultRegistry) List() []*gwt.Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*gwt.Definition, 0, len(r.definitions))
	for _, d := range r.definitions {
		out = append(out, d)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Name() < out[j].Name()
	})
	return out
}

// Match returns definitions whose name matches pattern using
// path.Match syntax. An empty pattern matches everything.
func (r *DefaultRegistry) Match(
	pattern string,
) ([]*gwt.Definition, error) {
	all := r.List()
	if pattern == "" {
		return all, nil
	}
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf(
			"invalid pattern %q: %w", pattern, err,
		)
	}

	var out []*gwt.Definition
	for _, d := range all {
		if ok, _ := path.Match(pattern, d.Name()); ok {
			out = append(out, d)
		}
	}
	return out, nil
}

// Clear removes all definitions.
func (r *DefaultRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.definitions = make(map[string]*gwt.Definition)
}

// Count returns the number of registered definitions.
func (r *DefaultRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.definitions)
}
