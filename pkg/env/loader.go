// Package env loads .env files for test runs. Values from the
// process environment always take precedence over file values.
package env

import (
	"fmt"
	"maps"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// Loader defines the interface for environment variable management.
type Loader interface {
	// Load reads variables from one or more .env files. Later
	// files override earlier ones.
	Load(paths ...string) error
	// Get retrieves a variable value.
	Get(key string) string
	// GetRequired retrieves a required variable or returns error.
	GetRequired(key string) (string, error)
	// GetWithDefault retrieves a variable with a default fallback.
	GetWithDefault(key, defaultValue string) string
	// Set sets a variable for this loader only.
	Set(key, value string)
	// All returns all file and Set variables.
	All() map[string]string
}

// DefaultLoader implements Loader with godotenv parsing.
type DefaultLoader struct {
	mu   sync.RWMutex
	vars map[string]string
}

// NewLoader creates a DefaultLoader that consults os.LookupEnv
// before its own variables.
func NewLoader() *DefaultLoader {
	return &DefaultLoader{
		vars: make(map[string]string),
	}
}

// Load parses each file with godotenv. A missing file is an
// error; callers that treat .env as optional should stat first.
func (l *DefaultLoader) Load(paths ...string) error {
	for _, p := range paths {
		vars, err := godotenv.Read(p)
		if err != nil {
			return fmt.Errorf("load env file %s: %w", p, err)
		}
		l.mu.Lock()
		maps.Copy(l.vars, vars)
		l.mu.Unlock()
	}
	return nil
}

// Get returns the process value when set and non-empty,
// otherwise the loaded value.
func (l *DefaultLoader) Get(key string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.vars[key]
}

func (l *DefaultLoader) GetRequired(key string) (string, error) {
	v := l.Get(key)
	if v == "" {
		return "", fmt.Errorf(
			"required environment variable %s is not set", key,
		)
	}
	return v, nil
}

func (l *DefaultLoader) GetWithDefault(key, defaultValue string) string {
	if v := l.Get(key); v != "" {
		return v
	}
	return defaultValue
}

func (l *DefaultLoader) Set(key, value string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.vars[key] = value
}

func (l *DefaultLoader) All() map[string]string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return maps.Clone(l.vars)
}

// Prefixed returns every variable whose key starts with prefix,
// with the prefix stripped. Process values override file values.
func (l *DefaultLoader) Prefixed(prefix string) map[string]string {
	out := make(map[string]string)
	for k, v := range l.All() {
		if name, ok := strings.CutPrefix(k, prefix); ok && name != "" {
			out[name] = v
		}
	}
	for _, kv := range os.Environ() {
		k, v, _ := strings.Cut(kv, "=")
		if name, ok := strings.CutPrefix(k, prefix); ok && name != "" && v != "" {
			out[name] = v
		}
	}
	return out
}
