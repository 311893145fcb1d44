// Package config holds the runtime configuration shared by test
// definitions, the runner and reporters.
package config

import (
	"context"
	"fmt"
	"maps"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration for arranging and running
// test definitions.
type Config struct {
	// Name labels the run in logs and reports.
	Name string `yaml:"name" json:"name"`

	// ResultsDir is the directory where reports are written.
	ResultsDir string `yaml:"results_dir" json:"results_dir"`

	// Parallelism is the number of cases acted and asserted at
	// the same time. Values below 2 run cases sequentially.
	Parallelism int `yaml:"parallelism" json:"parallelism"`

	// SourceConcurrency is the number of Given clauses evaluated
	// at the same time during arrangement.
	SourceConcurrency int `yaml:"source_concurrency" json:"source_concurrency"`

	// ArrangeTimeout bounds the arrangement phase. A zero value
	// means no timeout.
	ArrangeTimeout time.Duration `yaml:"arrange_timeout" json:"arrange_timeout"`

	// Verbose enables detailed logging output.
	Verbose bool `yaml:"verbose" json:"verbose"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// Environment holds key-value pairs made available to
	// prerequisite sources.
	Environment map[string]string `yaml:"environment" json:"environment"`
}

// Override mutates a Config. Test definitions carry an ordered
// list of overrides that are applied before arrangement.
type Override func(*Config)

// NewConfig creates a Config with sensible defaults.
func NewConfig(name string) *Config {
	return &Config{
		Name:        name,
		ResultsDir:  "results",
		Parallelism: 1,
		LogLevel:    "info",
		Environment: make(map[string]string),
	}
}

// LoadFile reads a YAML configuration file on top of the
// defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := NewConfig("")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Environment == nil {
		cfg.Environment = make(map[string]string)
	}
	return cfg, nil
}

// Clone returns a deep copy so overrides applied for one
// definition do not leak into another.
func (c *Config) Clone() *Config {
	out := *c
	out.Environment = maps.Clone(c.Environment)
	if out.Environment == nil {
		out.Environment = make(map[string]string)
	}
	return &out
}

// Apply folds the overrides over the config in order.
func (c *Config) Apply(overrides ...Override) *Config {
	for _, o := range overrides {
		if o != nil {
			o(c)
		}
	}
	return c
}

// GetEnv returns the value of an environment variable from the
// config, or the fallback if not set.
func (c *Config) GetEnv(key, fallback string) string {
	if c.Environment == nil {
		return fallback
	}
	if v, ok := c.Environment[key]; ok {
		return v
	}
	return fallback
}

type contextKey struct{}

// WithConfig attaches cfg to ctx so prerequisite sources can
// read it.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, contextKey{}, cfg)
}

// FromContext returns the config attached to ctx, or nil.
func FromContext(ctx context.Context) *Config {
	cfg, _ := ctx.Value(contextKey{}).(*Config)
	return cfg
}
