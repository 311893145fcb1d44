package runner

import (
	"digital.vasic.gwt/pkg/config"
	"digital.vasic.gwt/pkg/logging"
	"digital.vasic.gwt/pkg/metrics"
	"digital.vasic.gwt/pkg/monitor"
)

// RunnerOption configures a DefaultRunner.
type RunnerOption func(*DefaultRunner)

// WithConfig sets the base configuration. Each run works on a
// clone with the definition's overrides applied.
func WithConfig(cfg *config.Config) RunnerOption {
	return func(r *DefaultRunner) {
		r.config = cfg
	}
}

// WithLogger sets the logger used by the runner.
func WithLogger(logger logging.Logger) RunnerOption {
	return func(r *DefaultRunner) {
		r.logger = logger
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m metrics.RunMetrics) RunnerOption {
	return func(r *DefaultRunner) {
		r.metrics = m
	}
}

// WithCollector sets the event collector that receives
// lifecycle events.
func WithCollector(c *monitor.EventCollector) RunnerOption {
	return func(r *DefaultRunner) {
		r.collector = c
	}
}

// WithParallelism overrides the configured case parallelism.
func WithParallelism(n int) RunnerOption {
	return func(r *DefaultRunner) {
		r.parallelism = n
	}
}

// WithBeforeCase adds a hook run before a case acts. A hook
// error fails the case without acting it.
func WithBeforeCase(h Hook) RunnerOption {
	return func(r *DefaultRunner) {
		r.beforeCase = append(r.beforeCase, h)
	}
}

// WithAfterCase adds a hook run after a case's assertions.
// Hook errors are logged as warnings.
func WithAfterCase(h Hook) RunnerOption {
	return func(r *DefaultRunner) {
		r.afterCase = append(r.afterCase, h)
	}
}

// WithRunIDFunc replaces the run ID generator.
func WithRunIDFunc(f func() string) RunnerOption {
	return func(r *DefaultRunner) {
		r.newRunID = f
	}
}
