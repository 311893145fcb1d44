// Package metrics records run, case and assertion outcomes.
package metrics

import "time"

// RunMetrics defines the interface for recording run metrics.
type RunMetrics interface {
	// RecordRun records a completed definition run.
	RecordRun(definition, status string, duration time.Duration)
	// RecordCase records a completed case.
	RecordCase(definition, status string, duration time.Duration)
	// RecordAssertion records an assertion evaluation.
	RecordAssertion(definition, expectation string, passed bool)
	// RecordArrangementFailure counts a definition whose Given
	// clauses could not be evaluated.
	RecordArrangementFailure(definition string)
	// AddActiveCases moves the in-flight case gauge by delta.
	AddActiveCases(delta int)
}

// NoopMetrics is a no-op implementation of RunMetrics
// useful for testing or when metrics collection is disabled.
type NoopMetrics struct{}

func (NoopMetrics) RecordRun(_, _ string, _ time.Duration)  {}
func (NoopMetrics) RecordCase(_, _ string, _ time.Duration) {}
func (NoopMetrics) RecordAssertion(_, _ string, _ bool)     {}
func (NoopMetrics) RecordArrangementFailure(_ string)       {}
func (NoopMetrics) AddActiveCases(_ int)                    {}
