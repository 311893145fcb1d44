package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gwt"

// PrometheusMetrics implements RunMetrics with client_golang
// collectors registered on a private registry.
type PrometheusMetrics struct {
	registry      *prometheus.Registry
	runs          *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	cases         *prometheus.CounterVec
	caseDuration  *prometheus.HistogramVec
	assertions    *prometheus.CounterVec
	arrangeFailed *prometheus.CounterVec
	active        prometheus.Gauge
}

// NewPrometheusMetrics creates the collectors and registers
// them on a fresh registry.
func NewPrometheusMetrics() *PrometheusMetrics {
	m := &PrometheusMetrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Definition runs by final status.",
		}, []string{"definition", "status"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a definition run.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"definition"}),
		cases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cases_total",
			Help:      "Cases by status.",
		}, []string{"definition", "status"}),
		caseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "case_duration_seconds",
			Help:      "Wall time of a single case, act plus assertions.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"definition"}),
		assertions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assertions_total",
			Help:      "Assertion evaluations by expectation and result.",
		}, []string{"definition", "expectation", "passed"}),
		arrangeFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "arrangement_failures_total",
			Help:      "Definitions whose Given clauses failed.",
		}, []string{"definition"}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_cases",
			Help:      "Cases currently acting or being evaluated.",
		}),
	}
	m.registry.MustRegister(
		m.runs, m.runDuration, m.cases, m.caseDuration,
		m.assertions, m.arrangeFailed, m.active,
	)
	return m
}

func (m *PrometheusMetrics) RecordRun(
	definition, status string, duration time.Duration,
) {
	m.runs.WithLabelValues(definition, status).Inc()
	m.runDuration.WithLabelValues(definition).
		Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordCase(
	definition, status string, duration time.Duration,
) {
	m.cases.WithLabelValues(definition, status).Inc()
	m.caseDuration.WithLabelValues(definition).
		Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordAssertion(
	definition, expectation string, passed bool,
) {
	m.assertions.WithLabelValues(
		definition, expectation, strconv.FormatBool(passed),
	).Inc()
}

func (m *PrometheusMetrics) RecordArrangementFailure(definition string) {
	m.arrangeFailed.WithLabelValues(definition).Inc()
}

func (m *PrometheusMetrics) AddActiveCases(delta int) {
	m.active.Add(float64(delta))
}

// Registry exposes the underlying registry for gathering.
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
