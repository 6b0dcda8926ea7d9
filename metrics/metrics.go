// Package metrics exposes Prometheus counters/gauges for the runtime,
// following the same labeled-vec-plus-Record-method shape the pack's
// observability package uses for its own metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// RuntimeMetrics tracks turn/action/output/error volume and stack depth
// for an embedding process to scrape.
type RuntimeMetrics struct {
	turns       prometheus.Counter
	actions     *prometheus.CounterVec
	outputs     *prometheus.CounterVec
	errors      *prometheus.CounterVec
	stackDepth  prometheus.Gauge
	turnIters   prometheus.Histogram
}

// NewRuntimeMetrics registers against the global Prometheus registerer.
func NewRuntimeMetrics() *RuntimeMetrics {
	return NewRuntimeMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewRuntimeMetricsWithRegisterer registers against reg, letting tests
// use a scratch prometheus.NewRegistry() instead of the process-global
// default (the same pattern the pack's observability package tests
// against).
func NewRuntimeMetricsWithRegisterer(reg prometheus.Registerer) *RuntimeMetrics {
	m := &RuntimeMetrics{
		turns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "forge_turns_total",
			Help: "Total number of ExecutionContext turns run.",
		}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "forge_actions_total",
			Help: "Total number of actions processed, by kind.",
		}, []string{"kind"}),
		outputs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "forge_outputs_total",
			Help: "Total number of OutputStatements emitted, by type.",
		}, []string{"output_type"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "forge_errors_total",
			Help: "Total number of recorded runtime errors, by kind.",
		}, []string{"kind"}),
		stackDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "forge_stack_depth",
			Help: "Current block stack depth.",
		}),
		turnIters: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "forge_turn_iterations",
			Help:    "Iterations consumed per turn.",
			Buckets: prometheus.LinearBuckets(0, 2, 11),
		}),
	}
	reg.MustRegister(m.turns, m.actions, m.outputs, m.errors, m.stackDepth, m.turnIters)
	return m
}

// RecordTurn records one completed turn and the iteration count it spent.
func (m *RuntimeMetrics) RecordTurn(iterations int) {
	m.turns.Inc()
	m.turnIters.Observe(float64(iterations))
}

// RecordAction increments the per-kind action counter.
func (m *RuntimeMetrics) RecordAction(kind string) {
	m.actions.WithLabelValues(kind).Inc()
}

// RecordOutput increments the per-type output counter.
func (m *RuntimeMetrics) RecordOutput(outputType string) {
	m.outputs.WithLabelValues(outputType).Inc()
}

// RecordError increments the per-kind error counter.
func (m *RuntimeMetrics) RecordError(kind string) {
	m.errors.WithLabelValues(kind).Inc()
}

// SetStackDepth sets the current stack depth gauge.
func (m *RuntimeMetrics) SetStackDepth(depth int) {
	m.stackDepth.Set(float64(depth))
}
