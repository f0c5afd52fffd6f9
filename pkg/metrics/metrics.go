// Package metrics exposes Prometheus collectors for work-log activity.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors reported by the work-log subsystem.
type Metrics struct {
	taskDuration *prometheus.HistogramVec
	runsTotal    *prometheus.CounterVec
	activeRuns   prometheus.Gauge
	toolCalls    *prometheus.CounterVec
}

var (
	defaultOnce sync.Once
	shared      *Metrics
)

// Default returns the package-level metrics instance registered with the
// global Prometheus registry. Collectors are created once to avoid duplicate
// registration panics when components are instantiated multiple times.
func Default() *Metrics {
	defaultOnce.Do(func() {
		shared = MustNew(prometheus.DefaultRegisterer)
	})
	return shared
}

// MustNew constructs a Metrics instance using the provided registerer,
// panicking on registration errors. Tests pass a fresh registry.
func MustNew(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		taskDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "researchd",
				Subsystem: "worklog",
				Name:      "task_duration_seconds",
				Help:      "Wall-clock duration of each workflow task.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"task", "status"},
		),
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "researchd",
				Subsystem: "worklog",
				Name:      "runs_total",
				Help:      "Workflow runs finished, by terminal status.",
			},
			[]string{"status"},
		),
		activeRuns: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "researchd",
				Subsystem: "worklog",
				Name:      "active_runs",
				Help:      "Workflow runs currently executing.",
			},
		),
		toolCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "researchd",
				Subsystem: "worklog",
				Name:      "tool_calls_total",
				Help:      "Tool invocations recorded on work logs.",
			},
			[]string{"tool", "outcome"},
		),
	}
	reg.MustRegister(m.taskDuration, m.runsTotal, m.activeRuns, m.toolCalls)
	return m
}

// ObserveTaskDuration records the duration of one finished task.
func (m *Metrics) ObserveTaskDuration(taskKey, status string, d time.Duration) {
	m.taskDuration.WithLabelValues(taskKey, status).Observe(d.Seconds())
}

// RunFinished counts one run reaching a terminal status.
func (m *Metrics) RunFinished(status string) {
	m.runsTotal.WithLabelValues(status).Inc()
}

// RunStarted and RunEnded track the active-run gauge.
func (m *Metrics) RunStarted() { m.activeRuns.Inc() }

// RunEnded decrements the active-run gauge.
func (m *Metrics) RunEnded() { m.activeRuns.Dec() }

// ToolCall counts one tool invocation.
func (m *Metrics) ToolCall(tool, outcome string) {
	m.toolCalls.WithLabelValues(tool, outcome).Inc()
}
