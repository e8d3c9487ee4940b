// Package metrics provides Prometheus collectors for tool invocations.
// Collectors are registered on the Registerer passed in, never on the global default,
// so tests and multiple dispatchers in one process do not collide.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ToolMetrics records one observation per tool invocation.
type ToolMetrics struct {
	callsTotal   *prometheus.CounterVec
	callDuration *prometheus.HistogramVec
	inFlight     prometheus.Gauge
}

// NewToolMetrics registers the collectors on reg.
func NewToolMetrics(reg prometheus.Registerer) *ToolMetrics {
	factory := promauto.With(reg)
	return &ToolMetrics{
		callsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wccmcp",
			Name:      "tool_calls_total",
			Help:      "Total number of tool invocations by tool and outcome",
		}, []string{"tool", "outcome"}),
		callDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wccmcp",
			Name:      "tool_call_duration_seconds",
			Help:      "Duration of tool invocations in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"tool"}),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "wccmcp",
			Name:      "tool_calls_in_flight",
			Help:      "Number of tool invocations currently executing",
		}),
	}
}

// Start marks an invocation as in flight and returns the func that ends it.
func (m *ToolMetrics) Start() func() {
	m.inFlight.Inc()
	return m.inFlight.Dec
}

// Observe records a finished invocation.
func (m *ToolMetrics) Observe(tool, outcome string, d time.Duration) {
	m.callsTotal.WithLabelValues(tool, outcome).Inc()
	m.callDuration.WithLabelValues(tool).Observe(d.Seconds())
}
