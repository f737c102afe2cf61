// Package metrics holds the prometheus collectors of the monitoring engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	gobreaker "github.com/sony/gobreaker/v2"
)

var (
	// Consultations counts judicial API attempts by tribunal and outcome status.
	Consultations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jurismonitor_consultations_total",
			Help: "Judicial API consultations by tribunal and status",
		},
		[]string{"tribunal", "status"},
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jurismonitor_datajud_query_duration_seconds",
			Help:    "Latency of Datajud queries in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"tribunal"},
	)

	NewMovements = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jurismonitor_new_movements_total",
			Help: "Movements inserted by the dedup store",
		},
	)

	AlertsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jurismonitor_alerts_created_total",
			Help: "In-app alerts created by kind",
		},
		[]string{"kind"},
	)

	// Dispatches counts outbound notifications; result is "sent", "failed" or "skipped".
	Dispatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jurismonitor_dispatches_total",
			Help: "Outbound notification dispatches by channel and result",
		},
		[]string{"channel", "result"},
	)

	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jurismonitor_run_duration_seconds",
			Help:    "Duration of monitoring cycles in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
		[]string{"trigger"},
	)

	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jurismonitor_runs_total",
			Help: "Monitoring cycles by trigger and result",
		},
		[]string{"trigger", "result"},
	)

	// BreakerState is 0 closed, 1 half-open, 2 open.
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "jurismonitor_circuit_breaker_state",
			Help: "Per-tribunal circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"tribunal"},
	)

	BreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jurismonitor_circuit_breaker_transitions_total",
			Help: "Per-tribunal circuit breaker state transitions",
		},
		[]string{"tribunal", "from", "to"},
	)
)

// StateValue maps a breaker state to the gauge encoding.
func StateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
