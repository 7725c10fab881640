// Package telemetry provides Prometheus instrumentation for the registry
// server.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for registry operation metrics.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Metrics holds the Prometheus instruments for the registry server.
type Metrics struct {
	publishesTotal  *prometheus.CounterVec
	transfersTotal  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance registered on the given
// registerer. Pass prometheus.DefaultRegisterer in production.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		publishesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ethpm_reg_srv_publishes_total",
				Help: "Total number of publish operations by outcome",
			},
			[]string{"outcome"},
		),
		transfersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ethpm_reg_srv_ownership_transfers_total",
				Help: "Total number of ownership transfer operations by outcome",
			},
			[]string{"outcome"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ethpm_reg_srv_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path", "status"},
		),
	}
}

// RecordPublish counts a publish operation with the given outcome.
func (m *Metrics) RecordPublish(outcome string) {
	if m == nil {
		return
	}
	m.publishesTotal.WithLabelValues(outcome).Inc()
}

// RecordTransfer counts an ownership transfer with the given outcome.
func (m *Metrics) RecordTransfer(outcome string) {
	if m == nil {
		return
	}
	m.transfersTotal.WithLabelValues(outcome).Inc()
}
