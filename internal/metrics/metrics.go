// Package metrics provides Prometheus metrics for the training server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exchange outcomes.
const (
	OutcomeOK            = "ok"
	OutcomeClientError   = "client_error"
	OutcomeConfigError   = "config_error"
	OutcomeUpstreamError = "upstream_error"
)

// Metrics holds all Prometheus metrics for the training server.
type Metrics struct {
	ExchangesTotal          *prometheus.CounterVec
	CompletionRequestsTotal *prometheus.CounterVec
	CompletionDuration      *prometheus.HistogramVec
	StageTransitionsTotal   *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates the metrics and registers them on reg.
// A nil reg uses a fresh private registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		ExchangesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "symbient_exchanges_total",
				Help: "Total number of chat exchanges by outcome",
			},
			[]string{"outcome"},
		),
		CompletionRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "symbient_completion_requests_total",
				Help: "Total number of completion service calls",
			},
			[]string{"agent", "status"},
		),
		CompletionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "symbient_completion_duration_seconds",
				Help:    "Duration of completion service calls in seconds",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
			},
			[]string{"agent"},
		),
		StageTransitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "symbient_stage_transitions_total",
				Help: "Total number of stage transitions",
			},
			[]string{"from", "to"},
		),
		gatherer: reg,
	}
}

// RecordExchange records the outcome of one chat exchange.
func (m *Metrics) RecordExchange(outcome string) {
	if m == nil {
		return
	}
	m.ExchangesTotal.WithLabelValues(outcome).Inc()
}

// RecordCompletion records a single completion call.
func (m *Metrics) RecordCompletion(agent string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.CompletionRequestsTotal.WithLabelValues(agent, status).Inc()
	m.CompletionDuration.WithLabelValues(agent).Observe(duration.Seconds())
}

// RecordTransition records a stage change.
func (m *Metrics) RecordTransition(from, to string) {
	if m == nil {
		return
	}
	m.StageTransitionsTotal.WithLabelValues(from, to).Inc()
}

// Handler serves the registered metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
