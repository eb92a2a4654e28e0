// Package metrics exports Prometheus instrumentation for API calls.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels.
const (
	OutcomeValue   = "value"
	OutcomeAck     = "ack"
	OutcomeFailure = "failure"
)

// RequestMetrics records per-endpoint call counts and latency.
type RequestMetrics struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRequestMetrics registers the request metrics on the provided registerer.
// A nil registerer yields a recorder that drops observations.
func NewRequestMetrics(reg prometheus.Registerer) *RequestMetrics {
	if reg == nil {
		return &RequestMetrics{}
	}
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "api_client_requests_total",
		Help: "API calls by endpoint, method and outcome.",
	}, []string{"endpoint", "method", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "api_client_request_duration_seconds",
		Help:    "Duration of API calls in seconds, transport and decoding included.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint", "method"})
	reg.MustRegister(total, duration)
	return &RequestMetrics{total: total, duration: duration}
}

// Observe records one finished call.
func (m *RequestMetrics) Observe(endpoint, method, outcome string, d time.Duration) {
	if m == nil || m.total == nil {
		return
	}
	endpoint = normalizeLabel(endpoint)
	method = normalizeLabel(method)
	m.total.WithLabelValues(endpoint, method, normalizeLabel(outcome)).Inc()
	m.duration.WithLabelValues(endpoint, method).Observe(d.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
