package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// ServedMetrics counts responses written by the mock server.
type ServedMetrics struct {
	responses *prometheus.CounterVec
}

// NewServedMetrics registers the mock server metrics on the provided registerer.
func NewServedMetrics(reg prometheus.Registerer) *ServedMetrics {
	if reg == nil {
		return &ServedMetrics{}
	}
	responses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "api_mock_responses_total",
		Help: "Responses served by the mock API by endpoint, HTTP status and envelope status.",
	}, []string{"endpoint", "http_status", "envelope_status"})
	reg.MustRegister(responses)
	return &ServedMetrics{responses: responses}
}

// Inc records one served response. envelopeStatus is 0 when no envelope was written.
func (m *ServedMetrics) Inc(endpoint string, httpStatus, envelopeStatus int) {
	if m == nil || m.responses == nil {
		return
	}
	env := "none"
	if envelopeStatus != 0 {
		env = strconv.Itoa(envelopeStatus)
	}
	m.responses.WithLabelValues(normalizeLabel(endpoint), strconv.Itoa(httpStatus), env).Inc()
}
