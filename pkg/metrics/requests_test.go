package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestRequestMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRequestMetrics(reg)
	m.Observe("login", "POST", OutcomeValue, 120*time.Millisecond)
	m.Observe("login", "POST", OutcomeFailure, 80*time.Millisecond)
	m.Observe("login", "POST", OutcomeFailure, 10*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounter(mfs, "api_client_requests_total", map[string]string{"endpoint": "login", "outcome": OutcomeFailure}); err != nil {
		t.Fatalf("fetch failures: %v", err)
	} else if got != 2 {
		t.Fatalf("expected failures=2, got %f", got)
	}

	if got, err := fetchHistogramCount(mfs, "api_client_request_duration_seconds", map[string]string{"endpoint": "login"}); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got != 3 {
		t.Fatalf("expected 3 duration samples, got %d", got)
	}
}

func TestNilRegistererDropsObservations(t *testing.T) {
	m := NewRequestMetrics(nil)
	m.Observe("x", "GET", OutcomeAck, time.Second)

	var nilMetrics *RequestMetrics
	nilMetrics.Observe("x", "GET", OutcomeAck, time.Second)
}

func TestEmptyLabelsNormalized(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRequestMetrics(reg)
	m.Observe("", "", "", time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if _, err := fetchCounter(mfs, "api_client_requests_total", map[string]string{"endpoint": "unknown", "method": "unknown"}); err != nil {
		t.Fatalf("expected unknown labels: %v", err)
	}
}

func fetchCounter(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	m, err := findMetric(mfs, name, labels)
	if err != nil {
		return 0, err
	}
	return m.GetCounter().GetValue(), nil
}

func fetchHistogramCount(mfs []*dto.MetricFamily, name string, labels map[string]string) (uint64, error) {
	m, err := findMetric(mfs, name, labels)
	if err != nil {
		return 0, err
	}
	return m.GetHistogram().GetSampleCount(), nil
}

func findMetric(mfs []*dto.MetricFamily, name string, labels map[string]string) (*dto.Metric, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if matchesLabels(metric.GetLabel(), labels) {
				return metric, nil
			}
		}
		return nil, fmt.Errorf("metric %q missing labels %v", name, labels)
	}
	return nil, fmt.Errorf("metric %q not found", name)
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, p := range pairs {
		if v, ok := want[p.GetName()]; ok && v == p.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}

func TestServedMetricsLabelsEnvelopeStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewServedMetrics(reg)
	m.Inc("login", 200, 200)
	m.Inc("login", 503, 0)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounter(mfs, "api_mock_responses_total", map[string]string{"http_status": "503", "envelope_status": "none"}); err != nil {
		t.Fatalf("fetch: %v", err)
	} else if got != 1 {
		t.Fatalf("expected 1, got %f", got)
	}

	var nilMetrics *ServedMetrics
	nilMetrics.Inc("x", 200, 200)
}
