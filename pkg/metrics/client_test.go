package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestClientMetricsExportsRequestsAndAborts(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewClientMetrics(reg)
	metrics.ObserveRequest(http.MethodGet, http.StatusOK, 120*time.Millisecond)
	metrics.ObserveRequest(http.MethodGet, http.StatusOK, 80*time.Millisecond)
	metrics.ObserveRequest(http.MethodDelete, http.StatusNotFound, 10*time.Millisecond)
	metrics.IncAborted()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	mf := findMetricFamily(mfs, "apiclient_requests_total")
	if mf == nil {
		t.Fatalf("requests metric missing")
	}
	var okCount float64
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), "method", "GET") && matchesLabel(metric.GetLabel(), "status", "200") {
			okCount = metric.GetCounter().GetValue()
		}
	}
	if okCount != 2 {
		t.Fatalf("expected 2 GET 200 requests, got %f", okCount)
	}

	if got, err := fetchHistogramSum(mfs, "apiclient_request_duration_seconds", "method", "DELETE"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}

	aborted := findMetricFamily(mfs, "apiclient_requests_aborted_total")
	if aborted == nil || aborted.GetMetric()[0].GetCounter().GetValue() != 1 {
		t.Fatalf("expected one aborted request")
	}
}

func TestClientMetricsNilSafe(t *testing.T) {
	var metrics *ClientMetrics
	metrics.ObserveRequest(http.MethodGet, 200, time.Millisecond)
	metrics.IncAborted()

	empty := NewClientMetrics(nil)
	empty.ObserveRequest(http.MethodGet, 200, time.Millisecond)
	empty.IncAborted()
}
