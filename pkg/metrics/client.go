package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ClientMetrics records the outcome of every request the API client issues.
type ClientMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	aborted  prometheus.Counter
}

// NewClientMetrics registers the API client metrics on the provided registerer.
func NewClientMetrics(reg prometheus.Registerer) *ClientMetrics {
	if reg == nil {
		return &ClientMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "apiclient_requests_total",
		Help: "API requests by method and response status (0 when no response was received).",
	}, []string{"method", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "apiclient_request_duration_seconds",
		Help:    "Duration of API requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
	aborted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "apiclient_requests_aborted_total",
		Help: "API requests canceled before a response arrived.",
	})
	reg.MustRegister(requests, duration, aborted)
	return &ClientMetrics{
		requests: requests,
		duration: duration,
		aborted:  aborted,
	}
}

// ObserveRequest records one completed request.
func (c *ClientMetrics) ObserveRequest(method string, status int, duration time.Duration) {
	if c == nil || c.requests == nil {
		return
	}
	method = normalizeLabel(method)
	c.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	c.duration.WithLabelValues(method).Observe(duration.Seconds())
}

// IncAborted counts a canceled request.
func (c *ClientMetrics) IncAborted() {
	if c == nil || c.aborted == nil {
		return
	}
	c.aborted.Inc()
}
