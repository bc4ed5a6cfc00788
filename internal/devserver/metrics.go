package devserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector gathers HTTP-level Prometheus metrics for the dev server.
type Collector struct {
	requests     *prometheus.CounterVec
	latency      prometheus.Histogram
	authFailures prometheus.Counter
}

// NewCollector registers the dev server metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nutrilog_devserver_requests_total",
			Help: "Requests served, by method and status code.",
		}, []string{"method", "status_code"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nutrilog_devserver_request_latency_seconds",
			Help:    "Request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		authFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nutrilog_devserver_auth_failures_total",
			Help: "Rejected authentication attempts.",
		}),
	}

	reg.MustRegister(c.requests, c.latency, c.authFailures)
	return c
}

// RecordRequest records a served request.
func (c *Collector) RecordRequest(method string, status int, duration time.Duration) {
	c.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	c.latency.Observe(duration.Seconds())
}

// RecordAuthFailure records a rejected login or token validation.
func (c *Collector) RecordAuthFailure() {
	c.authFailures.Inc()
}

// MetricsHandler returns the Prometheus scrape handler for gatherer.
func MetricsHandler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
