package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Authentication outcomes recorded by the request authenticator.
const (
	AuthOutcomeAnonymous     = "anonymous"
	AuthOutcomeAuthenticated = "authenticated"
	AuthOutcomeGuest         = "guest"
	AuthOutcomeRevoked       = "revoked"
	AuthOutcomeInvalid       = "invalid"
	AuthOutcomeFailed        = "failed"
)

// Metrics holds Prometheus collectors for the service.
type Metrics struct {
	registry           *prometheus.Registry
	requests           *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	errors             *prometheus.CounterVec
	authOutcomes       *prometheus.CounterVec
	revocationFailures *prometheus.CounterVec
}

// NewMetrics creates and registers collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "strategyhub_http_requests_total",
			Help: "Total HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "strategyhub_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "strategyhub_http_errors_total",
			Help: "Total error responses by route, method and result code",
		}, []string{"route", "method", "code"}),
		authOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "strategyhub_auth_outcomes_total",
			Help: "Request authentication outcomes",
		}, []string{"outcome"}),
		revocationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "strategyhub_revocation_store_failures_total",
			Help: "Revocation store calls that failed and were treated as not revoked",
		}, []string{"operation"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.errors,
		m.authOutcomes,
		m.revocationFailures,
	)
	return m
}

// Registry exposes the registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method string, code int) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
}

// RecordAuthOutcome counts one authentication decision.
func (m *Metrics) RecordAuthOutcome(outcome string) {
	if m == nil {
		return
	}
	m.authOutcomes.WithLabelValues(outcome).Inc()
}

// RecordRevocationFailure counts a fail-open revocation store error.
func (m *Metrics) RecordRevocationFailure(operation string) {
	if m == nil {
		return
	}
	m.revocationFailures.WithLabelValues(operation).Inc()
}
