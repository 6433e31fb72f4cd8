package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the request-defense layer
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ActiveRequests  *prometheus.GaugeVec

	// Sanitizer metrics
	SanitizerKeysRemoved prometheus.Counter
	SanitizerRejected    *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits     *prometheus.CounterVec
	RateLimitRejected *prometheus.CounterVec
	RateLimitKeys     *prometheus.GaugeVec
	RateLimitFallback *prometheus.CounterVec

	// Auth metrics
	AuthFailures  *prometheus.CounterVec
	LoginAttempts *prometheus.CounterVec
	TokensIssued  prometheus.Counter
}

// New creates a new Metrics instance with all metrics registered
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a new Metrics instance with a custom registry
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deskgate_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "deskgate_http_request_duration_seconds",
				Help:    "HTTP request latencies in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		ActiveRequests: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "deskgate_http_requests_active",
				Help: "Number of active HTTP requests",
			},
			[]string{"method"},
		),

		SanitizerKeysRemoved: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "deskgate_sanitizer_keys_removed_total",
				Help: "Total number of blocked keys removed from request payloads",
			},
		),
		SanitizerRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deskgate_sanitizer_rejected_total",
				Help: "Total number of payloads rejected by the sanitizer",
			},
			[]string{"reason"},
		),

		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deskgate_ratelimit_hits_total",
				Help: "Total number of requests counted by a rate limiter",
			},
			[]string{"group"},
		),
		RateLimitRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deskgate_ratelimit_rejected_total",
				Help: "Total number of requests rejected by a rate limiter",
			},
			[]string{"group"},
		),
		RateLimitKeys: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "deskgate_ratelimit_tracked_keys",
				Help: "Number of keys currently tracked by a rate limiter",
			},
			[]string{"group"},
		),
		RateLimitFallback: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deskgate_ratelimit_store_errors_total",
				Help: "Total number of rate limit store errors",
			},
			[]string{"group"},
		),

		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deskgate_auth_failures_total",
				Help: "Total number of rejected admin requests",
			},
			[]string{"reason"},
		),
		LoginAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deskgate_login_attempts_total",
				Help: "Total number of admin login attempts",
			},
			[]string{"result"},
		),
		TokensIssued: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "deskgate_tokens_issued_total",
				Help: "Total number of admin tokens issued",
			},
		),
	}
}
