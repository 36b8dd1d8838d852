// Package metrics provides Prometheus metrics for the gateway.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthDecisionsTotal counts verification outcomes at the edge.
	AuthDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gateway",
			Name:      "auth_decisions_total",
			Help:      "Total number of edge authentication decisions",
		},
		[]string{"outcome"},
	)

	// ProxyErrorsTotal counts failed forwards to backend services.
	ProxyErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gateway",
			Name:      "proxy_errors_total",
			Help:      "Total number of backend proxy failures",
		},
		[]string{"service"},
	)

	// VerificationKeyReady reports whether the verification key is cached
	// (1 = ready, 0 = still fetching).
	VerificationKeyReady = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "gateway",
			Name:      "verification_key_ready",
			Help:      "Whether the verification key has been fetched (1 = ready)",
		},
	)

	// RateLimitedTotal counts requests rejected by the rate limiter.
	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "gateway",
			Name:      "rate_limited_total",
			Help:      "Total number of requests rejected by the rate limiter",
		},
	)
)

// RecordAuthDecision records an edge authentication decision.
func RecordAuthDecision(outcome string) {
	AuthDecisionsTotal.WithLabelValues(outcome).Inc()
}

// RecordProxyError records a failed forward to a backend service.
func RecordProxyError(service string) {
	ProxyErrorsTotal.WithLabelValues(service).Inc()
}

// SetKeyReady marks the verification key as fetched.
func SetKeyReady() {
	VerificationKeyReady.Set(1)
}
