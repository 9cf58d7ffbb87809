package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TokensIssued records bearer tokens issued via POST /jwt.
	TokensIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bengalbreeze_tokens_issued_total",
			Help: "Total number of access tokens issued",
		},
	)

	// GuardDecisions counts guard evaluations and their outcome
	// (allowed|unauthenticated|forbidden|error) per guard kind.
	GuardDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bengalbreeze_guard_decisions_total",
			Help: "Total number of access guard decisions",
		},
		[]string{"guard", "result"},
	)

	// LifecycleTransitions counts property lifecycle operations by outcome
	// (applied|noop|invalid|not_found|error).
	LifecycleTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bengalbreeze_lifecycle_transitions_total",
			Help: "Total number of property lifecycle transitions",
		},
		[]string{"operation", "result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bengalbreeze_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
