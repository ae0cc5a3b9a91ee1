package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "portfolio", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "portfolio", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	ChatCompletions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "portfolio", Name: "chat_completions_total", Help: "Chat completion requests by result code (OK or error code)."},
		[]string{"code"},
	)
	ChatCompletionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Namespace: "portfolio", Name: "chat_completion_duration_seconds", Help: "Latency of upstream completion calls.", Buckets: prometheus.ExponentialBuckets(0.25, 2, 8)},
	)
	// PersistenceFailures counts best-effort chat writes that failed and were dropped.
	PersistenceFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "portfolio", Name: "persistence_failures_total", Help: "Best-effort chat persistence failures by operation."},
		[]string{"op"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(ChatCompletions)
	reg.MustRegister(ChatCompletionDuration)
	reg.MustRegister(PersistenceFailures)
}
