package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ReviewsRequested = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "telcwrite", Name: "reviews_requested_total", Help: "Number of review submissions accepted into the lifecycle."},
	)
	ReviewsCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "telcwrite", Name: "reviews_completed_total", Help: "Number of reviews persisted successfully."},
	)
	ReviewsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "telcwrite", Name: "reviews_failed_total", Help: "Number of failed or rejected review submissions by reason."},
		[]string{"reason"},
	)
	AutosaveFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "telcwrite", Name: "autosave_failures_total", Help: "Number of failed debounced saves by field."},
		[]string{"field"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "telcwrite", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "telcwrite", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(
		ReviewsRequested,
		ReviewsCompleted,
		ReviewsFailed,
		AutosaveFailures,
		RateLimitAllowed,
		RateLimitRejected,
	)
}
