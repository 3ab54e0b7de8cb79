package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TestsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reaction_tests_completed_total",
		Help: "Finished test runs by game type, successful or failed.",
	}, []string{"type"})

	FalseStarts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reaction_false_starts_total",
		Help: "Responses registered before the stimulus, by game type.",
	}, []string{"type"})

	ReactionTime = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "reaction_time_ms",
		Help:    "Individual reaction-time samples in milliseconds.",
		Buckets: prometheus.ExponentialBuckets(50, 1.5, 12),
	})

	PercentileFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reaction_percentile_fallbacks_total",
		Help: "Percentile computations that degraded to the default because the population was empty or unreachable.",
	})
)

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
