// Package metrics exposes Prometheus instrumentation for the recommendation server.
//
// Metrics are registered on the default registry at init and served from /metrics:
//
//   - reelmatch_recommendations_total{result}: recommendation requests (ok, not_found, invalid)
//   - reelmatch_recommendation_duration_seconds: end-to-end time including poster lookups
//   - reelmatch_poster_lookups_total{outcome}: remote poster lookups by outcome
//   - reelmatch_poster_cache_total{result}: memo hits and misses
//   - reelmatch_poster_cache_entries: memoized poster entries
//   - reelmatch_circuit_breaker_state{name}: 0=closed, 1=half-open, 2=open
//   - reelmatch_circuit_breaker_transitions_total{name,from_state,to_state}
//   - reelmatch_http_requests_total{method,route,status}
//   - reelmatch_http_request_duration_seconds{method,route}
//   - reelmatch_rate_limit_hits_total{route}
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "reelmatch"

var (
	// Recommendation metrics
	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Total number of recommendation requests by result",
		},
		[]string{"result"},
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recommendation_duration_seconds",
			Help:      "Recommendation latency including poster resolution",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	// Poster metrics
	PosterLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poster_lookups_total",
			Help:      "Remote poster lookups by outcome",
		},
		[]string{"outcome"},
	)

	PosterCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poster_cache_total",
			Help:      "Poster memo lookups by result (hit, miss)",
		},
		[]string{"result"},
	)

	PosterCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "poster_cache_entries",
			Help:      "Number of memoized poster results",
		},
	)

	// Circuit breaker metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state_transitions_total",
			Help:      "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_hits_total",
			Help:      "Total number of rate limit rejections",
		},
		[]string{"route"},
	)
)

// RecordRecommendation records one recommendation request.
func RecordRecommendation(result string, duration time.Duration) {
	Recommendations.WithLabelValues(result).Inc()
	RecommendationDuration.Observe(duration.Seconds())
}

// RecordPosterLookup records the outcome of one remote poster lookup.
func RecordPosterLookup(outcome string) {
	PosterLookups.WithLabelValues(outcome).Inc()
}

// RecordPosterCache records a memo hit or miss.
func RecordPosterCache(hit bool) {
	if hit {
		PosterCache.WithLabelValues("hit").Inc()
		return
	}
	PosterCache.WithLabelValues("miss").Inc()
}

// RecordHTTPRequest records a completed HTTP request.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
