package metrics

import "github.com/prometheus/client_golang/prometheus"

// Matching and embedding Prometheus metrics.
var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "placematch",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"provider", "model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "placematch",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "model"},
	)

	EmbeddingFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "placematch",
			Name:      "embedding_fallbacks_total",
			Help:      "Embedding requests served by the deterministic fallback projector",
		},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "placematch",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	RecommendationsGeneratedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "placematch",
			Name:      "recommendations_generated_total",
			Help:      "Total scored jobs that passed the minimum-score filter",
		},
	)

	RecommendationsStoredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "placematch",
			Name:      "recommendations_stored_total",
			Help:      "Total recommendation rows upserted",
		},
	)

	GenerateDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "placematch",
			Name:      "generate_duration_seconds",
			Help:      "Duration of one recommendation generation batch",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)
)

var metricsRegistered bool

// RegisterMatchingMetrics registers Prometheus metrics. Must be called once from main.
func RegisterMatchingMetrics() {
	if metricsRegistered {
		return
	}
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(EmbeddingRequestDuration)
	prometheus.MustRegister(EmbeddingFallbacksTotal)
	prometheus.MustRegister(EmbeddingCacheTotal)
	prometheus.MustRegister(RecommendationsGeneratedTotal)
	prometheus.MustRegister(RecommendationsStoredTotal)
	prometheus.MustRegister(GenerateDuration)
	metricsRegistered = true
}
