package metrics

import "github.com/prometheus/client_golang/prometheus"

// Indexing and search Prometheus metrics.
var (
	IndexWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nestidx",
			Name:      "index_writes_total",
			Help:      "Total number of document writes by action and outcome",
		},
		[]string{"collection", "action", "status"},
	)

	IndexWriteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "nestidx",
			Name:      "index_write_duration_seconds",
			Help:      "Document write duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"collection", "action"},
	)

	SearchQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nestidx",
			Name:      "search_queries_total",
			Help:      "Total number of search queries by outcome",
		},
		[]string{"collection", "status"},
	)

	SearchQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "nestidx",
			Name:      "search_query_duration_seconds",
			Help:      "Search query duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"collection"},
	)

	SearchHitsReturned = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "nestidx",
			Name:      "search_hits_returned",
			Help:      "Number of hits returned per search query",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
		[]string{"collection"},
	)
)

var indexingMetricsRegistered bool

// RegisterIndexingMetrics registers Prometheus indexing/search metrics. Must be called once from main.
func RegisterIndexingMetrics() {
	if indexingMetricsRegistered {
		return
	}
	prometheus.MustRegister(IndexWritesTotal)
	prometheus.MustRegister(IndexWriteDuration)
	prometheus.MustRegister(SearchQueriesTotal)
	prometheus.MustRegister(SearchQueryDuration)
	prometheus.MustRegister(SearchHitsReturned)
	indexingMetricsRegistered = true
}
