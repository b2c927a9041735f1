package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tmsearch",
			Name:      "search_duration_seconds",
			Help:      "Filter-tree search duration in seconds, by stage",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"stage"}, // "compile" / "execute"
	)

	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tmsearch",
			Name:      "search_requests_total",
			Help:      "Total number of filter-tree searches",
		},
		[]string{"status"}, // "ok" / "empty" / "bad_request" / "timeout" / "error"
	)

	SearchDegradationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tmsearch",
			Name:      "search_degradations_total",
			Help:      "Tree nodes degraded to an empty set",
		},
		[]string{"reason"}, // "unknown_strategy" / "unknown_operator" / "unsatisfiable"
	)

	SearchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "tmsearch",
			Name:      "search_results_total",
			Help:      "Admitted records per search before paging",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		},
	)

	SearchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tmsearch",
			Name:      "search_cache_total",
			Help:      "Search result cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDegradationsTotal)
	prometheus.MustRegister(SearchResults)
	prometheus.MustRegister(SearchCacheTotal)
	searchMetricsRegistered = true
}
