package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Feed coordinator metrics
var (
	// FeedDemandsTotal counts demands submitted through RequestMore and Search.
	FeedDemandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showfeed_feed_demands_total",
			Help: "Total number of demands submitted to the feed.",
		},
		[]string{"kind"},
	)

	// FeedDebouncedTotal counts demands replaced by a later one inside the
	// quiet window.
	FeedDebouncedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "showfeed_feed_debounced_total",
			Help: "Total number of demands dropped by the debounce window.",
		},
	)

	FeedFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showfeed_feed_fetches_total",
			Help: "Total number of feed fetches by outcome.",
		},
		[]string{"kind", "status"},
	)

	FeedFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "showfeed_feed_fetch_duration_seconds",
			Help:    "Duration of feed fetches against the remote catalog.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	FeedEmissionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "showfeed_feed_emissions_total",
			Help: "Total number of pages emitted to subscribers.",
		},
	)

	// FeedSuppressedTotal counts fetch results dropped because they were
	// identical to the previous one.
	FeedSuppressedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "showfeed_feed_suppressed_total",
			Help: "Total number of fetch results suppressed as duplicates.",
		},
	)
)

// Remote catalog client metrics
var (
	ClientRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showfeed_client_requests_total",
			Help: "Total number of requests sent to the remote catalog.",
		},
		[]string{"endpoint", "status"},
	)

	ClientStaleResponsesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showfeed_client_stale_responses_total",
			Help: "Total number of expired cached responses served because the catalog was unreachable.",
		},
		[]string{"endpoint"},
	)
)

// Favorites store metrics
var (
	FavoritesMutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showfeed_favorites_mutations_total",
			Help: "Total number of favorite additions and removals.",
		},
		[]string{"op", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		FeedDemandsTotal,
		FeedDebouncedTotal,
		FeedFetchesTotal,
		FeedFetchDuration,
		FeedEmissionsTotal,
		FeedSuppressedTotal,
		ClientRequestsTotal,
		ClientStaleResponsesTotal,
		FavoritesMutationsTotal,
	)
}
