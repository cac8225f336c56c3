package cache

import (
	"maps"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Response cache metrics. The "cache" label is ProviderConfig.Group and
// "kind" is the Key.Kind of the entry.
var (
	HitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showfeed_cache_hits_total",
			Help: "Catalog responses found in the cache.",
		},
		[]string{"cache", "kind"},
	)

	MissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showfeed_cache_misses_total",
			Help: "Catalog responses not found in the cache.",
		},
		[]string{"cache", "kind"},
	)

	InvalidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showfeed_cache_invalidations_total",
			Help: "Catalog responses dropped on request, e.g. by a refresh.",
		},
		[]string{"cache", "kind"},
	)

	// EvictionsTotal only moves for providers that report evictions (memory).
	EvictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showfeed_cache_evictions_total",
			Help: "Entries evicted by size, expiry or removal.",
		},
		[]string{"cache"},
	)

	EntryBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "showfeed_cache_entry_bytes",
			Help:    "Size of catalog responses written to the cache.",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 7),
		},
		[]string{"cache", "kind"},
	)
)

// entries reports showfeed_cache_entries for every live cache group by
// asking the group's Len at scrape time.
var entries = &entriesCollector{
	desc: prometheus.NewDesc(
		"showfeed_cache_entries",
		"Entries currently held by the cache.",
		[]string{"cache"},
		nil,
	),
	groups: make(map[string]func() int),
}

func init() {
	prometheus.MustRegister(
		HitsTotal,
		MissesTotal,
		InvalidationsTotal,
		EvictionsTotal,
		EntryBytes,
		entries,
	)
}

type entriesCollector struct {
	desc *prometheus.Desc

	mu     sync.Mutex
	groups map[string]func() int
}

// track starts reporting group, replacing an earlier cache of the same group.
func (c *entriesCollector) track(group string, lenFunc func() int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.groups[group] = lenFunc
}

func (c *entriesCollector) untrack(group string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.groups, group)
}

func (c *entriesCollector) tracked(group string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.groups[group]
	return ok
}

func (c *entriesCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect calls Len outside the lock since a redis Len goes over the network.
func (c *entriesCollector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	groups := maps.Clone(c.groups)
	c.mu.Unlock()

	for group, lenFunc := range groups {
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(lenFunc()), group)
	}
}
