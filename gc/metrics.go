package gc

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics mirror the package-level promauto vars friggdb.go and
// friggdb/pool/pool.go declare under their own namespace; conservgc
// gets the same treatment under its own.
var (
	metricAcquiresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "conservgc",
		Name:      "acquires_total",
		Help:      "Total number of successful allocation-API acquires.",
	})
	metricFreesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "conservgc",
		Name:      "frees_total",
		Help:      "Total number of explicit frees and sweep reclamations.",
	})
	metricCollectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "conservgc",
		Name:      "collections_total",
		Help:      "Total number of completed mark+sweep collections.",
	})
	metricBytesReclaimedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "conservgc",
		Name:      "bytes_reclaimed_total",
		Help:      "Total payload bytes released back to the system allocator by sweeps.",
	})
	metricLiveAllocations = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "conservgc",
		Name:      "live_allocations",
		Help:      "Current number of live records in the allocation map.",
	})
	metricMapCapacity = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "conservgc",
		Name:      "allocation_map_capacity",
		Help:      "Current bucket-array length of the allocation map.",
	})
	metricCollectionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "conservgc",
		Name:      "collection_duration_seconds",
		Help:      "Wall time spent in a single mark+sweep collection.",
		Buckets:   prometheus.ExponentialBuckets(.00025, 2, 12),
	})
)
