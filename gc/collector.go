// Package gc implements the collector core and public allocation API:
// a conservative, precise-free mark-and-sweep collector for payloads
// that live outside the host Go runtime's own garbage-collected heap.
//
// The collector is single-threaded and cooperative: it assumes exactly
// one mutator and specifies no locking. Callers that need more than one
// independent collector in a process construct more than one
// *Collector; see Default for the optional package-level convenience
// singleton.
package gc

import (
	"time"
	"unsafe"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"go.uber.org/atomic"

	"github.com/cloudfly/conservgc/internal/allocation"
	"github.com/cloudfly/conservgc/internal/allocmap"
	"github.com/cloudfly/conservgc/internal/sysmem"
)

const wordSize = unsafe.Sizeof(uintptr(0))

// Collector owns an allocation map, the paused flag consulted by the
// acquire path, and the bottom-of-stack address recorded at Start.
type Collector struct {
	allocMap      *allocmap.Map
	backend       sysmem.Allocator
	logger        log.Logger
	bottomOfStack unsafe.Pointer

	paused atomic.Bool

	totalAcquired atomic.Int64
	totalFreed    atomic.Int64
}

// Start initializes a collector. bottomOfStack must be an address
// strictly deeper (closer to the stack's origin) than any frame in
// which this collector will later run — the recorded value is never
// re-derived; violating this means a later stack scan can miss live
// references. cfg supplies optional tuning; zero fields resolve to the
// documented defaults (initial capacity 1024, min capacity 1024,
// downsize/upsize 0.2/0.8, sweep factor 0.5).
func Start(bottomOfStack unsafe.Pointer, cfg Config) *Collector {
	backend := cfg.Backend
	if backend == nil {
		backend = sysmem.NewDefault()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}

	c := &Collector{
		allocMap: allocmap.New(allocmap.Config{
			MinCapacity:  cfg.MinCapacity,
			Capacity:     cfg.InitialCapacity,
			SweepFactor:  cfg.SweepFactor,
			DownsizeLoad: cfg.DownsizeLoadFactor,
			UpsizeLoad:   cfg.UpsizeLoadFactor,
		}),
		backend:       backend,
		logger:        logger,
		bottomOfStack: bottomOfStack,
	}

	level.Debug(c.logger).Log("msg", "collector started",
		"capacity", c.allocMap.Capacity(),
		"min_capacity", cfg.MinCapacity,
		"bottom_of_stack", bottomOfStack)

	return c
}

// Stop clears Root on every record so anchored objects are no longer
// anchored, then runs a bare sweep with no preceding mark — every
// record is already unmarked at rest between collections, so with
// Root cleared nothing is left tagged live, and the sweep reclaims
// everything unconditionally. Running a mark here instead would let
// anything still reachable from the caller's own stack get re-tagged
// and survive, which would contradict "reclaims everything." Stop
// finally tears down the map and returns the number of bytes reclaimed.
func (c *Collector) Stop() uintptr {
	c.allocMap.Each(func(r *allocation.Record) {
		r.Tag &^= allocation.Root
	})

	freed := c.doSweep()

	metricBytesReclaimedTotal.Add(float64(freed))
	metricLiveAllocations.Set(float64(c.allocMap.Size()))
	metricMapCapacity.Set(float64(c.allocMap.Capacity()))

	c.allocMap.Delete()

	level.Debug(c.logger).Log("msg", "collector stopped", "bytes_reclaimed", humanizeBytes(freed))
	return freed
}

// Pause suppresses automatic collection: crossing the sweep limit no
// longer triggers a collection on acquire, and allocator-failure
// fallback collection is suppressed. Explicit Run still collects
// unconditionally.
func (c *Collector) Pause() { c.paused.Store(true) }

// Resume reverses Pause.
func (c *Collector) Resume() { c.paused.Store(false) }

// Run forces one mark+sweep cycle regardless of the paused flag or
// the current sweep limit, and returns the number of bytes reclaimed.
func (c *Collector) Run() uintptr {
	return c.sweep()
}

func (c *Collector) sweep() uintptr {
	start := time.Now()

	c.mark()
	freed := c.doSweep()

	metricCollectionsTotal.Inc()
	metricBytesReclaimedTotal.Add(float64(freed))
	metricLiveAllocations.Set(float64(c.allocMap.Size()))
	metricMapCapacity.Set(float64(c.allocMap.Capacity()))
	metricCollectionDuration.Observe(time.Since(start).Seconds())

	level.Debug(c.logger).Log("msg", "collection complete",
		"bytes_reclaimed", humanizeBytes(freed),
		"live_allocations", c.allocMap.Size(),
		"duration", time.Since(start))

	return freed
}
