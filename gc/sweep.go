package gc

import (
	"github.com/go-kit/log/level"

	"github.com/cloudfly/conservgc/internal/allocation"
)

// doSweep iterates every bucket of the allocation map. A marked
// record is unmarked and kept; an unmarked record has its finalizer
// invoked, its payload released to the system allocator, and is
// removed from the map without triggering a resize — the map is
// mid-traversal. Once the full traversal completes, resize-to-fit runs
// exactly once. doSweep returns the total bytes reclaimed.
func (c *Collector) doSweep() uintptr {
	var freed uintptr

	c.allocMap.SweepEach(func(r *allocation.Record) bool {
		if r.Tag.Has(allocation.Mark) {
			r.Tag &^= allocation.Mark
			return true
		}

		freed += r.Size
		if r.Finalizer != nil {
			r.Finalizer(r.Address)
		}
		if err := c.backend.Free(r.Address, r.Size); err != nil {
			level.Error(c.logger).Log("msg", "failed to release swept payload", "err", err)
		}
		metricFreesTotal.Inc()
		return false
	})

	c.allocMap.ResizeToFit()
	return freed
}
