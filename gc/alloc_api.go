package gc

import (
	"unsafe"

	"github.com/cloudfly/conservgc/internal/allocation"
	"github.com/cloudfly/conservgc/internal/sysmem"
)

// Acquire requests size raw, uninitialized bytes: the payload is
// whatever the system allocator handed back, not zero-filled.
func (c *Collector) Acquire(size uintptr, fin allocation.Finalizer) (unsafe.Pointer, error) {
	return c.acquire(size, false, fin, allocation.None)
}

// AcquireZeroed requests count*size zero-initialized bytes.
func (c *Collector) AcquireZeroed(count, size uintptr, fin allocation.Finalizer) (unsafe.Pointer, error) {
	return c.acquire(count*size, true, fin, allocation.None)
}

// AcquireStatic is Acquire, additionally tagging the new record Root
// so it persistently anchors live across collection cycles.
func (c *Collector) AcquireStatic(size uintptr, fin allocation.Finalizer) (unsafe.Pointer, error) {
	return c.acquire(size, false, fin, allocation.Root)
}

// MakeStatic tags an already-registered address Root. It reports
// whether ptr was known to the collector.
func (c *Collector) MakeStatic(ptr unsafe.Pointer) bool {
	r := c.allocMap.Get(ptr)
	if r == nil {
		return false
	}
	r.Tag |= allocation.Root
	return true
}

func (c *Collector) acquire(size uintptr, zero bool, fin allocation.Finalizer, tag allocation.Tag) (unsafe.Pointer, error) {
	if !c.paused.Load() && c.allocMap.Size() > c.allocMap.SweepLimit() {
		c.sweep()
	}

	ptr, err := c.backend.Alloc(size, zero)
	if err == sysmem.ErrOutOfMemory && !c.paused.Load() {
		c.sweep()
		ptr, err = c.backend.Alloc(size, zero)
	}
	if err != nil {
		return nil, ErrAllocationFailed
	}

	// Registering the bookkeeping record allocates through the host Go
	// runtime's own (separately garbage-collected) heap; unlike the
	// payload allocator it is not modeled as fallible here, matching
	// ordinary Go programs, which treat exhaustion of that heap as
	// fatal rather than as a recoverable error.
	rec := c.allocMap.Put(ptr, size, fin)
	rec.Tag |= tag

	c.totalAcquired.Inc()
	metricAcquiresTotal.Inc()
	metricLiveAllocations.Set(float64(c.allocMap.Size()))
	metricMapCapacity.Set(float64(c.allocMap.Capacity()))

	return ptr, nil
}

// Resize grows or shrinks the managed payload at address to newSize,
// preserving its finalizer (and Root tag, if any) across a move. A nil
// address is treated as a fresh, finalizer-less acquire. A non-nil
// address unknown to the collector reports ErrInvalidArgument without
// touching memory. On allocator failure the old registration and
// payload are left untouched and ErrAllocationFailed is reported.
func (c *Collector) Resize(address unsafe.Pointer, newSize uintptr) (unsafe.Pointer, error) {
	if address == nil {
		return c.Acquire(newSize, nil)
	}

	rec := c.allocMap.Get(address)
	if rec == nil {
		return nil, ErrInvalidArgument
	}

	newPtr, moved, err := c.backend.Resize(address, rec.Size, newSize)
	if err != nil {
		return nil, ErrAllocationFailed
	}

	if !moved {
		rec.Size = newSize
		return address, nil
	}

	fin := rec.Finalizer
	oldTag := rec.Tag &^ allocation.Mark
	c.allocMap.Remove(address, true)

	newRec := c.allocMap.Put(newPtr, newSize, fin)
	newRec.Tag |= oldTag

	return newPtr, nil
}

// Free looks up address; if known, its finalizer runs, its payload is
// released to the system allocator, and its record is removed.
// Unknown (including nil) addresses are silently ignored.
func (c *Collector) Free(address unsafe.Pointer) {
	rec := c.allocMap.Get(address)
	if rec == nil {
		return
	}

	if rec.Finalizer != nil {
		rec.Finalizer(rec.Address)
	}
	_ = c.backend.Free(rec.Address, rec.Size)
	c.allocMap.Remove(address, true)

	c.totalFreed.Inc()
	metricFreesTotal.Inc()
	metricLiveAllocations.Set(float64(c.allocMap.Size()))
}

// DuplicateBytes is exactly an acquire of len(data)+1 bytes followed by
// a copy of data and a trailing zero byte.
func (c *Collector) DuplicateBytes(data []byte) (unsafe.Pointer, error) {
	ptr, err := c.Acquire(uintptr(len(data))+1, nil)
	if err != nil {
		return nil, err
	}
	dst := unsafe.Slice((*byte)(ptr), len(data)+1)
	copy(dst, data)
	dst[len(data)] = 0
	return ptr, nil
}
