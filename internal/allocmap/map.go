// Package allocmap implements the allocation-map layer of the
// collector: a resizing, open-addressed-by-chaining table mapping raw
// addresses to allocation.Record bookkeeping cells.
package allocmap

import (
	"unsafe"

	"github.com/cloudfly/conservgc/internal/allocation"
)

// Config carries the construction-time tuning knobs. A zero Config is
// not valid on its own; callers go through New, which applies the
// documented defaults for any zero field.
type Config struct {
	MinCapacity  uint64
	Capacity     uint64
	SweepFactor  float64
	DownsizeLoad float64
	UpsizeLoad   float64
}

// Map is the allocation map: a bucket array of allocation.Record
// chains, keyed by address, with upsize/downsize hysteresis and a
// sweep-limit high-water mark recomputed on every resize.
type Map struct {
	buckets []*allocation.Record

	capacity    uint64
	minCapacity uint64
	size        uint64

	downsizeLoad float64
	upsizeLoad   float64
	sweepFactor  float64
	sweepLimit   uint64
}

// New builds an allocation map honoring the documented defaults: an
// initial capacity of 1024, a floor of 1024, downsize/upsize load
// factors of 0.2/0.8, and a sweep factor of 0.5. Zero fields in cfg
// fall back to those defaults; the initial capacity is clamped up to
// the floor, and both are rounded up to the next prime.
func New(cfg Config) *Map {
	minCapacity := cfg.MinCapacity
	if minCapacity == 0 {
		minCapacity = 1024
	}
	capacity := cfg.Capacity
	if capacity == 0 {
		capacity = 1024
	}
	if capacity < minCapacity {
		capacity = minCapacity
	}
	sweepFactor := cfg.SweepFactor
	if sweepFactor == 0 {
		sweepFactor = 0.5
	}
	downsize := cfg.DownsizeLoad
	if downsize == 0 {
		downsize = 0.2
	}
	upsize := cfg.UpsizeLoad
	if upsize == 0 {
		upsize = 0.8
	}

	m := &Map{
		minCapacity:  nextPrime(minCapacity),
		capacity:     nextPrime(capacity),
		downsizeLoad: downsize,
		upsizeLoad:   upsize,
		sweepFactor:  sweepFactor,
	}
	if m.capacity < m.minCapacity {
		m.capacity = m.minCapacity
	}
	m.buckets = make([]*allocation.Record, m.capacity)
	m.recomputeSweepLimit()
	return m
}

// Size is the count of live records.
func (m *Map) Size() uint64 { return m.size }

// Capacity is the current bucket array length. Always prime.
func (m *Map) Capacity() uint64 { return m.capacity }

// SweepLimit is the size threshold above which the next insertion
// should trigger a collection.
func (m *Map) SweepLimit() uint64 { return m.sweepLimit }

// LoadFactor is size/capacity.
func (m *Map) LoadFactor() float64 {
	return float64(m.size) / float64(m.capacity)
}

func (m *Map) recomputeSweepLimit() {
	m.sweepLimit = m.size + uint64(m.sweepFactor*float64(m.capacity-m.size))
}

// hash drops the low 3 bits of the address, which are always zero for
// 8-byte-aligned allocations; index then reduces it mod capacity.
func hash(ptr unsafe.Pointer) uint64 {
	return uint64(uintptr(ptr)) >> 3
}

func (m *Map) index(ptr unsafe.Pointer) uint64 {
	return hash(ptr) % m.capacity
}

// Get looks up the record for ptr, if any.
func (m *Map) Get(ptr unsafe.Pointer) *allocation.Record {
	for r := m.buckets[m.index(ptr)]; r != nil; r = r.Next {
		if r.Address == ptr {
			return r
		}
	}
	return nil
}

// Put inserts a new record for (ptr, size, fin), or upserts in place
// if ptr is already known — e.g. the same address handed back after
// an external resize. An upsert splices a replacement record where the
// old one sat and does not increment Size. A fresh insert prepends to
// the bucket's chain, increments Size, and then evaluates the resize
// predicate; if a resize fires, the record returned is re-looked-up in
// the new table.
func (m *Map) Put(ptr unsafe.Pointer, size uintptr, fin allocation.Finalizer) *allocation.Record {
	idx := m.index(ptr)
	fresh := allocation.New(ptr, size, fin)

	var prev *allocation.Record
	for cur := m.buckets[idx]; cur != nil; cur = cur.Next {
		if cur.Address == ptr {
			fresh.Next = cur.Next
			if prev == nil {
				m.buckets[idx] = fresh
			} else {
				prev.Next = fresh
			}
			return fresh
		}
		prev = cur
	}

	fresh.Next = m.buckets[idx]
	m.buckets[idx] = fresh
	m.size++

	if m.ResizeToFit() {
		return m.Get(ptr)
	}
	return fresh
}

// Remove unlinks and disposes of the record for ptr, if present;
// unknown addresses are silently ignored. allowResize exists so a
// sweep traversal, which is already iterating the map, can remove
// records without triggering a concurrent rehash — resize is deferred
// until the sweep completes.
func (m *Map) Remove(ptr unsafe.Pointer, allowResize bool) {
	idx := m.index(ptr)
	var prev *allocation.Record
	for cur := m.buckets[idx]; cur != nil; cur = cur.Next {
		if cur.Address == ptr {
			if prev == nil {
				m.buckets[idx] = cur.Next
			} else {
				prev.Next = cur.Next
			}
			m.size--
			break
		}
		prev = cur
	}
	if allowResize {
		m.ResizeToFit()
	}
}

// Resize rehashes every record into a bucket array of newCapacity,
// rounded up to the next prime. Refuses to resize below MinCapacity.
// Link order within a bucket is the inversion of traversal order,
// which is fine: buckets are unordered.
func (m *Map) Resize(newCapacity uint64) {
	newCapacity = nextPrime(newCapacity)
	if newCapacity < m.minCapacity {
		return
	}

	resized := make([]*allocation.Record, newCapacity)
	for _, head := range m.buckets {
		for cur := head; cur != nil; {
			next := cur.Next
			idx := hash(cur.Address) % newCapacity
			cur.Next = resized[idx]
			resized[idx] = cur
			cur = next
		}
	}
	m.buckets = resized
	m.capacity = newCapacity
	m.recomputeSweepLimit()
}

// ResizeToFit evaluates the load factor against the configured
// hysteresis thresholds and resizes if either bound is crossed. It
// reports whether a resize occurred.
func (m *Map) ResizeToFit() bool {
	before := m.capacity
	lf := m.LoadFactor()
	if lf > m.upsizeLoad {
		m.Resize(nextPrime(m.capacity * 2))
	} else if lf < m.downsizeLoad {
		m.Resize(nextPrime(m.capacity / 2))
	}
	return m.capacity != before
}

// Each visits every live record in unspecified bucket-chain order. It
// must not be used to remove records mid-traversal; use SweepEach for
// that.
func (m *Map) Each(fn func(*allocation.Record)) {
	for _, head := range m.buckets {
		for cur := head; cur != nil; cur = cur.Next {
			fn(cur)
		}
	}
}

// SweepEach visits every live record exactly once. If fn reports false
// the record is unlinked from its bucket and disposed of without
// triggering a resize — the caller (the collector's sweep phase) is
// expected to call ResizeToFit once after SweepEach returns.
func (m *Map) SweepEach(fn func(*allocation.Record) (keep bool)) {
	for idx, head := range m.buckets {
		var prev *allocation.Record
		cur := head
		for cur != nil {
			next := cur.Next
			if fn(cur) {
				prev = cur
				cur = next
				continue
			}
			if prev == nil {
				m.buckets[idx] = next
			} else {
				prev.Next = next
			}
			m.size--
			cur = next
		}
	}
}

// Delete tears the map down. It does not release payloads or invoke
// finalizers; the caller is expected to have swept first.
func (m *Map) Delete() {
	m.buckets = nil
	m.size = 0
}
