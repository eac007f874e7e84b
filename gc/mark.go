package gc

import (
	"unsafe"

	"github.com/cloudfly/conservgc/internal/allocation"
)

// mark runs the two-pass conservative mark phase: the root pass always
// precedes the stack pass within a single collection.
func (c *Collector) mark() {
	c.markRoots()
	c.markStack()
}

// markRoots marks from every Root-tagged record.
func (c *Collector) markRoots() {
	c.allocMap.Each(func(r *allocation.Record) {
		if r.Tag.Has(allocation.Root) {
			c.markFrom(r.Address)
		}
	})
}

// scanStackIndirect is assigned once and called through, rather than
// calling (*Collector).scanStack directly, so the call the mark phase
// makes is a genuine indirect call the compiler cannot statically
// resolve and inline away. Go's own calling convention has no
// callee-saved registers — every value a caller wants to survive a
// real CALL must already be spilled to the stack by the compiler's own
// register allocator — so forcing a real, unresolved call is
// sufficient to materialize anything the mutator was holding only in a
// register.
var scanStackIndirect = (*Collector).scanStack

func (c *Collector) markStack() {
	scanStackIndirect(c)
}

// scanStack walks every byte-aligned address from the current top of
// stack (a local in this very frame) down to bottomOfStack - wordSize,
// inclusive, treating each as a candidate address. Go's stacks grow
// down. go:noinline keeps this frame real (and thus keeps `top` at a
// genuine stack address) even though markStack's indirect call already
// forces that on its own.
//
//go:noinline
func (c *Collector) scanStack() {
	var top int
	tos := uintptr(unsafe.Pointer(&top))
	bos := uintptr(c.bottomOfStack)

	if bos < wordSize {
		return
	}
	upper := bos - wordSize
	if tos > upper {
		return
	}

	for a := tos; a <= upper; a++ {
		c.markFrom(wordAt(a))
	}
}

// markFrom looks up candidate in the allocation map. If it names a
// live, unmarked record, the record is marked and its own payload is
// scanned for further candidates via an explicit work-list — recursion
// would otherwise be bounded only by the object graph's depth.
func (c *Collector) markFrom(candidate unsafe.Pointer) {
	worklist := []unsafe.Pointer{candidate}
	for len(worklist) > 0 {
		n := len(worklist) - 1
		addr := worklist[n]
		worklist = worklist[:n]

		r := c.allocMap.Get(addr)
		if r == nil || r.Tag.Has(allocation.Mark) {
			continue
		}
		r.Tag |= allocation.Mark

		if r.Size < wordSize {
			continue
		}
		base := uintptr(r.Address)
		upper := base + r.Size - wordSize
		for a := base; a <= upper; a++ {
			worklist = append(worklist, wordAt(a))
		}
	}
}
