package sysmem

import "unsafe"

// HeapBackend services allocations from the ordinary Go heap via
// make([]byte, n). It is the portable fallback for platforms without
// mmap/mremap, and the backend of choice for unit tests that want
// deterministic, sanitizer-friendly memory instead of real page
// mappings.
//
// This is the one place the module's "no vector-backed naive
// allocator" non-goal could be mistaken for a second collector design;
// it isn't one. HeapBackend only ever answers Alloc/Resize/Free — it
// does not track liveness, does not sweep, and does not replace
// anything in package gc. Reachability is still decided entirely by
// the mark phase; this type is a storage backend, not a collector.
//
// A byte slice handed out this way is kept alive by the host Go
// runtime for exactly as long as some unsafe.Pointer field (an
// allocation.Record.Address, typically) still references it — which
// is also how the collector's own bookkeeping keeps it alive across a
// cycle, so no additional pinning is required here.
type HeapBackend struct{}

func (HeapBackend) Alloc(size uintptr, zero bool) (unsafe.Pointer, error) {
	if size == 0 {
		size = 1
	}
	buf := make([]byte, size)
	// zero is always true for make([]byte, ...); accepted for
	// interface symmetry with backends that must zero explicitly.
	_ = zero
	return unsafe.Pointer(&buf[0]), nil
}

func (HeapBackend) Resize(ptr unsafe.Pointer, oldSize, newSize uintptr) (unsafe.Pointer, bool, error) {
	if newSize == 0 {
		newSize = 1
	}
	newBuf := make([]byte, newSize)
	if oldSize > 0 {
		n := oldSize
		if newSize < n {
			n = newSize
		}
		old := unsafe.Slice((*byte)(ptr), oldSize)
		copy(newBuf, old[:n])
	}
	return unsafe.Pointer(&newBuf[0]), true, nil
}

func (HeapBackend) Free(unsafe.Pointer, uintptr) error {
	// Nothing to do: the host Go runtime reclaims the backing array
	// once the collector drops its last unsafe.Pointer reference.
	return nil
}
