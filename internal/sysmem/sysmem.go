// Package sysmem is the system allocator collaborator: the thing the
// collector's acquire path requests raw memory from, and the thing its
// sweep phase returns unmarked payloads to.
//
// Payloads handed out here must not live on the host Go runtime's own
// garbage-collected heap — this collector exists to manage memory the
// host runtime doesn't already manage, and a payload that were also a
// live Go heap object would simply be tracked (redundantly, and
// confusingly) by both collectors at once. The default backend
// (MmapBackend, linux) maps anonymous pages outside the Go heap; the
// portable fallback (HeapBackend) is documented as a test/non-Linux
// convenience, not a second design.
package sysmem

import (
	"errors"
	"unsafe"
)

// ErrOutOfMemory signals the allocator failed due to transient
// exhaustion — the collector's acquire path treats this, and only
// this, as worth a fallback collection-and-retry.
var ErrOutOfMemory = errors.New("sysmem: out of memory")

// ErrUnsupported signals an operation the backend cannot perform at
// all (e.g. in-place resize on a backend that can only move).
var ErrUnsupported = errors.New("sysmem: unsupported operation")

// Allocator is the system allocator collaborator. size == 0 is valid
// and must return a distinguishable, non-nil, freeable address — the
// same contract libc's malloc(0) gives, which the acquire API must
// preserve.
type Allocator interface {
	// Alloc requests size bytes. If zero is true the memory is
	// zero-initialized; otherwise its contents are unspecified.
	Alloc(size uintptr, zero bool) (unsafe.Pointer, error)

	// Resize attempts to grow or shrink the allocation at ptr (of
	// oldSize bytes) to newSize bytes. It reports whether the
	// returned address is the same as ptr (in place) or a new,
	// moved address; on move the first min(oldSize, newSize) bytes
	// are preserved and the old address is no longer valid.
	Resize(ptr unsafe.Pointer, oldSize, newSize uintptr) (new unsafe.Pointer, moved bool, err error)

	// Free releases an allocation of size bytes at ptr. ptr must
	// have come from Alloc or Resize on the same Allocator.
	Free(ptr unsafe.Pointer, size uintptr) error
}
