package gc

import (
	"sync"
	"unsafe"

	"github.com/cloudfly/conservgc/internal/allocation"
)

// Default is the optional, package-level convenience singleton: a
// process-wide collector for callers who don't want to manage an
// explicit *Collector value themselves. Every operation below is also
// available as a method on an explicit *Collector — callers that need
// more than one independent collector in a process simply call Start
// directly more than once instead of using Default.
//
// Default's bottom-of-stack is captured once, on first use, from a
// local in this very call. That address remains a valid scan boundary
// for the lifetime of the goroutine that first called Default,
// provided that goroutine's stack is never moved by the Go scheduler
// between this call and a later collection — the same stack
// discipline contract Start places on any caller, just harder to
// uphold automatically in a runtime with growable, copying goroutine
// stacks. Programs with deep recursion or large stack growth between
// Default()'s first call and a collection should construct an
// explicit *Collector with their own bottom-of-stack instead.
var (
	defaultOnce sync.Once
	defaultColl *Collector
)

func ensureDefault() {
	defaultOnce.Do(func() {
		var anchor int
		defaultColl = Start(unsafe.Pointer(&anchor), Config{})
	})
}

// Default returns the package-level singleton collector, starting it
// with zero-value (documented-default) configuration on first use.
func Default() *Collector {
	ensureDefault()
	return defaultColl
}

func Stop() uintptr { return Default().Stop() }
func Pause()        { Default().Pause() }
func Resume()       { Default().Resume() }
func Run() uintptr  { return Default().Run() }

func Acquire(size uintptr, fin allocation.Finalizer) (unsafe.Pointer, error) {
	return Default().Acquire(size, fin)
}

func AcquireZeroed(count, size uintptr, fin allocation.Finalizer) (unsafe.Pointer, error) {
	return Default().AcquireZeroed(count, size, fin)
}

func AcquireStatic(size uintptr, fin allocation.Finalizer) (unsafe.Pointer, error) {
	return Default().AcquireStatic(size, fin)
}

func MakeStatic(ptr unsafe.Pointer) bool { return Default().MakeStatic(ptr) }

func Resize(address unsafe.Pointer, newSize uintptr) (unsafe.Pointer, error) {
	return Default().Resize(address, newSize)
}

func Free(address unsafe.Pointer) { Default().Free(address) }

func DuplicateBytes(data []byte) (unsafe.Pointer, error) { return Default().DuplicateBytes(data) }
