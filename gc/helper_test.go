package gc

import (
	"unsafe"

	"github.com/cloudfly/conservgc/internal/sysmem"
)

// withBottomOfStack captures bos in a frame strictly shallower than fn
// and anything fn goes on to call, then invokes fn with it — the
// pattern every stack-scanning test in this package uses to get a
// bottomOfStack value that is guaranteed to sit above every frame the
// collector will later walk.
func withBottomOfStack(fn func(bos unsafe.Pointer)) {
	var anchor int
	fn(unsafe.Pointer(&anchor))
}

func newHeapCollector(bos unsafe.Pointer, cfg Config) *Collector {
	if cfg.Backend == nil {
		cfg.Backend = sysmem.HeapBackend{}
	}
	return Start(bos, cfg)
}

func storePointer(dst, val unsafe.Pointer) {
	*(*unsafe.Pointer)(dst) = val
}

func loadPointer(src unsafe.Pointer) unsafe.Pointer {
	return *(*unsafe.Pointer)(src)
}

// fakeInPlaceAllocator is a sysmem.Allocator whose Resize stays at the
// same address whenever the requested size still fits the buffer
// originally handed out, so tests can exercise the "resize in place"
// path deterministically — HeapBackend, by contrast, always
// reallocates.
type fakeInPlaceAllocator struct {
	bufs map[unsafe.Pointer][]byte
}

func newFakeInPlaceAllocator() *fakeInPlaceAllocator {
	return &fakeInPlaceAllocator{bufs: make(map[unsafe.Pointer][]byte)}
}

func (f *fakeInPlaceAllocator) Alloc(size uintptr, zero bool) (unsafe.Pointer, error) {
	if size == 0 {
		size = 1
	}
	buf := make([]byte, size, size*2+16)
	ptr := unsafe.Pointer(&buf[0])
	f.bufs[ptr] = buf
	return ptr, nil
}

func (f *fakeInPlaceAllocator) Resize(ptr unsafe.Pointer, oldSize, newSize uintptr) (unsafe.Pointer, bool, error) {
	if newSize == 0 {
		newSize = 1
	}
	buf, ok := f.bufs[ptr]
	if ok && int(newSize) <= cap(buf) {
		buf = buf[:newSize]
		f.bufs[ptr] = buf
		return ptr, false, nil
	}

	newBuf := make([]byte, newSize, newSize*2+16)
	if ok {
		copy(newBuf, buf)
	}
	newPtr := unsafe.Pointer(&newBuf[0])
	f.bufs[newPtr] = newBuf
	delete(f.bufs, ptr)
	return newPtr, true, nil
}

func (f *fakeInPlaceAllocator) Free(ptr unsafe.Pointer, size uintptr) error {
	delete(f.bufs, ptr)
	return nil
}
