//go:build linux

package sysmem

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// MmapBackend allocates anonymous, private pages directly from the
// kernel via mmap(2), the same tier cloudfly-readgo's mallocinit
// reaches for with sysReserve/sysAlloc before ever touching a Go
// slice. Every allocation is rounded up to a whole number of pages;
// Resize uses mremap(2) with MREMAP_MAYMOVE, so the kernel either
// resizes the mapping in place or moves it. There is no separate
// alloc-copy-free path: an mremap failure is reported as ErrOutOfMemory.
type MmapBackend struct {
	pageSize uintptr
}

// NewMmapBackend constructs an MmapBackend sized to the process's page
// size.
func NewMmapBackend() *MmapBackend {
	return &MmapBackend{pageSize: uintptr(unix.Getpagesize())}
}

func (b *MmapBackend) roundPages(size uintptr) uintptr {
	if size == 0 {
		return b.pageSize
	}
	return (size + b.pageSize - 1) &^ (b.pageSize - 1)
}

func (b *MmapBackend) Alloc(size uintptr, zero bool) (unsafe.Pointer, error) {
	n := b.roundPages(size)
	data, err := unix.Mmap(-1, 0, int(n), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, ErrOutOfMemory
	}
	// MAP_ANON pages are already zero-filled by the kernel; zero is
	// accepted for interface symmetry with HeapBackend.
	_ = zero
	return unsafe.Pointer(&data[0]), nil
}

func (b *MmapBackend) Resize(ptr unsafe.Pointer, oldSize, newSize uintptr) (unsafe.Pointer, bool, error) {
	oldPages := b.roundPages(oldSize)
	newPages := b.roundPages(newSize)
	if oldPages == newPages {
		return ptr, false, nil
	}

	oldSlice := unsafe.Slice((*byte)(ptr), oldPages)
	moved, err := unix.Mremap(oldSlice, int(newPages), unix.MREMAP_MAYMOVE)
	if err != nil {
		return nil, false, ErrOutOfMemory
	}
	newPtr := unsafe.Pointer(&moved[0])
	return newPtr, newPtr != ptr, nil
}

func (b *MmapBackend) Free(ptr unsafe.Pointer, size uintptr) error {
	n := b.roundPages(size)
	data := unsafe.Slice((*byte)(ptr), n)
	return unix.Munmap(data)
}
