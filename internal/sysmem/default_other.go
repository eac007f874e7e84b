//go:build !linux

package sysmem

// NewDefault returns the portable fallback on platforms without the
// mmap/mremap pair this package's Linux backend relies on.
func NewDefault() Allocator {
	return HeapBackend{}
}
