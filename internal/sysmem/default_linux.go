//go:build linux

package sysmem

// NewDefault returns the platform's preferred backend: real anonymous
// page mappings on Linux, kept outside the host Go runtime's heap.
func NewDefault() Allocator {
	return NewMmapBackend()
}
