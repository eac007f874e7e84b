package gc

import "unsafe"

// wordAt reads the word-sized value starting at byte address addr and
// reinterprets it as a candidate address, without requiring addr to be
// pointer-aligned — the conservative scan advances one byte at a time,
// and a direct *(*unsafe.Pointer)(unsafe.Pointer(addr)) dereference
// would be an unaligned pointer load at most starting offsets. Copying
// through a properly aligned local array sidesteps that while
// preserving byte-granular candidate positions.
func wordAt(addr uintptr) unsafe.Pointer {
	var buf [unsafe.Sizeof(uintptr(0))]byte
	src := unsafe.Slice((*byte)(unsafe.Pointer(addr)), len(buf))
	copy(buf[:], src)
	return *(*unsafe.Pointer)(unsafe.Pointer(&buf[0]))
}
