// Package allocation defines the per-object bookkeeping cell the
// collector attaches to every managed payload.
package allocation

import "unsafe"

// Tag is a set of combinable, observable bit flags carried by a Record.
// It is the only per-object mutable state besides Size.
type Tag uint8

const (
	// None is the default tag: not rooted, not marked.
	None Tag = 0
	// Root marks an allocation as persistently live regardless of
	// reachability. Cleared only by Stop.
	Root Tag = 1 << iota
	// Mark is set during the mark phase of a collection and cleared
	// during the following sweep. No record should carry Mark once a
	// collection has finished.
	Mark
)

// Has reports whether t carries every bit set in flag.
func (t Tag) Has(flag Tag) bool { return t&flag == flag }

// Finalizer is invoked exactly once on a payload's address, immediately
// before the payload is released back to the system allocator.
type Finalizer func(ptr unsafe.Pointer)

// Record is one managed allocation: its address (the unique key), its
// size in bytes, its tag bits, an optional finalizer, and the link to
// the next record sharing its allocation-map bucket.
type Record struct {
	Address   unsafe.Pointer
	Size      uintptr
	Tag       Tag
	Finalizer Finalizer
	Next      *Record
}

// New builds a Record for ptr. size is fixed at construction and is
// mutated only by an in-place resize. The record starts untagged.
func New(ptr unsafe.Pointer, size uintptr, fin Finalizer) *Record {
	return &Record{
		Address:   ptr,
		Size:      size,
		Tag:       None,
		Finalizer: fin,
	}
}
