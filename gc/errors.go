package gc

import "errors"

// ErrInvalidArgument is returned by Resize when called with a non-nil
// address the collector has never seen. No memory is touched.
var ErrInvalidArgument = errors.New("gc: invalid argument")

// ErrAllocationFailed is returned by Acquire/Resize when the system
// allocator failed and, if applicable, a fallback collection-and-retry
// also failed to free enough room.
var ErrAllocationFailed = errors.New("gc: allocation failed")
