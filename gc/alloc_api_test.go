package gc

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudfly/conservgc/internal/allocation"
)

func TestAcquireZeroedZerosPayload(t *testing.T) {
	withBottomOfStack(func(bos unsafe.Pointer) {
		c := newHeapCollector(bos, Config{})
		defer c.Stop()

		ptr, err := c.AcquireZeroed(4, 8, nil)
		require.NoError(t, err)

		bytes := unsafe.Slice((*byte)(ptr), 32)
		for _, b := range bytes {
			assert.Zero(t, b)
		}
	})
}

func TestAcquireStaticAndMakeStatic(t *testing.T) {
	withBottomOfStack(func(bos unsafe.Pointer) {
		c := newHeapCollector(bos, Config{})
		defer c.Stop()

		ptr, err := c.Acquire(16, nil)
		require.NoError(t, err)
		assert.False(t, c.allocMap.Get(ptr).Tag.Has(allocation.Root))

		ok := c.MakeStatic(ptr)
		assert.True(t, ok)
		assert.True(t, c.allocMap.Get(ptr).Tag.Has(allocation.Root))

		assert.False(t, c.MakeStatic(unsafe.Pointer(uintptr(0xdeadbeef))))
	})
}

func TestFreeInvokesFinalizerAndRemovesRecord(t *testing.T) {
	withBottomOfStack(func(bos unsafe.Pointer) {
		c := newHeapCollector(bos, Config{})
		defer c.Stop()

		var finalized unsafe.Pointer
		ptr, err := c.Acquire(16, func(p unsafe.Pointer) { finalized = p })
		require.NoError(t, err)

		c.Free(ptr)
		assert.Equal(t, ptr, finalized)
		assert.Nil(t, c.allocMap.Get(ptr))

		// A second Free (or any unknown address) is a silent no-op.
		assert.NotPanics(t, func() { c.Free(ptr) })
		assert.NotPanics(t, func() { c.Free(nil) })
	})
}

func TestResizeNilIsFreshAcquire(t *testing.T) {
	withBottomOfStack(func(bos unsafe.Pointer) {
		c := newHeapCollector(bos, Config{})
		defer c.Stop()

		ptr, err := c.Resize(nil, 24)
		require.NoError(t, err)
		require.NotNil(t, ptr)
		assert.Equal(t, uintptr(24), c.allocMap.Get(ptr).Size)
	})
}

func TestResizeUnknownAddressIsInvalidArgument(t *testing.T) {
	withBottomOfStack(func(bos unsafe.Pointer) {
		c := newHeapCollector(bos, Config{})
		defer c.Stop()

		_, err := c.Resize(unsafe.Pointer(uintptr(0x1234)), 8)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestResizeInPlacePreservesAddressAndUpdatesSize(t *testing.T) {
	withBottomOfStack(func(bos unsafe.Pointer) {
		c := newHeapCollector(bos, Config{Backend: newFakeInPlaceAllocator()})
		defer c.Stop()

		ptr, err := c.Acquire(16, nil)
		require.NoError(t, err)

		grown, err := c.Resize(ptr, 24)
		require.NoError(t, err)
		assert.Equal(t, ptr, grown)
		assert.Equal(t, uintptr(24), c.allocMap.Get(ptr).Size)
	})
}

func TestResizeMovePreservesFinalizerAndRootTag(t *testing.T) {
	withBottomOfStack(func(bos unsafe.Pointer) {
		c := newHeapCollector(bos, Config{}) // HeapBackend always moves.
		defer c.Stop()

		var finalizedAt unsafe.Pointer
		fin := allocation.Finalizer(func(p unsafe.Pointer) { finalizedAt = p })

		ptr, err := c.AcquireStatic(8, fin)
		require.NoError(t, err)

		moved, err := c.Resize(ptr, 64)
		require.NoError(t, err)
		assert.NotEqual(t, ptr, moved)

		rec := c.allocMap.Get(moved)
		require.NotNil(t, rec)
		assert.True(t, rec.Tag.Has(allocation.Root))
		assert.False(t, rec.Tag.Has(allocation.Mark))

		c.Free(moved)
		assert.Equal(t, moved, finalizedAt)
	})
}

func TestDuplicateBytesCopiesAndNULTerminates(t *testing.T) {
	withBottomOfStack(func(bos unsafe.Pointer) {
		c := newHeapCollector(bos, Config{})
		defer c.Stop()

		src := []byte("hello")
		ptr, err := c.DuplicateBytes(src)
		require.NoError(t, err)

		got := unsafe.Slice((*byte)(ptr), len(src)+1)
		assert.Equal(t, append(append([]byte{}, src...), 0), got)
	})
}
