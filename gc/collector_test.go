package gc

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudfly/conservgc/internal/sysmem"
)

func TestStartAppliesDefaults(t *testing.T) {
	withBottomOfStack(func(bos unsafe.Pointer) {
		c := newHeapCollector(bos, Config{})
		defer c.Stop()

		capacity := c.allocMap.Capacity()
		assert.GreaterOrEqual(t, capacity, uint64(1024))
		assert.EqualValues(t, capacity/2, c.allocMap.SweepLimit())
	})
}

func TestStartHonorsExplicitConfig(t *testing.T) {
	withBottomOfStack(func(bos unsafe.Pointer) {
		c := newHeapCollector(bos, Config{
			InitialCapacity: 16,
			MinCapacity:     16,
			SweepFactor:     1,
		})
		defer c.Stop()

		assert.EqualValues(t, 17, c.allocMap.Capacity()) // next prime >= 16
	})
}

func TestPauseSuppressesSweepLimitTrigger(t *testing.T) {
	withBottomOfStack(func(bos unsafe.Pointer) {
		// Capacity 11 with the default sweep factor gives a sweep limit
		// of 5, which the 32 acquires below cross long before finishing.
		c := newHeapCollector(bos, Config{InitialCapacity: 11, MinCapacity: 11})
		defer c.Stop()
		c.Pause()

		for i := 0; i < 32; i++ {
			_, err := c.Acquire(8, nil)
			require.NoError(t, err)
		}

		// Nothing was ever reachable, but with collection paused no
		// automatic sweep should have reclaimed any of it.
		assert.EqualValues(t, 32, c.allocMap.Size())

		c.Resume()
		freed := c.Run()
		assert.Equal(t, uintptr(32*8), freed)
	})
}

func TestRunForcesCollectionRegardlessOfSweepLimit(t *testing.T) {
	withBottomOfStack(func(bos unsafe.Pointer) {
		c := newHeapCollector(bos, Config{Backend: sysmem.HeapBackend{}})
		defer c.Stop()

		_, err := c.Acquire(16, nil)
		require.NoError(t, err)

		freed := c.Run()
		assert.Equal(t, uintptr(16), freed)
		assert.EqualValues(t, 0, c.allocMap.Size())
	})
}

func TestStopClearsRootsAndReclaimsEverything(t *testing.T) {
	withBottomOfStack(func(bos unsafe.Pointer) {
		c := newHeapCollector(bos, Config{})

		_, err := c.AcquireStatic(32, nil)
		require.NoError(t, err)
		_, err = c.AcquireStatic(32, nil)
		require.NoError(t, err)

		freed := c.Stop()
		assert.Equal(t, uintptr(64), freed)
	})
}

func TestDefaultIsLazyAndSingleton(t *testing.T) {
	first := Default()
	second := Default()
	assert.Same(t, first, second)
}
