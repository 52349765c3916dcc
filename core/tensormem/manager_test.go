package tensormem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryManagerPopulateBeforeFinalizedPanics(t *testing.T) {
	mgr := NewMemoryManager(NewBlobLifetimeManager())
	group := NewGroup(mgr)
	group.Manage("a")

	assert.Panics(t, func() {
		mgr.Populate(NewHeapAllocator(), 1)
	})
}

func TestMemoryManagerPopulateBuildsNPools(t *testing.T) {
	lm := NewBlobLifetimeManager()
	mgr := NewMemoryManager(lm)
	group := NewGroup(mgr)
	group.Manage("a")
	group.FinalizeMemory("a", NewHostHandle(), 64, 16)

	require.NoError(t, mgr.Populate(NewHeapAllocator(), 3))
	assert.Equal(t, 3, mgr.PoolManager().NumPools())
}

func TestMemoryManagerPopulateTwiceWithoutClearPanics(t *testing.T) {
	lm := NewBlobLifetimeManager()
	mgr := NewMemoryManager(lm)
	group := NewGroup(mgr)
	group.Manage("a")
	group.FinalizeMemory("a", NewHostHandle(), 64, 16)
	require.NoError(t, mgr.Populate(NewHeapAllocator(), 1))

	assert.Panics(t, func() {
		mgr.Populate(NewHeapAllocator(), 1)
	})
}

func TestMemoryManagerClearThenRepopulate(t *testing.T) {
	lm := NewBlobLifetimeManager()
	mgr := NewMemoryManager(lm)
	group := NewGroup(mgr)
	group.Manage("a")
	group.FinalizeMemory("a", NewHostHandle(), 64, 16)
	require.NoError(t, mgr.Populate(NewHeapAllocator(), 1))

	mgr.Clear()
	assert.Equal(t, 0, mgr.PoolManager().NumPools())
	require.NoError(t, mgr.Populate(NewHeapAllocator(), 2))
	assert.Equal(t, 2, mgr.PoolManager().NumPools())
}

func TestMemoryManagerIDsAreUnique(t *testing.T) {
	m1 := NewMemoryManager(NewBlobLifetimeManager())
	m2 := NewMemoryManager(NewBlobLifetimeManager())
	assert.NotEqual(t, m1.ID(), m2.ID())
}
