package tensormem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupEndToEndBlob(t *testing.T) {
	lm := NewBlobLifetimeManager()
	mgr := NewMemoryManager(lm)
	group := NewGroup(mgr)

	h := NewHostHandle()
	group.Manage("a")
	group.FinalizeMemory("a", h, 64, 16)

	require.NoError(t, mgr.Populate(NewHeapAllocator(), 2))

	group.Acquire()
	require.NotNil(t, h.Storage())

	group.Release()
	assert.Nil(t, h.Storage())
}

func TestGroupReleaseWithoutAcquireIsNoOp(t *testing.T) {
	mgr := NewMemoryManager(NewBlobLifetimeManager())
	group := NewGroup(mgr)
	assert.NotPanics(t, func() {
		group.Release()
	})
}

func TestGroupAcquireWithEmptyMappingIsNoOp(t *testing.T) {
	mgr := NewMemoryManager(NewBlobLifetimeManager())
	group := NewGroup(mgr)
	assert.NotPanics(t, func() {
		group.Acquire()
	})
}

func TestGroupWithNilManagerIsUnmanaged(t *testing.T) {
	group := NewGroup(nil)
	assert.NotPanics(t, func() {
		group.Manage("a")
		group.FinalizeMemory("a", NewHostHandle(), 64, 16)
		group.Acquire()
		group.Release()
	})
}

func TestGroupFinalizeMemoryWithoutManagePanics(t *testing.T) {
	mgr := NewMemoryManager(NewBlobLifetimeManager())
	group := NewGroup(mgr)
	assert.Panics(t, func() {
		group.FinalizeMemory("never-managed", NewHostHandle(), 1, 1)
	})
}

func TestScopedGroupReleasesOnClose(t *testing.T) {
	lm := NewOffsetLifetimeManager()
	mgr := NewMemoryManager(lm)
	group := NewGroup(mgr)

	h := NewHostHandle()
	group.Manage("a")
	group.FinalizeMemory("a", h, 32, 8)
	require.NoError(t, mgr.Populate(NewHeapAllocator(), 1))

	func() {
		scope := group.AcquireScoped()
		defer scope.Close()
		assert.NotNil(t, h.Storage())
	}()

	assert.Nil(t, h.Storage())
}
