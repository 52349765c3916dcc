package tensormem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// planOneGroup drives a single group through manage/finalize for the given
// identities, using size/alignment from the sizes map, and returns the
// group once planning completes.
func planOneGroup(lm LifetimeManager, sizes map[string]int64, alignment int64) (*Group, map[string]*HostHandle) {
	mgr := NewMemoryManager(lm)
	group := NewGroup(mgr)
	handles := make(map[string]*HostHandle, len(sizes))

	for id := range sizes {
		group.Manage(id)
		handles[id] = NewHostHandle()
	}
	for id, size := range sizes {
		group.FinalizeMemory(id, handles[id], size, alignment)
	}
	return group, handles
}

func TestBlobLifetimeManagerNonOverlapping(t *testing.T) {
	lm := NewBlobLifetimeManager()
	group := NewGroup(NewMemoryManager(lm))
	ha := NewHostHandle()
	hb := NewHostHandle()

	// "a" ends before "b" starts. planOneGroup would start both before
	// ending either, so the lifetimes are driven one after the other here.
	lm.RegisterGroup(group)
	lm.StartLifetime("a")
	lm.EndLifetime("a", ha, 100, 16)
	lm.RegisterGroup(group)
	lm.StartLifetime("b")
	lm.EndLifetime("b", hb, 200, 16)

	require.True(t, lm.AllFinalized())
	infos := lm.BlobInfos()
	require.Len(t, infos, 1, "two sequential tensors with disjoint lifetimes should share one blob")
	assert.Equal(t, int64(200), infos[0].Size)

	slotA := group.Mappings()[ha]
	slotB := group.Mappings()[hb]
	assert.Equal(t, slotA, slotB, "both tensors should land in the same blob slot")
}

func TestBlobLifetimeManagerOverlapping(t *testing.T) {
	lm := NewBlobLifetimeManager()
	mgr := NewMemoryManager(lm)
	group := NewGroup(mgr)

	group.Manage("a")
	group.Manage("b")
	ha := NewHostHandle()
	hb := NewHostHandle()
	group.FinalizeMemory("a", ha, 100, 16)
	group.FinalizeMemory("b", hb, 200, 16)

	infos := lm.BlobInfos()
	require.Len(t, infos, 2, "two overlapping tensors need two distinct blobs")
	slotA := group.Mappings()[ha]
	slotB := group.Mappings()[hb]
	assert.NotEqual(t, slotA, slotB)
}

func TestBlobLifetimeManagerMonotonicMax(t *testing.T) {
	lm := NewBlobLifetimeManager()

	_, h1 := planOneGroup(lm, map[string]int64{"a": 50}, 8)
	assert.Equal(t, int64(50), lm.BlobInfos()[0].Size)
	_ = h1

	_, _ = planOneGroup(lm, map[string]int64{"b": 500}, 8)
	assert.Equal(t, int64(500), lm.BlobInfos()[0].Size, "a second, larger group must grow the stored layout")

	_, _ = planOneGroup(lm, map[string]int64{"c": 10}, 8)
	assert.Equal(t, int64(500), lm.BlobInfos()[0].Size, "a smaller group must never shrink the stored layout")
}

func TestBlobLifetimeManagerDuplicateStartPanics(t *testing.T) {
	lm := NewBlobLifetimeManager()
	mgr := NewMemoryManager(lm)
	group := NewGroup(mgr)

	group.Manage("a")
	assert.Panics(t, func() {
		group.Manage("a")
	}, "Manage is a no-op once the group's mapping is populated, but here the group hasn't finalized yet so re-Manage reaches StartLifetime twice")
}

func TestBlobLifetimeManagerUnknownIdentityPanics(t *testing.T) {
	lm := NewBlobLifetimeManager()
	mgr := NewMemoryManager(lm)
	group := NewGroup(mgr)

	assert.Panics(t, func() {
		group.FinalizeMemory("ghost", NewHostHandle(), 10, 8)
	})
}

func TestBlobLifetimeManagerCreatePoolBeforeFinalizedPanics(t *testing.T) {
	lm := NewBlobLifetimeManager()
	mgr := NewMemoryManager(lm)
	group := NewGroup(mgr)
	group.Manage("a")

	assert.Panics(t, func() {
		lm.CreatePool(NewHeapAllocator())
	})
}

func TestBlobLifetimeManagerCreatePool(t *testing.T) {
	lm := NewBlobLifetimeManager()
	planOneGroup(lm, map[string]int64{"a": 64, "b": 128}, 16)

	pool, err := lm.CreatePool(NewHeapAllocator())
	require.NoError(t, err)
	assert.Equal(t, MappingBlob, pool.MappingKind())
}
