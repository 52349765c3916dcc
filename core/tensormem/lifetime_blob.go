package tensormem

import "sort"

// BlobLifetimeManager plans one physical buffer per non-overlapping class
// of tensors (spec §4.C.1). It is grounded directly on
// src/runtime/BlobLifetimeManager.cpp: sort the completed free list by
// descending size, emit one BlobInfo per blob, and fold the result into
// whatever BlobInfo list survived from the last group this manager planned
// — element-wise max, never shrinking — so a lifetime manager reused
// across groups never under-allocates for a group smaller than a previous
// peak.
type BlobLifetimeManager struct {
	tracker
	blobInfos []BlobInfo
}

// NewBlobLifetimeManager creates an empty blob-variant lifetime manager.
func NewBlobLifetimeManager() *BlobLifetimeManager {
	lm := &BlobLifetimeManager{}
	lm.tracker.updater = lm
	return lm
}

func (lm *BlobLifetimeManager) updateLayoutAndMappings() {
	sorted := append([]*blobRecord(nil), lm.tracker.free...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].maxSize > sorted[j].maxSize
	})

	fresh := make([]BlobInfo, len(sorted))
	for i, b := range sorted {
		fresh[i] = b.info()
	}

	lNew := maxInt(len(lm.blobInfos), len(fresh))
	combined := make([]BlobInfo, lNew)
	for i := 0; i < lNew; i++ {
		var old, new_ BlobInfo
		if i < len(lm.blobInfos) {
			old = lm.blobInfos[i]
		}
		if i < len(fresh) {
			new_ = fresh[i]
		}
		combined[i] = maxBlobInfo(old, new_)
	}
	lm.blobInfos = combined

	group := lm.tracker.activeGroup
	for slot, b := range sorted {
		for id := range b.bound {
			mo := lm.tracker.active[id]
			group.bindSlot(mo.handle, Slot(slot))
		}
	}
}

// CreatePool builds a BlobPool sized to the stored BlobInfo list. Must
// only be called once AllFinalized() is true.
func (lm *BlobLifetimeManager) CreatePool(alloc RawAllocator) (Pool, error) {
	if !lm.tracker.allFinalized() {
		fatalf(ErrNotFinalized, "create_pool called before all lifetimes were closed")
	}
	if alloc == nil {
		fatalf(ErrNullAllocator, "create_pool called with a nil allocator")
	}
	return newBlobPool(alloc, lm.blobInfos)
}

func (lm *BlobLifetimeManager) MappingKind() MappingKind { return MappingBlob }

func (lm *BlobLifetimeManager) RegisterGroup(g *Group) { lm.tracker.registerGroup(g) }
func (lm *BlobLifetimeManager) StartLifetime(id Identity) { lm.tracker.startLifetime(id) }
func (lm *BlobLifetimeManager) EndLifetime(id Identity, h Handle, size, alignment int64) {
	lm.tracker.endLifetime(id, h, size, alignment)
}
func (lm *BlobLifetimeManager) AllFinalized() bool       { return lm.tracker.allFinalized() }
func (lm *BlobLifetimeManager) ReleaseGroup(g *Group) bool { return lm.tracker.releaseGroup(g) }

// BlobInfos returns a copy of the manager's current stored layout, mainly
// for diagnostics and tests.
func (lm *BlobLifetimeManager) BlobInfos() []BlobInfo {
	return append([]BlobInfo(nil), lm.blobInfos...)
}
