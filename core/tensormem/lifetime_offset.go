package tensormem

// OffsetLifetimeManager plans one single arena and packs every tensor into
// it at a byte offset (spec §4.C.2). Grounded on
// src/runtime/OffsetLifetimeManager.cpp, with one correction taken from
// that same source over the English spec text: the stored arena alignment
// is folded in with a running max across groups, exactly like size and
// owners, rather than being overwritten each time — the spec's closing
// sentence ("the monotonic-max policy gives the same reuse guarantee as
// §4.C.1") only holds if alignment is maxed too, and the original
// implementation does max it (`_blob.alignment = std::max(...)`).
type OffsetLifetimeManager struct {
	tracker
	info BlobInfo
}

// NewOffsetLifetimeManager creates an empty offset-variant lifetime manager.
func NewOffsetLifetimeManager() *OffsetLifetimeManager {
	lm := &OffsetLifetimeManager{}
	lm.tracker.updater = lm
	return lm
}

func (lm *OffsetLifetimeManager) updateLayoutAndMappings() {
	var arenaAlignment int64
	for _, b := range lm.tracker.free {
		arenaAlignment = max64(arenaAlignment, b.maxAlignment)
	}

	group := lm.tracker.activeGroup
	var offset int64
	for _, b := range lm.tracker.free {
		for id := range b.bound {
			mo := lm.tracker.active[id]
			group.bindSlot(mo.handle, Slot(offset))
		}
		offset += b.maxSize
		offset = roundUp(offset, arenaAlignment)
	}
	aggregate := offset

	lm.info.Alignment = max64(lm.info.Alignment, arenaAlignment)
	lm.info.Owners = maxInt(lm.info.Owners, len(lm.tracker.free))
	lm.info.Size = max64(lm.info.Size, aggregate)
}

// CreatePool builds an OffsetPool sized to the stored arena descriptor.
// Must only be called once AllFinalized() is true.
func (lm *OffsetLifetimeManager) CreatePool(alloc RawAllocator) (Pool, error) {
	if !lm.tracker.allFinalized() {
		fatalf(ErrNotFinalized, "create_pool called before all lifetimes were closed")
	}
	if alloc == nil {
		fatalf(ErrNullAllocator, "create_pool called with a nil allocator")
	}
	return newOffsetPool(alloc, lm.info)
}

func (lm *OffsetLifetimeManager) MappingKind() MappingKind { return MappingOffset }

func (lm *OffsetLifetimeManager) RegisterGroup(g *Group)   { lm.tracker.registerGroup(g) }
func (lm *OffsetLifetimeManager) StartLifetime(id Identity) { lm.tracker.startLifetime(id) }
func (lm *OffsetLifetimeManager) EndLifetime(id Identity, h Handle, size, alignment int64) {
	lm.tracker.endLifetime(id, h, size, alignment)
}
func (lm *OffsetLifetimeManager) AllFinalized() bool         { return lm.tracker.allFinalized() }
func (lm *OffsetLifetimeManager) ReleaseGroup(g *Group) bool { return lm.tracker.releaseGroup(g) }

// Info returns the manager's current stored arena descriptor, mainly for
// diagnostics and tests.
func (lm *OffsetLifetimeManager) Info() BlobInfo { return lm.info }
