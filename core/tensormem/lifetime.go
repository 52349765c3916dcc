package tensormem

// LifetimeManager tracks tensor lifetimes for one Memory Group at a time,
// computes the minimal pool layout once every registered tensor is
// finalized, and produces Pools of the matching MappingKind. It is not
// safe for concurrent use: planning over one lifetime manager is
// single-threaded per spec §5, though distinct lifetime managers may plan
// concurrently with each other.
type LifetimeManager interface {
	RegisterGroup(g *Group)
	StartLifetime(id Identity)
	EndLifetime(id Identity, h Handle, size, alignment int64)
	AllFinalized() bool
	ReleaseGroup(g *Group) bool
	CreatePool(alloc RawAllocator) (Pool, error)
	MappingKind() MappingKind
}

// layoutUpdater is implemented by the two lifetime-manager variants and
// invoked by tracker once a planning pass completes.
type layoutUpdater interface {
	updateLayoutAndMappings()
}

// tracker is the interval-tracking algorithm shared by BlobLifetimeManager
// and OffsetLifetimeManager (spec §4.C). The variants differ only in what
// updateLayoutAndMappings does with the completed free list.
type tracker struct {
	updater layoutUpdater

	activeGroup *Group
	active      map[Identity]*managedObject

	free     []*blobRecord
	occupied []*blobRecord

	finalizedGroups map[*Group]map[Identity]*managedObject
}

func (t *tracker) registerGroup(g *Group) {
	if t.activeGroup != nil {
		// First caller wins; the planner is single-group-at-a-time.
		return
	}
	t.activeGroup = g
	t.active = make(map[Identity]*managedObject)
}

func (t *tracker) startLifetime(id Identity) {
	if _, exists := t.active[id]; exists {
		fatalf(ErrDuplicateStart, "start_lifetime: identity %v is already active", id)
	}

	var b *blobRecord
	if len(t.free) == 0 {
		b = newBlobRecord(id)
	} else {
		b = t.free[0]
		t.free = t.free[1:]
		b.owner = id
		b.bound[id] = struct{}{}
	}
	t.occupied = prependBlob(t.occupied, b)

	if t.active == nil {
		t.active = make(map[Identity]*managedObject)
	}
	t.active[id] = &managedObject{identity: id}
}

func (t *tracker) endLifetime(id Identity, h Handle, size, alignment int64) {
	mo, ok := t.active[id]
	if !ok {
		fatalf(ErrUnknownId, "end_lifetime: identity %v was never started", id)
	}
	mo.handle = h
	mo.size = size
	mo.alignment = alignment
	mo.finalized = true

	var b *blobRecord
	t.occupied, b = removeBlobByOwner(t.occupied, id)
	if b == nil {
		fatalf(ErrUnknownId, "end_lifetime: no occupied blob owned by identity %v", id)
	}
	b.maxSize = max64(b.maxSize, size)
	b.maxAlignment = max64(b.maxAlignment, alignment)
	b.bound[id] = struct{}{}
	b.owner = nil
	t.free = prependBlob(t.free, b)

	if t.allFinalized() {
		t.updater.updateLayoutAndMappings()

		if t.finalizedGroups == nil {
			t.finalizedGroups = make(map[*Group]map[Identity]*managedObject)
		}
		t.finalizedGroups[t.activeGroup] = t.active

		t.active = nil
		t.activeGroup = nil
		t.free = nil
		t.occupied = nil
	}
}

func (t *tracker) allFinalized() bool {
	for _, mo := range t.active {
		if !mo.finalized {
			return false
		}
	}
	return true
}

func (t *tracker) releaseGroup(g *Group) bool {
	if _, ok := t.finalizedGroups[g]; !ok {
		return false
	}
	delete(t.finalizedGroups, g)
	return true
}
