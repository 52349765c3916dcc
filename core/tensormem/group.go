package tensormem

// groupState tracks where a Group sits in the planning.populate.execution
// lifecycle; it is purely diagnostic — behavior is driven by whether
// mapping/pool are populated, exactly as the donor ARM Compute Library
// source drives behavior off _mappings.empty() and _pool != nullptr rather
// than an explicit state enum.
type groupState int

const (
	groupPlanning groupState = iota
	groupPlanned
	groupAcquired
)

// Group is the user-facing handle an operator library registers its
// tensors with and later acquires/releases backing storage through. It is
// the only component of this package callers construct directly.
type Group struct {
	manager *MemoryManager
	managed map[Identity]struct{}
	mapping map[Handle]Slot
	pool    Pool
	state   groupState
}

// NewGroup creates a Group bound to the given facade. manager may be nil,
// in which case Manage/FinalizeMemory/Acquire are all no-ops — mirroring
// the donor's "unmanaged" fallback when use_function_memory_manager is
// false (spec §6).
func NewGroup(manager *MemoryManager) *Group {
	return &Group{manager: manager, state: groupPlanning}
}

// bindSlot records a handle's planned slot; called by the lifetime manager
// variants once a planning pass completes.
func (g *Group) bindSlot(h Handle, slot Slot) {
	if g.mapping == nil {
		g.mapping = make(map[Handle]Slot)
	}
	g.mapping[h] = slot
	g.state = groupPlanned
}

// Manage registers a tensor identity for lifetime tracking. It is a no-op
// once this group's mapping has been populated by a completed planning
// pass, mirroring MemoryGroupBase::manage's _mappings.empty() guard in the
// original source. Group has no operation that empties the mapping again,
// so a Group tracks a single planning pass.
func (g *Group) Manage(identity Identity) {
	if len(g.mapping) != 0 {
		return
	}
	if g.managed == nil {
		g.managed = make(map[Identity]struct{})
	}
	g.managed[identity] = struct{}{}
	if g.manager == nil {
		return
	}
	g.manager.lifetimeManager.RegisterGroup(g)
	g.manager.lifetimeManager.StartLifetime(identity)
}

// FinalizeMemory closes a tensor's lifetime: size and alignment must be
// the size/alignment the tensor will actually need at execution time.
func (g *Group) FinalizeMemory(identity Identity, handle Handle, size, alignment int64) {
	if _, ok := g.managed[identity]; !ok {
		fatalf(ErrUnknownId, "finalize_memory: identity %v was never passed to manage for this group", identity)
	}
	if g.manager == nil {
		return
	}
	g.manager.lifetimeManager.EndLifetime(identity, handle, size, alignment)
}

// Acquire leases a pool from the facade's pool manager and programs every
// handle in this group's mapping to point into it. A no-op when the
// mapping is empty (no tensors were ever managed through this group).
func (g *Group) Acquire() {
	if len(g.mapping) == 0 {
		return
	}
	pool := g.manager.poolManager.LockPool()
	if kind := g.manager.lifetimeManager.MappingKind(); pool.MappingKind() != kind {
		g.manager.poolManager.UnlockPool(pool)
		fatalf(ErrKindMismatch, "acquire: %s pool cannot program a %s mapping", pool.MappingKind(), kind)
	}
	pool.Acquire(g.mapping)
	g.pool = pool
	g.state = groupAcquired
}

// Release resets every handle in the mapping to null and returns the
// leased pool. Calling Release on a group that is not currently holding a
// pool is a no-op (property: idempotent release).
func (g *Group) Release() {
	if g.pool == nil {
		return
	}
	g.pool.Release(g.mapping)
	g.manager.poolManager.UnlockPool(g.pool)
	g.pool = nil
	g.state = groupPlanned
}

// Mappings returns the group's handle→slot table, for a pool's programming
// step or for diagnostics.
func (g *Group) Mappings() map[Handle]Slot { return g.mapping }

// AcquireScoped acquires the group and returns a guard whose Close
// releases it — the mandatory RAII pattern of spec §4.F / Design Note
// "Scoped acquisition". Use with defer so release runs on every exit path:
//
//	scope := group.AcquireScoped()
//	defer scope.Close()
func (g *Group) AcquireScoped() *ScopedGroup {
	g.Acquire()
	return &ScopedGroup{group: g}
}

// ScopedGroup releases its Group exactly once, on Close.
type ScopedGroup struct {
	group *Group
}

// Close releases the underlying group. Safe to call even if Acquire was a
// no-op (empty mapping), and safe to call multiple times.
func (s *ScopedGroup) Close() {
	s.group.Release()
}
