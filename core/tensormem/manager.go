package tensormem

import (
	"log/slog"

	"github.com/google/uuid"
)

// MemoryManager is the facade spec §4.E / §6 describes: it pairs one
// LifetimeManager variant with a PoolManager and drives the
// plan → populate → execute → clear cycle a runtime backend runs once per
// graph. Grounded on orchestration/engine.go's facade-over-subsystems
// shape, adapted to the memory-manager domain.
type MemoryManager struct {
	id              string
	lifetimeManager LifetimeManager
	poolManager     *PoolManager
}

// NewMemoryManager creates a facade around the given lifetime manager
// variant with a fresh, empty pool manager.
func NewMemoryManager(lm LifetimeManager) *MemoryManager {
	return &MemoryManager{
		id:              uuid.NewString(),
		lifetimeManager: lm,
		poolManager:     NewPoolManager(),
	}
}

// ID is a diagnostic-only label; never used for identity comparisons.
func (m *MemoryManager) ID() string { return m.id }

// LifetimeManager returns the facade's lifetime manager.
func (m *MemoryManager) LifetimeManager() LifetimeManager { return m.lifetimeManager }

// PoolManager returns the facade's pool manager.
func (m *MemoryManager) PoolManager() *PoolManager { return m.poolManager }

// Populate builds numPools interchangeable pools from the lifetime
// manager's finalized layout and registers them with the pool manager.
// Must be called after every group registered against this manager has
// had all of its tensors' lifetimes started and ended, and before the
// first Group.Acquire.
func (m *MemoryManager) Populate(alloc RawAllocator, numPools int) error {
	if !m.lifetimeManager.AllFinalized() {
		fatalf(ErrNotFinalized, "populate called before all lifetimes were finalized")
	}
	if m.poolManager.NumPools() != 0 {
		fatalf(ErrPoolBusy, "populate called on a pool manager that already holds pools")
	}

	template, err := m.lifetimeManager.CreatePool(alloc)
	if err != nil {
		return err
	}

	pools := make([]Pool, 0, numPools)
	for i := 0; i < numPools-1; i++ {
		dup, err := template.Duplicate()
		if err != nil {
			closeAll(template)
			closeAll(pools...)
			return err
		}
		pools = append(pools, dup)
	}
	pools = append(pools, template)

	for _, p := range pools {
		m.poolManager.RegisterPool(p)
	}
	return nil
}

// closeAll closes every pool given, logging rather than aborting on a
// close failure — a teardown path must not itself panic on the way out.
func closeAll(pools ...Pool) {
	for _, p := range pools {
		if err := p.Close(); err != nil {
			slog.Warn("tensormem: error closing pool during populate rollback", "err", err)
		}
	}
}

// Clear drops every pool this manager's pool manager holds. Only legal
// once every group has released its lease.
func (m *MemoryManager) Clear() {
	m.poolManager.ClearPools()
}
