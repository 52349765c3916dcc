package tensormem

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/semaphore"
)

// PoolManager owns the set of interchangeable pools a MemoryManager
// populated and arbitrates concurrent leases across them, grounded on
// arm_compute/runtime/PoolManager.h / src/runtime/PoolManager.cpp. Executors
// racing to lock a pool block on a counting semaphore sized to the number
// of free pools rather than spinning, as the original does with its
// std::condition_variable wait loop. The order in which blocked waiters
// are granted a pool is not guaranteed.
type PoolManager struct {
	mu       sync.Mutex
	free     []Pool
	occupied []Pool
	sem      *semaphore.Weighted
}

// NewPoolManager creates an empty pool manager; RegisterPool must be
// called at least once before LockPool can succeed.
func NewPoolManager() *PoolManager {
	return &PoolManager{}
}

// RegisterPool adds a pool to the free list. Only legal while no pool is
// currently leased out, matching the original's assertion that capacity
// cannot be grown mid-flight.
func (pm *PoolManager) RegisterPool(p Pool) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if len(pm.occupied) != 0 {
		fatalf(ErrPoolBusy, "register_pool: cannot register a pool while any pool is leased")
	}
	pm.free = append(pm.free, p)
	pm.sem = semaphore.NewWeighted(int64(len(pm.free)))
}

// LockPool blocks until a pool is available, then removes it from the free
// list and returns it.
func (pm *PoolManager) LockPool() Pool {
	pm.mu.Lock()
	sem := pm.sem
	pm.mu.Unlock()
	if sem == nil {
		fatalf(ErrPoolBusy, "lock_pool: no pools have been registered")
	}
	if err := sem.Acquire(context.Background(), 1); err != nil {
		fatalf(ErrPoolBusy, "lock_pool: semaphore acquire failed: %v", err)
	}

	pm.mu.Lock()
	defer pm.mu.Unlock()
	p := pm.free[0]
	pm.free = pm.free[1:]
	pm.occupied = append(pm.occupied, p)
	return p
}

// UnlockPool returns a previously locked pool to the free list and wakes
// one waiter, if any.
func (pm *PoolManager) UnlockPool(p Pool) {
	pm.mu.Lock()
	idx := -1
	for i, occ := range pm.occupied {
		if occ == p {
			idx = i
			break
		}
	}
	if idx == -1 {
		pm.mu.Unlock()
		fatalf(ErrPoolBusy, "unlock_pool: pool is not among the currently occupied pools")
	}
	pm.occupied = append(pm.occupied[:idx], pm.occupied[idx+1:]...)
	pm.free = append(pm.free, p)
	sem := pm.sem
	pm.mu.Unlock()
	sem.Release(1)
}

// ReleasePool removes and returns one pool from the free list, shrinking
// capacity by one. Only legal while no pool is leased out.
func (pm *PoolManager) ReleasePool() Pool {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if len(pm.occupied) != 0 {
		fatalf(ErrPoolBusy, "release_pool: cannot release a pool while any pool is leased")
	}
	if len(pm.free) == 0 {
		fatalf(ErrPoolBusy, "release_pool: no free pools to release")
	}
	p := pm.free[0]
	pm.free = pm.free[1:]
	pm.sem = semaphore.NewWeighted(int64(len(pm.free)))
	return p
}

// ClearPools drops every pool the manager holds, closing each one. Only
// legal while no pool is leased out. The original's clear_pools destroys
// each pool implicitly by dropping the unique_ptr<IMemoryPool> owning it
// (src/runtime/PoolManager.cpp); Go has no destructors, so this closes
// every freed pool explicitly before dropping the slice.
func (pm *PoolManager) ClearPools() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if len(pm.occupied) != 0 {
		fatalf(ErrPoolBusy, "clear_pools: cannot clear while any pool is leased")
	}
	for _, p := range pm.free {
		if err := p.Close(); err != nil {
			slog.Warn("tensormem: error closing pool during clear_pools", "err", err)
		}
	}
	pm.free = nil
	pm.sem = nil
}

// NumPools returns the total number of pools currently registered, free or
// occupied.
func (pm *PoolManager) NumPools() int {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return len(pm.free) + len(pm.occupied)
}
