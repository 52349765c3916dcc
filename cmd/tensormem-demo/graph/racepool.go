package graph

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cogpy/tensormem/core/tensormem"
)

type demoPool struct{ kind tensormem.MappingKind }

func (p *demoPool) Acquire(map[tensormem.Handle]tensormem.Slot) {}
func (p *demoPool) Release(map[tensormem.Handle]tensormem.Slot) {}
func (p *demoPool) MappingKind() tensormem.MappingKind          { return p.kind }
func (p *demoPool) Duplicate() (tensormem.Pool, error)          { return &demoPool{kind: p.kind}, nil }
func (p *demoPool) Close() error                                { return nil }

// RunRacepoolDemo registers numPools interchangeable pools with a
// PoolManager and spawns threads goroutines, each locking, holding for
// 10ms, and unlocking the lease iterations times, reporting the observed
// peak number of simultaneous leaseholders — a live run of spec scenario
// S6.
func RunRacepoolDemo(w io.Writer, numPools, threads, iterations int) error {
	pm := tensormem.NewPoolManager()
	for i := 0; i < numPools; i++ {
		pm.RegisterPool(&demoPool{kind: tensormem.MappingBlob})
	}

	var concurrent int32
	var peak int32
	var peakMu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(threads)

	start := time.Now()
	for i := 0; i < threads; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				p := pm.LockPool()
				n := atomic.AddInt32(&concurrent, 1)
				peakMu.Lock()
				if n > peak {
					peak = n
				}
				peakMu.Unlock()

				time.Sleep(10 * time.Millisecond)

				atomic.AddInt32(&concurrent, -1)
				pm.UnlockPool(p)
			}
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	fmt.Fprintf(w, "racepool: %d pools, %d threads, %d iterations each\n", numPools, threads, iterations)
	fmt.Fprintf(w, "peak concurrent leaseholders: %d\n", peak)
	fmt.Fprintf(w, "final num_pools: %d\n", pm.NumPools())
	fmt.Fprintf(w, "elapsed: %v\n", elapsed)
	return nil
}
