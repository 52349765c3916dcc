//go:build unix

package tensormem

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// HostAllocator is a backend-agnostic raw allocator: it asks the
// kernel for anonymous, page-backed memory via mmap rather than carving
// regions out of the Go heap, so that two Blob pools belonging to two
// Memory Managers never alias the same bytes. This is the systems-level
// counterpart to the donor's byte-slice Arena in
// core/inference/memory_pool.go, which over-allocates by alignment for the
// same reason — the donor just does it against Go-heap slices because it
// never needs a truly independent backing store.
type HostAllocator struct {
	mu      sync.Mutex
	mapping map[uintptr][]byte // aligned pointer -> raw mmap'd slice, for Munmap
}

// NewHostAllocator returns an mmap-backed RawAllocator.
func NewHostAllocator() *HostAllocator {
	return &HostAllocator{mapping: make(map[uintptr][]byte)}
}

func (a *HostAllocator) Allocate(size, alignment int64) (unsafe.Pointer, error) {
	if size <= 0 {
		return nil, allocFailed("invalid allocation size", fmt.Errorf("size=%d", size))
	}
	if alignment <= 0 {
		alignment = 1
	}
	raw, err := unix.Mmap(-1, 0, int(size+alignment), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, allocFailed("mmap failed", err)
	}
	base := uintptr(unsafe.Pointer(&raw[0]))
	aligned := (base + uintptr(alignment) - 1) &^ (uintptr(alignment) - 1)
	ptr := unsafe.Pointer(aligned)

	a.mu.Lock()
	a.mapping[aligned] = raw
	a.mu.Unlock()

	return ptr, nil
}

func (a *HostAllocator) Free(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	key := uintptr(ptr)

	a.mu.Lock()
	raw, ok := a.mapping[key]
	if ok {
		delete(a.mapping, key)
	}
	a.mu.Unlock()

	if !ok {
		fatalf(ErrAllocFailed, "Free called with a foreign or already-freed pointer")
	}
	if err := unix.Munmap(raw); err != nil {
		// A failing munmap on a pointer we ourselves mapped indicates
		// host memory corruption, not a recoverable condition.
		panic(fmt.Errorf("tensormem: munmap failed: %w", err))
	}
}

func (a *HostAllocator) MakeRegion(size, alignment int64) (OwnedRegion, error) {
	return makeRegion(a, size, alignment)
}
