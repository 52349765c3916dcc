package tensormem

import (
	"fmt"
	"sync"
	"unsafe"
)

// heapPins keeps the backing slice of every HeapAllocator allocation alive
// for as long as callers hold the interior aligned pointer we hand back —
// otherwise the GC would be free to collect buf the moment Allocate
// returns, since unsafe.Pointer arithmetic doesn't count as a reference to
// the original slice header.
var (
	heapPinsMu sync.Mutex
	heapPins   = map[uintptr][]byte{}
)

func heapPin(ptr unsafe.Pointer, buf []byte) {
	heapPinsMu.Lock()
	heapPins[uintptr(ptr)] = buf
	heapPinsMu.Unlock()
}

func heapUnpin(ptr unsafe.Pointer) bool {
	heapPinsMu.Lock()
	defer heapPinsMu.Unlock()
	if _, ok := heapPins[uintptr(ptr)]; !ok {
		return false
	}
	delete(heapPins, uintptr(ptr))
	return true
}

// =============================================================================
// REGION
// =============================================================================

// Region is a view onto raw, already-allocated memory. It never owns what
// it points at — only OwnedRegion (returned by MakeRegion) does.
type Region interface {
	Pointer() unsafe.Pointer
	Size() int64
	// Bytes exposes the region as a byte slice for handles that, like
	// HostHandle, want a Go-native view of their storage.
	Bytes() []byte
}

// OwnedRegion is the scope-bound value MakeRegion returns: its Close frees
// the underlying allocation exactly once, and ExtractSubregion lets an
// Offset Pool hand tensors non-owning views into its single arena.
type OwnedRegion interface {
	Region
	ExtractSubregion(offset, size int64) Region
	Close() error
}

type memRegion struct {
	ptr  unsafe.Pointer
	size int64
}

func (r *memRegion) Pointer() unsafe.Pointer { return r.ptr }
func (r *memRegion) Size() int64             { return r.size }
func (r *memRegion) Bytes() []byte {
	if r.ptr == nil || r.size == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(r.ptr), r.size)
}

type ownedRegion struct {
	memRegion
	freeFn func()
	closed bool
}

func (r *ownedRegion) ExtractSubregion(offset, size int64) Region {
	if offset < 0 || size < 0 || offset+size > r.size {
		fatalf(ErrAllocFailed, "subregion [%d,%d) out of bounds of region of size %d", offset, offset+size, r.size)
	}
	return &memRegion{ptr: unsafe.Add(r.ptr, uintptr(offset)), size: size}
}

func (r *ownedRegion) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.freeFn != nil {
		r.freeFn()
	}
	return nil
}

// =============================================================================
// RAW ALLOCATOR
// =============================================================================

// RawAllocator produces and releases aligned raw byte regions. Backends
// (host malloc, a GPU buffer allocator, …) provide their own
// implementation; the core depends only on this interface.
type RawAllocator interface {
	Allocate(size, alignment int64) (unsafe.Pointer, error)
	Free(ptr unsafe.Pointer)
	MakeRegion(size, alignment int64) (OwnedRegion, error)
}

func makeRegion(a RawAllocator, size, alignment int64) (OwnedRegion, error) {
	ptr, err := a.Allocate(size, alignment)
	if err != nil {
		return nil, err
	}
	r := &ownedRegion{memRegion: memRegion{ptr: ptr, size: size}}
	r.freeFn = func() { a.Free(ptr) }
	return r, nil
}

// =============================================================================
// HEAP ALLOCATOR (portable fallback)
// =============================================================================

// HeapAllocator backs regions with ordinary Go-heap byte slices, over
// allocating by alignment so an interior offset can be cut aligned. It has
// no platform build constraints, unlike HostAllocator (alloc_unix.go), and
// is what the tests and the demo CLI use.
type HeapAllocator struct{}

// NewHeapAllocator returns the portable RawAllocator.
func NewHeapAllocator() *HeapAllocator { return &HeapAllocator{} }

func (HeapAllocator) Allocate(size, alignment int64) (unsafe.Pointer, error) {
	if size <= 0 {
		return nil, allocFailed("invalid allocation size", fmt.Errorf("size=%d", size))
	}
	if alignment <= 0 {
		alignment = 1
	}
	buf := make([]byte, size+alignment)
	base := uintptr(unsafe.Pointer(&buf[0]))
	aligned := (base + uintptr(alignment) - 1) &^ (uintptr(alignment) - 1)
	ptr := unsafe.Pointer(aligned)
	// Keep the backing slice alive for the lifetime of the returned
	// pointer by pinning it in a package-level registry; see heapPin.
	heapPin(ptr, buf)
	return ptr, nil
}

func (HeapAllocator) Free(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	if !heapUnpin(ptr) {
		fatalf(ErrAllocFailed, "Free called with a foreign or already-freed pointer")
	}
}

func (a *HeapAllocator) MakeRegion(size, alignment int64) (OwnedRegion, error) {
	return makeRegion(a, size, alignment)
}
