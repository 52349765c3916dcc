package tensormem

// Slot is a blob index (Blob variant) or byte offset (Offset variant)
// identifying where a tensor's storage lives within a Pool. The lifetime
// manager that produced a Group's mapping and the Pool programming it
// agree on which interpretation applies via MappingKind.
type Slot int64

// Pool owns physical storage and binds tensor handles to concrete
// addresses on request. BlobPool and OffsetPool are the two variants; a
// Pool only accepts mappings produced by a LifetimeManager reporting the
// same MappingKind.
type Pool interface {
	Acquire(mapping map[Handle]Slot)
	Release(mapping map[Handle]Slot)
	MappingKind() MappingKind
	Duplicate() (Pool, error)

	// Close releases the pool's underlying regions back to its
	// RawAllocator. Go has no destructors, so unlike the original's
	// unique_ptr<IMemoryPool>-owning free list, a Pool's regions are never
	// freed implicitly — callers that drop a Pool without closing it leak
	// its allocation. Idempotent.
	Close() error
}
