package tensormem

// OffsetPool backs a single arena and hands each tensor a non-owning
// subregion view starting at its assigned offset, grounded on
// src/runtime/OffsetMemoryPool.cpp. Like the original, it does not try to
// clip the view to the tensor's own size (the pool never learned it —
// only the lifetime manager's Blob bookkeeping did); the view simply
// spans from the offset to the end of the arena, an upper bound the
// backend tensor's own size field stays within.
type OffsetPool struct {
	alloc RawAllocator
	info  BlobInfo
	arena OwnedRegion
}

func newOffsetPool(alloc RawAllocator, info BlobInfo) (*OffsetPool, error) {
	arena, err := alloc.MakeRegion(info.Size, info.Alignment)
	if err != nil {
		return nil, err
	}
	return &OffsetPool{alloc: alloc, info: info, arena: arena}, nil
}

func (p *OffsetPool) Acquire(mapping map[Handle]Slot) {
	for h, slot := range mapping {
		offset := int64(slot)
		if offset < 0 || offset > p.arena.Size() {
			fatalf(ErrKindMismatch, "offset pool: offset %d out of range for arena of size %d", offset, p.arena.Size())
		}
		h.Bind(p.arena.ExtractSubregion(offset, p.arena.Size()-offset))
	}
}

func (p *OffsetPool) Release(mapping map[Handle]Slot) {
	for h := range mapping {
		h.Unbind()
	}
}

func (p *OffsetPool) MappingKind() MappingKind { return MappingOffset }

func (p *OffsetPool) Duplicate() (Pool, error) {
	return newOffsetPool(p.alloc, p.info)
}

// Close releases the pool's arena back to its allocator. Idempotent.
func (p *OffsetPool) Close() error {
	return p.arena.Close()
}
