package tensormem

// BlobPool backs one region per BlobInfo entry it was constructed with,
// grounded on src/runtime/BlobMemoryPool.cpp. Acquire interprets a mapping
// slot as an index into that region list and binds the handle to the
// whole region — exactly as the original hands the tensor's IMemory the
// entire IMemoryRegion rather than a size-bounded view of it.
type BlobPool struct {
	alloc   RawAllocator
	infos   []BlobInfo
	regions []OwnedRegion
}

func newBlobPool(alloc RawAllocator, infos []BlobInfo) (*BlobPool, error) {
	regions := make([]OwnedRegion, 0, len(infos))
	for _, bi := range infos {
		r, err := alloc.MakeRegion(bi.Size, bi.Alignment)
		if err != nil {
			for _, already := range regions {
				already.Close()
			}
			return nil, err
		}
		regions = append(regions, r)
	}
	return &BlobPool{
		alloc:   alloc,
		infos:   append([]BlobInfo(nil), infos...),
		regions: regions,
	}, nil
}

func (p *BlobPool) Acquire(mapping map[Handle]Slot) {
	for h, slot := range mapping {
		if slot < 0 || int(slot) >= len(p.regions) {
			fatalf(ErrKindMismatch, "blob pool: slot %d out of range for %d blobs", slot, len(p.regions))
		}
		h.Bind(p.regions[slot])
	}
}

func (p *BlobPool) Release(mapping map[Handle]Slot) {
	for h := range mapping {
		h.Unbind()
	}
}

func (p *BlobPool) MappingKind() MappingKind { return MappingBlob }

func (p *BlobPool) Duplicate() (Pool, error) {
	return newBlobPool(p.alloc, p.infos)
}

// Close releases every region the pool holds back to its allocator. Safe
// to call more than once; the underlying OwnedRegion.Close is itself
// idempotent.
func (p *BlobPool) Close() error {
	var firstErr error
	for _, r := range p.regions {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
