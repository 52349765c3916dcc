package tensormem

// blobRecord describes one physical buffer that may be time-shared by
// multiple non-overlapping tensors. owner is the identity currently
// occupying it during planning, or nil while it sits on the free list.
// bound accumulates every identity that was ever assigned to it across one
// group's planning pass.
type blobRecord struct {
	owner        Identity
	maxSize      int64
	maxAlignment int64
	bound        map[Identity]struct{}
}

func newBlobRecord(owner Identity) *blobRecord {
	return &blobRecord{
		owner: owner,
		bound: map[Identity]struct{}{owner: {}},
	}
}

func (b *blobRecord) info() BlobInfo {
	return BlobInfo{Size: b.maxSize, Alignment: b.maxAlignment, Owners: len(b.bound)}
}

// prependBlob splices b onto the front of list, matching the "move to the
// head of" operations the interval-tracking algorithm performs on the
// free/occupied lists (spec §4.C).
func prependBlob(list []*blobRecord, b *blobRecord) []*blobRecord {
	return append([]*blobRecord{b}, list...)
}

// removeBlobByOwner pops and returns the occupied blob whose owner is id,
// or nil if none matches.
func removeBlobByOwner(list []*blobRecord, id Identity) ([]*blobRecord, *blobRecord) {
	for i, b := range list {
		if b.owner == id {
			out := make([]*blobRecord, 0, len(list)-1)
			out = append(out, list[:i]...)
			out = append(out, list[i+1:]...)
			return out, b
		}
	}
	return list, nil
}
