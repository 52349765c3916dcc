package tensormem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundUp(t *testing.T) {
	t.Run("AlreadyAligned", func(t *testing.T) {
		assert.Equal(t, int64(64), roundUp(64, 16))
	})

	t.Run("NeedsPadding", func(t *testing.T) {
		assert.Equal(t, int64(64), roundUp(50, 16))
	})

	t.Run("ZeroOffset", func(t *testing.T) {
		assert.Equal(t, int64(0), roundUp(0, 16))
	})

	t.Run("NonPositiveAlignmentIsIdentity", func(t *testing.T) {
		assert.Equal(t, int64(50), roundUp(50, 0))
	})
}

func TestMaxBlobInfo(t *testing.T) {
	a := BlobInfo{Size: 100, Alignment: 16, Owners: 2}
	b := BlobInfo{Size: 50, Alignment: 32, Owners: 5}

	got := maxBlobInfo(a, b)
	assert.Equal(t, BlobInfo{Size: 100, Alignment: 32, Owners: 5}, got)
}

func TestTargetString(t *testing.T) {
	assert.Equal(t, "NEON", TargetNEON.String())
	assert.Equal(t, "CL", TargetCL.String())
	assert.Equal(t, "GLES", TargetGLES.String())
	assert.Equal(t, "unknown", TargetUnknown.String())
}

func TestMappingKindString(t *testing.T) {
	assert.Equal(t, "blob", MappingBlob.String())
	assert.Equal(t, "offset", MappingOffset.String())
}
