package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewPackageID(t *testing.T) {
	id1 := NewPackageID()
	id2 := NewPackageID()

	assert.False(t, id1.IsZero(), "new ID should not be zero")
	assert.False(t, id1.Equals(id2), "two new IDs should be different")
	assert.Len(t, id1.String(), 32, "new IDs use the compact form")
}

func Test_ParsePackageID_CompactAndDashed(t *testing.T) {
	compact, err := ParsePackageID("949dbed5cb0247e4b94445f6ef3a0539")
	require.NoError(t, err)
	dashed, err := ParsePackageID("949dbed5-cb02-47e4-b944-45f6ef3a0539")
	require.NoError(t, err)

	assert.True(t, compact.Equals(dashed))
	assert.Equal(t, "949dbed5cb0247e4b94445f6ef3a0539", compact.String(), "text is kept as written")
}

func Test_ParsePackageID_Invalid(t *testing.T) {
	for _, input := range []string{"", "invalid", "123", "949dbed5cb0247e4b94445f6ef3a053"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParsePackageID(input)
			assert.Error(t, err)
		})
	}
}

func Test_MustParsePackageID_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustParsePackageID("nope")
	})
}
