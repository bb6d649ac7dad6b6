package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseVersionRange_Kinds(t *testing.T) {
	tests := []struct {
		input string
		kind  RangeKind
	}{
		{"", RangeAny},
		{"latest", RangeAny},
		{"*", RangeAny},
		{"3.1", RangeFamily},
		{"==3.1.2", RangeExact},
		{"3.1+", RangeAtLeast},
		{">=3.0, <4", RangeSemver},
		{"^4.1", RangeSemver},
		{"~3.1.0", RangeSemver},
		{"1 - 2", RangeSemver},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			r, err := ParseVersionRange(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, r.Kind())
			assert.Equal(t, tt.input, r.String())
		})
	}
}

func Test_ParseVersionRange_Invalid(t *testing.T) {
	for _, input := range []string{"abc", "==", "==x", "+", "3.x+", ">=banana"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseVersionRange(input)
			assert.Error(t, err)
		})
	}
}

func Test_VersionRange_Contains(t *testing.T) {
	tests := []struct {
		rng     string
		version string
		want    bool
	}{
		{"latest", "1.0", true},
		{"3", "3.1.2", true},
		{"3", "30.1", false},
		{"3.1", "3.1.2", true},
		{"3.1", "3.10.0", false},
		{"3.1.2", "3.1.2", true},
		{"3.1.2", "3.1.20", false},
		{"==3.1", "3.1", true},
		{"==3.1", "3.1.0", false},
		{"==3.1", "3.01", true},
		{"3.2+", "3.2", true},
		{"3.2+", "4.0", true},
		{"3.2+", "3.1.9", false},
		{">=3.0, <4", "3.9.9", true},
		{">=3.0, <4", "4.1.0", false},
		{"^4.1", "4.3.0", true},
		{"^4.1", "5.0.0", false},
		{">=1", "1.2.3.4", false}, // more than three segments never satisfy semver ranges
	}

	for _, tt := range tests {
		t.Run(tt.rng+" "+tt.version, func(t *testing.T) {
			r := MustParseVersionRange(tt.rng)
			assert.Equal(t, tt.want, r.Contains(MustParseVersion(tt.version)))
		})
	}
}

func Test_ExactVersion(t *testing.T) {
	r := ExactVersion(MustParseVersion("4.3.0"))
	assert.Equal(t, RangeExact, r.Kind())
	assert.Equal(t, "==4.3.0", r.String())
	assert.True(t, r.Contains(MustParseVersion("4.3.0")))
	assert.False(t, r.Contains(MustParseVersion("4.3")))
	assert.Equal(t, "4.3.0", r.Bound().String())

	assert.Equal(t, "2025", MustParseVersionRange("2025").Bound().String())
	assert.True(t, MustParseVersionRange(">=1, <2").Bound().IsZero())
}

func Test_AnyVersion(t *testing.T) {
	assert.True(t, AnyVersion().IsAny())
	assert.True(t, AnyVersion().Contains(MustParseVersion("0")))
}
