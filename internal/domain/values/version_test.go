package values

import (
	"encoding/json"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseVersion(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []uint64
		wantErr bool
	}{
		{"three segments", "3.1.2", []uint64{3, 1, 2}, false},
		{"single segment", "17", []uint64{17}, false},
		{"four segments", "20.5.410.1", []uint64{20, 5, 410, 1}, false},
		{"leading zero", "3.01", []uint64{3, 1}, false},
		{"trims whitespace", " 4.3.0 ", []uint64{4, 3, 0}, false},
		{"empty", "", nil, true},
		{"empty segment", "3..1", nil, true},
		{"trailing dot", "3.1.", nil, true},
		{"non numeric", "3.1.beta", nil, true},
		{"alphanumeric segment", "3.5.b1", nil, true},
		{"mixed segment", "6.b3.0", nil, true},
		{"negative", "-1.0", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseVersion(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Segments())
		})
	}
}

func Test_Version_Compare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"3.1.2", "3.1.2", 0},
		{"3.1.2", "3.2.2", -1},
		{"4.1.0", "3.2.2", 1},
		{"3.10", "3.9", 1}, // numeric, not lexicographic
		{"3.1", "3.1.0", -1},
		{"3.01", "3.1", 0},
		{"2025.2.1", "17.4.3", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+" vs "+tt.b, func(t *testing.T) {
			a := MustParseVersion(tt.a)
			b := MustParseVersion(tt.b)
			assert.Equal(t, tt.want, a.Compare(b))
			assert.Equal(t, -tt.want, b.Compare(a))
		})
	}
}

func Test_Version_Sorting(t *testing.T) {
	raw := []string{"4.3.0", "3.1.2", "4.1.0", "3.10.0", "3.2.2", "3.9.1"}
	versions := make([]Version, len(raw))
	for i, s := range raw {
		versions[i] = MustParseVersion(s)
	}

	sort.Slice(versions, func(i, j int) bool { return versions[i].Less(versions[j]) })

	got := make([]string, len(versions))
	for i, v := range versions {
		got[i] = v.String()
	}
	assert.Equal(t, []string{"3.1.2", "3.2.2", "3.9.1", "3.10.0", "4.1.0", "4.3.0"}, got)
}

func Test_Version_PreservesText(t *testing.T) {
	v := MustParseVersion("3.01")
	assert.Equal(t, "3.01", v.String())
}

func Test_Version_Segment(t *testing.T) {
	v := MustParseVersion("20.5")
	assert.Equal(t, "20", v.Segment(0))
	assert.Equal(t, "5", v.Segment(1))
	assert.Equal(t, "", v.Segment(2))
}

func Test_Version_HasPrefix(t *testing.T) {
	v := MustParseVersion("3.10.4")
	assert.True(t, v.HasPrefix(MustParseVersion("3")))
	assert.True(t, v.HasPrefix(MustParseVersion("3.10")))
	assert.True(t, v.HasPrefix(MustParseVersion("3.10.4")))
	assert.False(t, v.HasPrefix(MustParseVersion("3.1")))
	assert.False(t, v.HasPrefix(MustParseVersion("3.10.4.0")))
}

func Test_Version_Semver(t *testing.T) {
	sv, ok := MustParseVersion("3.1").Semver()
	require.True(t, ok)
	assert.Equal(t, "3.1.0", sv.String())

	_, ok = MustParseVersion("1.2.3.4").Semver()
	assert.False(t, ok)
}

func Test_Version_JSON(t *testing.T) {
	original := MustParseVersion("2025.2.1")

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Equal(t, `"2025.2.1"`, string(data))

	var decoded Version
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, original.Equals(decoded))
}

func Test_MustParseVersion_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustParseVersion("x")
	})
}
