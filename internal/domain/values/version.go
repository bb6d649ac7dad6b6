// Package values contains domain value objects that encapsulate
// primitive types with validation and such.
package values

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Version is a dotted numeric package version such as "3.1.2" or "2025.2.1".
// Any number of segments is allowed. The original text is preserved so that
// descriptors round-trip exactly.
type Version struct {
	raw      string
	segments []uint64
}

// ParseVersion parses a dotted numeric version string.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Version{}, fmt.Errorf("version cannot be empty")
	}

	parts := strings.Split(s, ".")
	segments := make([]uint64, 0, len(parts))
	for i, part := range parts {
		if part == "" {
			return Version{}, fmt.Errorf("version %q: segment %d is empty", s, i)
		}
		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return Version{}, fmt.Errorf("version %q: segment %q is not numeric", s, part)
		}
		segments = append(segments, n)
	}

	return Version{raw: s, segments: segments}, nil
}

// MustParseVersion parses a version or panics (for tests and constants)
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the version exactly as it was written.
func (v Version) String() string {
	return v.raw
}

// IsZero returns true if this is the zero value
func (v Version) IsZero() bool {
	return len(v.segments) == 0
}

// Segments returns a copy of the numeric segments.
func (v Version) Segments() []uint64 {
	out := make([]uint64, len(v.segments))
	copy(out, v.segments)
	return out
}

// Segment returns the i-th segment as a string, or "" if the version is shorter.
func (v Version) Segment(i int) string {
	if i < 0 || i >= len(v.segments) {
		return ""
	}
	return strconv.FormatUint(v.segments[i], 10)
}

// Compare orders versions segment by segment, numerically.
// When one version is a prefix of the other the shorter one sorts first,
// so 3.1 < 3.1.0 < 3.1.1.
func (v Version) Compare(other Version) int {
	n := min(len(v.segments), len(other.segments))
	for i := 0; i < n; i++ {
		switch {
		case v.segments[i] < other.segments[i]:
			return -1
		case v.segments[i] > other.segments[i]:
			return 1
		}
	}
	switch {
	case len(v.segments) < len(other.segments):
		return -1
	case len(v.segments) > len(other.segments):
		return 1
	default:
		return 0
	}
}

// Less reports whether v sorts before other.
func (v Version) Less(other Version) bool {
	return v.Compare(other) < 0
}

// Equals checks numeric equality ("3.01" equals "3.1").
func (v Version) Equals(other Version) bool {
	return v.Compare(other) == 0
}

// HasPrefix reports whether the leading segments of v equal all segments of prefix.
func (v Version) HasPrefix(prefix Version) bool {
	if len(prefix.segments) > len(v.segments) {
		return false
	}
	for i, seg := range prefix.segments {
		if v.segments[i] != seg {
			return false
		}
	}
	return true
}

// Semver converts the version for use with semver constraints.
// Only versions with at most three segments convert.
func (v Version) Semver() (*semver.Version, bool) {
	if v.IsZero() || len(v.segments) > 3 {
		return nil, false
	}
	var parts [3]uint64
	copy(parts[:], v.segments)
	return semver.New(parts[0], parts[1], parts[2], "", ""), true
}

// MarshalJSON implements json.Marshaler
func (v Version) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(v.raw)), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (v *Version) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("invalid version JSON: %w", err)
	}
	parsed, err := ParseVersion(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
