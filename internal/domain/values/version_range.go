package values

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// RangeKind identifies how a VersionRange matches versions.
type RangeKind int

const (
	// RangeAny matches every version ("", "latest", "*").
	RangeAny RangeKind = iota
	// RangeFamily matches versions whose leading segments equal the bound ("3.1").
	RangeFamily
	// RangeExact matches one version numerically ("==3.1.2").
	RangeExact
	// RangeAtLeast matches the bound and everything above it ("3.1+").
	RangeAtLeast
	// RangeSemver delegates to a semver constraint (">=1.2, <2", "^3.1").
	RangeSemver
)

const semverOperators = "<>=!~^,|* "

// VersionRange is a parsed version constraint.
type VersionRange struct {
	constraint *semver.Constraints
	raw        string
	bound      Version
	kind       RangeKind
}

// AnyVersion returns a range that matches every version.
func AnyVersion() VersionRange {
	return VersionRange{kind: RangeAny}
}

// ParseVersionRange parses a version constraint.
func ParseVersionRange(s string) (VersionRange, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "", "latest", "*":
		return VersionRange{kind: RangeAny, raw: s}, nil
	}

	if rest, ok := strings.CutPrefix(s, "=="); ok {
		v, err := ParseVersion(rest)
		if err != nil {
			return VersionRange{}, fmt.Errorf("range %q: %w", s, err)
		}
		return VersionRange{kind: RangeExact, raw: s, bound: v}, nil
	}

	if rest, ok := strings.CutSuffix(s, "+"); ok {
		v, err := ParseVersion(rest)
		if err != nil {
			return VersionRange{}, fmt.Errorf("range %q: %w", s, err)
		}
		return VersionRange{kind: RangeAtLeast, raw: s, bound: v}, nil
	}

	if !strings.ContainsAny(s, semverOperators) {
		v, err := ParseVersion(s)
		if err != nil {
			return VersionRange{}, fmt.Errorf("range %q: %w", s, err)
		}
		return VersionRange{kind: RangeFamily, raw: s, bound: v}, nil
	}

	c, err := semver.NewConstraint(s)
	if err != nil {
		return VersionRange{}, fmt.Errorf("range %q: %w", s, err)
	}
	return VersionRange{kind: RangeSemver, raw: s, constraint: c}, nil
}

// MustParseVersionRange parses a range or panics (for tests only)
func MustParseVersionRange(s string) VersionRange {
	r, err := ParseVersionRange(s)
	if err != nil {
		panic(err)
	}
	return r
}

// ExactVersion returns a range matching only v.
func ExactVersion(v Version) VersionRange {
	return VersionRange{kind: RangeExact, raw: "==" + v.String(), bound: v}
}

// Kind returns how the range matches.
func (r VersionRange) Kind() RangeKind {
	return r.kind
}

// Bound returns the version the range is anchored on. It is zero for any and semver ranges.
func (r VersionRange) Bound() Version {
	return r.bound
}

// IsAny returns true if the range matches every version.
func (r VersionRange) IsAny() bool {
	return r.kind == RangeAny
}

// String returns the range as written.
func (r VersionRange) String() string {
	return r.raw
}

// Contains reports whether v satisfies the range.
func (r VersionRange) Contains(v Version) bool {
	switch r.kind {
	case RangeAny:
		return true
	case RangeFamily:
		return v.HasPrefix(r.bound)
	case RangeExact:
		return v.Equals(r.bound)
	case RangeAtLeast:
		return v.Compare(r.bound) >= 0
	case RangeSemver:
		sv, ok := v.Semver()
		if !ok {
			return false
		}
		return r.constraint.Check(sv)
	default:
		return false
	}
}
