package values

import (
	"fmt"
	"strings"
)

// RequirementKind describes how strongly a requirement binds.
type RequirementKind string

const (
	// RequirementStrong must be present in the context with a matching version.
	RequirementStrong RequirementKind = "strong"
	// RequirementWeak only constrains the version if the package is present (".python-3", "~python-3").
	RequirementWeak RequirementKind = "weak"
	// RequirementConflict forbids a matching version ("!python-2").
	RequirementConflict RequirementKind = "conflict"
)

// Requirement is a parsed dependency specifier such as "python-3.10" or ".python-3.11".
type Requirement struct {
	raw  string
	name PackageName
	rng  VersionRange
	kind RequirementKind
}

// ParseRequirement parses "[prefix]name[-range|operator range]".
func ParseRequirement(s string) (Requirement, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Requirement{}, fmt.Errorf("requirement cannot be empty")
	}

	body := raw
	kind := RequirementStrong
	switch body[0] {
	case '.', '~':
		kind = RequirementWeak
		body = body[1:]
	case '!':
		kind = RequirementConflict
		body = body[1:]
	}

	end := 0
	for end < len(body) && isNameByte(body[end]) {
		end++
	}
	if end == 0 {
		return Requirement{}, fmt.Errorf("requirement %q: missing package name", raw)
	}

	name, err := NewPackageName(body[:end])
	if err != nil {
		return Requirement{}, fmt.Errorf("requirement %q: %w", raw, err)
	}

	rest := body[end:]
	var rangeText string
	switch {
	case rest == "":
	case rest[0] == '-':
		rangeText = rest[1:]
		if rangeText == "" {
			return Requirement{}, fmt.Errorf("requirement %q: empty version range after '-'", raw)
		}
	case strings.ContainsRune("<>=!~^", rune(rest[0])):
		rangeText = rest
	default:
		return Requirement{}, fmt.Errorf("requirement %q: unexpected %q after package name", raw, rest)
	}

	rng, err := ParseVersionRange(rangeText)
	if err != nil {
		return Requirement{}, fmt.Errorf("requirement %q: %w", raw, err)
	}

	return Requirement{raw: raw, name: name, rng: rng, kind: kind}, nil
}

// MustParseRequirement parses a requirement or panics (for tests only)
func MustParseRequirement(s string) Requirement {
	r, err := ParseRequirement(s)
	if err != nil {
		panic(err)
	}
	return r
}

func isNameByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// String returns the requirement as written.
func (r Requirement) String() string {
	return r.raw
}

// Name returns the required package name.
func (r Requirement) Name() PackageName {
	return r.name
}

// Range returns the version range.
func (r Requirement) Range() VersionRange {
	return r.rng
}

// Kind returns the binding strength.
func (r Requirement) Kind() RequirementKind {
	return r.kind
}

// SatisfiedBy checks the requirement against the chosen versions of the activation context.
// It returns a human-readable reason when the requirement is not satisfied.
func (r Requirement) SatisfiedBy(chosen map[string]Version) (bool, string) {
	v, present := chosen[r.name.String()]

	switch r.kind {
	case RequirementWeak:
		if !present || r.rng.Contains(v) {
			return true, ""
		}
		return false, fmt.Sprintf("%s-%s does not satisfy %s", r.name, v, r.raw)
	case RequirementConflict:
		if !present || !r.rng.Contains(v) {
			return true, ""
		}
		return false, fmt.Sprintf("%s-%s conflicts with %s", r.name, v, r.raw)
	default:
		if !present {
			return false, fmt.Sprintf("%s is not in the context", r.name)
		}
		if !r.rng.Contains(v) {
			return false, fmt.Sprintf("%s-%s does not satisfy %s", r.name, v, r.raw)
		}
		return true, ""
	}
}
