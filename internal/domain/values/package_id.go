package values

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// PackageID is the cross-version identity marker of a package.
// All versions of the same package are expected to carry the same ID.
// The text is kept as written (rez writes 32 hex digits without dashes).
type PackageID struct {
	raw   string
	value uuid.UUID
}

// NewPackageID creates a new random package ID in the compact 32-hex form.
func NewPackageID() PackageID {
	id := uuid.New()
	return PackageID{raw: strings.ReplaceAll(id.String(), "-", ""), value: id}
}

// ParsePackageID parses any form accepted by uuid.Parse.
func ParsePackageID(s string) (PackageID, error) {
	s = strings.TrimSpace(s)
	id, err := uuid.Parse(s)
	if err != nil {
		return PackageID{}, fmt.Errorf("invalid package uuid %q: %w", s, err)
	}
	return PackageID{raw: s, value: id}, nil
}

// MustParsePackageID parses a string or panics (for tests only)
func MustParsePackageID(s string) PackageID {
	id, err := ParsePackageID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the ID as written.
func (p PackageID) String() string {
	return p.raw
}

// UUID returns the underlying uuid.UUID
func (p PackageID) UUID() uuid.UUID {
	return p.value
}

// IsZero returns true if this is the zero value
func (p PackageID) IsZero() bool {
	return p.value == uuid.Nil
}

// Equals compares the parsed values, so dashed and compact spellings are equal.
func (p PackageID) Equals(other PackageID) bool {
	return p.value == other.value
}
