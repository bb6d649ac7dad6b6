package values

import (
	"fmt"
	"regexp"
	"strings"
)

// Package names are restricted so that "name-range" requirement strings split unambiguously.
var packageNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// PackageName represents a validated package identifier.
type PackageName struct {
	value string
}

// NewPackageName creates a PackageName with validation
func NewPackageName(name string) (PackageName, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return PackageName{}, fmt.Errorf("package name cannot be empty")
	}
	if !packageNamePattern.MatchString(name) {
		return PackageName{}, fmt.Errorf("package name %q is invalid (must be alphanumeric with underscores)", name)
	}
	return PackageName{value: name}, nil
}

// MustNewPackageName creates a PackageName or panics
func MustNewPackageName(name string) PackageName {
	pn, err := NewPackageName(name)
	if err != nil {
		panic(err)
	}
	return pn
}

// String returns the string representation
func (p PackageName) String() string {
	return p.value
}

// IsEmpty returns true if this is the zero value
func (p PackageName) IsEmpty() bool {
	return p.value == ""
}

// Equals checks if two package names are equal
func (p PackageName) Equals(other PackageName) bool {
	return p.value == other.value
}

// EnvToken returns the name in environment-variable form ("3de4" -> "3DE4", "py_side" -> "PY_SIDE").
func (p PackageName) EnvToken() string {
	return strings.ToUpper(p.value)
}

// MarshalJSON implements json.Marshaler
func (p PackageName) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (p *PackageName) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 {
		return fmt.Errorf("invalid package name JSON")
	}
	s = s[1 : len(s)-1]

	name, err := NewPackageName(s)
	if err != nil {
		return err
	}
	*p = name
	return nil
}
