package entities

import (
	"fmt"
	"time"
)

// Lockfile pins the packages of an activated environment so it can be
// re-created later with the exact same versions and variants.
//
// Invariants:
// - Version must be 1 (current format version)
// - Each package entry must have a resolved version and a digest
// - A package name appears at most once
// - Generated timestamp must be set when there are entries
type Lockfile struct {
	Generated time.Time     `yaml:"generated"`
	Packages  []PackageLock `yaml:"packages"`
	Version   int           `yaml:"lockfile_version"`
}

// PackageLock is a value object representing one pinned package, in activation order.
type PackageLock struct {
	Name      string `yaml:"name"`
	Requested string `yaml:"requested"`      // Original request string
	Resolved  string `yaml:"resolved"`       // Exact version
	Variant   int    `yaml:"variant"`        // Variant index, -1 when implicit
	UUID      string `yaml:"uuid,omitempty"` // Cross-version identity
	Root      string `yaml:"root,omitempty"` // Package directory when loaded from disk
	Digest    string `yaml:"sha256"`         // Descriptor digest
}

// NewLockfile creates a new lockfile with the current version.
func NewLockfile() *Lockfile {
	return &Lockfile{
		Version:   1,
		Generated: time.Now().UTC(),
	}
}

// AddPackage appends a package entry.
// Returns error if digest or resolved version is empty or the name is already locked.
func (l *Lockfile) AddPackage(lock PackageLock) error {
	if lock.Digest == "" {
		return fmt.Errorf("package %q: digest is required", lock.Name)
	}
	if lock.Resolved == "" {
		return fmt.Errorf("package %q: resolved version is required", lock.Name)
	}
	if l.GetPackage(lock.Name) != nil {
		return fmt.Errorf("package %q is already locked", lock.Name)
	}
	l.Packages = append(l.Packages, lock)
	return nil
}

// GetPackage retrieves a package lock entry by name.
// Returns nil if not found.
func (l *Lockfile) GetPackage(name string) *PackageLock {
	for i := range l.Packages {
		if l.Packages[i].Name == name {
			lock := l.Packages[i]
			return &lock
		}
	}
	return nil
}

// Validate checks lockfile invariants.
func (l *Lockfile) Validate() error {
	if l.Version != 1 {
		return fmt.Errorf("unsupported lockfile version: %d", l.Version)
	}
	if l.PackageCount() > 0 && l.Generated.IsZero() {
		return fmt.Errorf("generated timestamp is required")
	}
	seen := make(map[string]bool, len(l.Packages))
	for _, lock := range l.Packages {
		if lock.Digest == "" {
			return fmt.Errorf("package %q: digest is required", lock.Name)
		}
		if lock.Resolved == "" {
			return fmt.Errorf("package %q: resolved version is required", lock.Name)
		}
		if seen[lock.Name] {
			return fmt.Errorf("package %q is locked twice", lock.Name)
		}
		seen[lock.Name] = true
	}
	return nil
}

// PackageCount returns the number of locked packages.
func (l *Lockfile) PackageCount() int {
	return len(l.Packages)
}
