package services

import (
	"github.com/reglet-dev/pkgreg/internal/domain/entities"
)

// IdentityPolicy decides what happens when versions of a package carry different uuids.
type IdentityPolicy string

const (
	// IdentityIgnore skips the check.
	IdentityIgnore IdentityPolicy = "ignore"
	// IdentityWarn reports mismatches but keeps loading (default).
	IdentityWarn IdentityPolicy = "warn"
	// IdentityStrict rejects the registry on the first mismatch.
	IdentityStrict IdentityPolicy = "strict"
)

// ParseIdentityPolicy returns the policy for s, defaulting to warn.
func ParseIdentityPolicy(s string) IdentityPolicy {
	switch IdentityPolicy(s) {
	case IdentityIgnore, IdentityStrict:
		return IdentityPolicy(s)
	default:
		return IdentityWarn
	}
}

// CheckIdentity compares the uuid of every version of each package with the
// uuid of its lowest version that has one. Versions without a uuid are skipped.
// Mismatches are returned in name, then version order.
func CheckIdentity(reg *entities.Registry) []*entities.IdentityMismatchError {
	var mismatches []*entities.IdentityMismatchError

	for _, name := range reg.Names() {
		var reference *entities.Package
		for _, pkg := range reg.Versions(name) {
			if pkg.ID().IsZero() {
				continue
			}
			if reference == nil {
				reference = pkg
				continue
			}
			if !pkg.ID().Equals(reference.ID()) {
				mismatches = append(mismatches, &entities.IdentityMismatchError{
					Name:     name,
					Expected: reference.ID().String(),
					Actual:   pkg.ID().String(),
					Version:  pkg.Version().String(),
				})
			}
		}
	}

	return mismatches
}
