package entities

import (
	"sort"

	"github.com/reglet-dev/pkgreg/internal/domain/values"
)

// Registry is the aggregate root holding every known package.
// It is built once and never mutated, so reads need no locking.
//
// Invariants:
// - (name, version) pairs are unique (numeric version equality)
// - versions of each name are kept in ascending order
type Registry struct {
	byName map[string][]*Package
	count  int
}

// NewRegistry builds a registry from validated packages.
// It fails with *DuplicateDescriptorError on a (name, version) collision.
func NewRegistry(pkgs []*Package) (*Registry, error) {
	return (&Registry{byName: map[string][]*Package{}}).With(pkgs...)
}

// With returns a new registry containing the receiver's packages plus pkgs.
// On error the receiver is untouched and no registry is returned.
func (r *Registry) With(pkgs ...*Package) (*Registry, error) {
	next := &Registry{
		byName: make(map[string][]*Package, len(r.byName)),
		count:  r.count,
	}
	for name, versions := range r.byName {
		next.byName[name] = append([]*Package(nil), versions...)
	}

	for _, p := range pkgs {
		name := p.Name().String()
		versions := next.byName[name]

		i := sort.Search(len(versions), func(i int) bool {
			return versions[i].Version().Compare(p.Version()) >= 0
		})
		if i < len(versions) && versions[i].Version().Equals(p.Version()) {
			return nil, &DuplicateDescriptorError{
				Name:         name,
				Version:      p.Version().String(),
				FirstSource:  versions[i].Source(),
				SecondSource: p.Source(),
			}
		}

		versions = append(versions, nil)
		copy(versions[i+1:], versions[i:])
		versions[i] = p
		next.byName[name] = versions
		next.count++
	}

	return next, nil
}

// Find returns the highest version of name satisfying constraint
// ("latest", "", an exact or family version, or a range).
// A bare version that equals a loaded version selects that record; otherwise
// it matches as a family, so "2025" finds 2025 even when 2025.3.0 exists.
func (r *Registry) Find(name, constraint string) (*Package, error) {
	rng, err := values.ParseVersionRange(constraint)
	if err != nil {
		return nil, err
	}
	if rng.Kind() == values.RangeFamily {
		if pkg, err := r.FindInRange(name, values.ExactVersion(rng.Bound())); err == nil {
			return pkg, nil
		}
	}
	return r.FindInRange(name, rng)
}

// FindInRange is Find with a pre-parsed range.
func (r *Registry) FindInRange(name string, rng values.VersionRange) (*Package, error) {
	versions := r.byName[name]
	for i := len(versions) - 1; i >= 0; i-- {
		if rng.Contains(versions[i].Version()) {
			return versions[i], nil
		}
	}

	available := make([]string, len(versions))
	for i, p := range versions {
		available[i] = p.Version().String()
	}
	return nil, &NotFoundError{Name: name, Constraint: rng.String(), Available: available}
}

// Versions returns all packages named name, lowest version first.
func (r *Registry) Versions(name string) []*Package {
	return append([]*Package(nil), r.byName[name]...)
}

// Names returns the distinct package names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every package ordered by name, then version.
func (r *Registry) All() []*Package {
	out := make([]*Package, 0, r.count)
	for _, name := range r.Names() {
		out = append(out, r.byName[name]...)
	}
	return out
}

// Len returns the number of packages.
func (r *Registry) Len() int {
	return r.count
}
