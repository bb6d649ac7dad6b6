package entities

import "github.com/reglet-dev/pkgreg/internal/domain/values"

// ImplicitVariant is the index reported when a package declares no variants.
const ImplicitVariant = -1

// VariantSelection is the outcome of choosing one variant for an activation.
type VariantSelection struct {
	Package  *Package
	Requires []values.Requirement // the chosen variant, or top-level requires when implicit
	Index    int                  // position in the declared variants, or ImplicitVariant
}

// Implicit reports whether the package has no variant axis.
func (s VariantSelection) Implicit() bool {
	return s.Index == ImplicitVariant
}

// Names returns the package names referenced by the selection.
func (s VariantSelection) Names() []string {
	out := make([]string, len(s.Requires))
	for i, r := range s.Requires {
		out[i] = r.Name().String()
	}
	return out
}

// Strings returns the requirement specifiers as written.
func (s VariantSelection) Strings() []string {
	out := make([]string, len(s.Requires))
	for i, r := range s.Requires {
		out[i] = r.String()
	}
	return out
}
