package services

import (
	"fmt"
	"strings"

	"github.com/reglet-dev/pkgreg/internal/domain/entities"
	"github.com/reglet-dev/pkgreg/internal/domain/values"
)

// VariantResolver picks one variant of a package for an activation context.
type VariantResolver struct{}

// NewVariantResolver creates a new variant resolver service
func NewVariantResolver() *VariantResolver {
	return &VariantResolver{}
}

// Resolve selects the first declared variant whose requirements are all
// satisfied by the chosen versions of the context.
//
// Rules:
// - strong requirement: the package is chosen and its version is in range
// - weak requirement: the package is absent, or chosen and in range
// - conflict: the package is absent, or chosen and out of range
//
// A package without variants always resolves to its top-level requires.
func (r *VariantResolver) Resolve(
	pkg *entities.Package,
	chosen map[string]values.Version,
) (entities.VariantSelection, error) {
	if !pkg.HasVariants() {
		return entities.VariantSelection{
			Package:  pkg,
			Index:    entities.ImplicitVariant,
			Requires: pkg.Requires(),
		}, nil
	}

	variants := pkg.Variants()
	reasons := make([]string, 0, len(variants))

	for i, variant := range variants {
		var failures []string
		for _, req := range variant {
			if ok, why := req.SatisfiedBy(chosen); !ok {
				failures = append(failures, why)
			}
		}
		if len(failures) == 0 {
			return entities.VariantSelection{
				Package:  pkg,
				Index:    i,
				Requires: variant,
			}, nil
		}
		reasons = append(reasons, fmt.Sprintf("variant %d %s: %s", i, variantString(variant), strings.Join(failures, "; ")))
	}

	return entities.VariantSelection{}, &entities.NoVariantMatchError{
		Package: pkg.String(),
		Reasons: reasons,
	}
}

func variantString(reqs []values.Requirement) string {
	parts := make([]string, len(reqs))
	for i, r := range reqs {
		parts[i] = r.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
