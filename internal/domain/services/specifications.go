package services

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/reglet-dev/pkgreg/internal/domain/entities"
	"github.com/reglet-dev/pkgreg/internal/domain/values"
)

// PackageSpecification defines a condition that a package must meet.
type PackageSpecification interface {
	// IsSatisfiedBy returns true if satisfied, along with a reason if not.
	IsSatisfiedBy(pkg *entities.Package) (bool, string)
}

// AndSpecification combines multiple specifications with logical AND.
type AndSpecification struct {
	specs []PackageSpecification
}

// NewAndSpecification creates a new AndSpecification.
func NewAndSpecification(specs ...PackageSpecification) *AndSpecification {
	return &AndSpecification{specs: specs}
}

// IsSatisfiedBy checks if all specifications are satisfied.
func (s *AndSpecification) IsSatisfiedBy(pkg *entities.Package) (bool, string) {
	for _, spec := range s.specs {
		if satisfied, reason := spec.IsSatisfiedBy(pkg); !satisfied {
			return false, reason
		}
	}
	return true, ""
}

// ExcludedNamesSpecification excludes packages by name.
type ExcludedNamesSpecification struct {
	names map[string]bool
}

// NewExcludedNamesSpecification creates a new ExcludedNamesSpecification.
func NewExcludedNamesSpecification(names map[string]bool) *ExcludedNamesSpecification {
	return &ExcludedNamesSpecification{names: names}
}

// IsSatisfiedBy checks that the package name is not excluded.
func (s *ExcludedNamesSpecification) IsSatisfiedBy(pkg *entities.Package) (bool, string) {
	if s.names[pkg.Name().String()] {
		return false, "excluded by --exclude filter"
	}
	return true, ""
}

// RequiresSpecification keeps packages that require any of the given
// package names, in their top-level requires or in any variant.
type RequiresSpecification struct {
	names map[string]bool
}

// NewRequiresSpecification creates a new RequiresSpecification.
func NewRequiresSpecification(names map[string]bool) *RequiresSpecification {
	return &RequiresSpecification{names: names}
}

// IsSatisfiedBy checks if the package requires ANY of the names.
func (s *RequiresSpecification) IsSatisfiedBy(pkg *entities.Package) (bool, string) {
	if len(s.names) == 0 {
		return true, ""
	}
	for _, name := range requiredNames(pkg) {
		if s.names[name] {
			return true, ""
		}
	}
	return false, "excluded by --requires filter"
}

// ExpressionSpecification filters packages using an expr program.
type ExpressionSpecification struct {
	program *vm.Program
}

// NewExpressionSpecification creates a new ExpressionSpecification.
func NewExpressionSpecification(program *vm.Program) *ExpressionSpecification {
	return &ExpressionSpecification{program: program}
}

// IsSatisfiedBy evaluates the expr program against the package.
func (s *ExpressionSpecification) IsSatisfiedBy(pkg *entities.Package) (bool, string) {
	if s.program == nil {
		return true, ""
	}

	output, err := expr.Run(s.program, NewPackageEnv(pkg))
	if err != nil {
		return false, fmt.Sprintf("filter expression error: %v", err)
	}

	result, ok := output.(bool)
	if !ok {
		return false, fmt.Sprintf("filter expression did not return boolean: %v", output)
	}
	if !result {
		return false, "excluded by --filter expression"
	}
	return true, ""
}

// requiredNames lists the names of every strong or weak requirement of pkg.
// Conflict requirements are not dependencies and are skipped.
func requiredNames(pkg *entities.Package) []string {
	var names []string
	add := func(reqs []values.Requirement) {
		for _, r := range reqs {
			if r.Kind() == values.RequirementConflict {
				continue
			}
			names = append(names, r.Name().String())
		}
	}
	add(pkg.Requires())
	for _, variant := range pkg.Variants() {
		add(variant)
	}
	return names
}
