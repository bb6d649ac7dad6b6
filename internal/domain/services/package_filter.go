package services

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/reglet-dev/pkgreg/internal/domain/entities"
)

// PackageEnv defines the variables available during filter expression evaluation.
type PackageEnv struct {
	Name        string   `expr:"name"`
	Version     string   `expr:"version"`
	Major       int      `expr:"major"`
	Minor       int      `expr:"minor"`
	UUID        string   `expr:"uuid"`
	Description string   `expr:"description"`
	Authors     []string `expr:"authors"`
	Requires    []string `expr:"requires"` // package names, variants included
	HasVariants bool     `expr:"has_variants"`
	Root        string   `expr:"root"`
}

// NewPackageEnv builds the filter environment of pkg.
func NewPackageEnv(pkg *entities.Package) PackageEnv {
	segments := pkg.Version().Segments()
	segment := func(i int) int {
		if i < len(segments) {
			return int(segments[i]) //nolint:gosec // G115: version segments are small
		}
		return 0
	}
	return PackageEnv{
		Name:        pkg.Name().String(),
		Version:     pkg.Version().String(),
		Major:       segment(0),
		Minor:       segment(1),
		UUID:        pkg.ID().String(),
		Description: pkg.Description(),
		Authors:     pkg.Authors(),
		Requires:    requiredNames(pkg),
		HasVariants: pkg.HasVariants(),
		Root:        pkg.Root(),
	}
}

// CompilePackageFilter compiles a boolean filter expression over PackageEnv.
func CompilePackageFilter(expression string) (*vm.Program, error) {
	if len(expression) > maxConditionLength {
		return nil, fmt.Errorf("filter expression exceeds %d characters", maxConditionLength)
	}
	program, err := expr.Compile(expression, expr.Env(PackageEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}
	return program, nil
}

// PackageFilter selects packages by name, requirement and expression.
type PackageFilter struct {
	excludeNames  map[string]bool
	requires      map[string]bool
	filterProgram *vm.Program
}

// NewPackageFilter initializes a new empty filter that keeps every package.
func NewPackageFilter() *PackageFilter {
	return &PackageFilter{
		excludeNames: make(map[string]bool),
		requires:     make(map[string]bool),
	}
}

// WithExcludedNames drops packages with these names.
func (f *PackageFilter) WithExcludedNames(names []string) *PackageFilter {
	f.excludeNames = toSet(names)
	return f
}

// WithRequires keeps only packages requiring any of these package names.
func (f *PackageFilter) WithRequires(names []string) *PackageFilter {
	f.requires = toSet(names)
	return f
}

// WithFilterExpression applies a compiled Expr program for advanced filtering.
func (f *PackageFilter) WithFilterExpression(program *vm.Program) *PackageFilter {
	f.filterProgram = program
	return f
}

// Matches evaluates whether a package matches the filter criteria,
// returning the reason when it does not.
func (f *PackageFilter) Matches(pkg *entities.Package) (bool, string) {
	var specs []PackageSpecification

	if len(f.excludeNames) > 0 {
		specs = append(specs, NewExcludedNamesSpecification(f.excludeNames))
	}
	if len(f.requires) > 0 {
		specs = append(specs, NewRequiresSpecification(f.requires))
	}
	if f.filterProgram != nil {
		specs = append(specs, NewExpressionSpecification(f.filterProgram))
	}

	return NewAndSpecification(specs...).IsSatisfiedBy(pkg)
}

// Apply returns the packages that match, preserving order.
func (f *PackageFilter) Apply(pkgs []*entities.Package) []*entities.Package {
	out := make([]*entities.Package, 0, len(pkgs))
	for _, pkg := range pkgs {
		if ok, _ := f.Matches(pkg); ok {
			out = append(out, pkg)
		}
	}
	return out
}

// toSet converts a slice to a map (set)
func toSet(slice []string) map[string]bool {
	s := make(map[string]bool, len(slice))
	for _, item := range slice {
		s[item] = true
	}
	return s
}
