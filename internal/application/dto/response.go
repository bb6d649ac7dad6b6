package dto

import (
	"github.com/reglet-dev/pkgreg/internal/domain/entities"
	"github.com/reglet-dev/pkgreg/internal/domain/environment"
)

// PackageInfo is the read model of one package.
type PackageInfo struct {
	Name         string     `json:"name" yaml:"name"`
	Version      string     `json:"version" yaml:"version"`
	UUID         string     `json:"uuid,omitempty" yaml:"uuid,omitempty"`
	Description  string     `json:"description,omitempty" yaml:"description,omitempty"`
	Authors      []string   `json:"authors,omitempty" yaml:"authors,omitempty"`
	Requires     []string   `json:"requires,omitempty" yaml:"requires,omitempty"`
	Variants     [][]string `json:"variants,omitempty" yaml:"variants,omitempty"`
	BuildCommand string     `json:"build_command,omitempty" yaml:"build_command,omitempty"`
	Root         string     `json:"root,omitempty" yaml:"root,omitempty"`
	Source       string     `json:"source,omitempty" yaml:"source,omitempty"`
}

// NewPackageInfo builds the read model of pkg.
func NewPackageInfo(pkg *entities.Package) PackageInfo {
	doc := pkg.Descriptor()
	return PackageInfo{
		Name:         pkg.Name().String(),
		Version:      pkg.Version().String(),
		UUID:         pkg.ID().String(),
		Description:  pkg.Description(),
		Authors:      pkg.Authors(),
		Requires:     doc.Requires,
		Variants:     doc.Variants,
		BuildCommand: doc.BuildCommand,
		Root:         pkg.Root(),
		Source:       pkg.Source(),
	}
}

// Selection describes one activated package.
type Selection struct {
	Name            string   `json:"name" yaml:"name"`
	Version         string   `json:"version" yaml:"version"`
	Requested       string   `json:"requested" yaml:"requested"`
	Variant         int      `json:"variant" yaml:"variant"`
	VariantRequires []string `json:"variant_requires,omitempty" yaml:"variant_requires,omitempty"`
	Root            string   `json:"root,omitempty" yaml:"root,omitempty"`
}

// EnvVar is one variable changed by activation.
type EnvVar struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
	Unset bool   `json:"unset,omitempty" yaml:"unset,omitempty"`
}

// EnvironmentResult contains the outcome of activating a set of packages.
type EnvironmentResult struct {
	// Selections in activation order.
	Selections []Selection `json:"packages" yaml:"packages"`

	// Variables changed by activation, sorted by name.
	Variables []EnvVar `json:"variables" yaml:"variables"`

	// Separator is the path-list separator used for joined values.
	Separator string `json:"separator" yaml:"separator"`

	// Context is the full resulting environment.
	Context *environment.Context `json:"-" yaml:"-"`

	// Lockfile pins the resolved packages.
	Lockfile *entities.Lockfile `json:"-" yaml:"-"`
}

// FindingLevel is the severity of a lint finding.
type FindingLevel string

const (
	// LevelError fails validation.
	LevelError FindingLevel = "error"
	// LevelWarning is reported but does not fail validation.
	LevelWarning FindingLevel = "warning"
)

// Finding is one problem reported by the linter.
type Finding struct {
	RuleID  string       `json:"rule" yaml:"rule"`
	Level   FindingLevel `json:"level" yaml:"level"`
	Source  string       `json:"source,omitempty" yaml:"source,omitempty"`
	Line    int          `json:"line,omitempty" yaml:"line,omitempty"`
	Package string       `json:"package,omitempty" yaml:"package,omitempty"`
	Message string       `json:"message" yaml:"message"`
}

// LintReport is the outcome of validating a package tree.
type LintReport struct {
	Findings  []Finding `json:"findings" yaml:"findings"`
	Documents int       `json:"documents" yaml:"documents"`
	Packages  int       `json:"packages" yaml:"packages"`
}

// Add appends a finding.
func (r *LintReport) Add(f Finding) {
	r.Findings = append(r.Findings, f)
}

// HasErrors reports whether any finding is error level.
func (r *LintReport) HasErrors() bool {
	for _, f := range r.Findings {
		if f.Level == LevelError {
			return true
		}
	}
	return false
}

// Count returns the number of findings at level.
func (r *LintReport) Count(level FindingLevel) int {
	n := 0
	for _, f := range r.Findings {
		if f.Level == level {
			n++
		}
	}
	return n
}
