package entities

import (
	"fmt"
	"strings"

	"github.com/reglet-dev/pkgreg/internal/domain/values"
)

// Package is a validated, immutable package descriptor.
//
// Invariants:
// - name and version are present and well formed
// - requires does not reference the package itself and names each package at most once
// - every variant is a non-empty requirement set
// - every hook op and its value template are well formed
type Package struct {
	doc      Descriptor
	name     values.PackageName
	version  values.Version
	id       values.PackageID
	requires []values.Requirement
	variants [][]values.Requirement
	build    values.Template
	ops      []EnvOp
	opValues []values.Template
	root     string
	source   string
}

// PackageOptions carries load-time context for NewPackage.
type PackageOptions struct {
	// Root is the directory the package was loaded from; it backs {root}.
	Root string
	// Source names the origin for error messages (usually the file path).
	Source string
	// CheckCondition validates a `when` expression. Nil skips the check.
	CheckCondition func(expression string) error
}

// NewPackage validates a descriptor and returns the immutable package.
// All failures are *MalformedDescriptorError.
func NewPackage(doc Descriptor, opts PackageOptions) (*Package, error) {
	malformed := func(field, reason string, cause error) error {
		return &MalformedDescriptorError{Source: opts.Source, Field: field, Reason: reason, Cause: cause}
	}

	if strings.TrimSpace(doc.Name) == "" {
		return nil, malformed("name", "required field is missing", nil)
	}
	name, err := values.NewPackageName(doc.Name)
	if err != nil {
		return nil, malformed("name", "invalid", err)
	}

	if strings.TrimSpace(doc.Version) == "" {
		return nil, malformed("version", "required field is missing", nil)
	}
	version, err := values.ParseVersion(doc.Version)
	if err != nil {
		return nil, malformed("version", "invalid", err)
	}

	p := &Package{
		doc:     doc.Clone(),
		name:    name,
		version: version,
		root:    opts.Root,
		source:  opts.Source,
	}

	if doc.UUID != "" {
		id, err := values.ParsePackageID(doc.UUID)
		if err != nil {
			return nil, malformed("uuid", "invalid", err)
		}
		p.id = id
	}

	p.requires, err = parseRequirementSet(doc.Requires)
	if err != nil {
		return nil, malformed("requires", "invalid", err)
	}
	for _, req := range p.requires {
		if req.Name().Equals(name) {
			return nil, malformed("requires", fmt.Sprintf("%q references the package itself", req.String()), nil)
		}
	}

	if doc.Variants != nil {
		if len(doc.Variants) == 0 {
			return nil, malformed("variants", "must contain at least one variant when present", nil)
		}
		p.variants = make([][]values.Requirement, 0, len(doc.Variants))
		for i, variant := range doc.Variants {
			if len(variant) == 0 {
				return nil, malformed(fmt.Sprintf("variants[%d]", i), "variant must not be empty", nil)
			}
			reqs, err := parseRequirementSet(variant)
			if err != nil {
				return nil, malformed(fmt.Sprintf("variants[%d]", i), "invalid", err)
			}
			p.variants = append(p.variants, reqs)
		}
	}

	p.build, err = values.ParseTemplate(doc.BuildCommand)
	if err != nil {
		return nil, malformed("build_command", "invalid template", err)
	}

	p.ops = make([]EnvOp, 0, len(doc.Commands))
	p.opValues = make([]values.Template, 0, len(doc.Commands))
	for i, op := range doc.Commands {
		field := fmt.Sprintf("commands[%d]", i)
		if err := op.Validate(); err != nil {
			return nil, malformed(field, "invalid", err)
		}
		tmpl, err := values.ParseTemplate(op.Value)
		if err != nil {
			return nil, malformed(field+".value", "invalid template", err)
		}
		if op.When != "" && opts.CheckCondition != nil {
			if err := opts.CheckCondition(op.When); err != nil {
				return nil, malformed(field+".when", "invalid condition", err)
			}
		}
		p.ops = append(p.ops, op)
		p.opValues = append(p.opValues, tmpl)
	}

	return p, nil
}

// parseRequirementSet parses specifiers and rejects two entries naming the same package.
func parseRequirementSet(specs []string) ([]values.Requirement, error) {
	reqs := make([]values.Requirement, 0, len(specs))
	seen := make(map[string]string, len(specs))
	for _, spec := range specs {
		req, err := values.ParseRequirement(spec)
		if err != nil {
			return nil, err
		}
		key := req.Name().String()
		if prev, dup := seen[key]; dup {
			return nil, fmt.Errorf("%q and %q both name package %s", prev, spec, key)
		}
		seen[key] = spec
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// Name returns the package name.
func (p *Package) Name() values.PackageName {
	return p.name
}

// Version returns the package version.
func (p *Package) Version() values.Version {
	return p.version
}

// ID returns the cross-version identity marker (zero if the descriptor has none).
func (p *Package) ID() values.PackageID {
	return p.id
}

// Authors returns the author list in declared order.
func (p *Package) Authors() []string {
	return p.doc.AuthorList()
}

// Description returns the free-text description.
func (p *Package) Description() string {
	return p.doc.Description
}

// Requires returns the top-level requirements.
func (p *Package) Requires() []values.Requirement {
	out := make([]values.Requirement, len(p.requires))
	copy(out, p.requires)
	return out
}

// HasVariants reports whether the descriptor declares a variant axis.
func (p *Package) HasVariants() bool {
	return p.variants != nil
}

// Variants returns the declared variants in order.
func (p *Package) Variants() [][]values.Requirement {
	out := make([][]values.Requirement, len(p.variants))
	for i, v := range p.variants {
		out[i] = make([]values.Requirement, len(v))
		copy(out[i], v)
	}
	return out
}

// BuildCommand returns the parsed build-command template.
func (p *Package) BuildCommand() values.Template {
	return p.build
}

// Hook returns the environment operations in declared order.
func (p *Package) Hook() []EnvOp {
	out := make([]EnvOp, len(p.ops))
	copy(out, p.ops)
	return out
}

// HookValue returns the parsed value template of the i-th hook op.
func (p *Package) HookValue(i int) values.Template {
	return p.opValues[i]
}

// Root returns the directory the package was loaded from, if any.
func (p *Package) Root() string {
	return p.root
}

// Source returns where the descriptor came from.
func (p *Package) Source() string {
	return p.source
}

// Descriptor returns a copy of the descriptor exactly as supplied.
func (p *Package) Descriptor() Descriptor {
	return p.doc.Clone()
}

// String returns "name-version".
func (p *Package) String() string {
	return p.name.String() + "-" + p.version.String()
}
