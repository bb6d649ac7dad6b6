package services

import (
	"fmt"
	"strconv"

	"github.com/reglet-dev/pkgreg/internal/domain/entities"
	"github.com/reglet-dev/pkgreg/internal/domain/environment"
)

// DefaultEnvPrefix prefixes the per-package variables set on activation
// (PKG_PYTHON_VERSION, PKG_PYTHON_MAJOR_VERSION, ...).
const DefaultEnvPrefix = "PKG"

// Platform describes the host the environment is built for.
type Platform struct {
	OS   string // linux, osx or windows
	Arch string // x86_64, arm64, ...
}

// Activator applies package environment hooks to a caller-owned context.
type Activator struct {
	conditions *ConditionEvaluator
	prefix     string
	platform   Platform
}

// NewActivator creates an activator. An empty prefix uses DefaultEnvPrefix.
func NewActivator(conditions *ConditionEvaluator, platform Platform, prefix string) *Activator {
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	if conditions == nil {
		conditions = NewConditionEvaluator()
	}
	return &Activator{
		conditions: conditions,
		prefix:     prefix,
		platform:   platform,
	}
}

// Activate mutates env for the selected package.
//
// It first sets the package variables (<PREFIX>_<NAME>_VERSION, _MAJOR_VERSION,
// _MINOR_VERSION, _PATCH_VERSION and _ROOT when known), then applies each hook
// op in declared order. Ops whose `when` condition is false are skipped.
// Values have {root}, {name}, {version} and {variant_index} substituted and
// $VAR references expanded against env.
//
// Activate never touches the process environment.
func (a *Activator) Activate(sel entities.VariantSelection, env *environment.Context) error {
	pkg := sel.Package
	if pkg == nil {
		return fmt.Errorf("activate: selection has no package")
	}

	a.setPackageVars(sel, env)

	placeholders := map[string]string{
		KeyName:         pkg.Name().String(),
		KeyVersion:      pkg.Version().String(),
		KeyVariantIndex: strconv.Itoa(sel.Index),
	}
	if pkg.Root() != "" {
		placeholders[KeyRoot] = pkg.Root()
	}

	for i, op := range pkg.Hook() {
		if op.When != "" {
			ok, err := a.conditions.Evaluate(op.When, a.conditionEnv(sel, env))
			if err != nil {
				return fmt.Errorf("%s: commands[%d]: %w", pkg, i, err)
			}
			if !ok {
				continue
			}
		}

		if op.Op == entities.OpUnset {
			env.Unset(op.Var)
			continue
		}

		value, err := pkg.HookValue(i).Execute(func(key string) (string, bool, error) {
			v, ok := placeholders[key]
			if !ok {
				return "", false, &entities.TemplateSubstitutionError{
					Template:    op.Value,
					Placeholder: key,
					Reason:      "not available in environment values",
				}
			}
			return v, false, nil
		})
		if err != nil {
			return fmt.Errorf("%s: commands[%d]: %w", pkg, i, err)
		}
		value = env.Expand(value)

		switch op.Op {
		case entities.OpPrepend:
			env.Prepend(op.Var, value)
		case entities.OpAppend:
			env.Append(op.Var, value)
		case entities.OpSet:
			env.Set(op.Var, value)
		}
	}

	return nil
}

func (a *Activator) setPackageVars(sel entities.VariantSelection, env *environment.Context) {
	pkg := sel.Package
	base := a.prefix + "_" + pkg.Name().EnvToken()
	v := pkg.Version()

	env.Set(base+"_VERSION", v.String())
	env.Set(base+"_MAJOR_VERSION", v.Segment(0))
	env.Set(base+"_MINOR_VERSION", v.Segment(1))
	env.Set(base+"_PATCH_VERSION", v.Segment(2))
	if pkg.Root() != "" {
		env.Set(base+"_ROOT", pkg.Root())
	}
}

func (a *Activator) conditionEnv(sel entities.VariantSelection, env *environment.Context) ConditionEnv {
	pkg := sel.Package
	return ConditionEnv{
		Env:      env.Map(),
		Platform: a.platform.OS,
		Arch:     a.platform.Arch,
		Name:     pkg.Name().String(),
		Version:  pkg.Version().String(),
		Root:     pkg.Root(),
		Variant:  sel.Names(),
	}
}
