package entities

import (
	"fmt"
	"regexp"
)

var envVarPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// OpKind is an environment mutation.
type OpKind string

const (
	// OpPrepend puts the value in front of existing entries (it takes priority).
	OpPrepend OpKind = "prepend"
	// OpAppend puts the value after existing entries.
	OpAppend OpKind = "append"
	// OpSet replaces the variable.
	OpSet OpKind = "set"
	// OpUnset removes the variable.
	OpUnset OpKind = "unset"
)

// IsValid reports whether k is a known operation.
func (k OpKind) IsValid() bool {
	switch k {
	case OpPrepend, OpAppend, OpSet, OpUnset:
		return true
	default:
		return false
	}
}

// EnvOp is one step of a package's environment hook.
// Value may contain {root}, {name}, {version} and {variant_index} placeholders
// as well as $VAR references; When is an optional boolean expression.
type EnvOp struct {
	Op    OpKind `yaml:"op" json:"op"`
	Var   string `yaml:"var" json:"var"`
	Value string `yaml:"value,omitempty" json:"value,omitempty"`
	When  string `yaml:"when,omitempty" json:"when,omitempty"`
}

// Validate checks the operation in isolation.
func (o EnvOp) Validate() error {
	if !o.Op.IsValid() {
		return fmt.Errorf("unknown op %q (expected prepend, append, set or unset)", o.Op)
	}
	if !envVarPattern.MatchString(o.Var) {
		return fmt.Errorf("invalid variable name %q", o.Var)
	}
	if (o.Op == OpPrepend || o.Op == OpAppend) && o.Value == "" {
		return fmt.Errorf("%s %s: value is required", o.Op, o.Var)
	}
	return nil
}

// String renders the op for logs.
func (o EnvOp) String() string {
	if o.Op == OpUnset {
		return fmt.Sprintf("unset %s", o.Var)
	}
	return fmt.Sprintf("%s %s %q", o.Op, o.Var, o.Value)
}
