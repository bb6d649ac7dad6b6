package entities

import (
	"fmt"
	"strings"
)

// MalformedDescriptorError indicates a missing or invalid field at load time.
type MalformedDescriptorError struct {
	Cause  error
	Source string // file path or other origin, may be empty
	Field  string
	Reason string
}

func (e *MalformedDescriptorError) Error() string {
	where := e.Source
	if where == "" {
		where = "descriptor"
	}
	msg := fmt.Sprintf("malformed descriptor %s: %s: %s", where, e.Field, e.Reason)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *MalformedDescriptorError) Unwrap() error {
	return e.Cause
}

// DuplicateDescriptorError indicates two descriptors share (name, version).
type DuplicateDescriptorError struct {
	Name         string
	Version      string
	FirstSource  string
	SecondSource string
}

func (e *DuplicateDescriptorError) Error() string {
	msg := fmt.Sprintf("duplicate descriptor %s-%s", e.Name, e.Version)
	if e.FirstSource != "" || e.SecondSource != "" {
		msg += fmt.Sprintf(" (%s and %s)", orUnknown(e.FirstSource), orUnknown(e.SecondSource))
	}
	return msg
}

// NotFoundError indicates no descriptor matches a lookup.
type NotFoundError struct {
	Name       string
	Constraint string
	Available  []string
}

func (e *NotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("package not found: %s", e.Name)
	}
	return fmt.Sprintf("no version of %s matches %q (available: %s)",
		e.Name, e.Constraint, strings.Join(e.Available, ", "))
}

// NoVariantMatchError indicates no variant is consistent with the activation context.
type NoVariantMatchError struct {
	Package string
	Reasons []string // one per variant, in declared order
}

func (e *NoVariantMatchError) Error() string {
	return fmt.Sprintf("no variant of %s matches the context:\n  - %s",
		e.Package, strings.Join(e.Reasons, "\n  - "))
}

// TemplateSubstitutionError indicates a placeholder could not be substituted.
type TemplateSubstitutionError struct {
	Cause       error
	Template    string
	Placeholder string
	Reason      string
}

func (e *TemplateSubstitutionError) Error() string {
	if e.Placeholder == "" {
		return fmt.Sprintf("cannot render %q: %s", e.Template, e.Reason)
	}
	return fmt.Sprintf("cannot render %q: {%s}: %s", e.Template, e.Placeholder, e.Reason)
}

func (e *TemplateSubstitutionError) Unwrap() error {
	return e.Cause
}

// IdentityMismatchError indicates versions of one package carry different uuids.
type IdentityMismatchError struct {
	Name     string
	Expected string // uuid of the lowest version that has one
	Actual   string
	Version  string // version carrying Actual
}

func (e *IdentityMismatchError) Error() string {
	return fmt.Sprintf("package %s-%s has uuid %s, other versions use %s",
		e.Name, e.Version, e.Actual, e.Expected)
}

func orUnknown(s string) string {
	if s == "" {
		return "<unknown>"
	}
	return s
}
