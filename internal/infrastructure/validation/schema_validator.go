// Package validation checks package descriptor documents against the
// embedded JSON Schema before they are decoded into domain types.
package validation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	apperrors "github.com/reglet-dev/pkgreg/internal/application/errors"
)

//go:embed schema/descriptor.schema.json
var descriptorSchema []byte

const schemaResource = "descriptor.schema.json"

// SchemaValidator validates descriptor documents against the descriptor schema.
// It is safe for concurrent use.
type SchemaValidator struct {
	schema *jsonschema.Schema
}

// NewSchemaValidator compiles the embedded descriptor schema.
func NewSchemaValidator() (*SchemaValidator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	if err := compiler.AddResource(schemaResource, bytes.NewReader(descriptorSchema)); err != nil {
		return nil, fmt.Errorf("failed to add descriptor schema: %w", err)
	}

	schema, err := compiler.Compile(schemaResource)
	if err != nil {
		return nil, fmt.Errorf("failed to compile descriptor schema: %w", err)
	}
	return &SchemaValidator{schema: schema}, nil
}

// Schema returns the raw descriptor schema.
func Schema() []byte {
	out := make([]byte, len(descriptorSchema))
	copy(out, descriptorSchema)
	return out
}

// Validate implements ports.DescriptorValidator.
// Failures are returned as *apperrors.ValidationError whose Field names the
// first offending location and whose Details list every violation.
func (v *SchemaValidator) Validate(document []byte) error {
	dec := json.NewDecoder(bytes.NewReader(document))
	dec.UseNumber()

	var instance any
	if err := dec.Decode(&instance); err != nil {
		return apperrors.NewValidationError("document", "not valid JSON", err.Error())
	}

	err := v.schema.Validate(instance)
	if err == nil {
		return nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return fmt.Errorf("descriptor validation failed: %w", err)
	}

	leaves := collectLeaves(verr)
	if len(leaves) == 0 {
		return apperrors.NewValidationError("document", "does not match schema")
	}

	details := make([]string, 0, len(leaves))
	for _, leaf := range leaves {
		details = append(details, fmt.Sprintf("%s: %s", fieldPath(leaf.InstanceLocation), leaf.Message))
	}
	return apperrors.NewValidationError(fieldPath(leaves[0].InstanceLocation), leaves[0].Message, details...)
}

// collectLeaves returns the innermost causes, which carry the specific messages.
func collectLeaves(err *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(err.Causes) == 0 {
		if err.Message == "" {
			return nil
		}
		return []*jsonschema.ValidationError{err}
	}

	var out []*jsonschema.ValidationError
	for _, cause := range err.Causes {
		out = append(out, collectLeaves(cause)...)
	}
	return out
}

// fieldPath turns a JSON pointer such as /commands/0/op into commands[0].op.
func fieldPath(pointer string) string {
	pointer = strings.TrimPrefix(pointer, "/")
	if pointer == "" {
		return "(root)"
	}

	var b strings.Builder
	for i, part := range strings.Split(pointer, "/") {
		part = strings.ReplaceAll(strings.ReplaceAll(part, "~1", "/"), "~0", "~")
		if isIndex(part) {
			b.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
