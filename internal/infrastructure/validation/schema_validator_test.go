package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/reglet-dev/pkgreg/internal/application/errors"
)

func newValidator(t *testing.T) *SchemaValidator {
	t.Helper()
	v, err := NewSchemaValidator()
	require.NoError(t, err)
	return v
}

func TestSchemaValidator_Valid(t *testing.T) {
	docs := []string{
		`{"name": "maya", "version": "2025.1"}`,
		`{"name": "python", "version": "3", "author": "vfx-platform"}`,
		`{"name": "python", "version": "3.11.2", "author": ["a", "b"], "uuid": "949dbed5cb0247e4b94445f6ef3a0539"}`,
		`{
			"name": "redshift",
			"version": "3.6",
			"authors": ["Maxon"],
			"description": "GPU renderer",
			"requires": ["~maya-2024+"],
			"variants": [["maya-2024"], ["maya-2025"], ["!maya"]],
			"build_command": "python {root}/build.py {install}",
			"commands": [
				{"op": "prepend", "var": "PATH", "value": "{root}/bin"},
				{"op": "set", "var": "RS_PLATFORM", "value": "linux", "when": "platform == \"linux\""},
				{"op": "unset", "var": "RS_DEBUG"}
			]
		}`,
	}

	v := newValidator(t)
	for _, doc := range docs {
		assert.NoError(t, v.Validate([]byte(doc)), doc)
	}
}

func TestSchemaValidator_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{"missing version", `{"name": "maya"}`, "(root)"},
		{"numeric version", `{"name": "maya", "version": 2025}`, "version"},
		{"version with letters", `{"name": "maya", "version": "2025.1a"}`, "version"},
		{"name with dash", `{"name": "my-tool", "version": "1"}`, "name"},
		{"unknown key", `{"name": "maya", "version": "1", "tools": []}`, "(root)"},
		{"empty variants", `{"name": "maya", "version": "1", "variants": []}`, "variants"},
		{"empty variant", `{"name": "maya", "version": "1", "variants": [["python"], []]}`, "variants[1]"},
		{"unknown op", `{"name": "maya", "version": "1", "commands": [{"op": "remove", "var": "PATH"}]}`, "commands[0].op"},
		{"bad var", `{"name": "maya", "version": "1", "commands": [{"op": "set", "var": "1PATH", "value": "x"}]}`, "commands[0].var"},
		{"empty requirement", `{"name": "maya", "version": "1", "requires": [""]}`, "requires[0]"},
	}

	v := newValidator(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate([]byte(tt.doc))

			var verr *apperrors.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.NotEmpty(t, verr.Details)
		})
	}
}

func TestSchemaValidator_NotJSON(t *testing.T) {
	err := newValidator(t).Validate([]byte(`name: maya`))

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "document", verr.Field)
}

func TestSchemaValidator_Concurrent(t *testing.T) {
	v := newValidator(t)
	done := make(chan error, 16)
	for i := 0; i < 16; i++ {
		go func() {
			done <- v.Validate([]byte(`{"name": "maya", "version": "2025"}`))
		}()
	}
	for i := 0; i < 16; i++ {
		assert.NoError(t, <-done)
	}
}

func TestSchema_IsValidJSON(t *testing.T) {
	var m map[string]any
	require.NoError(t, json.Unmarshal(Schema(), &m))
	assert.Equal(t, "object", m["type"])
}

func TestFieldPath(t *testing.T) {
	assert.Equal(t, "(root)", fieldPath(""))
	assert.Equal(t, "name", fieldPath("/name"))
	assert.Equal(t, "commands[0].op", fieldPath("/commands/0/op"))
	assert.Equal(t, "variants[1][0]", fieldPath("/variants/1/0"))
	assert.Equal(t, "a/b", fieldPath("/a~1b"))
}
