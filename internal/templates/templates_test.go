package templates

import (
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackageTemplates_Load(t *testing.T) {
	t.Parallel()

	tmpl, err := PackageTemplates()
	require.NoError(t, err)

	for _, name := range TemplateFiles() {
		assert.NotNil(t, tmpl.Lookup(name), "template %s should be loaded", name)
	}
}

func TestRender_PackageYAML(t *testing.T) {
	t.Parallel()

	out, err := Render("package.yaml", DescriptorData{
		Name:        "python",
		Version:     "3.10",
		UUID:        "0b1a2f0c-5a55-4a4e-9bd4-0d7b8b7c2f1e",
		Description: "CPython: the reference interpreter",
		Authors:     []string{"Guido"},
		Requires:    []string{"openssl-3"},
	})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(out, &doc))

	assert.Equal(t, "python", doc["name"])
	assert.Equal(t, "3.10", doc["version"], "version stays a string")
	assert.Equal(t, "0b1a2f0c-5a55-4a4e-9bd4-0d7b8b7c2f1e", doc["uuid"])
	assert.Equal(t, "CPython: the reference interpreter", doc["description"])
	assert.Equal(t, []any{"openssl-3"}, doc["requires"])
	assert.Contains(t, string(out), "var: PYTHON_LOCATION")

	commands, ok := doc["commands"].([]any)
	require.True(t, ok)
	assert.Len(t, commands, 2)
}

func TestRender_Minimal(t *testing.T) {
	t.Parallel()

	out, err := Render("package.yaml", DescriptorData{Name: "tool", Version: "1"})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(out, &doc))
	assert.Equal(t, "1", doc["version"])
	assert.NotContains(t, doc, "uuid")
	assert.Equal(t, []any{}, doc["requires"])
}

func TestRender_UnknownTemplate(t *testing.T) {
	t.Parallel()

	_, err := Render("missing.yaml", DescriptorData{Name: "tool", Version: "1"})
	assert.Error(t, err)
}
