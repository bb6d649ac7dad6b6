// Package templates provides embedded templates for package scaffolding.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/goccy/go-yaml"
)

//go:embed package/*.tmpl
var packageTemplates embed.FS

// DescriptorData contains the data used to render a package descriptor.
type DescriptorData struct {
	// Name is the package name (e.g., "maya")
	Name string
	// Version is the dotted version (e.g., "2025.1")
	Version string
	// UUID identifies the package across versions
	UUID        string
	Description string
	Authors     []string
	Requires    []string
}

// EnvName is the package name as an environment variable prefix ("MAYA").
func (d DescriptorData) EnvName() string {
	return strings.ToUpper(d.Name)
}

var funcs = template.FuncMap{
	"quote": quote,
}

// quote renders s as a YAML scalar, quoting only when needed.
// Numeric-looking strings stay quoted so "3.10" is not read as a float.
func quote(s string) (string, error) {
	out, err := yaml.Marshal(s)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(string(out), "\n"), nil
}

// PackageTemplates returns the parsed descriptor templates.
func PackageTemplates() (*template.Template, error) {
	tmpl := template.New("").Funcs(funcs)

	err := fs.WalkDir(packageTemplates, "package", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".tmpl") {
			return nil
		}

		content, err := packageTemplates.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading template %s: %w", path, err)
		}

		// Use filename without .tmpl as template name
		name := strings.TrimPrefix(path, "package/")
		name = strings.TrimSuffix(name, ".tmpl")

		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Errorf("parsing template %s: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	return tmpl, nil
}

// TemplateFiles returns the files generated for a new package version.
func TemplateFiles() []string {
	return []string{"package.yaml"}
}

// Render executes the named template with data.
func Render(name string, data DescriptorData) ([]byte, error) {
	tmpl, err := PackageTemplates()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
