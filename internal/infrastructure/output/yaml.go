package output

import (
	"io"

	"github.com/goccy/go-yaml"
	"github.com/reglet-dev/pkgreg/internal/application/dto"
)

// YAMLFormatter formats results as YAML.
type YAMLFormatter struct {
	writer io.Writer
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	return &YAMLFormatter{writer: w}
}

// FormatPackages writes the package list as a YAML sequence.
func (f *YAMLFormatter) FormatPackages(packages []dto.PackageInfo) error {
	if packages == nil {
		packages = []dto.PackageInfo{}
	}
	return f.encode(packages)
}

// FormatEnvironment writes the activated environment.
func (f *YAMLFormatter) FormatEnvironment(result *dto.EnvironmentResult) error {
	return f.encode(result)
}

// FormatLint writes the lint report.
func (f *YAMLFormatter) FormatLint(report *dto.LintReport) error {
	return f.encode(report)
}

func (f *YAMLFormatter) encode(v any) error {
	encoder := yaml.NewEncoder(f.writer, yaml.Indent(2))

	if err := encoder.Encode(v); err != nil {
		return err
	}

	return encoder.Close()
}
