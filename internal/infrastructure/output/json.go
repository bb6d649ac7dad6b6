package output

import (
	"encoding/json"
	"io"

	"github.com/reglet-dev/pkgreg/internal/application/dto"
)

// JSONFormatter formats results as JSON.
type JSONFormatter struct {
	writer io.Writer
	indent bool
}

// NewJSONFormatter creates a new JSON formatter.
// If indent is true, the output will be pretty-printed with indentation.
func NewJSONFormatter(w io.Writer, indent bool) *JSONFormatter {
	return &JSONFormatter{
		writer: w,
		indent: indent,
	}
}

// FormatPackages writes the package list as a JSON array.
func (f *JSONFormatter) FormatPackages(packages []dto.PackageInfo) error {
	if packages == nil {
		packages = []dto.PackageInfo{}
	}
	return f.write(packages)
}

// FormatEnvironment writes the activated environment.
func (f *JSONFormatter) FormatEnvironment(result *dto.EnvironmentResult) error {
	return f.write(result)
}

// FormatLint writes the lint report.
func (f *JSONFormatter) FormatLint(report *dto.LintReport) error {
	return f.write(report)
}

func (f *JSONFormatter) write(v any) error {
	var data []byte
	var err error

	if f.indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return err
	}

	_, err = f.writer.Write(data)
	if err != nil {
		return err
	}

	// Add newline for better terminal output
	_, err = f.writer.Write([]byte("\n"))
	return err
}
