// Package output provides formatters for package listings, activated
// environments and lint reports.
package output

import (
	"errors"
	"fmt"
	"io"

	"github.com/reglet-dev/pkgreg/internal/application/ports"
)

// ErrUnsupported is returned when a format cannot render a kind of result.
var ErrUnsupported = errors.New("not supported by this output format")

func unsupported(format, what string) error {
	return fmt.Errorf("%s output of %s: %w", format, what, ErrUnsupported)
}

// FormatterFactory implements ports.OutputFormatterFactory.
type FormatterFactory struct{}

// NewFormatterFactory creates a new formatter factory.
func NewFormatterFactory() *FormatterFactory {
	return &FormatterFactory{}
}

// Create returns a formatter for the given format name.
func (f *FormatterFactory) Create(
	format string,
	writer io.Writer,
	options ports.FormatterOptions,
) (ports.OutputFormatter, error) {
	switch format {
	case "table":
		return NewTableFormatter(writer, options.Color), nil
	case "json":
		return NewJSONFormatter(writer, options.Indent), nil
	case "yaml":
		return NewYAMLFormatter(writer), nil
	case "shell":
		shell, err := NewShellFormatter(writer, options.Shell)
		if err != nil {
			return nil, err
		}
		return shell, nil
	case "junit":
		return NewJUnitFormatter(writer), nil
	case "sarif":
		return NewSARIFFormatter(writer), nil
	default:
		return nil, fmt.Errorf(
			"unknown format: %s (supported: %v)",
			format, f.SupportedFormats(),
		)
	}
}

// SupportedFormats returns list of available format names.
func (f *FormatterFactory) SupportedFormats() []string {
	return []string{"table", "json", "yaml", "shell", "junit", "sarif"}
}
