// Package ports defines interfaces for infrastructure dependencies.
// These are the "ports" in hexagonal architecture - abstractions that
// the application layer depends on but doesn't implement.
package ports

import (
	"context"
	"io"

	"github.com/reglet-dev/pkgreg/internal/application/dto"
)

// RawDescriptor is one descriptor document as read from a source, before validation.
type RawDescriptor struct {
	// Err is set when the document could not be read or parsed.
	Err error
	// Source names the origin (file path, or "<stdin>#2" for the second document of a stream).
	Source string
	// Root is the package directory, empty when the document did not come from disk.
	Root string
	// JSON is the document re-encoded as JSON.
	JSON []byte
	// Line is the first line of the document within Source (1-based, 0 when unknown).
	Line int
}

// DescriptorSource yields descriptor documents.
type DescriptorSource interface {
	// Read returns every document in a deterministic order.
	// Per-document parse failures are reported in RawDescriptor.Err;
	// the returned error is for failures of the source as a whole.
	Read(ctx context.Context) ([]RawDescriptor, error)
}

// DescriptorValidator checks a JSON document against the descriptor schema.
type DescriptorValidator interface {
	Validate(document []byte) error
}

// SecretFinding is one suspected secret in a piece of text.
type SecretFinding struct {
	RuleID      string
	Description string
}

// SecretScanner detects values that look like credentials.
type SecretScanner interface {
	Scan(text string) []SecretFinding
}

// FormatterOptions configures output formatters.
type FormatterOptions struct {
	// Indent pretty-prints JSON output.
	Indent bool
	// Shell selects the dialect for environment scripts.
	Shell string
	// Color enables ANSI colors in table output.
	Color bool
}

// OutputFormatter renders application results.
// Each method returns an error when the format does not support that result.
type OutputFormatter interface {
	FormatPackages(packages []dto.PackageInfo) error
	FormatEnvironment(result *dto.EnvironmentResult) error
	FormatLint(report *dto.LintReport) error
}

// OutputFormatterFactory creates formatters by name.
type OutputFormatterFactory interface {
	Create(format string, writer io.Writer, options FormatterOptions) (OutputFormatter, error)
	SupportedFormats() []string
}
