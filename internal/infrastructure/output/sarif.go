package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"
	"github.com/reglet-dev/pkgreg/internal/application/dto"
	"github.com/reglet-dev/pkgreg/internal/application/services"
	"github.com/reglet-dev/pkgreg/internal/version"
)

// SARIFFormatter formats lint reports as SARIF 2.1.0 JSON.
// Lint rules map to SARIF rules and findings to results with file locations.
//
// Usage:
//
//	formatter := output.NewSARIFFormatter(os.Stdout)
//	if err := formatter.FormatLint(report); err != nil {
//	    log.Fatal(err)
//	}
type SARIFFormatter struct {
	writer io.Writer
	cwd    string
}

// NewSARIFFormatter creates a new SARIF formatter.
// Finding sources under the working directory are reported relative to it.
func NewSARIFFormatter(writer io.Writer) *SARIFFormatter {
	cwd, _ := os.Getwd() // Best effort, ignore error
	return &SARIFFormatter{
		writer: writer,
		cwd:    cwd,
	}
}

// FormatPackages is not supported.
func (f *SARIFFormatter) FormatPackages([]dto.PackageInfo) error {
	return unsupported("sarif", "package lists")
}

// FormatEnvironment is not supported.
func (f *SARIFFormatter) FormatEnvironment(*dto.EnvironmentResult) error {
	return unsupported("sarif", "environments")
}

// FormatLint writes the lint report as SARIF 2.1.0 JSON.
func (f *SARIFFormatter) FormatLint(report *dto.LintReport) error {
	sarifReport := sarif.NewReport()

	run := sarif.NewRunWithInformationURI("pkgreg", "https://reglet.dev")
	toolVersion := version.Get().Version
	run.Tool.Driver.Version = &toolVersion

	for _, rule := range services.LintRules() {
		f.addRule(run, rule)
	}
	for _, finding := range report.Findings {
		run.AddResult(f.mapFinding(finding))
	}

	invocation := sarif.NewInvocation()
	invocation.ExecutionSuccessful = ptrBool(!report.HasErrors())
	if f.cwd != "" {
		invocation.WorkingDirectory = sarif.NewArtifactLocation().WithURI("file://" + filepath.ToSlash(f.cwd))
	}
	run.AddInvocation(invocation)

	props := sarif.NewPropertyBag()
	props.Add("documents", report.Documents)
	props.Add("packages", report.Packages)
	run.WithProperties(props)

	sarifReport.AddRun(run)

	if err := sarifReport.Write(f.writer); err != nil {
		return fmt.Errorf("failed to write SARIF output: %w", err)
	}

	_, err := f.writer.Write([]byte("\n"))
	return err
}

func (f *SARIFFormatter) addRule(run *sarif.Run, rule services.LintRule) {
	description := rule.Description
	sr := sarif.NewReportingDescriptor().
		WithID(rule.ID).
		WithName(rule.ID).
		WithShortDescription(&sarif.MultiformatMessageString{Text: &description})

	sr.WithDefaultConfiguration(&sarif.ReportingConfiguration{
		Level: mapLevel(rule.Level),
	})

	run.Tool.Driver.AddRule(sr)
}

func (f *SARIFFormatter) mapFinding(finding dto.Finding) *sarif.Result {
	result := sarif.NewRuleResult(finding.RuleID)
	result.Level = mapLevel(finding.Level)
	result.Message = sarif.NewTextMessage(finding.Message)

	if finding.Source != "" {
		physical := sarif.NewPhysicalLocation().
			WithArtifactLocation(sarif.NewArtifactLocation().WithURI(f.relativeURI(finding.Source)))
		if finding.Line > 0 {
			physical.WithRegion(sarif.NewRegion().WithStartLine(finding.Line))
		}
		result.Locations = []*sarif.Location{sarif.NewLocation().WithPhysicalLocation(physical)}
	}

	if finding.Package != "" {
		props := sarif.NewPropertyBag()
		props.Add("package", finding.Package)
		result.WithProperties(props)
	}
	return result
}

// relativeURI strips the working directory and any #N document suffix.
func (f *SARIFFormatter) relativeURI(source string) string {
	if i := strings.LastIndex(source, "#"); i > 0 {
		source = source[:i]
	}
	if f.cwd != "" && filepath.IsAbs(source) {
		if rel, err := filepath.Rel(f.cwd, source); err == nil && !strings.HasPrefix(rel, "..") {
			source = rel
		}
	}
	return filepath.ToSlash(source)
}

func mapLevel(level dto.FindingLevel) string {
	if level == dto.LevelError {
		return "error"
	}
	return "warning"
}

func ptrBool(b bool) *bool {
	return &b
}
