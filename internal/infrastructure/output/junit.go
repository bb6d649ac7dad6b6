package output

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/reglet-dev/pkgreg/internal/application/dto"
)

// JUnitFormatter formats lint reports as JUnit XML so CI systems can show
// descriptor problems next to test results. Each source file is a test case.
type JUnitFormatter struct {
	writer io.Writer
}

// NewJUnitFormatter creates a new JUnit formatter.
func NewJUnitFormatter(w io.Writer) *JUnitFormatter {
	return &JUnitFormatter{
		writer: w,
	}
}

// JUnitTestSuites JUnit XML structures
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

type JUnitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	TestCases []JUnitTestCase `xml:"testcase"`
}

type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
}

type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Content string `xml:",chardata"`
}

// FormatPackages is not supported.
func (f *JUnitFormatter) FormatPackages([]dto.PackageInfo) error {
	return unsupported("junit", "package lists")
}

// FormatEnvironment is not supported.
func (f *JUnitFormatter) FormatEnvironment(*dto.EnvironmentResult) error {
	return unsupported("junit", "environments")
}

// FormatLint writes the lint report as JUnit XML.
// Warnings are listed in the failure body but only errors fail a case.
func (f *JUnitFormatter) FormatLint(report *dto.LintReport) error {
	suite := JUnitTestSuite{Name: "descriptors"}

	var order []string
	bySource := map[string][]dto.Finding{}
	for _, finding := range report.Findings {
		if _, ok := bySource[finding.Source]; !ok {
			order = append(order, finding.Source)
		}
		bySource[finding.Source] = append(bySource[finding.Source], finding)
	}

	for _, source := range order {
		findings := bySource[source]
		c := JUnitTestCase{
			Name:      source,
			ClassName: "pkgreg.lint",
		}

		var errs []dto.Finding
		for _, finding := range findings {
			if finding.Level == dto.LevelError {
				errs = append(errs, finding)
			}
		}
		if len(errs) > 0 {
			c.Failure = &JUnitFailure{
				Message: errs[0].Message,
				Type:    errs[0].RuleID,
				Content: formatFindings(findings),
			}
			suite.Failures++
		}
		suite.TestCases = append(suite.TestCases, c)
	}

	// A clean run still reports one passing case.
	if len(suite.TestCases) == 0 {
		suite.TestCases = append(suite.TestCases, JUnitTestCase{
			Name:      fmt.Sprintf("%d documents", report.Documents),
			ClassName: "pkgreg.lint",
		})
	}
	suite.Tests = len(suite.TestCases)

	suites := JUnitTestSuites{
		Name:       "pkgreg lint",
		Tests:      suite.Tests,
		Failures:   suite.Failures,
		TestSuites: []JUnitTestSuite{suite},
	}

	_, err := f.writer.Write([]byte(xml.Header))
	if err != nil {
		return err
	}

	encoder := xml.NewEncoder(f.writer)
	encoder.Indent("", "  ")
	if err := encoder.Encode(suites); err != nil {
		return err
	}

	_, err = f.writer.Write([]byte("\n"))
	return err
}

func formatFindings(findings []dto.Finding) string {
	var b strings.Builder
	for _, finding := range findings {
		fmt.Fprintf(&b, "%s [%s] line %d: %s\n", finding.Level, finding.RuleID, finding.Line, finding.Message)
	}
	return b.String()
}
