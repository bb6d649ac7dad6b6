package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/reglet-dev/pkgreg/internal/application/dto"
)

// TableFormatter formats results as human-readable tables.
type TableFormatter struct {
	writer      io.Writer
	renderer    *lipgloss.Renderer
	EnableColor bool
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(w io.Writer, color bool) *TableFormatter {
	return &TableFormatter{
		writer:      w,
		renderer:    lipgloss.NewRenderer(w),
		EnableColor: color,
	}
}

// style returns a foreground style, or a plain one when color is disabled.
func (f *TableFormatter) style(color string) lipgloss.Style {
	s := f.renderer.NewStyle()
	if f.EnableColor && color != "" {
		s = s.Foreground(lipgloss.Color(color))
	}
	return s
}

func (f *TableFormatter) newTable(headers ...string) *table.Table {
	header := f.style("").Bold(f.EnableColor).PaddingRight(2)
	cell := f.style("").PaddingRight(2)
	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
}

// FormatPackages writes one row per package version.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) FormatPackages(packages []dto.PackageInfo) error {
	if len(packages) == 0 {
		fmt.Fprintln(f.writer, "No packages found.")
		return nil
	}

	t := f.newTable("NAME", "VERSION", "VARIANTS", "REQUIRES", "ROOT")
	for _, p := range packages {
		variants := "-"
		if len(p.Variants) > 0 {
			variants = strconv.Itoa(len(p.Variants))
		}
		t.Row(p.Name, p.Version, variants, dashIfEmpty(strings.Join(p.Requires, " ")), dashIfEmpty(p.Root))
	}
	fmt.Fprintln(f.writer, t.Render())
	return nil
}

// FormatEnvironment writes the selected packages and the changed variables.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) FormatEnvironment(result *dto.EnvironmentResult) error {
	bold := f.style("").Bold(f.EnableColor)

	fmt.Fprintln(f.writer, bold.Render("Packages:"))
	t := f.newTable("NAME", "VERSION", "REQUESTED", "VARIANT")
	for _, s := range result.Selections {
		variant := "-"
		if len(s.VariantRequires) > 0 {
			variant = fmt.Sprintf("%d (%s)", s.Variant, strings.Join(s.VariantRequires, " "))
		}
		t.Row(s.Name, s.Version, s.Requested, variant)
	}
	fmt.Fprintln(f.writer, t.Render())
	fmt.Fprintln(f.writer)

	fmt.Fprintln(f.writer, bold.Render("Environment:"))
	if len(result.Variables) == 0 {
		fmt.Fprintln(f.writer, "  (unchanged)")
		return nil
	}

	name := f.style("6")
	removed := f.style("1")
	for _, v := range result.Variables {
		if v.Unset {
			fmt.Fprintf(f.writer, "  %s %s\n", name.Render(v.Name), removed.Render("(unset)"))
			continue
		}
		fmt.Fprintf(f.writer, "  %s=%s\n", name.Render(v.Name), v.Value)
	}
	return nil
}

// FormatLint writes one line per finding and a summary.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) FormatLint(report *dto.LintReport) error {
	errStyle := f.style("1")
	warnStyle := f.style("3")
	okStyle := f.style("2")
	gray := f.style("8")

	for _, finding := range report.Findings {
		level := warnStyle.Render("warning")
		if finding.Level == dto.LevelError {
			level = errStyle.Render("error")
		}
		location := finding.Source
		if finding.Line > 0 {
			location = fmt.Sprintf("%s:%d", finding.Source, finding.Line)
		}
		fmt.Fprintf(f.writer, "%s %s %s %s\n", level, location, finding.Message, gray.Render("["+finding.RuleID+"]"))
	}

	if len(report.Findings) > 0 {
		fmt.Fprintln(f.writer)
	}

	summary := fmt.Sprintf("%d documents, %d packages, %d errors, %d warnings",
		report.Documents, report.Packages, report.Count(dto.LevelError), report.Count(dto.LevelWarning))
	switch {
	case report.HasErrors():
		fmt.Fprintln(f.writer, errStyle.Render(summary))
	case len(report.Findings) > 0:
		fmt.Fprintln(f.writer, warnStyle.Render(summary))
	default:
		fmt.Fprintln(f.writer, okStyle.Render(summary))
	}
	return nil
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
