package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/reglet-dev/pkgreg/internal/application/dto"
)

// Shell dialects understood by ShellFormatter.
const (
	ShellBash       = "bash"
	ShellZsh        = "zsh"
	ShellFish       = "fish"
	ShellPowerShell = "powershell"
)

// Shells lists the supported dialects.
func Shells() []string {
	return []string{ShellBash, ShellZsh, ShellFish, ShellPowerShell}
}

// ShellFormatter writes an activated environment as a script that can be
// evaluated by a shell, e.g. eval "$(pkgreg env maya --format shell)".
type ShellFormatter struct {
	writer  io.Writer
	dialect string
}

// NewShellFormatter creates a shell formatter. An empty dialect selects bash.
func NewShellFormatter(w io.Writer, dialect string) (*ShellFormatter, error) {
	if dialect == "" {
		dialect = ShellBash
	}
	switch dialect {
	case ShellBash, ShellZsh, ShellFish, ShellPowerShell:
	default:
		return nil, fmt.Errorf("unknown shell: %s (supported: %v)", dialect, Shells())
	}
	return &ShellFormatter{writer: w, dialect: dialect}, nil
}

// FormatPackages is not supported.
func (f *ShellFormatter) FormatPackages([]dto.PackageInfo) error {
	return unsupported("shell", "package lists")
}

// FormatLint is not supported.
func (f *ShellFormatter) FormatLint(*dto.LintReport) error {
	return unsupported("shell", "lint reports")
}

// FormatEnvironment writes one statement per changed variable.
func (f *ShellFormatter) FormatEnvironment(result *dto.EnvironmentResult) error {
	var b strings.Builder
	for _, sel := range result.Selections {
		fmt.Fprintf(&b, "# %s-%s\n", sel.Name, sel.Version)
	}
	for _, v := range result.Variables {
		b.WriteString(f.statement(v))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(f.writer, b.String())
	return err
}

func (f *ShellFormatter) statement(v dto.EnvVar) string {
	switch f.dialect {
	case ShellFish:
		if v.Unset {
			return "set -e " + v.Name
		}
		return fmt.Sprintf("set -gx %s %s", v.Name, fishQuote(v.Value))
	case ShellPowerShell:
		if v.Unset {
			return fmt.Sprintf("Remove-Item Env:%s -ErrorAction SilentlyContinue", v.Name)
		}
		return fmt.Sprintf("$Env:%s = %s", v.Name, powershellQuote(v.Value))
	default:
		if v.Unset {
			return "unset " + v.Name
		}
		return fmt.Sprintf("export %s=%s", v.Name, posixQuote(v.Value))
	}
}

// posixQuote single-quotes s; embedded quotes become '\''.
func posixQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// fishQuote single-quotes s; fish only treats \\ and \' specially inside quotes.
func fishQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}

// powershellQuote single-quotes s; embedded quotes are doubled.
func powershellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
