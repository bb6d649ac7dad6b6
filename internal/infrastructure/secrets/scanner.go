// Package secrets detects credentials embedded in package descriptors.
package secrets

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"github.com/zricethezav/gitleaks/v8/config"
	"github.com/zricethezav/gitleaks/v8/detect"

	"github.com/reglet-dev/pkgreg/internal/application/ports"
)

// Ensure interface compliance
var _ ports.SecretScanner = (*Scanner)(nil)

// Scanner implements ports.SecretScanner with the gitleaks rule set plus a
// few high-confidence patterns that still apply when gitleaks is disabled.
// All fields are read-only after construction, making it safe for concurrent use.
type Scanner struct {
	// If nil, only the fallback patterns run
	gitleaksDetector *detect.Detector
	allowed          map[string]bool
	patterns         []namedPattern
}

type namedPattern struct {
	re          *regexp.Regexp
	ruleID      string
	description string
}

// Config holds the configuration for the Scanner.
type Config struct {
	// Rule IDs whose findings are dropped (e.g. "generic-api-key")
	AllowRules []string
	// If true, skip the gitleaks rule set and use only the built-in patterns
	DisableGitleaks bool
}

// defaultPatterns are checked in addition to gitleaks; gitleaks allowlists
// documentation keys such as AKIA...EXAMPLE, which should still be flagged
// in a descriptor.
var defaultPatterns = []struct {
	ruleID, description, pattern string
}{
	{"aws-access-key-id", "AWS Access Key ID", `\b((?:AKIA|ABIA|ACCA|ASIA)[0-9A-Z]{16})\b`},
	{"private-key", "Private key header", `-----BEGIN [A-Z ]+ PRIVATE KEY-----`},
	{"github-token", "GitHub token", `gh[pousr]_[A-Za-z0-9_]{36,255}`},
	{"slack-token", "Slack token", `xox[baprs]-[0-9a-zA-Z]{10,48}`},
}

// New creates a Scanner.
func New(cfg Config) (*Scanner, error) {
	s := &Scanner{allowed: make(map[string]bool, len(cfg.AllowRules))}
	for _, id := range cfg.AllowRules {
		s.allowed[id] = true
	}

	if !cfg.DisableGitleaks {
		detector, err := newGitleaksDetector()
		if err != nil {
			return nil, err
		}
		s.gitleaksDetector = detector
	}

	for _, p := range defaultPatterns {
		re, err := regexp.Compile(p.pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to compile default pattern %s: %w", p.ruleID, err)
		}
		s.patterns = append(s.patterns, namedPattern{re: re, ruleID: p.ruleID, description: p.description})
	}

	return s, nil
}

// newGitleaksDetector creates a new gitleaks detector with default configuration.
func newGitleaksDetector() (*detect.Detector, error) {
	v := viper.New()
	v.SetConfigType("toml")
	if err := v.ReadConfig(strings.NewReader(config.DefaultConfig)); err != nil {
		return nil, fmt.Errorf("failed to read gitleaks config: %w", err)
	}

	var vc config.ViperConfig
	if err := v.Unmarshal(&vc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gitleaks config: %w", err)
	}

	cfg, err := vc.Translate()
	if err != nil {
		return nil, fmt.Errorf("failed to translate gitleaks config: %w", err)
	}

	return detect.NewDetector(cfg), nil
}

// Scan returns one finding per rule that matches text, sorted by rule ID.
func (s *Scanner) Scan(text string) []ports.SecretFinding {
	if text == "" {
		return nil
	}

	found := map[string]ports.SecretFinding{}
	add := func(id, description string) {
		if s.allowed[id] {
			return
		}
		if _, ok := found[id]; !ok {
			found[id] = ports.SecretFinding{RuleID: id, Description: description}
		}
	}

	if s.gitleaksDetector != nil {
		for _, finding := range s.gitleaksDetector.Detect(detect.Fragment{Raw: text}) {
			add(finding.RuleID, finding.Description)
		}
	}
	for _, p := range s.patterns {
		if p.re.MatchString(text) {
			add(p.ruleID, p.description)
		}
	}

	out := make([]ports.SecretFinding, 0, len(found))
	for _, f := range found {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RuleID < out[j].RuleID })
	return out
}

// Redact replaces every matched secret in text with [REDACTED].
// It is used before descriptor values are written to logs.
func (s *Scanner) Redact(text string) string {
	if text == "" {
		return ""
	}

	result := text
	if s.gitleaksDetector != nil {
		for _, finding := range s.gitleaksDetector.Detect(detect.Fragment{Raw: text}) {
			if s.allowed[finding.RuleID] || finding.Secret == "" {
				continue
			}
			result = strings.ReplaceAll(result, finding.Secret, "[REDACTED]")
		}
	}
	for _, p := range s.patterns {
		if s.allowed[p.ruleID] {
			continue
		}
		result = p.re.ReplaceAllString(result, "[REDACTED]")
	}
	return result
}
