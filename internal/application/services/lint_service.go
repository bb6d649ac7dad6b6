package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/reglet-dev/pkgreg/internal/application/dto"
	"github.com/reglet-dev/pkgreg/internal/application/ports"
	"github.com/reglet-dev/pkgreg/internal/domain/entities"
	"github.com/reglet-dev/pkgreg/internal/domain/services"
)

// Lint rule identifiers.
const (
	RuleMalformed          = "malformed-descriptor"
	RuleDuplicate          = "duplicate-descriptor"
	RuleIdentityMismatch   = "identity-mismatch"
	RuleUnknownPlaceholder = "unknown-placeholder"
	RuleSecretInDescriptor = "secret-in-descriptor"
)

// LintRule describes a rule for report formats that list them up front.
type LintRule struct {
	ID          string
	Description string
	Level       dto.FindingLevel
}

// LintRules returns every rule the linter can report.
func LintRules() []LintRule {
	return []LintRule{
		{RuleMalformed, "Descriptor is missing a field or fails validation", dto.LevelError},
		{RuleDuplicate, "Two descriptors share a name and version", dto.LevelError},
		{RuleIdentityMismatch, "Versions of one package carry different uuids", dto.LevelWarning},
		{RuleUnknownPlaceholder, "Build command uses a placeholder that is never substituted", dto.LevelError},
		{RuleSecretInDescriptor, "Environment value or build command looks like a credential", dto.LevelWarning},
	}
}

// LintService validates a package tree and reports every problem it finds
// instead of stopping at the first one.
type LintService struct {
	registry *RegistryService
	secrets  ports.SecretScanner
	policy   services.IdentityPolicy
	logger   *slog.Logger
}

// NewLintService creates a lint service. A nil scanner skips secret detection.
func NewLintService(
	registry *RegistryService,
	secrets ports.SecretScanner,
	policy services.IdentityPolicy,
	logger *slog.Logger,
) *LintService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LintService{
		registry: registry,
		secrets:  secrets,
		policy:   policy,
		logger:   logger,
	}
}

// Lint reads every source and checks each document.
// The returned error is reserved for sources that cannot be read at all.
func (s *LintService) Lint(ctx context.Context, sources ...ports.DescriptorSource) (*dto.LintReport, error) {
	report := &dto.LintReport{}
	reg, err := entities.NewRegistry(nil)
	if err != nil {
		return nil, err
	}

	for _, src := range sources {
		docs, err := src.Read(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading descriptors: %w", err)
		}

		for _, raw := range docs {
			report.Documents++

			pkg, err := s.registry.Build(raw)
			if err != nil {
				report.Add(dto.Finding{
					RuleID:  RuleMalformed,
					Level:   dto.LevelError,
					Source:  raw.Source,
					Line:    raw.Line,
					Message: err.Error(),
				})
				continue
			}

			next, err := reg.With(pkg)
			if err != nil {
				var dup *entities.DuplicateDescriptorError
				if !errors.As(err, &dup) {
					return nil, err
				}
				report.Add(dto.Finding{
					RuleID:  RuleDuplicate,
					Level:   dto.LevelError,
					Source:  raw.Source,
					Line:    raw.Line,
					Package: pkg.String(),
					Message: dup.Error(),
				})
				continue
			}
			reg = next

			s.lintPackage(report, pkg, raw)
		}
	}

	if s.policy != services.IdentityIgnore {
		level := dto.LevelWarning
		if s.policy == services.IdentityStrict {
			level = dto.LevelError
		}
		for _, mismatch := range services.CheckIdentity(reg) {
			pkg, _ := reg.Find(mismatch.Name, "=="+mismatch.Version)
			f := dto.Finding{
				RuleID:  RuleIdentityMismatch,
				Level:   level,
				Package: mismatch.Name + "-" + mismatch.Version,
				Message: mismatch.Error(),
			}
			if pkg != nil {
				f.Source = pkg.Source()
			}
			report.Add(f)
		}
	}

	report.Packages = reg.Len()
	s.logger.Debug("lint finished",
		"documents", report.Documents,
		"packages", report.Packages,
		"errors", report.Count(dto.LevelError),
		"warnings", report.Count(dto.LevelWarning))
	return report, nil
}

func (s *LintService) lintPackage(report *dto.LintReport, pkg *entities.Package, raw ports.RawDescriptor) {
	if unknown := services.UnknownPlaceholders(pkg); len(unknown) > 0 {
		report.Add(dto.Finding{
			RuleID:  RuleUnknownPlaceholder,
			Level:   dto.LevelError,
			Source:  raw.Source,
			Line:    raw.Line,
			Package: pkg.String(),
			Message: fmt.Sprintf("build_command uses unknown placeholder(s) {%s} (recognized: %s)",
				strings.Join(unknown, "}, {"), strings.Join(services.RecognizedKeys(), ", ")),
		})
	}

	if s.secrets == nil {
		return
	}

	check := func(field, text string) {
		for _, found := range s.secrets.Scan(text) {
			report.Add(dto.Finding{
				RuleID:  RuleSecretInDescriptor,
				Level:   dto.LevelWarning,
				Source:  raw.Source,
				Line:    raw.Line,
				Package: pkg.String(),
				Message: fmt.Sprintf("%s looks like a secret (%s)", field, found.RuleID),
			})
		}
	}

	check("build_command", pkg.BuildCommand().String())
	for i, op := range pkg.Hook() {
		if op.Value != "" {
			check(fmt.Sprintf("commands[%d].value", i), op.Var+"="+op.Value)
		}
	}
}
