package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	apperrors "github.com/reglet-dev/pkgreg/internal/application/errors"
	"github.com/reglet-dev/pkgreg/internal/application/ports"
	"github.com/reglet-dev/pkgreg/internal/domain/entities"
	"github.com/reglet-dev/pkgreg/internal/domain/services"
)

// RegistryService orchestrates loading descriptor documents into a registry.
type RegistryService struct {
	validator  ports.DescriptorValidator
	conditions *services.ConditionEvaluator
	policy     services.IdentityPolicy
	logger     *slog.Logger
}

// NewRegistryService creates a registry service.
// A nil validator skips schema validation; a nil logger uses slog.Default().
func NewRegistryService(
	validator ports.DescriptorValidator,
	conditions *services.ConditionEvaluator,
	policy services.IdentityPolicy,
	logger *slog.Logger,
) *RegistryService {
	if conditions == nil {
		conditions = services.NewConditionEvaluator()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RegistryService{
		validator:  validator,
		conditions: conditions,
		policy:     policy,
		logger:     logger,
	}
}

// Load reads every source and builds the registry.
// The first malformed document, duplicate, or (under the strict policy)
// identity mismatch aborts the load and no registry is returned.
func (s *RegistryService) Load(ctx context.Context, sources ...ports.DescriptorSource) (*entities.Registry, error) {
	var pkgs []*entities.Package

	for _, src := range sources {
		docs, err := src.Read(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading descriptors: %w", err)
		}
		for _, raw := range docs {
			pkg, err := s.Build(raw)
			if err != nil {
				return nil, err
			}
			pkgs = append(pkgs, pkg)
		}
	}

	reg, err := entities.NewRegistry(pkgs)
	if err != nil {
		return nil, err
	}

	if err := s.checkIdentity(reg); err != nil {
		return nil, err
	}

	s.logger.Debug("registry loaded", "packages", reg.Len(), "names", len(reg.Names()))
	return reg, nil
}

// Build validates a single raw document and turns it into a package.
// All failures are *entities.MalformedDescriptorError.
func (s *RegistryService) Build(raw ports.RawDescriptor) (*entities.Package, error) {
	if raw.Err != nil {
		var malformed *entities.MalformedDescriptorError
		if errors.As(raw.Err, &malformed) {
			return nil, malformed
		}
		return nil, &entities.MalformedDescriptorError{Source: raw.Source, Field: "document", Reason: "unreadable", Cause: raw.Err}
	}

	if s.validator != nil {
		if err := s.validator.Validate(raw.JSON); err != nil {
			field := "document"
			var verr *apperrors.ValidationError
			if errors.As(err, &verr) && verr.Field != "" {
				field = verr.Field
			}
			return nil, &entities.MalformedDescriptorError{Source: raw.Source, Field: field, Reason: "schema violation", Cause: err}
		}
	}

	var doc entities.Descriptor
	if err := json.Unmarshal(raw.JSON, &doc); err != nil {
		return nil, &entities.MalformedDescriptorError{Source: raw.Source, Field: "document", Reason: "cannot decode", Cause: err}
	}

	return entities.NewPackage(doc, entities.PackageOptions{
		Root:           raw.Root,
		Source:         raw.Source,
		CheckCondition: s.conditions.Check,
	})
}

func (s *RegistryService) checkIdentity(reg *entities.Registry) error {
	if s.policy == services.IdentityIgnore {
		return nil
	}
	for _, mismatch := range services.CheckIdentity(reg) {
		if s.policy == services.IdentityStrict {
			return mismatch
		}
		s.logger.Warn("package uuid differs between versions",
			"package", mismatch.Name,
			"version", mismatch.Version,
			"uuid", mismatch.Actual,
			"expected", mismatch.Expected)
	}
	return nil
}
