package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reglet-dev/pkgreg/internal/application/dto"
	apperrors "github.com/reglet-dev/pkgreg/internal/application/errors"
	"github.com/reglet-dev/pkgreg/internal/application/ports"
	"github.com/reglet-dev/pkgreg/internal/domain/entities"
	"github.com/reglet-dev/pkgreg/internal/domain/environment"
	"github.com/reglet-dev/pkgreg/internal/domain/services"
	"github.com/reglet-dev/pkgreg/internal/domain/values"
)

// EnvironmentService resolves a set of package requests and activates them
// into a fresh environment context.
type EnvironmentService struct {
	registry  *entities.Registry
	resolver  *services.VariantResolver
	activator *services.Activator
	locks     ports.LockfileRepository
	separator string
	logger    *slog.Logger
}

// NewEnvironmentService creates an environment service.
// locks may be nil when lockfiles are not used.
func NewEnvironmentService(
	registry *entities.Registry,
	resolver *services.VariantResolver,
	activator *services.Activator,
	locks ports.LockfileRepository,
	separator string,
	logger *slog.Logger,
) *EnvironmentService {
	if resolver == nil {
		resolver = services.NewVariantResolver()
	}
	if activator == nil {
		activator = services.NewActivator(nil, services.Platform{}, "")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EnvironmentService{
		registry:  registry,
		resolver:  resolver,
		activator: activator,
		locks:     locks,
		separator: separator,
		logger:    logger,
	}
}

// request is one parsed package request and the package it resolved to.
type request struct {
	raw string
	pkg *entities.Package
}

// Activate builds the environment for req.
//
// All requested packages are found first and form the chosen set; each
// package's variant is then resolved against that set, and packages are
// activated in request order so later requests win on prepend.
func (s *EnvironmentService) Activate(ctx context.Context, req dto.EnvironmentRequest) (*dto.EnvironmentResult, error) {
	requests := req.Requests
	var pinned *entities.Lockfile

	if req.FromLockfile != "" {
		if len(requests) > 0 {
			return nil, apperrors.NewValidationError("requests", "cannot combine package requests with a lockfile")
		}
		lock, err := s.loadLock(ctx, req.FromLockfile)
		if err != nil {
			return nil, err
		}
		pinned = lock
		for _, p := range lock.Packages {
			requests = append(requests, p.Name+"=="+p.Resolved)
		}
	}

	if len(requests) == 0 {
		return nil, apperrors.NewValidationError("requests", "at least one package is required")
	}

	parsed, err := s.find(requests)
	if err != nil {
		return nil, err
	}

	chosen := make(map[string]values.Version, len(parsed))
	for _, r := range parsed {
		chosen[r.pkg.Name().String()] = r.pkg.Version()
	}

	selections := make([]entities.VariantSelection, 0, len(parsed))
	for _, r := range parsed {
		sel, err := s.resolver.Resolve(r.pkg, chosen)
		if err != nil {
			return nil, err
		}
		selections = append(selections, sel)
	}

	if pinned != nil {
		s.checkDrift(pinned, selections)
	}

	env := environment.FromEnviron(req.BaseEnviron, s.separator)
	for _, sel := range selections {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.activator.Activate(sel, env); err != nil {
			return nil, fmt.Errorf("activating %s: %w", sel.Package, err)
		}
		s.logger.Debug("activated package", "package", sel.Package.String(), "variant", sel.Index)
	}

	result := &dto.EnvironmentResult{
		Context:   env,
		Separator: env.Separator(),
	}
	lock := entities.NewLockfile()

	for i, sel := range selections {
		pkg := sel.Package
		result.Selections = append(result.Selections, dto.Selection{
			Name:            pkg.Name().String(),
			Version:         pkg.Version().String(),
			Requested:       parsed[i].raw,
			Variant:         sel.Index,
			VariantRequires: sel.Strings(),
			Root:            pkg.Root(),
		})

		digest, err := pkg.Descriptor().Digest()
		if err != nil {
			return nil, err
		}
		if err := lock.AddPackage(entities.PackageLock{
			Name:      pkg.Name().String(),
			Requested: parsed[i].raw,
			Resolved:  pkg.Version().String(),
			Variant:   sel.Index,
			UUID:      pkg.ID().String(),
			Root:      pkg.Root(),
			Digest:    digest,
		}); err != nil {
			return nil, err
		}
	}
	result.Lockfile = lock

	for _, name := range env.Changed() {
		value, ok := env.Lookup(name)
		result.Variables = append(result.Variables, dto.EnvVar{Name: name, Value: value, Unset: !ok})
	}

	if req.LockfilePath != "" {
		if s.locks == nil {
			return nil, apperrors.NewConfigurationError("lockfile", "no lockfile repository configured", nil)
		}
		if err := s.locks.Save(ctx, lock, req.LockfilePath); err != nil {
			return nil, apperrors.NewLockfileError(req.LockfilePath, "cannot write", err)
		}
		s.logger.Info("wrote lockfile", "path", req.LockfilePath, "packages", lock.PackageCount())
	}

	return result, nil
}

// find parses each request and looks up the highest matching package.
func (s *EnvironmentService) find(requests []string) ([]request, error) {
	out := make([]request, 0, len(requests))
	seen := make(map[string]string, len(requests))

	for _, raw := range requests {
		req, err := values.ParseRequirement(raw)
		if err != nil {
			return nil, apperrors.NewValidationError("requests", err.Error())
		}
		if req.Kind() != values.RequirementStrong {
			return nil, apperrors.NewValidationError("requests",
				fmt.Sprintf("%q: weak and conflict requirements are only valid inside descriptors", raw))
		}
		name := req.Name().String()
		if prev, dup := seen[name]; dup {
			return nil, apperrors.NewValidationError("requests",
				fmt.Sprintf("%q and %q both request package %s", prev, raw, name))
		}
		seen[name] = raw

		pkg, err := s.registry.FindInRange(name, req.Range())
		if err != nil {
			return nil, err
		}
		out = append(out, request{raw: raw, pkg: pkg})
	}

	return out, nil
}

func (s *EnvironmentService) loadLock(ctx context.Context, path string) (*entities.Lockfile, error) {
	if s.locks == nil {
		return nil, apperrors.NewConfigurationError("lockfile", "no lockfile repository configured", nil)
	}
	lock, err := s.locks.Load(ctx, path)
	if err != nil {
		return nil, apperrors.NewLockfileError(path, "cannot read", err)
	}
	if lock == nil {
		return nil, apperrors.NewLockfileError(path, "does not exist", nil)
	}
	if err := lock.Validate(); err != nil {
		return nil, apperrors.NewLockfileError(path, "invalid", err)
	}
	return lock, nil
}

// checkDrift warns when a locked package's descriptor or variant changed since locking.
func (s *EnvironmentService) checkDrift(lock *entities.Lockfile, selections []entities.VariantSelection) {
	for _, sel := range selections {
		locked := lock.GetPackage(sel.Package.Name().String())
		if locked == nil {
			continue
		}
		if digest, err := sel.Package.Descriptor().Digest(); err == nil && digest != locked.Digest {
			s.logger.Warn("package descriptor changed since lockfile was written",
				"package", sel.Package.String(),
				"locked", locked.Digest,
				"current", digest)
		}
		if sel.Index != locked.Variant {
			s.logger.Warn("package resolved to a different variant than locked",
				"package", sel.Package.String(),
				"locked", locked.Variant,
				"current", sel.Index)
		}
	}
}
