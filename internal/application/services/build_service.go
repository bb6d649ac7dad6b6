package services

import (
	"context"

	"github.com/reglet-dev/pkgreg/internal/application/dto"
	apperrors "github.com/reglet-dev/pkgreg/internal/application/errors"
	"github.com/reglet-dev/pkgreg/internal/domain/entities"
	"github.com/reglet-dev/pkgreg/internal/domain/services"
	"github.com/reglet-dev/pkgreg/internal/domain/values"
)

// BuildService renders package build commands.
type BuildService struct {
	registry *entities.Registry
	renderer *services.CommandRenderer
}

// NewBuildService creates a build service.
func NewBuildService(registry *entities.Registry, renderer *services.CommandRenderer) *BuildService {
	if renderer == nil {
		renderer = services.NewCommandRenderer()
	}
	return &BuildService{registry: registry, renderer: renderer}
}

// RenderBuildCommand finds the requested package and substitutes its build command.
func (s *BuildService) RenderBuildCommand(_ context.Context, req dto.BuildCommandRequest) (string, error) {
	r, err := values.ParseRequirement(req.Request)
	if err != nil {
		return "", apperrors.NewValidationError("request", err.Error())
	}
	if r.Kind() != values.RequirementStrong {
		return "", apperrors.NewValidationError("request", "weak and conflict requirements cannot select a package")
	}

	pkg, err := s.registry.FindInRange(r.Name().String(), r.Range())
	if err != nil {
		return "", err
	}

	return s.renderer.Render(pkg, services.BuildContext{
		Values: req.Values,
		Strict: req.Strict,
	})
}
