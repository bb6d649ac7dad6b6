package services

import (
	"context"
	"testing"

	"github.com/reglet-dev/pkgreg/internal/application/dto"
	apperrors "github.com/reglet-dev/pkgreg/internal/application/errors"
	"github.com/reglet-dev/pkgreg/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBuildService(t *testing.T) *BuildService {
	t.Helper()
	reg, err := NewRegistryService(nil, nil, "", nil).Load(context.Background(), sourceOf(t,
		entities.Descriptor{Name: "blender", Version: "4.2.0", BuildCommand: "python3 {root}/../build.py {install}"},
		entities.Descriptor{Name: "blender", Version: "4.3.0", BuildCommand: "python3 {root}/../build.py {install}"},
		entities.Descriptor{Name: "ocio", Version: "2.3"},
	))
	require.NoError(t, err)
	return NewBuildService(reg, nil)
}

func TestBuildService_RenderBuildCommand(t *testing.T) {
	svc := newBuildService(t)
	ctx := context.Background()

	cmd, err := svc.RenderBuildCommand(ctx, dto.BuildCommandRequest{
		Request: "blender",
		Values:  map[string]string{"root": "/opt/blender/4.3.0"},
	})
	require.NoError(t, err)
	assert.Equal(t, "python3 /opt/blender/4.3.0/../build.py {install}", cmd)

	cmd, err = svc.RenderBuildCommand(ctx, dto.BuildCommandRequest{Request: "blender-4.2"})
	require.NoError(t, err)
	assert.Equal(t, "python3 /pkgs/blender/4.2.0/../build.py {install}", cmd, "root defaults to the package directory")

	cmd, err = svc.RenderBuildCommand(ctx, dto.BuildCommandRequest{
		Request: "blender",
		Values:  map[string]string{"root": "/opt/blender/4.3.0", "install": "install"},
	})
	require.NoError(t, err)
	assert.Equal(t, "python3 /opt/blender/4.3.0/../build.py install", cmd)
}

func TestBuildService_Errors(t *testing.T) {
	svc := newBuildService(t)
	ctx := context.Background()

	_, err := svc.RenderBuildCommand(ctx, dto.BuildCommandRequest{Request: "blender", Strict: true})
	var subErr *entities.TemplateSubstitutionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, "install", subErr.Placeholder)

	_, err = svc.RenderBuildCommand(ctx, dto.BuildCommandRequest{Request: "ocio"})
	require.ErrorAs(t, err, &subErr)

	_, err = svc.RenderBuildCommand(ctx, dto.BuildCommandRequest{Request: "blender-5"})
	var nf *entities.NotFoundError
	require.ErrorAs(t, err, &nf)

	_, err = svc.RenderBuildCommand(ctx, dto.BuildCommandRequest{Request: "!blender"})
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
}
