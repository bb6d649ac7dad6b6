package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/reglet-dev/pkgreg/internal/application/ports"
	"github.com/reglet-dev/pkgreg/internal/domain/entities"
	"github.com/reglet-dev/pkgreg/internal/domain/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryService_Load(t *testing.T) {
	src := sourceOf(t,
		entities.Descriptor{Name: "python", Version: "3.10.4"},
		entities.Descriptor{Name: "python", Version: "3.11.2"},
		entities.Descriptor{Name: "blender", Version: "4.3.0", Requires: []string{"python-3.11"}},
	)

	svc := NewRegistryService(&fakeValidator{}, nil, services.IdentityWarn, nil)
	reg, err := svc.Load(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 3, reg.Len())

	latest, err := reg.Find("python", "latest")
	require.NoError(t, err)
	assert.Equal(t, "3.11.2", latest.Version().String())
	assert.Equal(t, "/pkgs/python/3.11.2", latest.Root())
}

func TestRegistryService_Load_MultipleSources(t *testing.T) {
	a := sourceOf(t, entities.Descriptor{Name: "maya", Version: "2024"})
	b := sourceOf(t, entities.Descriptor{Name: "maya", Version: "2025"})

	reg, err := NewRegistryService(nil, nil, "", nil).Load(context.Background(), a, b)
	require.NoError(t, err)
	assert.Len(t, reg.Versions("maya"), 2)
}

func TestRegistryService_Load_RoundTrip(t *testing.T) {
	doc := entities.Descriptor{
		Name:         "houdini",
		Version:      "20.5.410",
		Authors:      []string{"sidefx"},
		UUID:         "949dbed5cb0247e4b94445f6ef3a0539",
		Description:  "procedural 3D",
		Requires:     []string{"python-3.11"},
		Variants:     [][]string{{"platform_linux"}},
		BuildCommand: "make -C {root} install PREFIX={install}",
		Commands: []entities.EnvOp{
			{Op: entities.OpPrepend, Var: "PATH", Value: "{root}/bin", When: `platform == "linux"`},
		},
	}

	reg, err := NewRegistryService(nil, nil, "", nil).Load(context.Background(), sourceOf(t, doc))
	require.NoError(t, err)

	pkg, err := reg.Find("houdini", "==20.5.410")
	require.NoError(t, err)
	assert.Equal(t, doc, pkg.Descriptor())
}

func TestRegistryService_Load_RoundTripWithLongerSibling(t *testing.T) {
	base := entities.Descriptor{Name: "maya", Version: "2025", Description: "base"}
	patch := entities.Descriptor{Name: "maya", Version: "2025.3.0", Description: "patch"}

	reg, err := NewRegistryService(nil, nil, "", nil).Load(context.Background(), sourceOf(t, base, patch))
	require.NoError(t, err)

	for _, doc := range []entities.Descriptor{base, patch} {
		pkg, err := reg.Find(doc.Name, doc.Version)
		require.NoError(t, err)
		assert.Equal(t, doc, pkg.Descriptor())
	}
}

func TestRegistryService_Load_Errors(t *testing.T) {
	t.Run("schema violation", func(t *testing.T) {
		src := sourceOf(t, entities.Descriptor{Name: "maya", Version: "2025", Description: "FORBIDDEN"})
		_, err := NewRegistryService(&fakeValidator{reject: "FORBIDDEN"}, nil, "", nil).Load(context.Background(), src)

		var malformed *entities.MalformedDescriptorError
		require.ErrorAs(t, err, &malformed)
		assert.Equal(t, "document", malformed.Field)
		assert.Equal(t, "/pkgs/maya/2025/package.yaml", malformed.Source)
	})

	t.Run("bad condition", func(t *testing.T) {
		src := sourceOf(t, entities.Descriptor{
			Name: "maya", Version: "2025",
			Commands: []entities.EnvOp{{Op: entities.OpSet, Var: "X", Value: "1", When: "platform =="}},
		})
		_, err := NewRegistryService(nil, nil, "", nil).Load(context.Background(), src)

		var malformed *entities.MalformedDescriptorError
		require.ErrorAs(t, err, &malformed)
		assert.Equal(t, "commands[0].when", malformed.Field)
	})

	t.Run("unreadable document", func(t *testing.T) {
		src := &fakeSource{docs: []ports.RawDescriptor{{Source: "x.yaml", Err: errors.New("bad yaml")}}}
		_, err := NewRegistryService(nil, nil, "", nil).Load(context.Background(), src)

		var malformed *entities.MalformedDescriptorError
		require.ErrorAs(t, err, &malformed)
		assert.Equal(t, "x.yaml", malformed.Source)
	})

	t.Run("duplicate", func(t *testing.T) {
		src := sourceOf(t,
			entities.Descriptor{Name: "maya", Version: "2025"},
			entities.Descriptor{Name: "maya", Version: "2025.0"},
			entities.Descriptor{Name: "maya", Version: "2025"},
		)
		_, err := NewRegistryService(nil, nil, "", nil).Load(context.Background(), src)

		var dup *entities.DuplicateDescriptorError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "maya", dup.Name)
	})

	t.Run("source failure", func(t *testing.T) {
		_, err := NewRegistryService(nil, nil, "", nil).Load(context.Background(), &fakeSource{err: errors.New("disk gone")})
		assert.ErrorContains(t, err, "disk gone")
	})
}

func TestRegistryService_IdentityPolicy(t *testing.T) {
	docs := []entities.Descriptor{
		{Name: "nuke", Version: "14", UUID: "949dbed5cb0247e4b94445f6ef3a0539"},
		{Name: "nuke", Version: "15", UUID: "1f0e2a7c9d3b4e5f8a6b7c8d9e0f1a2b"},
	}

	t.Run("strict rejects", func(t *testing.T) {
		_, err := NewRegistryService(nil, nil, services.IdentityStrict, nil).Load(context.Background(), sourceOf(t, docs...))
		var mismatch *entities.IdentityMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, "15", mismatch.Version)
	})

	t.Run("warn logs and loads", func(t *testing.T) {
		var buf bytes.Buffer
		reg, err := NewRegistryService(nil, nil, services.IdentityWarn, captureLogger(&buf)).Load(context.Background(), sourceOf(t, docs...))
		require.NoError(t, err)
		assert.Equal(t, 2, reg.Len())
		assert.Contains(t, buf.String(), "package uuid differs between versions")
	})

	t.Run("ignore is silent", func(t *testing.T) {
		var buf bytes.Buffer
		_, err := NewRegistryService(nil, nil, services.IdentityIgnore, captureLogger(&buf)).Load(context.Background(), sourceOf(t, docs...))
		require.NoError(t, err)
		assert.NotContains(t, buf.String(), "uuid")
	})
}
