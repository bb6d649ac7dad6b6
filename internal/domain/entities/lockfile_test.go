package entities_test

import (
	"testing"
	"time"

	"github.com/reglet-dev/pkgreg/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLockfile(t *testing.T) {
	t.Parallel()

	lock := entities.NewLockfile()
	assert.Equal(t, 1, lock.Version)
	assert.False(t, lock.Generated.IsZero())
	assert.Empty(t, lock.Packages)
}

func TestLockfile_AddPackage(t *testing.T) {
	t.Parallel()

	t.Run("valid package", func(t *testing.T) {
		lock := entities.NewLockfile()
		err := lock.AddPackage(entities.PackageLock{
			Name:      "blender",
			Requested: "blender-4",
			Resolved:  "4.3.0",
			Variant:   entities.ImplicitVariant,
			Digest:    "sha256:123456",
		})
		require.NoError(t, err)
		assert.Equal(t, 1, lock.PackageCount())

		retrieved := lock.GetPackage("blender")
		require.NotNil(t, retrieved)
		assert.Equal(t, "4.3.0", retrieved.Resolved)
		assert.Nil(t, lock.GetPackage("maya"))
	})

	t.Run("missing digest", func(t *testing.T) {
		lock := entities.NewLockfile()
		err := lock.AddPackage(entities.PackageLock{Name: "blender", Resolved: "4.3.0"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "digest is required")
		assert.Equal(t, 0, lock.PackageCount())
	})

	t.Run("missing resolved version", func(t *testing.T) {
		lock := entities.NewLockfile()
		err := lock.AddPackage(entities.PackageLock{Name: "blender", Digest: "sha256:1"})
		assert.ErrorContains(t, err, "resolved version is required")
	})

	t.Run("duplicate name", func(t *testing.T) {
		lock := entities.NewLockfile()
		require.NoError(t, lock.AddPackage(entities.PackageLock{Name: "maya", Resolved: "2025", Digest: "sha256:1"}))
		err := lock.AddPackage(entities.PackageLock{Name: "maya", Resolved: "2024", Digest: "sha256:2"})
		assert.ErrorContains(t, err, "already locked")
	})

	t.Run("returned entry is a copy", func(t *testing.T) {
		lock := entities.NewLockfile()
		require.NoError(t, lock.AddPackage(entities.PackageLock{Name: "maya", Resolved: "2025", Digest: "sha256:1"}))
		lock.GetPackage("maya").Resolved = "1"
		assert.Equal(t, "2025", lock.GetPackage("maya").Resolved)
	})
}

func TestLockfile_Validate(t *testing.T) {
	t.Parallel()

	t.Run("valid, empty", func(t *testing.T) {
		lock := entities.NewLockfile()
		assert.NoError(t, lock.Validate())
	})

	t.Run("valid, populated", func(t *testing.T) {
		lock := entities.NewLockfile()
		require.NoError(t, lock.AddPackage(entities.PackageLock{Name: "p1", Resolved: "1", Digest: "hash"}))
		assert.NoError(t, lock.Validate())
	})

	t.Run("invalid version", func(t *testing.T) {
		lock := entities.NewLockfile()
		lock.Version = 2
		assert.ErrorContains(t, lock.Validate(), "unsupported lockfile version: 2")
	})

	t.Run("missing timestamp with packages", func(t *testing.T) {
		lock := entities.NewLockfile()
		require.NoError(t, lock.AddPackage(entities.PackageLock{Name: "p1", Resolved: "1", Digest: "hash"}))
		lock.Generated = time.Time{}
		assert.ErrorContains(t, lock.Validate(), "generated timestamp is required")
	})

	t.Run("hand-edited duplicate", func(t *testing.T) {
		lock := entities.NewLockfile()
		entry := entities.PackageLock{Name: "p1", Resolved: "1", Digest: "hash"}
		lock.Packages = append(lock.Packages, entry, entry)
		assert.ErrorContains(t, lock.Validate(), "locked twice")
	})
}
