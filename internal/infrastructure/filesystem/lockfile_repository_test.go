package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/reglet-dev/pkgreg/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLock(t *testing.T) *entities.Lockfile {
	t.Helper()
	lock := entities.NewLockfile()
	lock.Generated = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	require.NoError(t, lock.AddPackage(entities.PackageLock{
		Name:      "python",
		Requested: "python-3.11",
		Resolved:  "3.11.2",
		Variant:   entities.ImplicitVariant,
		Root:      "/pkgs/python/3.11.2",
		Digest:    "sha256:abc",
	}))
	require.NoError(t, lock.AddPackage(entities.PackageLock{
		Name:      "redshift",
		Requested: "redshift",
		Resolved:  "3.6",
		Variant:   1,
		UUID:      "949dbed5cb0247e4b94445f6ef3a0539",
		Digest:    "sha256:def",
	}))
	return lock
}

func TestFileLockfileRepository_RoundTrip(t *testing.T) {
	repo := NewFileLockfileRepository()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "env.lock")

	exists, err := repo.Exists(ctx, path)
	require.NoError(t, err)
	assert.False(t, exists)

	lock := sampleLock(t)
	require.NoError(t, repo.Save(ctx, lock, path))

	exists, err = repo.Exists(ctx, path)
	require.NoError(t, err)
	assert.True(t, exists)

	loaded, err := repo.Load(ctx, path)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, lock.Version, loaded.Version)
	assert.True(t, lock.Generated.Equal(loaded.Generated))
	assert.Equal(t, lock.Packages, loaded.Packages)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "lockfile_version: 1")
	assert.Contains(t, string(data), "sha256: sha256:def")
}

func TestFileLockfileRepository_LoadMissing(t *testing.T) {
	lock, err := NewFileLockfileRepository().Load(context.Background(), filepath.Join(t.TempDir(), "none.lock"))
	require.NoError(t, err)
	assert.Nil(t, lock)
}

func TestFileLockfileRepository_LoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.lock")
	require.NoError(t, os.WriteFile(path, []byte("lockfile_version: [1\n"), 0o600))

	_, err := NewFileLockfileRepository().Load(context.Background(), path)
	assert.ErrorContains(t, err, "failed to parse lockfile")
}

func TestFileLockfileRepository_LoadUnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.lock")
	require.NoError(t, os.WriteFile(path, []byte("lockfile_version: 1\nplugins: []\n"), 0o600))

	_, err := NewFileLockfileRepository().Load(context.Background(), path)
	assert.Error(t, err)
}

func TestFileLockfileRepository_SaveRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.lock")
	err := NewFileLockfileRepository().Save(context.Background(), &entities.Lockfile{Version: 2}, path)
	assert.ErrorContains(t, err, "invalid lockfile")

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFileLockfileRepository_SaveOverwrites(t *testing.T) {
	repo := NewFileLockfileRepository()
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "env.lock")

	require.NoError(t, repo.Save(ctx, sampleLock(t), path))
	empty := entities.NewLockfile()
	require.NoError(t, repo.Save(ctx, empty, path))

	loaded, err := repo.Load(ctx, path)
	require.NoError(t, err)
	assert.Zero(t, loaded.PackageCount())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files are left behind")
}

func TestFileLockfileRepository_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFileLockfileRepository().Load(ctx, "env.lock")
	assert.ErrorIs(t, err, context.Canceled)
}
