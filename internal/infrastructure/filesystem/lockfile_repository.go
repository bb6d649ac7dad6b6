// Package filesystem provides file-backed implementations of application ports.
package filesystem

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/reglet-dev/pkgreg/internal/application/ports"
	"github.com/reglet-dev/pkgreg/internal/domain/entities"
)

// Ensure interface compliance
var _ ports.LockfileRepository = (*FileLockfileRepository)(nil)

const lockfileHeader = "# Generated by pkgreg. Do not edit.\n"

// FileLockfileRepository stores lockfiles as YAML documents on disk.
type FileLockfileRepository struct{}

// NewFileLockfileRepository creates a new file-backed lockfile repository.
func NewFileLockfileRepository() *FileLockfileRepository {
	return &FileLockfileRepository{}
}

// Load reads a lockfile. Returns nil, nil if the file does not exist.
func (r *FileLockfileRepository) Load(ctx context.Context, path string) (*entities.Lockfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path is chosen by the user
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read lockfile: %w", err)
	}

	var lock entities.Lockfile
	if err := yaml.UnmarshalWithOptions(data, &lock, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("failed to parse lockfile %s: %s", path, yaml.FormatError(err, false, true))
	}
	return &lock, nil
}

// Save writes the lockfile atomically through a temporary file in the same directory.
func (r *FileLockfileRepository) Save(ctx context.Context, lockfile *entities.Lockfile, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := lockfile.Validate(); err != nil {
		return fmt.Errorf("refusing to write invalid lockfile: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(lockfileHeader)
	enc := yaml.NewEncoder(&buf, yaml.Indent(2))
	if err := enc.Encode(lockfile); err != nil {
		return fmt.Errorf("failed to encode lockfile: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode lockfile: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".pkgreg-lock-*")
	if err != nil {
		return fmt.Errorf("failed to create lockfile: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name()) // Best-effort cleanup; fails harmlessly after rename
	}()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write lockfile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write lockfile: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil { //nolint:gosec // G302: lockfiles are meant to be shared
		return fmt.Errorf("failed to set lockfile permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace lockfile: %w", err)
	}
	return nil
}

// Exists reports whether a lockfile exists at path.
func (r *FileLockfileRepository) Exists(_ context.Context, path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}
