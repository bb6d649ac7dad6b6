package ports

import (
	"context"

	"github.com/reglet-dev/pkgreg/internal/domain/entities"
)

// LockfileRepository handles lockfile persistence.
// This is a PORT - abstracts file system or other storage.
type LockfileRepository interface {
	// Load reads a lockfile from the given path.
	// Returns nil, nil if lockfile doesn't exist.
	Load(ctx context.Context, path string) (*entities.Lockfile, error)

	// Save writes a lockfile to the given path.
	Save(ctx context.Context, lockfile *entities.Lockfile, path string) error

	// Exists checks if a lockfile exists at the given path.
	Exists(ctx context.Context, path string) (bool, error)
}
