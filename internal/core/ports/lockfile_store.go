package ports

import (
	"context"

	"go.trai.ch/hob/internal/core/domain"
)

// LockfileStore persists lockfiles.
//
//go:generate mockgen -source=lockfile_store.go -destination=mocks/mock_lockfile_store.go -package=mocks
type LockfileStore interface {
	// Load reads the lockfile at path. A missing file yields domain.ErrLockfileNotFound.
	Load(path string) (*domain.Lockfile, error)

	// Save writes the lockfile atomically under its advisory lock, filling in
	// the generation metadata.
	Save(ctx context.Context, path string, lock *domain.Lockfile) error
}
