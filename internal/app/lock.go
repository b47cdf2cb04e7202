package app

import (
	"context"

	"go.trai.ch/hob/internal/core/domain"
)

// LockUpdate snapshots the declared version of every recipe into hob.lock.
func (a *App) LockUpdate(ctx context.Context) (*domain.Lockfile, error) {
	cfg, g, err := a.graph(ctx)
	if err != nil {
		return nil, err
	}
	return a.locks.Generate(ctx, cfg, g)
}

// LockShow reads hob.lock.
func (a *App) LockShow(_ context.Context) (*domain.Lockfile, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	return a.locks.Load(cfg)
}

// LockVerify compares hob.lock against the recipes. Any mismatch is returned
// both as a list and as a *domain.LockMismatchError.
func (a *App) LockVerify(ctx context.Context) ([]domain.Mismatch, error) {
	cfg, g, err := a.graph(ctx)
	if err != nil {
		return nil, err
	}
	mismatches, err := a.locks.Verify(cfg, g)
	if err != nil {
		return nil, err
	}
	if len(mismatches) > 0 {
		return mismatches, &domain.LockMismatchError{Mismatches: mismatches}
	}
	return nil, nil
}
