// Package locker generates and verifies the lockfile of a recipes path.
package locker

import (
	"context"
	"slices"

	"go.trai.ch/hob/internal/core/domain"
	"go.trai.ch/hob/internal/core/ports"
)

// Manager reads, writes and checks hob.lock.
type Manager struct {
	store ports.LockfileStore
}

// New creates a Manager.
func New(store ports.LockfileStore) *Manager {
	return &Manager{store: store}
}

// Path returns the lockfile location for cfg.
func Path(cfg *domain.Config) string {
	return domain.LockfilePath(cfg.RecipesPath)
}

// Versions maps every recipe in g to its declared version. Installed state
// is ignored.
func Versions(g *domain.Graph) map[string]string {
	out := make(map[string]string, g.Len())
	for _, r := range g.Recipes() {
		out[r.Name] = r.Version
	}
	return out
}

// Generate snapshots g and replaces the lockfile.
func (m *Manager) Generate(ctx context.Context, cfg *domain.Config, g *domain.Graph) (*domain.Lockfile, error) {
	lock := domain.NewLockfile()
	for name, version := range Versions(g) {
		lock.Packages[name] = version
	}
	if err := m.store.Save(ctx, Path(cfg), lock); err != nil {
		return nil, err
	}
	return lock, nil
}

// Load reads the current lockfile.
func (m *Manager) Load(cfg *domain.Config) (*domain.Lockfile, error) {
	return m.store.Load(Path(cfg))
}

// Verify compares the lockfile against every recipe in g.
func (m *Manager) Verify(cfg *domain.Config, g *domain.Graph) ([]domain.Mismatch, error) {
	lock, err := m.Load(cfg)
	if err != nil {
		return nil, err
	}
	return lock.Verify(Versions(g)), nil
}

// VerifyPlan checks only the recipes in plan and fails with every mismatch
// found.
func (m *Manager) VerifyPlan(cfg *domain.Config, g *domain.Graph, plan *domain.Plan) error {
	lock, err := m.Load(cfg)
	if err != nil {
		return err
	}
	if mismatches := lock.VerifyOnly(Versions(g), slices.Sorted(slices.Values(plan.Names()))); len(mismatches) > 0 {
		return &domain.LockMismatchError{Mismatches: mismatches}
	}
	return nil
}
