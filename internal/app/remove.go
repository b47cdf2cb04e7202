package app

import (
	"context"

	"go.trai.ch/hob/internal/core/domain"
	"go.trai.ch/hob/internal/engine/lifecycle"
	"go.trai.ch/zerr"
)

// RemoveOptions configures the Remove method.
type RemoveOptions struct {
	// Force removes the recipe even when installed recipes depend on it.
	Force bool
	// DryRun reports what would be removed without touching anything.
	DryRun bool
}

// RemoveReport describes a removal.
type RemoveReport struct {
	Recipe     string
	Files      []string
	Dependents []string
}

// Remove uninstalls name. Dependents are computed over the whole recipes
// path, not just the recipe's own subgraph.
func (a *App) Remove(ctx context.Context, name string, opts RemoveOptions) (*RemoveReport, error) {
	cfg, g, r, err := a.lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	report := &RemoveReport{
		Recipe:     r.Name,
		Files:      r.State.InstalledFiles,
		Dependents: g.InstalledReverseDeps(r.Name),
	}

	if opts.DryRun {
		if !r.State.Installed {
			return nil, zerr.With(zerr.Wrap(domain.ErrNotInstalled, r.Name), "recipe", r.Name)
		}
		if len(report.Dependents) > 0 && !opts.Force {
			return report, &domain.DependentsError{Recipe: r.Name, Dependents: report.Dependents}
		}
		return report, nil
	}

	err = a.render(ctx, func() error {
		return a.lifecycle.Remove(ctx, cfg, r, lifecycle.RemoveOptions{
			Force:      opts.Force,
			Dependents: report.Dependents,
		})
	})
	return report, err
}

// Autoremove removes orphans until none are left, since removing one orphan
// can orphan its own dependencies. With dryRun the removals are simulated on
// the in-memory graph. It returns the removed names in removal order.
func (a *App) Autoremove(ctx context.Context, dryRun bool) ([]string, error) {
	cfg, g, err := a.graph(ctx)
	if err != nil {
		return nil, err
	}

	var removed []string
	err = a.render(ctx, func() error {
		for {
			orphans := g.Orphans()
			if len(orphans) == 0 {
				return nil
			}
			for _, name := range orphans {
				if err := ctx.Err(); err != nil {
					return err
				}
				r, _ := g.Recipe(name)
				if !dryRun {
					if err := a.lifecycle.Remove(ctx, cfg, r, lifecycle.RemoveOptions{}); err != nil {
						return err
					}
				}
				r.State = domain.Cleared()
				removed = append(removed, name)
			}
		}
	})
	return removed, err
}
