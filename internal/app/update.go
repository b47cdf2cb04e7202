package app

import (
	"context"
	"errors"

	"go.trai.ch/hob/internal/core/domain"
	"go.trai.ch/hob/internal/engine/lifecycle"
	"go.trai.ch/zerr"
)

// Update runs check_update for name, or for every recipe declaring it when
// name is empty. In the batch form a failing recipe is reported and skipped;
// the failures are returned joined after the others were checked.
func (a *App) Update(ctx context.Context, name string) ([]*lifecycle.Update, error) {
	if name != "" {
		cfg, _, r, err := a.lookup(ctx, name)
		if err != nil {
			return nil, err
		}
		var up *lifecycle.Update
		err = a.render(ctx, func() error {
			up, err = a.lifecycle.CheckUpdate(ctx, cfg, r)
			return err
		})
		if err != nil {
			return nil, err
		}
		return []*lifecycle.Update{up}, nil
	}

	cfg, g, err := a.graph(ctx)
	if err != nil {
		return nil, err
	}
	var (
		updates []*lifecycle.Update
		errs    error
	)
	err = a.render(ctx, func() error {
		for _, r := range g.Recipes() {
			if err := ctx.Err(); err != nil {
				return err
			}
			up, err := a.lifecycle.CheckUpdate(ctx, cfg, r)
			switch {
			case errors.Is(err, domain.ErrNoUpdateCheck):
				continue
			case err != nil:
				a.logger.Warn(err.Error())
				errs = errors.Join(errs, err)
				continue
			}
			updates = append(updates, up)
		}
		return nil
	})
	if err != nil {
		return updates, err
	}
	return updates, errs
}

// UpgradeOptions configures the Upgrade method.
type UpgradeOptions struct {
	DryRun bool
}

// Upgrade is one installed recipe whose declared version moved past the
// installed one.
type Upgrade struct {
	Recipe string
	From   string
	To     string
	AsDep  bool
}

// Upgrade reinstalls out-of-date installed recipes: name only, or all of them
// when name is empty. Each one is force-removed and installed again with its
// dependencies, keeping whether it was installed as a dependency.
func (a *App) Upgrade(ctx context.Context, name string, opts UpgradeOptions) ([]Upgrade, error) {
	cfg, g, err := a.graph(ctx)
	if err != nil {
		return nil, err
	}
	candidates := g.Recipes()
	if name != "" {
		if err := domain.ValidateName(name); err != nil {
			return nil, err
		}
		r, ok := g.Recipe(name)
		if !ok {
			return nil, zerr.With(zerr.Wrap(domain.ErrRecipeNotFound, name), "recipe", name)
		}
		if !r.State.Installed {
			return nil, zerr.With(zerr.Wrap(domain.ErrNotInstalled, name), "recipe", name)
		}
		candidates = []*domain.Recipe{r}
	}

	var pending []Upgrade
	for _, r := range candidates {
		if r.State.Installed && domain.UpgradeNeeded(r.State.InstalledVersion, r.Version) {
			pending = append(pending, Upgrade{
				Recipe: r.Name,
				From:   r.State.InstalledVersion,
				To:     r.Version,
				AsDep:  r.State.InstalledAsDep,
			})
		}
	}
	// Every plan is checked before anything is removed, so a dependency
	// error leaves the installed versions in place.
	plans := make([]*domain.Plan, len(pending))
	for i, up := range pending {
		plan, err := g.Plan(up.Recipe)
		if err != nil {
			return nil, err
		}
		if err := g.ValidateConstraints(plan); err != nil {
			return nil, err
		}
		plans[i] = plan
	}
	if opts.DryRun || len(pending) == 0 {
		return pending, nil
	}

	var done []Upgrade
	err = a.render(ctx, func() error {
		for i, up := range pending {
			if err := a.upgrade(ctx, cfg, g, up, plans[i]); err != nil {
				return err
			}
			done = append(done, up)
		}
		return nil
	})
	return done, err
}

func (a *App) upgrade(ctx context.Context, cfg *domain.Config, g *domain.Graph, up Upgrade, plan *domain.Plan) error {
	r, _ := g.Recipe(up.Recipe)
	err := a.lifecycle.Remove(ctx, cfg, r, lifecycle.RemoveOptions{
		Force:      true,
		Dependents: g.InstalledReverseDeps(r.Name),
	})
	if err != nil {
		return err
	}

	a.tracer.EmitPlan(ctx, plan.Names(), []string{r.Name})
	return a.runPlan(ctx, cfg, g, plan, &InstallReport{Plan: plan}, map[string]bool{r.Name: up.AsDep})
}
