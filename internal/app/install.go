package app

import (
	"context"

	"go.trai.ch/hob/internal/core/domain"
	"go.trai.ch/hob/internal/engine/lifecycle"
)

// InstallOptions configures the Install method.
type InstallOptions struct {
	// NoDeps installs only the named recipe.
	NoDeps bool
	// DryRun resolves and validates the plan without running it.
	DryRun bool
	// Locked fails when a planned recipe's version differs from the lockfile.
	Locked bool
}

// InstallReport is the plan and the outcome of every entry that ran.
type InstallReport struct {
	Plan    *domain.Plan
	Results []*lifecycle.Result
}

// Install resolves name and executes the plan in order. The first failure
// stops the plan; recipes installed before it stay installed.
func (a *App) Install(ctx context.Context, name string, opts InstallOptions) (*InstallReport, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	g, plan, err := a.planner.Resolve(ctx, cfg.RecipesPath, name, opts.NoDeps)
	if err != nil {
		return nil, err
	}
	if opts.Locked {
		if err := a.locks.VerifyPlan(cfg, g, plan); err != nil {
			return nil, err
		}
	}

	report := &InstallReport{Plan: plan}
	if opts.DryRun {
		return report, nil
	}

	err = a.render(ctx, func() error {
		a.tracer.EmitPlan(ctx, plan.Names(), []string{name})
		return a.runPlan(ctx, cfg, g, plan, report, nil)
	})
	return report, err
}

// runPlan installs every plan entry in order. asDep overrides the
// dependency flag of individual entries.
func (a *App) runPlan(
	ctx context.Context,
	cfg *domain.Config,
	g *domain.Graph,
	plan *domain.Plan,
	report *InstallReport,
	asDep map[string]bool,
) error {
	for _, entry := range plan.Entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		r, _ := g.Recipe(entry.Name)
		dep := entry.IsDep
		if override, ok := asDep[entry.Name]; ok {
			dep = override
		}
		res, err := a.lifecycle.Install(ctx, cfg, r, dep)
		if err != nil {
			return err
		}
		report.Results = append(report.Results, res)
	}
	return nil
}
