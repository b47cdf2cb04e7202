// Package resolver turns a recipes path into a dependency graph and
// constraint-checked install plans.
package resolver

import (
	"context"
	"path/filepath"
	"strings"

	"go.trai.ch/hob/internal/core/domain"
	"go.trai.ch/hob/internal/core/ports"
	"go.trai.ch/zerr"
)

// Resolver builds graphs and plans from the recipe catalog. Graphs are never
// cached; every call reads the recipes path again.
type Resolver struct {
	catalog ports.RecipeCatalog
	logger  ports.Logger
}

// New creates a Resolver.
func New(catalog ports.RecipeCatalog, logger ports.Logger) *Resolver {
	return &Resolver{catalog: catalog, logger: logger}
}

// Graph scans root and returns the graph over every readable recipe.
// Unreadable recipes are skipped with a warning.
func (r *Resolver) Graph(ctx context.Context, root string) (*domain.Graph, error) {
	g, failures, err := r.scan(ctx, root)
	if err != nil {
		return nil, err
	}
	r.warn(failures)
	return g, nil
}

// Resolve computes the install plan for target. With noDeps the plan holds
// only the target and neither dependencies nor constraints are examined.
// Otherwise the plan is ordered first and constraints are validated after,
// so a missing dependency or a cycle is reported before any version problem.
func (r *Resolver) Resolve(ctx context.Context, root, target string, noDeps bool) (*domain.Graph, *domain.Plan, error) {
	if err := domain.ValidateName(target); err != nil {
		return nil, nil, err
	}
	g, failures, err := r.scan(ctx, root)
	if err != nil {
		return nil, nil, err
	}

	// The target's own parse failure is the error, not a warning.
	var targetErr error
	others := failures[:0]
	for _, f := range failures {
		if targetErr == nil && stem(f.Path) == target {
			targetErr = f.Err
			continue
		}
		others = append(others, f)
	}
	r.warn(others)

	recipe, ok := g.Recipe(target)
	if !ok {
		if targetErr != nil {
			return nil, nil, targetErr
		}
		return nil, nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrRecipeNotFound, target), "recipe", target),
			"recipes_path", root)
	}
	if noDeps {
		return g, domain.SinglePlan(recipe), nil
	}

	plan, err := g.Plan(target)
	if err != nil {
		return nil, nil, err
	}
	if err := g.ValidateConstraints(plan); err != nil {
		return nil, nil, err
	}
	return g, plan, nil
}

func (r *Resolver) scan(ctx context.Context, root string) (*domain.Graph, []ports.ScanFailure, error) {
	result, err := r.catalog.Scan(ctx, root)
	if err != nil {
		return nil, nil, err
	}
	g := domain.NewGraph()
	failures := result.Failures
	for _, recipe := range result.Recipes {
		if err := g.AddRecipe(recipe); err != nil {
			failures = append(failures, ports.ScanFailure{Path: recipe.Path, Err: err})
		}
	}
	return g, failures, nil
}

func (r *Resolver) warn(failures []ports.ScanFailure) {
	for _, f := range failures {
		r.logger.Warn("skipping " + f.Path + ": " + f.Err.Error())
	}
}

func stem(path string) string {
	return strings.TrimSuffix(filepath.Base(path), domain.RecipeExt)
}
