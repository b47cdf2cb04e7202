package app

import (
	"context"
	"strings"

	"go.trai.ch/hob/internal/core/domain"
	"go.trai.ch/zerr"
)

// ListOptions configures the List method.
type ListOptions struct {
	// Installed keeps only installed recipes.
	Installed bool
}

// List returns every readable recipe, sorted by name.
func (a *App) List(ctx context.Context, opts ListOptions) ([]*domain.Recipe, error) {
	_, g, err := a.graph(ctx)
	if err != nil {
		return nil, err
	}
	if !opts.Installed {
		return g.Recipes(), nil
	}
	var out []*domain.Recipe
	for _, r := range g.Recipes() {
		if r.State.Installed {
			out = append(out, r)
		}
	}
	return out, nil
}

// Search returns the recipes whose name or description contains pattern,
// ignoring case.
func (a *App) Search(ctx context.Context, pattern string) ([]*domain.Recipe, error) {
	_, g, err := a.graph(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(pattern)
	var out []*domain.Recipe
	for _, r := range g.Recipes() {
		if strings.Contains(strings.ToLower(r.Name), needle) ||
			strings.Contains(strings.ToLower(r.Description), needle) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Info returns the declared content and state of name.
func (a *App) Info(ctx context.Context, name string) (*domain.Recipe, error) {
	_, _, r, err := a.lookup(ctx, name)
	return r, err
}

// DepStatus is one direct dependency edge and whether it holds.
type DepStatus struct {
	Name       string
	Constraint string
	Build      bool
	// Found is the version the dependency would satisfy dependents with;
	// empty when the dependency has no recipe.
	Found     string
	Installed bool
	Satisfied bool
}

// Deps lists the direct dependencies of name, build dependencies first.
func (a *App) Deps(ctx context.Context, name string) ([]DepStatus, error) {
	_, g, r, err := a.lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	out := make([]DepStatus, 0, len(r.BuildDeps)+len(r.Deps))
	for i, spec := range r.AllDeps() {
		st := DepStatus{Name: spec.Name, Constraint: spec.Constraint.String(), Build: i < len(r.BuildDeps)}
		if dep, ok := g.Recipe(spec.Name); ok {
			st.Found = dep.EffectiveVersion()
			st.Installed = dep.State.Installed
			st.Satisfied = spec.Constraint.Satisfied(st.Found)
		}
		out = append(out, st)
	}
	return out, nil
}

// TreeNode is one recipe in a rendered dependency tree.
type TreeNode struct {
	Name       string
	Version    string
	Constraint string
	Build      bool
	Installed  bool
	// Missing marks a dependency with no recipe.
	Missing bool
	// Repeated marks a recipe whose subtree is shown elsewhere in the tree.
	Repeated bool
	// Cycle marks an edge back to a recipe on the current path.
	Cycle    bool
	Children []*TreeNode
}

// Tree returns the dependency tree rooted at name. Each recipe's subtree is
// expanded once; later occurrences are marked Repeated.
func (a *App) Tree(ctx context.Context, name string) (*TreeNode, error) {
	_, g, r, err := a.lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	expanded := make(map[string]bool)
	onPath := make(map[string]bool)

	var build func(r *domain.Recipe) *TreeNode
	build = func(r *domain.Recipe) *TreeNode {
		node := &TreeNode{Name: r.Name, Version: r.EffectiveVersion(), Installed: r.State.Installed}
		expanded[r.Name] = true
		onPath[r.Name] = true
		defer delete(onPath, r.Name)

		for i, spec := range r.AllDeps() {
			dep, ok := g.Recipe(spec.Name)
			var child *TreeNode
			switch {
			case !ok:
				child = &TreeNode{Name: spec.Name, Missing: true}
			case onPath[dep.Name]:
				child = &TreeNode{Name: dep.Name, Version: dep.EffectiveVersion(), Installed: dep.State.Installed, Cycle: true}
			case expanded[dep.Name]:
				child = &TreeNode{Name: dep.Name, Version: dep.EffectiveVersion(), Installed: dep.State.Installed, Repeated: true}
			default:
				child = build(dep)
			}
			child.Constraint = spec.Constraint.String()
			child.Build = i < len(r.BuildDeps)
			node.Children = append(node.Children, child)
		}
		return node
	}
	return build(r), nil
}

// Why returns the dependency chains from explicitly installed recipes down
// to name.
func (a *App) Why(ctx context.Context, name string) ([][]string, error) {
	_, g, r, err := a.lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	return g.Why(r.Name), nil
}

// Impact returns every recipe that directly or transitively depends on name.
func (a *App) Impact(ctx context.Context, name string) ([]string, error) {
	_, g, r, err := a.lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	return g.Impact(r.Name), nil
}

// Orphans returns the installed dependencies nothing installed needs.
func (a *App) Orphans(ctx context.Context) ([]string, error) {
	_, g, err := a.graph(ctx)
	if err != nil {
		return nil, err
	}
	return g.Orphans(), nil
}

// Hash computes the content digests of every file.
func (a *App) Hash(_ context.Context, files []string) ([]domain.FileHash, error) {
	if len(files) == 0 {
		return nil, zerr.Wrap(domain.ErrUsage, "at least one file is required")
	}
	out := make([]domain.FileHash, 0, len(files))
	for _, f := range files {
		h, err := a.hasher.HashFile(f)
		if err != nil {
			return out, err
		}
		out = append(out, h)
	}
	return out, nil
}
