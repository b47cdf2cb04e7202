// Package domain contains the core domain models and business logic for recipes,
// their versions and their dependency graph.
package domain

import (
	"slices"

	"go.trai.ch/zerr"
)

// Graph is the dependency graph over every recipe in a recipes path. It is
// rebuilt from disk for each resolution and never persisted.
type Graph struct {
	recipes map[string]*Recipe
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		recipes: make(map[string]*Recipe),
	}
}

// AddRecipe adds a recipe to the graph.
// It returns an error if a recipe with the same name already exists.
func (g *Graph) AddRecipe(r *Recipe) error {
	if existing, exists := g.recipes[r.Name]; exists {
		err := zerr.With(zerr.Wrap(ErrDuplicateRecipe, r.Name), "path", r.Path)
		return zerr.With(err, "existing", existing.Path)
	}
	g.recipes[r.Name] = r
	return nil
}

// Recipe looks up a recipe by name.
func (g *Graph) Recipe(name string) (*Recipe, bool) {
	r, ok := g.recipes[name]
	return r, ok
}

// Len returns the number of recipes.
func (g *Graph) Len() int { return len(g.recipes) }

// Names returns every recipe name, sorted.
func (g *Graph) Names() []string {
	names := make([]string, 0, len(g.recipes))
	for name := range g.recipes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Recipes returns every recipe, sorted by name.
func (g *Graph) Recipes() []*Recipe {
	out := make([]*Recipe, 0, len(g.recipes))
	for _, name := range g.Names() {
		out = append(out, g.recipes[name])
	}
	return out
}

// PlanEntry is one step of a resolution plan.
type PlanEntry struct {
	Name  string
	Path  string
	IsDep bool
}

// Plan is a dependency-ordered sequence of recipes: every entry's
// dependencies appear before it.
type Plan struct {
	Target  string
	Entries []PlanEntry
}

// Names returns the entry names in plan order.
func (p *Plan) Names() []string {
	names := make([]string, len(p.Entries))
	for i, e := range p.Entries {
		names[i] = e.Name
	}
	return names
}

// SinglePlan returns a plan holding only the target recipe.
func SinglePlan(r *Recipe) *Plan {
	return &Plan{Target: r.Name, Entries: []PlanEntry{{Name: r.Name, Path: r.Path}}}
}

const (
	unvisited = iota
	inProgress
	done
)

// Plan computes the install order for target with a post-order depth-first
// traversal. Build dependencies are visited before runtime dependencies, each
// in declaration order. A node already emitted is never visited again, so
// diamonds collapse to a single entry.
func (g *Graph) Plan(target string) (*Plan, error) {
	if _, ok := g.recipes[target]; !ok {
		return nil, zerr.With(zerr.Wrap(ErrRecipeNotFound, target), "recipe", target)
	}

	plan := &Plan{Target: target}
	state := make(map[string]int)
	var path []string

	var visit func(name string) error
	visit = func(name string) error {
		state[name] = inProgress
		path = append(path, name)

		r := g.recipes[name]
		for _, dep := range r.AllDeps() {
			if _, ok := g.recipes[dep.Name]; !ok {
				return &MissingDependencyError{Name: dep.Name, RequestedBy: name}
			}
			switch state[dep.Name] {
			case inProgress:
				return buildCycleError(path, dep.Name)
			case unvisited:
				if err := visit(dep.Name); err != nil {
					return err
				}
			}
		}

		state[name] = done
		path = path[:len(path)-1]
		plan.Entries = append(plan.Entries, PlanEntry{Name: name, Path: r.Path, IsDep: name != target})
		return nil
	}

	if err := visit(target); err != nil {
		return nil, err
	}
	return plan, nil
}

// buildCycleError records both the full chain from the target and the cycle itself.
func buildCycleError(path []string, repeated string) error {
	start := slices.Index(path, repeated)
	full := append(slices.Clone(path), repeated)
	return &CycleError{
		Path:  full,
		Cycle: full[start:],
	}
}

// ValidateConstraints checks every dependency edge in the plan against the
// version the dependency will have once the plan runs.
func (g *Graph) ValidateConstraints(plan *Plan) error {
	for _, entry := range plan.Entries {
		r := g.recipes[entry.Name]
		for _, dep := range r.AllDeps() {
			target, ok := g.recipes[dep.Name]
			if !ok {
				return &MissingDependencyError{Name: dep.Name, RequestedBy: r.Name}
			}
			if found := target.EffectiveVersion(); !dep.Constraint.Satisfied(found) {
				return &ConstraintViolation{
					Dependent:  r.Name,
					Dependency: dep.Name,
					Constraint: dep.Constraint.String(),
					Found:      found,
				}
			}
		}
	}
	return nil
}

// ReverseDeps returns the recipes listing name as a runtime dependency, sorted.
func (g *Graph) ReverseDeps(name string) []string {
	var out []string
	for _, r := range g.Recipes() {
		if r.DependsOn(name) {
			out = append(out, r.Name)
		}
	}
	return out
}

// InstalledReverseDeps returns the installed recipes that depend on name.
func (g *Graph) InstalledReverseDeps(name string) []string {
	var out []string
	for _, dependent := range g.ReverseDeps(name) {
		if g.recipes[dependent].State.Installed {
			out = append(out, dependent)
		}
	}
	return out
}

// neededByInstalled reports whether an installed recipe lists name as a
// runtime or build dependency.
func (g *Graph) neededByInstalled(name string) bool {
	for _, r := range g.recipes {
		if !r.State.Installed {
			continue
		}
		for _, dep := range r.AllDeps() {
			if dep.Name == name {
				return true
			}
		}
	}
	return false
}

// Orphans returns installed recipes that were pulled in as dependencies and
// that no installed recipe lists as a runtime or build dependency any more.
// Build dependencies keep their tool installed here even though they do not
// block its removal.
func (g *Graph) Orphans() []string {
	var out []string
	for _, r := range g.Recipes() {
		if r.State.Installed && r.State.InstalledAsDep && !g.neededByInstalled(r.Name) {
			out = append(out, r.Name)
		}
	}
	return out
}

// Impact returns every recipe that transitively depends on name, sorted.
func (g *Graph) Impact(name string) []string {
	seen := map[string]bool{name: true}
	queue := []string{name}
	var out []string
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, dependent := range g.ReverseDeps(current) {
			if !seen[dependent] {
				seen[dependent] = true
				out = append(out, dependent)
				queue = append(queue, dependent)
			}
		}
	}
	slices.Sort(out)
	return out
}

// Why returns, for each explicitly installed recipe that transitively needs
// name, the shortest dependency chain from that recipe down to name.
func (g *Graph) Why(name string) [][]string {
	var chains [][]string
	for _, root := range g.Recipes() {
		if !root.State.Installed || root.State.InstalledAsDep || root.Name == name {
			continue
		}
		if chain := g.shortestChain(root.Name, name); chain != nil {
			chains = append(chains, chain)
		}
	}
	return chains
}

func (g *Graph) shortestChain(from, to string) []string {
	parent := map[string]string{from: ""}
	queue := []string{from}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		r, ok := g.recipes[current]
		if !ok {
			continue
		}
		for _, dep := range r.AllDeps() {
			if _, seen := parent[dep.Name]; seen {
				continue
			}
			parent[dep.Name] = current
			if dep.Name == to {
				chain := []string{to}
				for p := current; p != ""; p = parent[p] {
					chain = append(chain, p)
				}
				slices.Reverse(chain)
				return chain
			}
			queue = append(queue, dep.Name)
		}
	}
	return nil
}
