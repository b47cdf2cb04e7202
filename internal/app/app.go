// Package app implements the application layer for hob: one method per
// command, orchestrating the resolver, the lifecycle executor and the
// lockfile manager.
package app

import (
	"context"

	"go.trai.ch/hob/internal/core/domain"
	"go.trai.ch/hob/internal/core/ports"
	"go.trai.ch/hob/internal/engine/lifecycle"
)

// Planner builds dependency graphs and install plans.
type Planner interface {
	Graph(ctx context.Context, root string) (*domain.Graph, error)
	Resolve(ctx context.Context, root, target string, noDeps bool) (*domain.Graph, *domain.Plan, error)
}

// Lifecycle runs the per-recipe state machines.
type Lifecycle interface {
	Install(ctx context.Context, cfg *domain.Config, r *domain.Recipe, asDep bool) (*lifecycle.Result, error)
	Remove(ctx context.Context, cfg *domain.Config, r *domain.Recipe, opts lifecycle.RemoveOptions) error
	CheckUpdate(ctx context.Context, cfg *domain.Config, r *domain.Recipe) (*lifecycle.Update, error)
}

// LockManager generates and verifies the lockfile.
type LockManager interface {
	Generate(ctx context.Context, cfg *domain.Config, g *domain.Graph) (*domain.Lockfile, error)
	Load(cfg *domain.Config) (*domain.Lockfile, error)
	Verify(cfg *domain.Config, g *domain.Graph) ([]domain.Mismatch, error)
	VerifyPlan(cfg *domain.Config, g *domain.Graph, plan *domain.Plan) error
}

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	planner      Planner
	lifecycle    Lifecycle
	locks        LockManager
	tracer       ports.Tracer
	renderer     ports.Renderer
	hasher       ports.Hasher
	logger       ports.Logger

	overrides domain.ConfigOverrides
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	planner Planner,
	lc Lifecycle,
	locks LockManager,
	tracer ports.Tracer,
	renderer ports.Renderer,
	hasher ports.Hasher,
	log ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		planner:      planner,
		lifecycle:    lc,
		locks:        locks,
		tracer:       tracer,
		renderer:     renderer,
		hasher:       hasher,
		logger:       log,
	}
}

// Settings are the global command-line options.
type Settings struct {
	Overrides domain.ConfigOverrides
	JSONLogs  bool
}

// Configure applies the global command-line options. It must be called
// before any command runs.
func (a *App) Configure(s Settings) {
	a.overrides = s.Overrides
	if l, ok := a.logger.(interface{ SetJSON(enable bool) }); ok {
		l.SetJSON(s.JSONLogs)
	}
}

func (a *App) config() (*domain.Config, error) {
	return a.configLoader.Load(a.overrides)
}

// graph loads the configuration and scans the recipes path.
func (a *App) graph(ctx context.Context) (*domain.Config, *domain.Graph, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, nil, err
	}
	g, err := a.planner.Graph(ctx, cfg.RecipesPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, g, nil
}

// lookup resolves name on its own so that the recipe's own parse failure is
// reported instead of a generic not-found.
func (a *App) lookup(ctx context.Context, name string) (*domain.Config, *domain.Graph, *domain.Recipe, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, nil, nil, err
	}
	g, _, err := a.planner.Resolve(ctx, cfg.RecipesPath, name, true)
	if err != nil {
		return nil, nil, nil, err
	}
	r, _ := g.Recipe(name)
	return cfg, g, r, nil
}

// render runs fn with the progress renderer started and always stops it, so
// buffered partial lines are flushed even when fn fails. It returns once the
// renderer has released the terminal.
func (a *App) render(ctx context.Context, fn func() error) error {
	if err := a.renderer.Start(ctx); err != nil {
		return err
	}
	err := fn()
	if stopErr := a.renderer.Stop(); err == nil {
		err = stopErr
	}
	if waitErr := a.renderer.Wait(); err == nil {
		err = waitErr
	}
	return err
}
