// Package lifecycle drives one recipe through its install, removal and
// update state machines.
package lifecycle

import (
	"context"
	"time"

	"go.trai.ch/hob/internal/core/domain"
	"go.trai.ch/hob/internal/core/ports"
	"go.trai.ch/zerr"
)

// Executor runs recipe phases. It holds no per-recipe state; every call
// builds its own execution context, so one Executor can serve a whole plan.
type Executor struct {
	scripts   ports.ScriptEngine
	store     ports.RecipeStore
	installer ports.Installer
	tracer    ports.Tracer
	logger    ports.Logger
	now       func() time.Time
}

// New creates an Executor.
func New(
	scripts ports.ScriptEngine,
	store ports.RecipeStore,
	installer ports.Installer,
	tracer ports.Tracer,
	logger ports.Logger,
) *Executor {
	return &Executor{
		scripts:   scripts,
		store:     store,
		installer: installer,
		tracer:    tracer,
		logger:    logger,
		now:       time.Now,
	}
}

// run is one lifecycle invocation for one recipe.
type run struct {
	e      *Executor
	recipe *domain.Recipe
	script ports.Script
	ec     *domain.ExecutionContext
}

func (e *Executor) load(cfg *domain.Config, r *domain.Recipe) (*run, error) {
	return e.loadAt(cfg, r, cfg.Prefix)
}

// loadAt loads r with PREFIX bound to prefix.
func (e *Executor) loadAt(cfg *domain.Config, r *domain.Recipe, prefix string) (*run, error) {
	ec := domain.NewExecutionContext(r.Name, r.Version, domain.RecipeBuildDir(cfg.BuildDir, r.Name), prefix)
	if cfg.Shell != "" {
		ec.Shell = cfg.Shell
	}
	script, err := e.scripts.Load(r.Path, ec)
	if err != nil {
		return nil, err
	}
	return &run{e: e, recipe: r, script: script, ec: ec}, nil
}

func (r *run) declares(fn string) bool {
	return r.script.HasFunction(fn, 0) || r.script.HasFunction(fn, 1)
}

// validate checks that every required function is declared.
func (r *run) validate() error {
	for _, fn := range domain.RequiredFunctions {
		if !r.declares(fn) {
			err := zerr.With(zerr.Wrap(domain.ErrMissingFunction, fn), "function", fn)
			return zerr.With(zerr.With(err, "recipe", r.recipe.Name), "path", r.recipe.Path)
		}
	}
	return nil
}

// phase calls fn inside a span named "<recipe>:<phase>" whose writer
// receives the phase's output. An undeclared optional function is skipped.
func (r *run) phase(ctx context.Context, phase domain.Phase, fn string) (domain.Value, error) {
	if !r.declares(fn) {
		return domain.UnitValue(), nil
	}
	ctx, span := r.e.tracer.Start(ctx, r.recipe.Name+":"+string(phase),
		ports.WithAttribute("hob.recipe", r.recipe.Name),
		ports.WithAttribute("hob.phase", string(phase)))
	defer span.End()

	r.ec.Stdout, r.ec.Stderr = span, span
	v, err := r.script.Call(ctx, fn)
	if err != nil {
		span.RecordError(err)
		return domain.Value{}, &domain.PhaseError{Recipe: r.recipe.Name, Phase: phase, Err: err}
	}
	return v, nil
}
