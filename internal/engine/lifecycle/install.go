package lifecycle

import (
	"context"
	"errors"
	"os"

	"go.trai.ch/hob/internal/core/domain"
	"go.trai.ch/hob/internal/core/ports"
	"go.trai.ch/zerr"
)

// Status is the outcome of an install.
type Status int

const (
	// StatusInstalled means the recipe ran and its files were committed.
	StatusInstalled Status = iota
	// StatusSatisfied means the recipe was already installed; nothing ran.
	StatusSatisfied
	// StatusPromoted means an installed dependency became explicitly installed.
	StatusPromoted
)

func (s Status) String() string {
	switch s {
	case StatusSatisfied:
		return "already installed"
	case StatusPromoted:
		return "marked as explicitly installed"
	default:
		return "installed"
	}
}

// Result describes one completed install.
type Result struct {
	Recipe string
	Status Status
	Files  []string
}

// Install runs the install state machine for r. asDep records whether the
// recipe is being pulled in for another recipe. A failure before commit
// leaves the destination tree and the recipe state untouched.
func (e *Executor) Install(ctx context.Context, cfg *domain.Config, r *domain.Recipe, asDep bool) (*Result, error) {
	ctx, span := e.tracer.Start(ctx, r.Name,
		ports.WithAttribute("hob.recipe", r.Name),
		ports.WithAttribute("hob.version", r.Version))
	defer span.End()

	res, err := e.install(ctx, cfg, r, asDep)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttribute("hob.status", res.Status.String())
	return res, nil
}

//nolint:cyclop // linear state machine
func (e *Executor) install(ctx context.Context, cfg *domain.Config, r *domain.Recipe, asDep bool) (*Result, error) {
	run, err := e.load(cfg, r)
	if err != nil {
		return nil, err
	}
	if err = run.validate(); err != nil {
		return nil, err
	}

	check, err := run.checkInstalled(ctx)
	if check == domain.CheckFailed {
		return nil, err
	}
	if check == domain.Satisfied {
		return e.satisfied(ctx, r, asDep)
	}

	if err = os.MkdirAll(run.ec.BuildDir, domain.PrivateDirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create build directory"), "path", run.ec.BuildDir)
	}
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	// is_installed looks at the live tree. Everything up to the commit runs
	// in a fresh script bound to the staging root, so top-level bindings
	// derived from PREFIX resolve under staging too.
	staging, err := e.installer.Stage(cfg.Prefix)
	if err != nil {
		return nil, err
	}
	run, err = e.loadAt(cfg, r, staging)
	if err != nil {
		e.discard(staging)
		return nil, err
	}
	if err = run.staged(ctx); err != nil {
		run.ec.Prefix = cfg.Prefix
		e.discard(staging)
		return nil, err
	}
	run.ec.Prefix = cfg.Prefix

	files, err := run.commit(ctx, staging, cfg.Prefix)
	if err != nil {
		var ce *domain.CommitError
		if errors.As(err, &ce) {
			return nil, e.recoverCommit(ctx, r, ce, keepAsDep(r, asDep), err)
		}
		return nil, err
	}

	state := domain.State{
		Installed:        true,
		InstalledVersion: r.Version,
		InstalledAt:      e.now().Unix(),
		InstalledFiles:   files,
		InstalledAsDep:   keepAsDep(r, asDep),
	}
	if err = e.persist(ctx, r, state); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		e.logger.Warn(r.Name + ": install produced no files")
	}

	if _, cerr := run.phase(ctx, domain.PhaseCleanup, domain.FnCleanup); cerr != nil {
		e.logger.Warn(cerr.Error())
	}
	return &Result{Recipe: r.Name, Status: StatusInstalled, Files: files}, nil
}

// keepAsDep never demotes an explicitly installed recipe to a dependency.
func keepAsDep(r *domain.Recipe, asDep bool) bool {
	if r.State.Installed && !r.State.InstalledAsDep {
		return false
	}
	return asDep
}

// checkInstalled asks the recipe's is_installed function, falling back to
// the persisted installed flag.
func (r *run) checkInstalled(ctx context.Context) (domain.CheckResult, error) {
	if !r.declares(domain.FnIsInstalled) {
		if r.recipe.State.Installed {
			return domain.Satisfied, nil
		}
		return domain.NotSatisfied, nil
	}

	v, err := r.phase(ctx, domain.PhaseCheckingInstalled, domain.FnIsInstalled)
	if err != nil {
		var pe *domain.PhaseError
		if errors.As(err, &pe) {
			pe.Err = errors.Join(domain.ErrCheckFailed, pe.Err)
		}
		return domain.CheckFailed, err
	}
	if v.Kind != domain.ValueBool {
		err = zerr.With(zerr.Wrap(domain.ErrCheckFailed, "is_installed must return a bool"), "returned", v.Kind.String())
		return domain.CheckFailed, &domain.PhaseError{Recipe: r.recipe.Name, Phase: domain.PhaseCheckingInstalled, Err: err}
	}
	if v.Bool {
		return domain.Satisfied, nil
	}
	return domain.NotSatisfied, nil
}

// satisfied handles an already installed recipe. Installing a dependency
// explicitly promotes it so it is no longer an orphan candidate.
func (e *Executor) satisfied(ctx context.Context, r *domain.Recipe, asDep bool) (*Result, error) {
	if asDep || !r.State.Installed || !r.State.InstalledAsDep {
		return &Result{Recipe: r.Name, Status: StatusSatisfied}, nil
	}
	err := e.store.Update(ctx, r.Path, func(cur *domain.Recipe) (map[string]domain.Value, error) {
		if !cur.State.Installed {
			return nil, nil
		}
		return map[string]domain.Value{domain.VarInstalledAsDep: domain.BoolValue(false)}, nil
	})
	if err != nil {
		return nil, err
	}
	r.State.InstalledAsDep = false
	return &Result{Recipe: r.Name, Status: StatusPromoted}, nil
}

// staged runs every pre-commit phase against the staging root.
func (r *run) staged(ctx context.Context) error {
	r.ec.Produced = nil
	for _, step := range []struct {
		phase domain.Phase
		fn    string
	}{
		{domain.PhaseAcquiring, domain.FnAcquire},
		{domain.PhaseBuilding, domain.FnBuild},
		{domain.PhasePreInstall, domain.FnPreInstall},
		{domain.PhaseInstalling, domain.FnInstall},
		{domain.PhasePostInstall, domain.FnPostInstall},
	} {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := r.phase(ctx, step.phase, step.fn); err != nil {
			return err
		}
	}
	return nil
}

// commit moves the staged tree into prefix.
func (r *run) commit(ctx context.Context, staging, prefix string) ([]string, error) {
	ctx, span := r.e.tracer.Start(ctx, r.recipe.Name+":"+string(domain.PhaseCommitting),
		ports.WithAttribute("hob.produced", len(r.ec.Produced)))
	defer span.End()
	files, err := r.e.installer.Commit(ctx, staging, prefix)
	if err != nil {
		span.RecordError(err)
		return files, err
	}
	span.SetAttribute("hob.files", len(files))
	return files, nil
}

func (e *Executor) discard(staging string) {
	if err := e.installer.Discard(staging); err != nil {
		e.logger.Warn("failed to remove staging directory " + staging + ": " + err.Error())
	}
}

// recoverCommit records the files a failed commit already moved so that a
// forced removal can clean them up.
func (e *Executor) recoverCommit(ctx context.Context, r *domain.Recipe, ce *domain.CommitError, asDep bool, cause error) error {
	err := zerr.With(zerr.Wrap(cause, "run 'hob remove --force "+r.Name+"' to clean up"), "recipe", r.Name)
	if len(ce.Committed) == 0 {
		return err
	}
	state := domain.State{
		Installed:        true,
		InstalledVersion: r.Version,
		InstalledAt:      e.now().Unix(),
		InstalledFiles:   ce.Committed,
		InstalledAsDep:   asDep,
	}
	if perr := e.persist(ctx, r, state); perr != nil {
		return errors.Join(err, perr)
	}
	return err
}

func (e *Executor) persist(ctx context.Context, r *domain.Recipe, state domain.State) error {
	err := e.store.Update(ctx, r.Path, func(*domain.Recipe) (map[string]domain.Value, error) {
		return state.Bindings(), nil
	})
	if err != nil {
		return err
	}
	r.State = state
	return nil
}
