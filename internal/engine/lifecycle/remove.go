package lifecycle

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/hob/internal/core/domain"
	"go.trai.ch/hob/internal/core/ports"
	"go.trai.ch/zerr"
)

// RemoveOptions controls the removal state machine.
type RemoveOptions struct {
	// Force removes the recipe even when installed recipes depend on it.
	Force bool
	// Dependents are the installed recipes listing the recipe as a runtime
	// dependency, as computed from the current graph.
	Dependents []string
}

// Remove runs the removal state machine for r. If some files cannot be
// deleted the recipe stays installed and its file list shrinks to what
// remains.
func (e *Executor) Remove(ctx context.Context, cfg *domain.Config, r *domain.Recipe, opts RemoveOptions) error {
	ctx, span := e.tracer.Start(ctx, r.Name,
		ports.WithAttribute("hob.recipe", r.Name),
		ports.WithAttribute("hob.operation", "remove"))
	defer span.End()

	if err := e.remove(ctx, cfg, r, opts); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (e *Executor) remove(ctx context.Context, cfg *domain.Config, r *domain.Recipe, opts RemoveOptions) error {
	if !r.State.Installed {
		return zerr.With(zerr.Wrap(domain.ErrNotInstalled, r.Name), "recipe", r.Name)
	}
	if len(opts.Dependents) > 0 {
		if !opts.Force {
			return &domain.DependentsError{Recipe: r.Name, Dependents: opts.Dependents}
		}
		e.logger.Warn(r.Name + " is still required by " + strings.Join(opts.Dependents, ", ") + "; removing anyway")
	}

	run, err := e.load(cfg, r)
	if err != nil {
		return err
	}
	if _, err = run.phase(ctx, domain.PhasePreRemove, domain.FnPreRemove); err != nil {
		return err
	}

	remaining := e.deleteFiles(ctx, r, cfg.Prefix)
	if len(remaining) > 0 {
		state := r.State
		state.InstalledFiles = remaining
		if perr := e.persist(ctx, r, state); perr != nil {
			return perr
		}
		return &domain.RemoveError{Recipe: r.Name, Remaining: remaining}
	}

	// Files are gone at this point; hook failures cannot undo that, so they
	// are reported without keeping the recipe marked as installed.
	for _, step := range []struct {
		phase domain.Phase
		fn    string
	}{
		{domain.PhasePostRemove, domain.FnPostRemove},
		{domain.PhaseCustomRemove, domain.FnRemove},
	} {
		if _, herr := run.phase(ctx, step.phase, step.fn); herr != nil {
			e.logger.Warn(herr.Error())
		}
	}

	return e.persist(ctx, r, domain.Cleared())
}

// deleteFiles removes every installed file and then the directories left
// empty, never climbing above prefix. It returns the files that still exist.
func (e *Executor) deleteFiles(ctx context.Context, r *domain.Recipe, prefix string) []string {
	_, span := e.tracer.Start(ctx, r.Name+":"+string(domain.PhaseDeletingFiles),
		ports.WithAttribute("hob.files", len(r.State.InstalledFiles)))
	defer span.End()

	var remaining []string
	dirs := make(map[string]bool)
	for _, file := range r.State.InstalledFiles {
		if !filepath.IsAbs(file) {
			e.logger.Warn(r.Name + ": refusing to delete relative path " + file)
			remaining = append(remaining, file)
			continue
		}
		err := os.Remove(file)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			span.RecordError(err)
			e.logger.Warn(err.Error())
			remaining = append(remaining, file)
			continue
		}
		dirs[filepath.Dir(file)] = true
	}

	removeEmptyDirs(dirs, prefix)
	return remaining
}

// removeEmptyDirs removes each directory and its parents while they are
// empty and strictly inside prefix. Deeper directories go first.
func removeEmptyDirs(dirs map[string]bool, prefix string) {
	prefix = filepath.Clean(prefix)
	ordered := make([]string, 0, len(dirs))
	for d := range dirs {
		ordered = append(ordered, d)
	}
	slices.SortFunc(ordered, func(a, b string) int {
		return strings.Count(b, string(filepath.Separator)) - strings.Count(a, string(filepath.Separator))
	})

	for _, dir := range ordered {
		for d := filepath.Clean(dir); isBelow(d, prefix); d = filepath.Dir(d) {
			if os.Remove(d) != nil {
				break
			}
		}
	}
}

func isBelow(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
