package lifecycle

import (
	"context"

	"go.trai.ch/hob/internal/core/domain"
	"go.trai.ch/zerr"
)

// Update is the outcome of a check_update call.
type Update struct {
	Recipe   string
	Previous string
	Latest   string
}

// Changed reports whether a newer version was written back.
func (u *Update) Changed() bool { return u.Previous != u.Latest }

// CheckUpdate calls the recipe's check_update function. A returned string
// that differs from the declared version is written back to version under
// the recipe lock; unit means the recipe is up to date.
func (e *Executor) CheckUpdate(ctx context.Context, cfg *domain.Config, r *domain.Recipe) (*Update, error) {
	run, err := e.load(cfg, r)
	if err != nil {
		return nil, err
	}
	if !run.declares(domain.FnCheckUpdate) {
		return nil, zerr.With(zerr.Wrap(domain.ErrNoUpdateCheck, r.Name), "recipe", r.Name)
	}

	ctx, span := e.tracer.Start(ctx, r.Name)
	defer span.End()

	v, err := run.phase(ctx, domain.PhaseCheckUpdate, domain.FnCheckUpdate)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	up := &Update{Recipe: r.Name, Previous: r.Version, Latest: r.Version}
	switch v.Kind {
	case domain.ValueUnit:
		return up, nil
	case domain.ValueString:
		up.Latest = v.Str
	default:
		err = zerr.With(zerr.Wrap(domain.ErrMalformedValue, "check_update must return a string or ()"), "returned", v.Kind.String())
		err = &domain.ParseError{Path: r.Path, Variable: domain.VarVersion, Reason: err}
		span.RecordError(err)
		return nil, err
	}
	if !up.Changed() {
		return up, nil
	}

	err = e.store.Update(ctx, r.Path, func(cur *domain.Recipe) (map[string]domain.Value, error) {
		up.Previous = cur.Version
		if cur.Version == up.Latest {
			return nil, nil
		}
		return map[string]domain.Value{domain.VarVersion: domain.StringValue(up.Latest)}, nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	r.Version = up.Latest
	span.SetAttribute("hob.latest", up.Latest)
	return up, nil
}
