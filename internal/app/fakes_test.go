package app_test

import (
	"context"

	"go.trai.ch/hob/internal/core/domain"
	"go.trai.ch/hob/internal/engine/lifecycle"
	"go.trai.ch/zerr"
)

type fakePlanner struct {
	graph *domain.Graph
}

func (p *fakePlanner) Graph(context.Context, string) (*domain.Graph, error) {
	return p.graph, nil
}

func (p *fakePlanner) Resolve(_ context.Context, _, target string, noDeps bool) (*domain.Graph, *domain.Plan, error) {
	r, ok := p.graph.Recipe(target)
	if !ok {
		return nil, nil, zerr.Wrap(domain.ErrRecipeNotFound, target)
	}
	if noDeps {
		return p.graph, domain.SinglePlan(r), nil
	}
	plan, err := p.graph.Plan(target)
	if err != nil {
		return nil, nil, err
	}
	return p.graph, plan, p.graph.ValidateConstraints(plan)
}

type call struct {
	op    string
	name  string
	asDep bool
	opts  lifecycle.RemoveOptions
}

type fakeLifecycle struct {
	calls   []call
	fail    map[string]error
	updates map[string]*lifecycle.Update
}

func (l *fakeLifecycle) Install(_ context.Context, _ *domain.Config, r *domain.Recipe, asDep bool) (*lifecycle.Result, error) {
	l.calls = append(l.calls, call{op: "install", name: r.Name, asDep: asDep})
	if err := l.fail[r.Name]; err != nil {
		return nil, err
	}
	if r.State.Installed {
		return &lifecycle.Result{Recipe: r.Name, Status: lifecycle.StatusSatisfied}, nil
	}
	r.State = domain.State{Installed: true, InstalledVersion: r.Version, InstalledAsDep: asDep}
	return &lifecycle.Result{Recipe: r.Name, Status: lifecycle.StatusInstalled}, nil
}

func (l *fakeLifecycle) Remove(_ context.Context, _ *domain.Config, r *domain.Recipe, opts lifecycle.RemoveOptions) error {
	l.calls = append(l.calls, call{op: "remove", name: r.Name, opts: opts})
	if err := l.fail[r.Name]; err != nil {
		return err
	}
	r.State = domain.Cleared()
	return nil
}

func (l *fakeLifecycle) CheckUpdate(_ context.Context, _ *domain.Config, r *domain.Recipe) (*lifecycle.Update, error) {
	l.calls = append(l.calls, call{op: "check_update", name: r.Name})
	if err := l.fail[r.Name]; err != nil {
		return nil, err
	}
	up, ok := l.updates[r.Name]
	if !ok {
		return nil, domain.ErrNoUpdateCheck
	}
	return up, nil
}

func (l *fakeLifecycle) ops() []string {
	out := make([]string, len(l.calls))
	for i, c := range l.calls {
		out[i] = c.op + " " + c.name
	}
	return out
}

type fakeLocks struct {
	lock       *domain.Lockfile
	mismatches []domain.Mismatch
	planErr    error
	generated  bool
}

func (f *fakeLocks) Generate(context.Context, *domain.Config, *domain.Graph) (*domain.Lockfile, error) {
	f.generated = true
	return f.lock, nil
}

func (f *fakeLocks) Load(*domain.Config) (*domain.Lockfile, error) {
	if f.lock == nil {
		return nil, domain.ErrLockfileNotFound
	}
	return f.lock, nil
}

func (f *fakeLocks) Verify(*domain.Config, *domain.Graph) ([]domain.Mismatch, error) {
	return f.mismatches, nil
}

func (f *fakeLocks) VerifyPlan(*domain.Config, *domain.Graph, *domain.Plan) error {
	return f.planErr
}
