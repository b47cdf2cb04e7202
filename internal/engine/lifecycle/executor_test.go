package lifecycle_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.trai.ch/hob/internal/core/domain"
	"go.trai.ch/hob/internal/core/ports"
	"go.trai.ch/hob/internal/core/ports/mocks"
	"go.trai.ch/hob/internal/engine/lifecycle"
	"go.uber.org/mock/gomock"
)

var installedAt = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	exec      *lifecycle.Executor
	scripts   *mocks.MockScriptEngine
	script    *mocks.MockScript
	store     *mocks.MockRecipeStore
	installer *mocks.MockInstaller
	logger    *mocks.MockLogger
	cfg       *domain.Config

	// loadErr, when set, is returned by the script engine.
	loadErr error
	// ec is the execution context handed to the script engine.
	ec *domain.ExecutionContext
	// loads records the prefix of every loaded execution context.
	loads []string
	// fns lists the zero-parameter functions the recipe declares.
	fns map[string]bool
	// writes collects every binding map persisted through the store.
	writes []map[string]domain.Value
	// phases records the span names started, in order.
	phases []string
}

func newFixture(t *testing.T, fns ...string) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	root := t.TempDir()
	f := &fixture{
		scripts:   mocks.NewMockScriptEngine(ctrl),
		script:    mocks.NewMockScript(ctrl),
		store:     mocks.NewMockRecipeStore(ctrl),
		installer: mocks.NewMockInstaller(ctrl),
		logger:    mocks.NewMockLogger(ctrl),
		cfg: &domain.Config{
			RecipesPath: filepath.Join(root, "recipes"),
			Prefix:      filepath.Join(root, "local"),
			BuildDir:    filepath.Join(root, "build"),
			LockTimeout: time.Second,
			Shell:       "/bin/bash",
		},
		fns: make(map[string]bool),
	}
	for _, fn := range fns {
		f.fns[fn] = true
	}

	span := mocks.NewMockSpan(ctrl)
	span.EXPECT().End().AnyTimes()
	span.EXPECT().RecordError(gomock.Any()).AnyTimes()
	span.EXPECT().SetAttribute(gomock.Any(), gomock.Any()).AnyTimes()
	span.EXPECT().Write(gomock.Any()).DoAndReturn(func(p []byte) (int, error) { return len(p), nil }).AnyTimes()

	tracer := mocks.NewMockTracer(ctrl)
	tracer.EXPECT().Start(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, name string, _ ...ports.SpanOption) (context.Context, ports.Span) {
			f.phases = append(f.phases, name)
			return ctx, span
		},
	).AnyTimes()

	f.scripts.EXPECT().Load(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ string, ec *domain.ExecutionContext) (ports.Script, error) {
			if f.loadErr != nil {
				return nil, f.loadErr
			}
			f.ec = ec
			f.loads = append(f.loads, ec.Prefix)
			return f.script, nil
		},
	).AnyTimes()
	f.script.EXPECT().HasFunction(gomock.Any(), gomock.Any()).DoAndReturn(
		func(name string, arity int) bool { return arity == 0 && f.fns[name] },
	).AnyTimes()

	f.exec = lifecycle.New(f.scripts, f.store, f.installer, tracer, f.logger)
	f.exec.SetClock(func() time.Time { return installedAt })
	return f
}

// expectPersist applies each store update to a copy of r.
func (f *fixture) expectPersist(r *domain.Recipe, times int) {
	f.store.EXPECT().Update(gomock.Any(), r.Path, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, fn func(*domain.Recipe) (map[string]domain.Value, error)) error {
			current := *r
			updates, err := fn(&current)
			if err != nil {
				return err
			}
			if updates != nil {
				f.writes = append(f.writes, updates)
			}
			return nil
		},
	).Times(times)
}

func (f *fixture) expectCall(name string) *gomock.Call {
	return f.script.EXPECT().Call(gomock.Any(), name).Return(domain.UnitValue(), nil)
}

func recipe(t *testing.T, name string) *domain.Recipe {
	t.Helper()
	return &domain.Recipe{
		Path:    filepath.Join("/recipes", name+domain.RecipeExt),
		Name:    name,
		Version: "1.2.0",
		State:   domain.Cleared(),
	}
}

func lastWrite(t *testing.T, f *fixture) map[string]domain.Value {
	t.Helper()
	require.NotEmpty(t, f.writes)
	return f.writes[len(f.writes)-1]
}
