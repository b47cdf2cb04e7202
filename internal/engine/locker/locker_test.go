package locker_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/hob/internal/core/domain"
	"go.trai.ch/hob/internal/core/ports/mocks"
	"go.trai.ch/hob/internal/engine/locker"
	"go.uber.org/mock/gomock"
)

var cfg = &domain.Config{RecipesPath: "/recipes"}

func graph(t *testing.T, versions map[string]string) *domain.Graph {
	t.Helper()
	g := domain.NewGraph()
	for name, v := range versions {
		require.NoError(t, g.AddRecipe(&domain.Recipe{Name: name, Version: v, Path: "/recipes/" + name + domain.RecipeExt}))
	}
	return g
}

func lockOf(packages map[string]string) *domain.Lockfile {
	l := domain.NewLockfile()
	for k, v := range packages {
		l.Packages[k] = v
	}
	return l
}

func TestPath(t *testing.T) {
	assert.Equal(t, filepath.Join("/recipes", domain.LockfileName), locker.Path(cfg))
}

func TestGenerate_IgnoresInstalledState(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockLockfileStore(ctrl)
	g := graph(t, map[string]string{"zlib": "1.3.1", "jq": "nightly"})
	zlib, _ := g.Recipe("zlib")
	zlib.State = domain.State{Installed: true, InstalledVersion: "1.2.0"}

	store.EXPECT().Save(gomock.Any(), locker.Path(cfg), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, lock *domain.Lockfile) error {
			assert.Equal(t, map[string]string{"zlib": "1.3.1", "jq": "nightly"}, lock.Packages)
			return nil
		})

	lock, err := locker.New(store).Generate(context.Background(), cfg, g)
	require.NoError(t, err)
	assert.Len(t, lock.Packages, 2)
}

func TestVerify_ReportsEveryMismatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockLockfileStore(ctrl)
	store.EXPECT().Load(locker.Path(cfg)).Return(lockOf(map[string]string{"a": "1.0", "b": "2.0", "gone": "1"}), nil)
	g := graph(t, map[string]string{"a": "1.0", "b": "2.1", "new": "0.1"})

	mismatches, err := locker.New(store).Verify(cfg, g)
	require.NoError(t, err)
	assert.Equal(t, []domain.Mismatch{
		{Name: "b", Locked: "2.0", Current: "2.1"},
		{Name: "gone", Locked: "1", Current: domain.MissingMarker},
		{Name: "new", Locked: domain.UnlockedMarker, Current: "0.1"},
	}, mismatches)
}

func TestVerifyPlan(t *testing.T) {
	g := graph(t, map[string]string{"app": "2.0", "lib": "1.1", "other": "9"})
	plan := &domain.Plan{Target: "app", Entries: []domain.PlanEntry{{Name: "lib", IsDep: true}, {Name: "app"}}}

	tests := []struct {
		name   string
		locked map[string]string
		want   []domain.Mismatch
	}{
		{"consistent", map[string]string{"app": "2.0", "lib": "1.1", "other": "1"}, nil},
		{"drift", map[string]string{"app": "1.0", "lib": "1.0"}, []domain.Mismatch{
			{Name: "app", Locked: "1.0", Current: "2.0"},
			{Name: "lib", Locked: "1.0", Current: "1.1"},
		}},
		{"unlocked", map[string]string{"app": "2.0"}, []domain.Mismatch{
			{Name: "lib", Locked: domain.UnlockedMarker, Current: "1.1"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mocks.NewMockLockfileStore(gomock.NewController(t))
			store.EXPECT().Load(gomock.Any()).Return(lockOf(tt.locked), nil)

			err := locker.New(store).VerifyPlan(cfg, g, plan)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			var lm *domain.LockMismatchError
			require.ErrorAs(t, err, &lm)
			assert.Equal(t, tt.want, lm.Mismatches)
			assert.Equal(t, 4, domain.ExitCode(err))
		})
	}
}

func TestVerifyPlan_MissingLockfile(t *testing.T) {
	store := mocks.NewMockLockfileStore(gomock.NewController(t))
	store.EXPECT().Load(gomock.Any()).Return(nil, domain.ErrLockfileNotFound)

	err := locker.New(store).VerifyPlan(cfg, domain.NewGraph(), &domain.Plan{})
	require.ErrorIs(t, err, domain.ErrLockfileNotFound)
}
