package lifecycle_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/hob/internal/core/domain"
	"go.trai.ch/hob/internal/engine/lifecycle"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

func TestInstall_AllPhases(t *testing.T) {
	f := newFixture(t, "acquire", "build", "pre_install", "install", "post_install", "cleanup")
	r := recipe(t, "ripgrep")
	files := []string{filepath.Join(f.cfg.Prefix, "bin", "rg")}

	stagingRoot := filepath.Join(t.TempDir(), ".hob-staging-1")
	assertStaged := func(context.Context, string) (domain.Value, error) {
		assert.Equal(t, stagingRoot, f.ec.Prefix, "install phases see the staging root")
		return domain.UnitValue(), nil
	}
	gomock.InOrder(
		f.installer.EXPECT().Stage(f.cfg.Prefix).Return(stagingRoot, nil),
		f.script.EXPECT().Call(gomock.Any(), "acquire").DoAndReturn(func(ctx context.Context, fn string) (domain.Value, error) {
			assert.DirExists(t, f.ec.BuildDir)
			return assertStaged(ctx, fn)
		}),
		f.script.EXPECT().Call(gomock.Any(), "build").DoAndReturn(assertStaged),
		f.script.EXPECT().Call(gomock.Any(), "pre_install").DoAndReturn(assertStaged),
		f.script.EXPECT().Call(gomock.Any(), "install").DoAndReturn(assertStaged),
		f.script.EXPECT().Call(gomock.Any(), "post_install").DoAndReturn(assertStaged),
		f.installer.EXPECT().Commit(gomock.Any(), stagingRoot, f.cfg.Prefix).Return(files, nil),
		f.expectCall("cleanup"),
	)
	f.expectPersist(r, 1)

	res, err := f.exec.Install(context.Background(), f.cfg, r, true)
	require.NoError(t, err)
	assert.Equal(t, &lifecycle.Result{Recipe: "ripgrep", Status: lifecycle.StatusInstalled, Files: files}, res)

	assert.Equal(t, map[string]domain.Value{
		domain.VarInstalled:        domain.BoolValue(true),
		domain.VarInstalledVersion: domain.StringValue("1.2.0"),
		domain.VarInstalledAt:      domain.IntValue(installedAt.Unix()),
		domain.VarInstalledFiles:   domain.StringsValue(files),
		domain.VarInstalledAsDep:   domain.BoolValue(true),
	}, lastWrite(t, f))
	assert.True(t, r.State.Installed)
	assert.Equal(t, f.cfg.Prefix, f.ec.Prefix, "prefix is restored after staging")
	assert.Equal(t, "/bin/bash", f.ec.Shell)
	assert.Equal(t, domain.RecipeBuildDir(f.cfg.BuildDir, "ripgrep"), f.ec.BuildDir)
	assert.Equal(t, []string{
		"ripgrep",
		"ripgrep:acquire",
		"ripgrep:build",
		"ripgrep:pre_install",
		"ripgrep:install",
		"ripgrep:post_install",
		"ripgrep:commit",
		"ripgrep:cleanup",
	}, f.phases)
}

func TestInstall_OptionalPhasesSkipped(t *testing.T) {
	f := newFixture(t, "acquire", "install")
	r := recipe(t, "zlib")

	f.expectCall("acquire")
	f.installer.EXPECT().Stage(f.cfg.Prefix).Return("/staging", nil)
	f.expectCall("install")
	f.installer.EXPECT().Commit(gomock.Any(), "/staging", f.cfg.Prefix).Return([]string{"/p/lib/libz.a"}, nil)
	f.expectPersist(r, 1)

	res, err := f.exec.Install(context.Background(), f.cfg, r, false)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusInstalled, res.Status)
	assert.Equal(t, domain.BoolValue(false), lastWrite(t, f)[domain.VarInstalledAsDep])
	assert.Equal(t, []string{"zlib", "zlib:acquire", "zlib:install", "zlib:commit"}, f.phases)
}

func TestInstall_SatisfiedByInstalledFlag(t *testing.T) {
	f := newFixture(t, "acquire", "install")
	r := recipe(t, "zlib")
	r.State = domain.State{Installed: true, InstalledVersion: "1.2.0"}

	res, err := f.exec.Install(context.Background(), f.cfg, r, false)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusSatisfied, res.Status)
	assert.Empty(t, f.writes)
}

func TestInstall_PromotesDependency(t *testing.T) {
	f := newFixture(t, "acquire", "install")
	r := recipe(t, "zlib")
	r.State = domain.State{Installed: true, InstalledVersion: "1.2.0", InstalledAsDep: true}
	f.expectPersist(r, 1)

	res, err := f.exec.Install(context.Background(), f.cfg, r, false)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusPromoted, res.Status)
	assert.Equal(t, map[string]domain.Value{domain.VarInstalledAsDep: domain.BoolValue(false)}, lastWrite(t, f))
	assert.False(t, r.State.InstalledAsDep)
}

func TestInstall_DependencyStaysDependency(t *testing.T) {
	f := newFixture(t, "acquire", "install")
	r := recipe(t, "zlib")
	r.State = domain.State{Installed: true, InstalledVersion: "1.2.0", InstalledAsDep: true}

	res, err := f.exec.Install(context.Background(), f.cfg, r, true)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusSatisfied, res.Status)
}

func TestInstall_CustomCheck(t *testing.T) {
	tests := []struct {
		name      string
		returned  domain.Value
		callErr   error
		satisfied bool
		wantErr   bool
	}{
		{name: "true", returned: domain.BoolValue(true), satisfied: true},
		{name: "false", returned: domain.BoolValue(false)},
		{name: "not a bool", returned: domain.StringValue("yes"), wantErr: true},
		{name: "throws", callErr: &domain.ScriptError{Function: "is_installed", Message: "boom"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "is_installed", "acquire", "install")
			r := recipe(t, "jq")
			r.State = domain.State{Installed: true, InstalledVersion: "1.2.0"}

			f.script.EXPECT().Call(gomock.Any(), "is_installed").Return(tt.returned, tt.callErr)
			if !tt.satisfied && !tt.wantErr {
				f.expectCall("acquire")
				f.installer.EXPECT().Stage(gomock.Any()).Return("/staging", nil)
				f.expectCall("install")
				f.installer.EXPECT().Commit(gomock.Any(), "/staging", f.cfg.Prefix).Return([]string{"/p/bin/jq"}, nil)
				f.expectPersist(r, 1)
			}

			res, err := f.exec.Install(context.Background(), f.cfg, r, false)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrCheckFailed)
				var pe *domain.PhaseError
				require.ErrorAs(t, err, &pe)
				assert.Equal(t, domain.PhaseCheckingInstalled, pe.Phase)
				assert.Equal(t, domain.KindPhase, domain.KindOf(err))
				return
			}
			require.NoError(t, err)
			if tt.satisfied {
				assert.Equal(t, lifecycle.StatusSatisfied, res.Status)
			} else {
				assert.Equal(t, lifecycle.StatusInstalled, res.Status)
			}
		})
	}
}

func TestInstall_MissingRequiredFunction(t *testing.T) {
	f := newFixture(t, "acquire")
	r := recipe(t, "broken")

	_, err := f.exec.Install(context.Background(), f.cfg, r, false)
	require.ErrorIs(t, err, domain.ErrMissingFunction)
	assert.Equal(t, domain.KindRecipe, domain.KindOf(err))
}

func TestInstall_LoadFailure(t *testing.T) {
	f := newFixture(t)
	f.loadErr = &domain.ParseError{Path: "/recipes/bad.recipe", Reason: zerr.Wrap(domain.ErrScriptSyntax, "expected ';'")}

	_, err := f.exec.Install(context.Background(), f.cfg, recipe(t, "bad"), false)
	require.ErrorIs(t, err, domain.ErrScriptSyntax)
	assert.Equal(t, domain.KindRecipe, domain.KindOf(err))
}

func TestInstall_AcquireFailure(t *testing.T) {
	f := newFixture(t, "acquire", "install")
	r := recipe(t, "curl")

	f.installer.EXPECT().Stage(f.cfg.Prefix).Return("/staging", nil)
	f.script.EXPECT().Call(gomock.Any(), "acquire").
		Return(domain.Value{}, &domain.ScriptError{Function: "acquire", Message: "network error: 404"})
	f.installer.EXPECT().Discard("/staging").Return(nil)

	_, err := f.exec.Install(context.Background(), f.cfg, r, false)
	var pe *domain.PhaseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, domain.PhaseAcquiring, pe.Phase)
	assert.Equal(t, "curl", pe.Recipe)
	assert.Empty(t, f.writes)
	assert.False(t, r.State.Installed)
}

func TestInstall_ScriptReloadedOnStagingRoot(t *testing.T) {
	f := newFixture(t, "is_installed", "acquire", "install")
	r := recipe(t, "fd")

	f.script.EXPECT().Call(gomock.Any(), "is_installed").Return(domain.BoolValue(false), nil)
	f.installer.EXPECT().Stage(f.cfg.Prefix).Return("/staging", nil)
	f.expectCall("acquire")
	f.expectCall("install")
	f.installer.EXPECT().Commit(gomock.Any(), "/staging", f.cfg.Prefix).Return([]string{"/p/bin/fd"}, nil)
	f.expectPersist(r, 1)

	_, err := f.exec.Install(context.Background(), f.cfg, r, false)
	require.NoError(t, err)
	assert.Equal(t, []string{f.cfg.Prefix, "/staging"}, f.loads)
}

func TestInstall_StagedLoadFailureDiscards(t *testing.T) {
	f := newFixture(t, "acquire", "install")
	r := recipe(t, "fd")

	f.installer.EXPECT().Stage(f.cfg.Prefix).DoAndReturn(func(string) (string, error) {
		f.loadErr = &domain.ParseError{Path: r.Path, Reason: zerr.Wrap(domain.ErrScriptSyntax, "expected ';'")}
		return "/staging", nil
	})
	f.installer.EXPECT().Discard("/staging").Return(nil)

	_, err := f.exec.Install(context.Background(), f.cfg, r, false)
	require.ErrorIs(t, err, domain.ErrScriptSyntax)
	assert.Empty(t, f.writes)
}

func TestInstall_InstallFailureDiscardsStaging(t *testing.T) {
	f := newFixture(t, "acquire", "install", "post_install")
	r := recipe(t, "curl")

	f.expectCall("acquire")
	f.installer.EXPECT().Stage(f.cfg.Prefix).Return("/staging", nil)
	f.script.EXPECT().Call(gomock.Any(), "install").
		Return(domain.Value{}, &domain.ScriptError{Function: "install", Message: "make: exit status 2"})
	f.installer.EXPECT().Discard("/staging").Return(nil)

	_, err := f.exec.Install(context.Background(), f.cfg, r, false)
	var pe *domain.PhaseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, domain.PhaseInstalling, pe.Phase)
	assert.ErrorIs(t, err, domain.ErrScriptFailed)
	assert.Equal(t, f.cfg.Prefix, f.ec.Prefix)
	assert.Empty(t, f.writes)
}

func TestInstall_DiscardFailureWarns(t *testing.T) {
	f := newFixture(t, "acquire", "install")
	r := recipe(t, "curl")

	f.expectCall("acquire")
	f.installer.EXPECT().Stage(f.cfg.Prefix).Return("/staging", nil)
	f.script.EXPECT().Call(gomock.Any(), "install").Return(domain.Value{}, errors.New("boom"))
	f.installer.EXPECT().Discard("/staging").Return(os.ErrPermission)
	f.logger.EXPECT().Warn(gomock.Any())

	_, err := f.exec.Install(context.Background(), f.cfg, r, false)
	require.ErrorIs(t, err, domain.ErrPhaseFailed)
}

func TestInstall_CommitFailureRecordsCommittedFiles(t *testing.T) {
	f := newFixture(t, "acquire", "install")
	r := recipe(t, "curl")
	committed := []string{"/p/bin/curl"}

	f.expectCall("acquire")
	f.installer.EXPECT().Stage(f.cfg.Prefix).Return("/staging", nil)
	f.expectCall("install")
	commitErr := &domain.CommitError{Committed: committed, Failed: "/p/lib/libcurl.so", Err: os.ErrPermission}
	f.installer.EXPECT().Commit(gomock.Any(), "/staging", f.cfg.Prefix).Return(committed, commitErr)
	f.expectPersist(r, 1)

	_, err := f.exec.Install(context.Background(), f.cfg, r, true)
	require.ErrorIs(t, err, domain.ErrCommitFailed)
	assert.Contains(t, err.Error(), "hob remove --force curl")

	w := lastWrite(t, f)
	assert.Equal(t, domain.BoolValue(true), w[domain.VarInstalled])
	assert.Equal(t, domain.StringsValue(committed), w[domain.VarInstalledFiles])
	assert.Equal(t, domain.BoolValue(true), w[domain.VarInstalledAsDep])
}

func TestInstall_CommitFailureWithoutCommittedFiles(t *testing.T) {
	f := newFixture(t, "acquire", "install")
	r := recipe(t, "curl")

	f.expectCall("acquire")
	f.installer.EXPECT().Stage(f.cfg.Prefix).Return("/staging", nil)
	f.expectCall("install")
	f.installer.EXPECT().Commit(gomock.Any(), "/staging", f.cfg.Prefix).
		Return(nil, &domain.CommitError{Failed: "/p/bin/curl", Err: os.ErrPermission})

	_, err := f.exec.Install(context.Background(), f.cfg, r, false)
	require.ErrorIs(t, err, domain.ErrCommitFailed)
	assert.Empty(t, f.writes)
}

func TestInstall_CleanupFailureWarns(t *testing.T) {
	f := newFixture(t, "acquire", "install", "cleanup")
	r := recipe(t, "curl")

	f.expectCall("acquire")
	f.installer.EXPECT().Stage(f.cfg.Prefix).Return("/staging", nil)
	f.expectCall("install")
	f.installer.EXPECT().Commit(gomock.Any(), "/staging", f.cfg.Prefix).Return([]string{"/p/bin/curl"}, nil)
	f.expectPersist(r, 1)
	f.script.EXPECT().Call(gomock.Any(), "cleanup").Return(domain.Value{}, errors.New("rm failed"))
	f.logger.EXPECT().Warn(gomock.Any())

	res, err := f.exec.Install(context.Background(), f.cfg, r, false)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusInstalled, res.Status)
}

func TestInstall_NoFilesWarns(t *testing.T) {
	f := newFixture(t, "acquire", "install")
	r := recipe(t, "meta")

	f.expectCall("acquire")
	f.installer.EXPECT().Stage(f.cfg.Prefix).Return("/staging", nil)
	f.expectCall("install")
	f.installer.EXPECT().Commit(gomock.Any(), "/staging", f.cfg.Prefix).Return(nil, nil)
	f.expectPersist(r, 1)
	f.logger.EXPECT().Warn("meta: install produced no files")

	_, err := f.exec.Install(context.Background(), f.cfg, r, false)
	require.NoError(t, err)
	assert.Equal(t, domain.StringsValue([]string{}), lastWrite(t, f)[domain.VarInstalledFiles])
}

func TestInstall_Cancelled(t *testing.T) {
	f := newFixture(t, "acquire", "install")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.exec.Install(ctx, f.cfg, recipe(t, "curl"), false)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.writes)
}
