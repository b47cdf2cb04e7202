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
	"go.uber.org/mock/gomock"
)

// installTree creates files under the fixture prefix and marks r installed with them.
func installTree(t *testing.T, f *fixture, r *domain.Recipe, rel ...string) []string {
	t.Helper()
	var files []string
	for _, p := range rel {
		full := filepath.Join(f.cfg.Prefix, p)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), domain.DirPerm))
		require.NoError(t, os.WriteFile(full, []byte(p), domain.FilePerm))
		files = append(files, full)
	}
	r.State = domain.State{Installed: true, InstalledVersion: r.Version, InstalledAt: 1, InstalledFiles: files}
	return files
}

func TestRemove_DeletesFilesAndEmptyDirs(t *testing.T) {
	f := newFixture(t, "acquire", "install", "pre_remove", "post_remove", "remove")
	r := recipe(t, "ripgrep")
	installTree(t, f, r, "bin/rg", "share/doc/ripgrep/README", "share/man/man1/rg.1")
	other := filepath.Join(f.cfg.Prefix, "share", "man", "man1", "jq.1")
	require.NoError(t, os.WriteFile(other, nil, domain.FilePerm))

	gomock.InOrder(
		f.expectCall("pre_remove"),
		f.script.EXPECT().Call(gomock.Any(), "post_remove").DoAndReturn(func(context.Context, string) (domain.Value, error) {
			assert.NoFileExists(t, filepath.Join(f.cfg.Prefix, "bin", "rg"))
			return domain.UnitValue(), nil
		}),
		f.expectCall("remove"),
	)
	f.expectPersist(r, 1)

	err := f.exec.Remove(context.Background(), f.cfg, r, lifecycle.RemoveOptions{})
	require.NoError(t, err)

	assert.Equal(t, domain.Cleared().Bindings(), lastWrite(t, f))
	assert.False(t, r.State.Installed)
	assert.NoDirExists(t, filepath.Join(f.cfg.Prefix, "bin"))
	assert.NoDirExists(t, filepath.Join(f.cfg.Prefix, "share", "doc"))
	assert.FileExists(t, other, "unrelated files survive")
	assert.DirExists(t, f.cfg.Prefix, "the prefix itself is never removed")
	assert.Equal(t, []string{
		"ripgrep", "ripgrep:pre_remove", "ripgrep:delete_files", "ripgrep:post_remove", "ripgrep:remove",
	}, f.phases)
}

func TestRemove_NotInstalled(t *testing.T) {
	f := newFixture(t, "acquire", "install")
	err := f.exec.Remove(context.Background(), f.cfg, recipe(t, "zlib"), lifecycle.RemoveOptions{})
	require.ErrorIs(t, err, domain.ErrNotInstalled)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestRemove_BlockedByDependents(t *testing.T) {
	f := newFixture(t, "acquire", "install")
	r := recipe(t, "zlib")
	files := installTree(t, f, r, "lib/libz.so")

	err := f.exec.Remove(context.Background(), f.cfg, r, lifecycle.RemoveOptions{Dependents: []string{"curl"}})
	var de *domain.DependentsError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, []string{"curl"}, de.Dependents)
	assert.Equal(t, domain.KindDependency, domain.KindOf(err))
	assert.FileExists(t, files[0])
	assert.Empty(t, f.writes)
}

func TestRemove_ForcedPastDependents(t *testing.T) {
	f := newFixture(t, "acquire", "install")
	r := recipe(t, "zlib")
	files := installTree(t, f, r, "lib/libz.so")
	f.logger.EXPECT().Warn("zlib is still required by curl; removing anyway")
	f.expectPersist(r, 1)

	err := f.exec.Remove(context.Background(), f.cfg, r, lifecycle.RemoveOptions{Force: true, Dependents: []string{"curl"}})
	require.NoError(t, err)
	assert.NoFileExists(t, files[0])
	assert.False(t, r.State.Installed)
}

func TestRemove_PreRemoveFailureKeepsFiles(t *testing.T) {
	f := newFixture(t, "acquire", "install", "pre_remove")
	r := recipe(t, "zlib")
	files := installTree(t, f, r, "lib/libz.so")
	f.script.EXPECT().Call(gomock.Any(), "pre_remove").Return(domain.Value{}, errors.New("service still running"))

	err := f.exec.Remove(context.Background(), f.cfg, r, lifecycle.RemoveOptions{})
	var pe *domain.PhaseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, domain.PhasePreRemove, pe.Phase)
	assert.FileExists(t, files[0])
	assert.Empty(t, f.writes)
}

func TestRemove_PartialFailure(t *testing.T) {
	f := newFixture(t, "acquire", "install")
	r := recipe(t, "zlib")
	files := installTree(t, f, r, "lib/libz.so")
	// A non-empty directory recorded as a file cannot be removed.
	stuck := filepath.Join(f.cfg.Prefix, "share", "zlib")
	require.NoError(t, os.MkdirAll(stuck, domain.DirPerm))
	require.NoError(t, os.WriteFile(filepath.Join(stuck, "keep"), nil, domain.FilePerm))
	r.State.InstalledFiles = append(r.State.InstalledFiles, stuck, "relative/path")

	f.logger.EXPECT().Warn(gomock.Any()).Times(2)
	f.expectPersist(r, 1)

	err := f.exec.Remove(context.Background(), f.cfg, r, lifecycle.RemoveOptions{})
	var re *domain.RemoveError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, []string{stuck, "relative/path"}, re.Remaining)
	assert.Equal(t, domain.KindCommit, domain.KindOf(err))

	w := lastWrite(t, f)
	assert.Equal(t, domain.BoolValue(true), w[domain.VarInstalled])
	assert.Equal(t, domain.StringsValue([]string{stuck, "relative/path"}), w[domain.VarInstalledFiles])
	assert.NoFileExists(t, files[0])
}

func TestRemove_MissingFilesAreIgnored(t *testing.T) {
	f := newFixture(t, "acquire", "install")
	r := recipe(t, "zlib")
	r.State = domain.State{Installed: true, InstalledFiles: []string{filepath.Join(f.cfg.Prefix, "gone")}}
	f.expectPersist(r, 1)

	require.NoError(t, f.exec.Remove(context.Background(), f.cfg, r, lifecycle.RemoveOptions{}))
	assert.False(t, r.State.Installed)
}

func TestRemove_HookFailureAfterDeletionWarns(t *testing.T) {
	f := newFixture(t, "acquire", "install", "post_remove")
	r := recipe(t, "zlib")
	installTree(t, f, r, "lib/libz.so")
	f.script.EXPECT().Call(gomock.Any(), "post_remove").Return(domain.Value{}, errors.New("ldconfig failed"))
	f.logger.EXPECT().Warn(gomock.Any())
	f.expectPersist(r, 1)

	require.NoError(t, f.exec.Remove(context.Background(), f.cfg, r, lifecycle.RemoveOptions{}))
	assert.Equal(t, domain.Cleared().Bindings(), lastWrite(t, f))
}
