package recipefile_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/hob/internal/adapters/fs"
	"go.trai.ch/hob/internal/adapters/recipefile"
	"go.trai.ch/hob/internal/core/domain"
	"go.trai.ch/hob/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

const ripgrep = `// ripgrep: recursive grep
let name = "ripgrep";
let version = "14.1.0";
let description = "fast grep; with \"quotes\" and let inside";
let deps = ["pcre2 >= 10", "zlib"];

/* let installed = true; */
let installed = false;
let installed_version = ();
let installed_at = 0;
let installed_files = [];

fn acquire() {
    let url = "https://example.com/rg-" + version + ".tar.gz";
    download(url);
}

fn install() {
    install_bin("rg");
}
`

func writeRecipe(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name+domain.RecipeExt)
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
	return path
}

func newStore() *recipefile.Store {
	return recipefile.NewStore(fs.NewFileLocker(time.Second))
}

func TestStore_Read(t *testing.T) {
	path := writeRecipe(t, t.TempDir(), "ripgrep", ripgrep)

	r, err := newStore().Read(path)
	require.NoError(t, err)
	assert.Equal(t, "ripgrep", r.Name)
	assert.Equal(t, "14.1.0", r.Version)
	assert.Equal(t, `fast grep; with "quotes" and let inside`, r.Description)
	require.Len(t, r.Deps, 2)
	assert.Equal(t, "pcre2", r.Deps[0].Name)
	assert.False(t, r.State.Installed)
	assert.Equal(t, path, r.Path)
}

func TestStore_ReadDeclared_IgnoresNestedAndComments(t *testing.T) {
	path := writeRecipe(t, t.TempDir(), "ripgrep", ripgrep)

	vars, err := newStore().ReadDeclared(path)
	require.NoError(t, err)
	assert.NotContains(t, vars, "url", "bindings inside functions are not top-level")
	assert.Equal(t, domain.BoolValue(false), vars[domain.VarInstalled])
}

func TestStore_ReadDeclared_LastBindingWins(t *testing.T) {
	src := "let name = \"a\";\nlet version = \"1.0\";\nlet version = \"2.0\";\nlet installed = false;\n"
	path := writeRecipe(t, t.TempDir(), "a", src)

	r, err := newStore().Read(path)
	require.NoError(t, err)
	assert.Equal(t, "2.0", r.Version)
}

func TestStore_Read_Errors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		variable string
		target   error
	}{
		{
			name:     "missing version",
			src:      "let name = \"a\";\nlet installed = false;\n",
			variable: domain.VarVersion,
			target:   domain.ErrMissingVariable,
		},
		{
			name:     "computed version",
			src:      "let name = \"a\";\nlet version = base + \".1\";\nlet installed = false;\n",
			variable: domain.VarVersion,
			target:   domain.ErrMalformedValue,
		},
		{
			name:   "unterminated string",
			src:    "let name = \"a;\n",
			target: domain.ErrScriptSyntax,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeRecipe(t, t.TempDir(), "a", tt.src)

			_, err := newStore().Read(path)
			var pe *domain.ParseError
			require.True(t, errors.As(err, &pe), "expected *ParseError, got %v", err)
			assert.Equal(t, tt.variable, pe.Variable)
			assert.True(t, errors.Is(err, tt.target), "expected %v in %v", tt.target, err)
		})
	}
}

func TestStore_Read_UnknownComputedBindingIgnored(t *testing.T) {
	src := "let name = \"a\";\nlet version = \"1.0\";\nlet installed = false;\nlet url = mirror + \"/a\";\n"
	path := writeRecipe(t, t.TempDir(), "a", src)

	vars, err := newStore().ReadDeclared(path)
	require.NoError(t, err)
	assert.NotContains(t, vars, "url")
}

func TestStore_Read_NotFound(t *testing.T) {
	_, err := newStore().Read(filepath.Join(t.TempDir(), "nope.recipe"))
	assert.True(t, errors.Is(err, domain.ErrRecipeNotFound), "got %v", err)
}

func TestStore_WriteDeclared_PreservesEverythingElse(t *testing.T) {
	path := writeRecipe(t, t.TempDir(), "ripgrep", ripgrep)
	store := newStore()

	state := domain.State{
		Installed:        true,
		InstalledVersion: "14.1.0",
		InstalledAt:      1700000000,
		InstalledFiles:   []string{"/p/bin/rg"},
	}
	require.NoError(t, store.WriteDeclared(path, state.Bindings()))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	want := `// ripgrep: recursive grep
let name = "ripgrep";
let version = "14.1.0";
let description = "fast grep; with \"quotes\" and let inside";
let deps = ["pcre2 >= 10", "zlib"];

/* let installed = true; */
let installed = true;
let installed_version = "14.1.0";
let installed_at = 1700000000;
let installed_files = ["/p/bin/rg"];
let installed_as_dep = false;

fn acquire() {
    let url = "https://example.com/rg-" + version + ".tar.gz";
    download(url);
}

fn install() {
    install_bin("rg");
}
`
	assert.Equal(t, want, string(got))

	r, err := store.Read(path)
	require.NoError(t, err)
	assert.Equal(t, state.InstalledFiles, r.State.InstalledFiles)
	assert.True(t, r.State.Installed)

	require.NoError(t, store.WriteDeclared(path, domain.Cleared().Bindings()))
	got, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(got), "let installed = false;\nlet installed_version = ();\nlet installed_at = 0;\nlet installed_files = [];\nlet installed_as_dep = false;\n")
}

func TestStore_WriteDeclared_SameValuesIsIdentity(t *testing.T) {
	path := writeRecipe(t, t.TempDir(), "ripgrep", ripgrep)
	store := newStore()

	vars, err := store.ReadDeclared(path)
	require.NoError(t, err)
	require.NoError(t, store.WriteDeclared(path, vars))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ripgrep, string(got))
}

func TestStore_WriteDeclared_InsertionPositions(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "after definitions",
			src:  "let name = \"a\";\nlet version = \"1.0\";\n\nfn install() {}\n",
			want: "let name = \"a\";\nlet version = \"1.0\";\nlet installed = true;\n\nfn install() {}\n",
		},
		{
			name: "after last state binding",
			src:  "let name = \"a\";\nlet installed = false; // state\nlet version = \"1.0\";\n",
			want: "let name = \"a\";\nlet installed = true; // state\nlet installed_at = 7;\nlet version = \"1.0\";\n",
		},
		{
			name: "no trailing newline",
			src:  "let name = \"a\";",
			want: "let name = \"a\";\nlet installed = true;\n",
		},
		{
			name: "top of file",
			src:  "fn install() {}\n",
			want: "let installed = true;\nfn install() {}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeRecipe(t, t.TempDir(), "a", tt.src)
			updates := map[string]domain.Value{domain.VarInstalled: domain.BoolValue(true)}
			if tt.name == "after last state binding" {
				updates[domain.VarInstalledAt] = domain.IntValue(7)
			}

			require.NoError(t, newStore().WriteDeclared(path, updates))
			got, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestStore_WriteDeclared_RewritesEveryOccurrence(t *testing.T) {
	src := "let name = \"a\";\nlet version = \"1.0\";\nlet installed = false;\nlet installed = false;\n"
	path := writeRecipe(t, t.TempDir(), "a", src)

	require.NoError(t, newStore().WriteDeclared(path, map[string]domain.Value{domain.VarInstalled: domain.BoolValue(true)}))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "let name = \"a\";\nlet version = \"1.0\";\nlet installed = true;\nlet installed = true;\n", string(got))
}

func TestStore_WriteDeclared_KeepsMode(t *testing.T) {
	path := writeRecipe(t, t.TempDir(), "ripgrep", ripgrep)
	require.NoError(t, os.Chmod(path, 0o600))

	require.NoError(t, newStore().WriteDeclared(path, map[string]domain.Value{domain.VarInstalled: domain.BoolValue(true)}))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStore_Update(t *testing.T) {
	path := writeRecipe(t, t.TempDir(), "ripgrep", ripgrep)
	store := newStore()

	err := store.Update(context.Background(), path, func(r *domain.Recipe) (map[string]domain.Value, error) {
		assert.Equal(t, "ripgrep", r.Name)
		return map[string]domain.Value{domain.VarInstalledAsDep: domain.BoolValue(true)}, nil
	})
	require.NoError(t, err)

	r, err := store.Read(path)
	require.NoError(t, err)
	assert.True(t, r.State.InstalledAsDep)
	_, err = os.Stat(domain.LockPath(path))
	assert.NoError(t, err, "lock sidecar stays in place")
}

func TestStore_Update_LockFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	locker := mocks.NewMockFileLocker(ctrl)
	store := recipefile.NewStore(locker)

	locker.EXPECT().Lock(gomock.Any(), "/r/a.recipe").Return(nil, domain.ErrRecipeLocked)

	err := store.Update(context.Background(), "/r/a.recipe", func(*domain.Recipe) (map[string]domain.Value, error) {
		t.Fatal("callback must not run without the lock")
		return nil, nil
	})
	assert.True(t, errors.Is(err, domain.ErrRecipeLocked))
}

func TestStore_Update_CallbackErrorReleasesLock(t *testing.T) {
	ctrl := gomock.NewController(t)
	locker := mocks.NewMockFileLocker(ctrl)
	store := recipefile.NewStore(locker)
	path := writeRecipe(t, t.TempDir(), "ripgrep", ripgrep)

	released := false
	locker.EXPECT().Lock(gomock.Any(), path).Return(func() error {
		released = true
		return nil
	}, nil)

	boom := errors.New("boom")
	err := store.Update(context.Background(), path, func(*domain.Recipe) (map[string]domain.Value, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.True(t, released)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ripgrep, string(got))
}
