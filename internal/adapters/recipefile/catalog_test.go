package recipefile_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/hob/internal/adapters/fs"
	"go.trai.ch/hob/internal/adapters/recipefile"
	"go.trai.ch/hob/internal/core/domain"
)

func minimal(name, version string) string {
	return "let name = " + domain.Quote(name) + ";\nlet version = " + domain.Quote(version) +
		";\nlet installed = false;\n\nfn acquire() {}\nfn install() {}\n"
}

func newCatalog() *recipefile.Catalog {
	return recipefile.NewCatalog(newStore(), fs.NewWalker())
}

func TestCatalog_Scan(t *testing.T) {
	root := t.TempDir()
	writeRecipe(t, root, "zlib", minimal("zlib", "1.3.1"))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "net"), domain.DirPerm))
	writeRecipe(t, filepath.Join(root, "net"), "curl", minimal("curl", "8.5.0"))
	writeRecipe(t, root, "broken", "let name = \"broken\";\n")
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("# recipes"), domain.FilePerm))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), domain.DirPerm))
	writeRecipe(t, filepath.Join(root, ".git"), "hidden", minimal("hidden", "1.0"))

	result, err := newCatalog().Scan(context.Background(), root)
	require.NoError(t, err)

	require.Len(t, result.Recipes, 2)
	assert.Equal(t, "curl", result.Recipes[0].Name)
	assert.Equal(t, "zlib", result.Recipes[1].Name)

	require.Len(t, result.Failures, 1)
	assert.Equal(t, filepath.Join(root, "broken.recipe"), result.Failures[0].Path)
	assert.True(t, errors.Is(result.Failures[0].Err, domain.ErrMissingVariable))
}

func TestCatalog_Scan_Duplicates(t *testing.T) {
	root := t.TempDir()
	first := writeRecipe(t, root, "a", minimal("dup", "1.0"))
	second := writeRecipe(t, root, "b", minimal("dup", "2.0"))

	result, err := newCatalog().Scan(context.Background(), root)
	require.NoError(t, err)

	require.Len(t, result.Recipes, 1)
	assert.Equal(t, first, result.Recipes[0].Path)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, second, result.Failures[0].Path)
	assert.True(t, errors.Is(result.Failures[0].Err, domain.ErrDuplicateRecipe))
}

func TestCatalog_Scan_MissingRoot(t *testing.T) {
	result, err := newCatalog().Scan(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, result.Recipes)
	assert.Empty(t, result.Failures)
}

func TestCatalog_Scan_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeRecipe(t, root, "a", minimal("a", "1.0"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newCatalog().Scan(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCatalog_Find(t *testing.T) {
	root := t.TempDir()
	zlib := writeRecipe(t, root, "zlib", minimal("zlib", "1.3.1"))
	renamed := writeRecipe(t, root, "openssl-3", minimal("openssl", "3.2.0"))
	catalog := newCatalog()

	path, err := catalog.Find(context.Background(), root, "zlib")
	require.NoError(t, err)
	assert.Equal(t, zlib, path)

	path, err = catalog.Find(context.Background(), root, "openssl")
	require.NoError(t, err)
	assert.Equal(t, renamed, path)

	_, err = catalog.Find(context.Background(), root, "ghost")
	assert.True(t, errors.Is(err, domain.ErrRecipeNotFound), "got %v", err)

	_, err = catalog.Find(context.Background(), root, "Bad_Name")
	assert.True(t, errors.Is(err, domain.ErrInvalidRecipeName), "got %v", err)
}

func TestCatalog_Find_ReportsParseFailure(t *testing.T) {
	root := t.TempDir()
	writeRecipe(t, root, "broken", "let name = \"broken\";\n")

	_, err := newCatalog().Find(context.Background(), root, "broken")
	var pe *domain.ParseError
	assert.True(t, errors.As(err, &pe), "got %v", err)
}
