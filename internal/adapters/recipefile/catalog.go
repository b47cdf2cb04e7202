package recipefile

import (
	"cmp"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/hob/internal/adapters/fs"
	"go.trai.ch/hob/internal/core/domain"
	"go.trai.ch/hob/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

var _ ports.RecipeCatalog = (*Catalog)(nil)

// Catalog implements ports.RecipeCatalog by walking a recipes path.
type Catalog struct {
	store  ports.RecipeStore
	walker *fs.Walker
}

// NewCatalog creates a Catalog reading recipes through store.
func NewCatalog(store ports.RecipeStore, walker *fs.Walker) *Catalog {
	return &Catalog{store: store, walker: walker}
}

// Scan structurally parses every recipe under root in parallel. A missing
// root yields an empty result.
func (c *Catalog) Scan(ctx context.Context, root string) (*ports.ScanResult, error) {
	paths, err := c.recipePaths(root)
	if err != nil {
		return nil, err
	}

	var (
		mu     sync.Mutex
		result = &ports.ScanResult{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			recipe, err := c.store.Read(path)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failures = append(result.Failures, ports.ScanFailure{Path: path, Err: err})
				return nil
			}
			result.Recipes = append(result.Recipes, recipe)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(result.Recipes, func(a, b *domain.Recipe) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.Path, b.Path))
	})
	result.Recipes = dropDuplicates(result)
	slices.SortFunc(result.Failures, func(a, b ports.ScanFailure) int {
		return cmp.Compare(a.Path, b.Path)
	})
	return result, nil
}

// Find returns the path of the recipe declaring name. A file whose stem
// matches is tried first; otherwise the whole recipes path is scanned.
func (c *Catalog) Find(ctx context.Context, root, name string) (string, error) {
	if err := domain.ValidateName(name); err != nil {
		return "", err
	}
	paths, err := c.recipePaths(root)
	if err != nil {
		return "", err
	}

	for _, path := range paths {
		if stem(path) != name {
			continue
		}
		if recipe, rerr := c.store.Read(path); rerr == nil && recipe.Name == name {
			return path, nil
		}
	}

	result, err := c.Scan(ctx, root)
	if err != nil {
		return "", err
	}
	for _, r := range result.Recipes {
		if r.Name == name {
			return r.Path, nil
		}
	}
	for _, f := range result.Failures {
		if stem(f.Path) == name {
			return "", f.Err
		}
	}
	return "", zerr.With(zerr.With(zerr.Wrap(domain.ErrRecipeNotFound, name), "recipe", name), "recipes_path", root)
}

func (c *Catalog) recipePaths(root string) ([]string, error) {
	info, err := os.Stat(root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read recipes path"), "path", root)
	}
	if !info.IsDir() {
		return nil, zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "recipes path is not a directory"), "path", root)
	}

	var paths []string
	for path := range c.walker.WalkFiles(root, nil) {
		if filepath.Ext(path) == domain.RecipeExt {
			paths = append(paths, path)
		}
	}
	slices.Sort(paths)
	return paths, nil
}

// dropDuplicates keeps the first recipe of each name and reports the others
// as failures.
func dropDuplicates(result *ports.ScanResult) []*domain.Recipe {
	kept := result.Recipes[:0]
	var prev *domain.Recipe
	for _, r := range result.Recipes {
		if prev != nil && prev.Name == r.Name {
			err := zerr.With(zerr.With(zerr.Wrap(domain.ErrDuplicateRecipe, r.Name), "path", r.Path), "existing", prev.Path)
			result.Failures = append(result.Failures, ports.ScanFailure{Path: r.Path, Err: err})
			continue
		}
		kept = append(kept, r)
		prev = r
	}
	return kept
}

func stem(path string) string {
	return strings.TrimSuffix(filepath.Base(path), domain.RecipeExt)
}
