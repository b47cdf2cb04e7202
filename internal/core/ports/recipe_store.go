package ports

import (
	"context"

	"go.trai.ch/hob/internal/core/domain"
)

// RecipeStore reads and rewrites the variables declared in a recipe file
// without executing it. It is the only writer of recipe files.
//
//go:generate mockgen -source=recipe_store.go -destination=mocks/mock_recipe_store.go -package=mocks
type RecipeStore interface {
	// ReadDeclared returns every top-level binding of the file.
	ReadDeclared(path string) (map[string]domain.Value, error)

	// Read parses the file into a Recipe, validating required variables.
	Read(path string) (*domain.Recipe, error)

	// WriteDeclared rewrites only the listed bindings, atomically. Bindings
	// that do not exist yet are inserted.
	WriteDeclared(path string, updates map[string]domain.Value) error

	// Update holds the recipe's advisory lock while it reads the recipe,
	// calls fn and writes back the returned bindings. A nil map writes nothing.
	Update(ctx context.Context, path string, fn func(*domain.Recipe) (map[string]domain.Value, error)) error
}
