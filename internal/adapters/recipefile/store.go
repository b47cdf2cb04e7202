package recipefile

import (
	"context"
	"errors"
	"os"

	"go.trai.ch/hob/internal/adapters/fs"
	"go.trai.ch/hob/internal/core/domain"
	"go.trai.ch/hob/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.RecipeStore = (*Store)(nil)

// Store implements ports.RecipeStore on plain recipe files.
type Store struct {
	locker ports.FileLocker
}

// NewStore creates a Store that serializes updates with locker.
func NewStore(locker ports.FileLocker) *Store {
	return &Store{locker: locker}
}

// ReadDeclared returns the literal top-level bindings of the recipe. When a
// name is bound more than once the last binding wins. Known variables bound
// to a non-literal expression are a *domain.ParseError; other non-literal
// bindings are left out.
func (s *Store) ReadDeclared(path string) (map[string]domain.Value, error) {
	_, bindings, err := s.load(path)
	if err != nil {
		return nil, err
	}
	return declared(path, bindings)
}

// Read parses the recipe at path.
func (s *Store) Read(path string) (*domain.Recipe, error) {
	vars, err := s.ReadDeclared(path)
	if err != nil {
		return nil, err
	}
	return domain.RecipeFromBindings(path, vars)
}

// WriteDeclared rewrites the given bindings and atomically replaces the file.
func (s *Store) WriteDeclared(path string, updates map[string]domain.Value) error {
	if len(updates) == 0 {
		return nil
	}
	src, bindings, err := s.load(path)
	if err != nil {
		return err
	}
	return fs.WriteFileAtomic(path, rewrite(src, bindings, updates))
}

// Update runs a read-modify-write sequence under the recipe's advisory lock.
func (s *Store) Update(
	ctx context.Context,
	path string,
	fn func(*domain.Recipe) (map[string]domain.Value, error),
) (err error) {
	release, err := s.locker.Lock(ctx, path)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := release(); rerr != nil && err == nil {
			err = zerr.With(zerr.Wrap(rerr, "failed to release recipe lock"), "path", path)
		}
	}()

	recipe, err := s.Read(path)
	if err != nil {
		return err
	}
	updates, err := fn(recipe)
	if err != nil {
		return err
	}
	return s.WriteDeclared(path, updates)
}

func (s *Store) load(path string) ([]byte, []binding, error) {
	src, err := os.ReadFile(path) //nolint:gosec // recipe path chosen by the user
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, zerr.With(zerr.Wrap(domain.ErrRecipeNotFound, err.Error()), "path", path)
		}
		return nil, nil, zerr.With(zerr.Wrap(err, "failed to read recipe"), "path", path)
	}
	bindings, err := scanBindings(src)
	if err != nil {
		return nil, nil, &domain.ParseError{Path: path, Reason: err}
	}
	return src, bindings, nil
}

func declared(path string, bindings []binding) (map[string]domain.Value, error) {
	known := make(map[string]bool, len(domain.DefinitionVars)+len(domain.StateVars))
	for _, name := range domain.DefinitionVars {
		known[name] = true
	}
	for _, name := range domain.StateVars {
		known[name] = true
	}

	vars := make(map[string]domain.Value, len(bindings))
	for _, b := range bindings {
		if b.Err != nil {
			if known[b.Name] {
				return nil, &domain.ParseError{Path: path, Variable: b.Name, Reason: b.Err}
			}
			delete(vars, b.Name)
			continue
		}
		vars[b.Name] = b.Value
	}
	return vars, nil
}
