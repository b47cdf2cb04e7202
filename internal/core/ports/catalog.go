package ports

import (
	"context"

	"go.trai.ch/hob/internal/core/domain"
)

// ScanFailure is one recipe file that could not be read during a scan.
type ScanFailure struct {
	Path string
	Err  error
}

// ScanResult is the outcome of scanning a recipes path.
type ScanResult struct {
	// Recipes holds every readable recipe, sorted by name.
	Recipes []*domain.Recipe
	// Failures holds the files skipped because they could not be parsed.
	Failures []ScanFailure
}

// RecipeCatalog discovers recipe files under a recipes path.
//
//go:generate mockgen -source=catalog.go -destination=mocks/mock_catalog.go -package=mocks
type RecipeCatalog interface {
	// Scan reads every recipe under root. Unreadable recipes are reported in
	// the result, not as an error.
	Scan(ctx context.Context, root string) (*ScanResult, error)

	// Find returns the path of the recipe with the given name.
	Find(ctx context.Context, root, name string) (string, error)
}
