package ports

import "context"

// Installer stages install output and commits it into the destination tree.
//
//go:generate mockgen -source=installer.go -destination=mocks/mock_installer.go -package=mocks
type Installer interface {
	// Stage creates an empty staging root on the same filesystem as prefix.
	Stage(prefix string) (string, error)

	// Commit moves every staged file into prefix and returns the destination
	// paths, sorted. The staging root is removed regardless of outcome. A
	// partial commit returns *domain.CommitError.
	Commit(ctx context.Context, stagingRoot, prefix string) ([]string, error)

	// Discard removes a staging root without committing it.
	Discard(stagingRoot string) error
}
