package ports

import "context"

// FileLocker provides exclusive advisory locks scoped to a file.
//
//go:generate mockgen -source=file_locker.go -destination=mocks/mock_file_locker.go -package=mocks
type FileLocker interface {
	// Lock acquires the lock guarding path, waiting until it is free, the
	// configured timeout passes or ctx is done. The returned func releases it.
	Lock(ctx context.Context, path string) (func() error, error)
}
