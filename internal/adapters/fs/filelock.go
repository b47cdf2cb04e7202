package fs

import (
	"context"
	"errors"
	"os"
	"time"

	"go.trai.ch/hob/internal/core/domain"
	"go.trai.ch/hob/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sys/unix"
)

var _ ports.FileLocker = (*FileLocker)(nil)

// lockPollInterval is how often a contended lock is retried.
const lockPollInterval = 50 * time.Millisecond

// FileLocker implements ports.FileLocker with flock(2) on a hidden sidecar
// file next to the guarded path. Sidecars are left in place; the kernel drops
// the lock when the holder exits.
type FileLocker struct {
	timeout time.Duration
}

// NewFileLocker creates a FileLocker that gives up after timeout.
func NewFileLocker(timeout time.Duration) *FileLocker {
	if timeout <= 0 {
		timeout = domain.DefaultLockTimeout
	}
	return &FileLocker{timeout: timeout}
}

// Lock acquires the exclusive lock guarding path.
func (l *FileLocker) Lock(ctx context.Context, path string) (func() error, error) {
	lockPath := domain.LockPath(path)
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, domain.FilePerm) //nolint:gosec // derived from recipe path
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to open lock file"), "path", lockPath)
	}

	deadline := time.Now().Add(l.timeout)
	for {
		err = unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			return func() error {
				unlockErr := unix.Flock(int(f.Fd()), unix.LOCK_UN)
				return errors.Join(unlockErr, f.Close())
			}, nil
		}
		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EINTR) {
			_ = f.Close()
			return nil, zerr.With(zerr.Wrap(err, "failed to lock"), "path", path)
		}
		if time.Now().After(deadline) {
			_ = f.Close()
			return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrRecipeLocked, "timed out waiting for lock"),
				"path", path), "timeout", l.timeout.String())
		}

		select {
		case <-ctx.Done():
			_ = f.Close()
			return nil, zerr.With(zerr.Wrap(ctx.Err(), "interrupted waiting for lock"), "path", path)
		case <-time.After(lockPollInterval):
		}
	}
}
