package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/hob/internal/adapters/fs"
	"go.trai.ch/hob/internal/core/domain"
)

func TestFileLocker_LockRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zlib.recipe")
	locker := fs.NewFileLocker(time.Second)

	release, err := locker.Lock(context.Background(), path)
	require.NoError(t, err)
	_, statErr := os.Stat(domain.LockPath(path))
	require.NoError(t, statErr, "sidecar lock file should exist")
	require.NoError(t, release())

	release, err = locker.Lock(context.Background(), path)
	require.NoError(t, err, "lock must be reacquirable after release")
	require.NoError(t, release())
}

func TestFileLocker_Contended(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zlib.recipe")

	release, err := fs.NewFileLocker(time.Second).Lock(context.Background(), path)
	require.NoError(t, err)
	defer func() { _ = release() }()

	start := time.Now()
	_, err = fs.NewFileLocker(120*time.Millisecond).Lock(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRecipeLocked)
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestFileLocker_WaitsForRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zlib.recipe")

	release, err := fs.NewFileLocker(time.Second).Lock(context.Background(), path)
	require.NoError(t, err)

	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = release()
	}()

	second, err := fs.NewFileLocker(5*time.Second).Lock(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, second())
}

func TestFileLocker_ContextCanceled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zlib.recipe")

	release, err := fs.NewFileLocker(time.Second).Lock(context.Background(), path)
	require.NoError(t, err)
	defer func() { _ = release() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = fs.NewFileLocker(time.Minute).Lock(ctx, path)
	require.ErrorIs(t, err, context.Canceled)
}
