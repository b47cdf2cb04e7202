// Package staging implements the staged install and commit protocol.
//
// A staging root is an empty directory created next to the destination prefix.
// The install phase writes into it instead of the prefix, and Commit moves the
// result into place file by file with rename(2).
package staging

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	hobfs "go.trai.ch/hob/internal/adapters/fs"
	"go.trai.ch/hob/internal/core/domain"
	"go.trai.ch/hob/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sys/unix"
)

var _ ports.Installer = (*Installer)(nil)

// Installer implements ports.Installer.
type Installer struct {
	// dir overrides the parent of staging roots. Empty means the parent of
	// the prefix.
	dir    string
	logger ports.Logger
	rename func(oldpath, newpath string) error
}

// NewInstaller creates an Installer. A non-empty dir places staging roots
// there instead of next to the prefix; if dir is on another filesystem,
// Commit degrades to copy and delete.
func NewInstaller(dir string, logger ports.Logger) *Installer {
	return &Installer{dir: dir, logger: logger, rename: os.Rename}
}

// Stage creates a fresh staging root.
func (i *Installer) Stage(prefix string) (string, error) {
	parent := i.dir
	if parent == "" {
		parent = filepath.Dir(filepath.Clean(prefix))
	}
	if err := os.MkdirAll(parent, domain.DirPerm); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to create staging parent"), "path", parent)
	}
	root, err := os.MkdirTemp(parent, domain.StagingPrefix+"*")
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to create staging root"), "path", parent)
	}
	return root, nil
}

// Commit moves every file under stagingRoot to the same relative path under
// prefix. Directories are created as needed. An existing file at the
// destination is replaced with a warning. Files already moved stay in place
// when a later one fails; the returned *domain.CommitError lists them.
func (i *Installer) Commit(ctx context.Context, stagingRoot, prefix string) ([]string, error) {
	defer func() { _ = os.RemoveAll(stagingRoot) }()

	var staged []string
	err := filepath.WalkDir(stagingRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			staged = append(staged, path)
		}
		return nil
	})
	if err != nil {
		return nil, &domain.CommitError{Failed: stagingRoot, Err: zerr.Wrap(err, "failed to walk staging root")}
	}

	committed := make([]string, 0, len(staged))
	for _, src := range staged {
		rel, err := filepath.Rel(stagingRoot, src)
		if err != nil {
			return nil, &domain.CommitError{Committed: committed, Failed: src, Err: err}
		}
		dst := filepath.Join(prefix, rel)
		if err := ctx.Err(); err != nil {
			return committed, &domain.CommitError{Committed: committed, Failed: dst, Err: err}
		}
		if _, err := os.Lstat(dst); err == nil {
			i.logger.Warn("replacing existing file " + dst)
		}
		if err := i.move(src, dst); err != nil {
			slices.Sort(committed)
			return committed, &domain.CommitError{Committed: committed, Failed: dst, Err: err}
		}
		committed = append(committed, dst)
	}
	slices.Sort(committed)
	return committed, nil
}

// Discard removes a staging root that will not be committed.
func (i *Installer) Discard(stagingRoot string) error {
	if err := os.RemoveAll(stagingRoot); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove staging root"), "path", stagingRoot)
	}
	return nil
}

func (i *Installer) move(src, dst string) error {
	if err := ensureDir(filepath.Dir(dst)); err != nil {
		return err
	}
	err := i.rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, unix.EXDEV) {
		return zerr.With(zerr.Wrap(err, "failed to move file"), "path", dst)
	}

	// Cross-device: copy then delete. Not atomic.
	info, lerr := os.Lstat(src)
	if lerr != nil {
		return zerr.With(zerr.Wrap(lerr, "failed to stat staged file"), "path", src)
	}
	if err := hobfs.CopyFile(src, dst, info.Mode()); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove staged file"), "path", src)
	}
	return nil
}

// ensureDir creates dir and any missing parents with domain.DirPerm. Each new
// directory is chmod'ed explicitly so an inherited setgid bit is cleared.
func ensureDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return zerr.With(zerr.New("not a directory"), "path", dir)
		}
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return zerr.With(zerr.Wrap(err, "failed to stat directory"), "path", dir)
	}
	if err := ensureDir(filepath.Dir(dir)); err != nil {
		return err
	}
	if err := os.Mkdir(dir, domain.DirPerm); err != nil && !errors.Is(err, fs.ErrExist) {
		return zerr.With(zerr.Wrap(err, "failed to create directory"), "path", dir)
	}
	if err := os.Chmod(dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to set directory permissions"), "path", dir)
	}
	return nil
}
