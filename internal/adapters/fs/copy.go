package fs

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/hob/internal/core/domain"
	"go.trai.ch/zerr"
)

// CopyFile copies a regular file or symlink to dst with the given permission
// bits. Parent directories are created as needed and an existing dst is replaced.
func CopyFile(src, dst string, perm os.FileMode) (err error) {
	info, err := os.Lstat(src)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to stat source"), "path", src)
	}
	if err := os.MkdirAll(filepath.Dir(dst), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create directory"), "path", filepath.Dir(dst))
	}
	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return zerr.With(zerr.Wrap(err, "failed to replace file"), "path", dst)
	}

	if info.Mode()&fs.ModeSymlink != 0 {
		target, err := os.Readlink(src)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to read symlink"), "path", src)
		}
		return os.Symlink(target, dst)
	}
	if !info.Mode().IsRegular() {
		return zerr.With(zerr.New("not a regular file"), "path", src)
	}

	in, err := os.Open(src) //nolint:gosec // caller-provided path
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open source"), "path", src)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm.Perm()) //nolint:gosec // caller-provided path
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create file"), "path", dst)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = zerr.With(zerr.Wrap(cerr, "failed to close file"), "path", dst)
		}
	}()
	if _, err := io.Copy(out, in); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to copy file"), "path", dst)
	}
	// Chmod again: the umask applies to OpenFile.
	if err := out.Chmod(perm.Perm()); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to set permissions"), "path", dst)
	}
	return nil
}

// CopyTree copies the directory src into dst, preserving relative layout and
// file modes. It returns the copied file paths under dst.
func CopyTree(src, dst string) ([]string, error) {
	var copied []string
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, domain.DirPerm)
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if err := CopyFile(path, target, info.Mode()); err != nil {
			return err
		}
		copied = append(copied, target)
		return nil
	})
	if err != nil {
		return copied, zerr.With(zerr.Wrap(err, "failed to copy directory"), "path", src)
	}
	return copied, nil
}
