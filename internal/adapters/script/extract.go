package script

import (
	"archive/tar"
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
	"go.trai.ch/hob/internal/core/domain"
	"go.trai.ch/zerr"
)

type archiveFormat string

const (
	formatTar    archiveFormat = "tar"
	formatTarGz  archiveFormat = "tar.gz"
	formatTarXz  archiveFormat = "tar.xz"
	formatTarBz2 archiveFormat = "tar.bz2"
	formatTarZst archiveFormat = "tar.zst"
	formatZip    archiveFormat = "zip"
)

var suffixes = []struct {
	suffix string
	format archiveFormat
}{
	{".tar.gz", formatTarGz},
	{".tgz", formatTarGz},
	{".apk", formatTarGz},
	{".tar.xz", formatTarXz},
	{".txz", formatTarXz},
	{".tar.bz2", formatTarBz2},
	{".tbz2", formatTarBz2},
	{".tar.zst", formatTarZst},
	{".tzst", formatTarZst},
	{".zip", formatZip},
	{".tar", formatTar},
}

func detectFormat(name string) (archiveFormat, bool) {
	lower := strings.ToLower(name)
	for _, s := range suffixes {
		if strings.HasSuffix(lower, s.suffix) {
			return s.format, true
		}
	}
	return "", false
}

// helperExtract unpacks an archive into the current directory or the given
// destination. Entries escaping the destination are rejected.
func helperExtract(in *interp, args []any) (any, error) {
	archive, err := in.pathArg(args, 0)
	if err != nil {
		return nil, err
	}
	dest := in.script.ec.Cwd
	if len(args) > 1 {
		if dest, err = in.pathArg(args, 1); err != nil {
			return nil, err
		}
	}
	files, err := extractArchive(archive, dest)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		in.produced(f)
	}
	_, _ = fmt.Fprintf(in.script.ec.Stdout, "extracted %s (%d files)\n", filepath.Base(archive), len(files))
	return dest, nil
}

func extractArchive(archive, dest string) ([]string, error) {
	format, ok := detectFormat(archive)
	if !ok {
		return nil, zerr.With(zerr.New("cannot detect archive format"), "archive", archive)
	}
	if err := os.MkdirAll(dest, domain.DirPerm); err != nil {
		return nil, err
	}
	if format == formatZip {
		return extractZip(archive, dest)
	}

	f, err := os.Open(archive) //nolint:gosec // recipe-chosen path
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	switch format {
	case formatTarGz:
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "invalid gzip stream"), "archive", archive)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	case formatTarZst:
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "invalid zstd stream"), "archive", archive)
		}
		defer zr.Close()
		r = zr
	case formatTarXz:
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "invalid xz stream"), "archive", archive)
		}
		r = xr
	case formatTarBz2:
		r = bzip2.NewReader(f)
	}
	files, err := extractTar(r, dest)
	if err != nil {
		return files, zerr.With(err, "archive", archive)
	}
	return files, nil
}

// safeJoin joins name under dest, failing if the result escapes dest.
func safeJoin(dest, name string) (string, error) {
	target := filepath.Join(dest, name)
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", zerr.With(zerr.New("archive entry escapes destination"), "entry", name)
	}
	return target, nil
}

func extractTar(r io.Reader, dest string) ([]string, error) {
	tr := tar.NewReader(r)
	var files []string
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return files, nil
		}
		if err != nil {
			return files, zerr.Wrap(err, "failed to read tar entry")
		}
		target, err := safeJoin(dest, hdr.Name)
		if err != nil {
			return files, err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, domain.DirPerm); err != nil {
				return files, err
			}
		case tar.TypeReg:
			if err := writeEntry(target, tr, fs.FileMode(hdr.Mode)); err != nil {
				return files, err
			}
			files = append(files, target)
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
				return files, err
			}
			_ = os.Remove(target)
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return files, err
			}
			files = append(files, target)
		case tar.TypeLink:
			src, err := safeJoin(dest, hdr.Linkname)
			if err != nil {
				return files, err
			}
			_ = os.Remove(target)
			if err := os.Link(src, target); err != nil {
				return files, err
			}
			files = append(files, target)
		}
	}
}

func extractZip(archive, dest string) ([]string, error) {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "invalid zip archive"), "archive", archive)
	}
	defer func() { _ = zr.Close() }()

	var files []string
	for _, f := range zr.File {
		target, err := safeJoin(dest, f.Name)
		if err != nil {
			return files, err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, domain.DirPerm); err != nil {
				return files, err
			}
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return files, zerr.With(zerr.Wrap(err, "failed to open zip entry"), "entry", f.Name)
		}
		err = writeEntry(target, rc, f.Mode())
		_ = rc.Close()
		if err != nil {
			return files, err
		}
		files = append(files, target)
	}
	return files, nil
}

func writeEntry(target string, r io.Reader, mode fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
		return err
	}
	perm := mode.Perm()
	if perm == 0 {
		perm = domain.FilePerm
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm) //nolint:gosec // checked by safeJoin
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil { //nolint:gosec // archives come from recipes the user trusts
		_ = out.Close()
		return zerr.With(zerr.Wrap(err, "failed to write entry"), "path", target)
	}
	return out.Close()
}
