package script

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	hobfs "go.trai.ch/hob/internal/adapters/fs"
	"go.trai.ch/hob/internal/core/domain"
	"go.trai.ch/zerr"
)

type helper struct {
	// min and max bound the argument count; max < 0 means variadic.
	min, max int
	fn       func(in *interp, args []any) (any, error)
}

var helpers map[string]helper

func init() {
	helpers = map[string]helper{
		"log":      {1, -1, helperLog},
		"warn":     {1, -1, helperWarn},
		"env":      {1, 1, helperEnv},
		"set_env":  {2, 2, helperSetEnv},
		"cd":       {1, 1, helperCd},
		"pwd":      {0, 0, func(in *interp, _ []any) (any, error) { return in.script.ec.Cwd, nil }},
		"basename": {1, 1, pathString(filepath.Base)},
		"dirname":  {1, 1, pathString(filepath.Dir)},

		"join_path":  {1, -1, helperJoinPath},
		"exists":     {1, 1, helperStat(func(fs.FileInfo) bool { return true })},
		"is_file":    {1, 1, helperStat(func(i fs.FileInfo) bool { return i.Mode().IsRegular() })},
		"is_dir":     {1, 1, helperStat(func(i fs.FileInfo) bool { return i.IsDir() })},
		"mkdir":      {1, 1, helperMkdir},
		"rm":         {1, 1, helperRm},
		"mv":         {2, 2, helperMv},
		"ln":         {2, 2, helperLn},
		"chmod":      {2, 2, helperChmod},
		"copy":       {2, 2, helperCopy},
		"write_file": {2, 2, helperWriteFile},
		"read_file":  {1, 1, helperReadFile},

		"download":      {1, 2, helperDownload},
		"verify_sha256": {1, 1, verifyDigest("sha256", func(h domain.FileHash) string { return h.SHA256 })},
		"verify_sha512": {1, 1, verifyDigest("sha512", func(h domain.FileHash) string { return h.SHA512 })},
		"extract":       {1, 2, helperExtract},
		"git_clone":     {2, 3, helperGitClone},

		"shell":        {1, 1, helperShell},
		"shell_output": {1, 1, helperShellOutput},
		"run":          {1, -1, helperRun},
		"run_output":   {1, -1, helperRunOutput},

		"install_bin": {1, 1, installer("bin", domain.ExecPerm)},
		"install_lib": {1, 1, installer("lib", domain.FilePerm)},
		"install_man": {1, 1, helperInstallMan},

		"len":         {1, 1, helperLen},
		"contains":    {2, 2, helperContains},
		"starts_with": {2, 2, stringPredicate(strings.HasPrefix)},
		"ends_with":   {2, 2, stringPredicate(strings.HasSuffix)},
		"trim":        {1, 1, helperTrim},
		"replace":     {3, 3, helperReplace},
		"split":       {2, 2, helperSplit},
		"to_string":   {1, 1, func(_ *interp, args []any) (any, error) { return display(args[0]), nil }},
		"parse_int":   {1, 1, helperParseInt},
	}
}

func argString(args []any, i int) (string, error) {
	s, ok := args[i].(string)
	if !ok {
		return "", fmt.Errorf("argument %d must be a string, got %s", i+1, typeName(args[i]))
	}
	return s, nil
}

func argInt(args []any, i int) (int64, error) {
	n, ok := args[i].(int64)
	if !ok {
		return 0, fmt.Errorf("argument %d must be an integer, got %s", i+1, typeName(args[i]))
	}
	return n, nil
}

// argStrings flattens string and array-of-string arguments from index i on.
func argStrings(args []any, i int) ([]string, error) {
	var out []string
	for j := i; j < len(args); j++ {
		switch x := args[j].(type) {
		case string:
			out = append(out, x)
		case []any:
			for _, item := range x {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("argument %d must contain only strings", j+1)
				}
				out = append(out, s)
			}
		default:
			return nil, fmt.Errorf("argument %d must be a string or array, got %s", j+1, typeName(args[j]))
		}
	}
	return out, nil
}

// resolve makes p absolute against the current directory.
func (in *interp) resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(in.script.ec.Cwd, p)
}

// produced records p when it lies under the destination prefix.
func (in *interp) produced(p string) {
	ec := in.script.ec
	if ec.Prefix == "" {
		return
	}
	if rel, err := filepath.Rel(ec.Prefix, p); err == nil && rel != ".." && !strings.HasPrefix(rel, "../") {
		ec.Produced = append(ec.Produced, p)
	}
}

func (in *interp) pathArg(args []any, i int) (string, error) {
	s, err := argString(args, i)
	if err != nil {
		return "", err
	}
	return in.resolve(s), nil
}

func joined(args []any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = display(a)
	}
	return strings.Join(parts, " ")
}

func helperLog(in *interp, args []any) (any, error) {
	_, err := fmt.Fprintln(in.script.ec.Stdout, joined(args))
	return nil, err
}

func helperWarn(in *interp, args []any) (any, error) {
	_, err := fmt.Fprintln(in.script.ec.Stderr, "warning: "+joined(args))
	return nil, err
}

func helperEnv(in *interp, args []any) (any, error) {
	name, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	if v, ok := in.script.ec.Env[name]; ok {
		return v, nil
	}
	return os.Getenv(name), nil
}

func helperSetEnv(in *interp, args []any) (any, error) {
	name, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	in.script.ec.Env[name] = display(args[1])
	return nil, nil
}

func helperCd(in *interp, args []any) (any, error) {
	dir, err := in.pathArg(args, 0)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	in.script.ec.Cwd = dir
	return nil, nil
}

func pathString(fn func(string) string) func(*interp, []any) (any, error) {
	return func(_ *interp, args []any) (any, error) {
		s, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		return fn(s), nil
	}
}

func helperJoinPath(_ *interp, args []any) (any, error) {
	parts, err := argStrings(args, 0)
	if err != nil {
		return nil, err
	}
	return filepath.Join(parts...), nil
}

func helperStat(pred func(fs.FileInfo) bool) func(*interp, []any) (any, error) {
	return func(in *interp, args []any) (any, error) {
		p, err := in.pathArg(args, 0)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(p)
		if err != nil {
			return false, nil //nolint:nilerr // missing means false
		}
		return pred(info), nil
	}
}

func helperMkdir(in *interp, args []any) (any, error) {
	p, err := in.pathArg(args, 0)
	if err != nil {
		return nil, err
	}
	return nil, os.MkdirAll(p, domain.DirPerm)
}

func helperRm(in *interp, args []any) (any, error) {
	pattern, err := in.pathArg(args, 0)
	if err != nil {
		return nil, err
	}
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	for _, m := range matches {
		if err := os.RemoveAll(m); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func helperMv(in *interp, args []any) (any, error) {
	src, err := in.pathArg(args, 0)
	if err != nil {
		return nil, err
	}
	dst, err := in.pathArg(args, 1)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), domain.DirPerm); err != nil {
		return nil, err
	}
	if err := os.Rename(src, dst); err != nil {
		return nil, err
	}
	in.produced(dst)
	return nil, nil
}

func helperLn(in *interp, args []any) (any, error) {
	target, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	link, err := in.pathArg(args, 1)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(link), domain.DirPerm); err != nil {
		return nil, err
	}
	if err := os.Remove(link); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if err := os.Symlink(target, link); err != nil {
		return nil, err
	}
	in.produced(link)
	return nil, nil
}

func helperChmod(in *interp, args []any) (any, error) {
	p, err := in.pathArg(args, 0)
	if err != nil {
		return nil, err
	}
	mode, err := argInt(args, 1)
	if err != nil {
		return nil, err
	}
	// Permission bits only: setuid, setgid and sticky are never applied.
	return nil, os.Chmod(p, fs.FileMode(mode)&fs.ModePerm)
}

func helperCopy(in *interp, args []any) (any, error) {
	src, err := in.pathArg(args, 0)
	if err != nil {
		return nil, err
	}
	dst, err := in.pathArg(args, 1)
	if err != nil {
		return nil, err
	}
	info, err := os.Lstat(src)
	if err != nil {
		return nil, err
	}
	if dinfo, derr := os.Stat(dst); derr == nil && dinfo.IsDir() {
		dst = filepath.Join(dst, filepath.Base(src))
	}

	if info.IsDir() {
		files, err := hobfs.CopyTree(src, dst)
		for _, f := range files {
			in.produced(f)
		}
		return nil, err
	}
	if err := hobfs.CopyFile(src, dst, info.Mode()); err != nil {
		return nil, err
	}
	in.produced(dst)
	return nil, nil
}

func helperWriteFile(in *interp, args []any) (any, error) {
	p, err := in.pathArg(args, 0)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(p), domain.DirPerm); err != nil {
		return nil, err
	}
	if err := os.WriteFile(p, []byte(display(args[1])), domain.FilePerm); err != nil {
		return nil, err
	}
	in.produced(p)
	return nil, nil
}

func helperReadFile(in *interp, args []any) (any, error) {
	p, err := in.pathArg(args, 0)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p) //nolint:gosec // recipe-chosen path
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// helperDownload fetches a URL into the current directory, or into the given
// destination. An existing destination is reused.
func helperDownload(in *interp, args []any) (any, error) {
	rawURL, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "invalid url"), "url", rawURL)
	}
	name := path.Base(u.Path)
	if len(args) > 1 {
		if name, err = argString(args, 1); err != nil {
			return nil, err
		}
	}
	if name == "" || name == "/" || name == "." {
		return nil, zerr.With(zerr.New("cannot derive a file name from url"), "url", rawURL)
	}
	dest := in.resolve(name)
	ec := in.script.ec

	if info, serr := os.Stat(dest); serr == nil && info.Mode().IsRegular() {
		_, _ = fmt.Fprintf(ec.Stdout, "using cached %s\n", filepath.Base(dest))
		ec.LastFile = dest
		return dest, nil
	}

	cache := in.script.engine.cache
	if cache != nil {
		if blob, ok := cache.Lookup(rawURL); ok {
			if err := hobfs.CopyFile(blob, dest, domain.FilePerm); err != nil {
				return nil, err
			}
			_, _ = fmt.Fprintf(ec.Stdout, "using cached %s\n", rawURL)
			ec.LastFile = dest
			return dest, nil
		}
	}

	req, err := http.NewRequestWithContext(in.ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "invalid request"), "url", rawURL)
	}
	_, _ = fmt.Fprintf(ec.Stdout, "downloading %s\n", rawURL)
	resp, err := in.script.engine.client.Do(req)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrNetwork, err.Error()), "url", rawURL)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrNetwork, "unexpected status "+resp.Status), "url", rawURL), "status", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(dest), domain.DirPerm); err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return nil, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		return nil, zerr.With(zerr.Wrap(domain.ErrNetwork, err.Error()), "url", rawURL)
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}
	if err := os.Chmod(tmp.Name(), domain.FilePerm); err != nil {
		return nil, err
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return nil, err
	}
	if cache != nil {
		if err := cache.Store(in.ctx, rawURL, dest); err != nil {
			_, _ = fmt.Fprintf(ec.Stderr, "warning: %v\n", err)
		}
	}
	ec.LastFile = dest
	return dest, nil
}

// verifyDigest checks the last acquired file. A mismatching file is removed so
// that the next acquire fetches it again.
func verifyDigest(algo string, pick func(domain.FileHash) string) func(*interp, []any) (any, error) {
	return func(in *interp, args []any) (any, error) {
		expected, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		file := in.script.ec.LastFile
		if file == "" {
			return nil, zerr.New("no file has been acquired")
		}
		sums, err := in.script.engine.hasher.HashFile(file)
		if err != nil {
			return nil, err
		}
		if actual := pick(sums); !strings.EqualFold(actual, strings.TrimSpace(expected)) {
			_ = os.Remove(file)
			in.script.ec.LastFile = ""
			err := zerr.With(zerr.Wrap(domain.ErrChecksumMismatch, algo), "file", file)
			return nil, zerr.With(zerr.With(err, "expected", expected), "actual", actual)
		}
		_, _ = fmt.Fprintf(in.script.ec.Stdout, "%s ok: %s\n", algo, filepath.Base(file))
		return true, nil
	}
}

func helperGitClone(in *interp, args []any) (any, error) {
	repo, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	dest, err := in.pathArg(args, 1)
	if err != nil {
		return nil, err
	}
	if _, serr := os.Stat(filepath.Join(dest, ".git")); serr == nil {
		_, _ = fmt.Fprintf(in.script.ec.Stdout, "using existing clone %s\n", dest)
		return dest, nil
	}
	cmd := []string{"git", "clone", "--depth", "1"}
	if len(args) > 2 {
		ref, err := argString(args, 2)
		if err != nil {
			return nil, err
		}
		cmd = append(cmd, "--branch", ref)
	}
	cmd = append(cmd, repo, dest)
	if err := in.execute(cmd); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrNetwork, err.Error()), "url", repo)
	}
	return dest, nil
}

func (in *interp) command(argv []string) *domain.Command {
	ec := in.script.ec
	return &domain.Command{Args: argv, Dir: ec.Cwd, Env: ec.Env}
}

func (in *interp) execute(argv []string) error {
	ec := in.script.ec
	return in.script.engine.executor.Execute(in.ctx, in.command(argv), ec.Stdout, ec.Stderr)
}

func (in *interp) output(argv []string) (string, error) {
	out, err := in.script.engine.executor.Output(in.ctx, in.command(argv), in.script.ec.Stderr)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(out), "\r\n"), nil
}

func helperShell(in *interp, args []any) (any, error) {
	script, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	return nil, in.execute([]string{in.script.ec.Shell, "-c", script})
}

func helperShellOutput(in *interp, args []any) (any, error) {
	script, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	return in.output([]string{in.script.ec.Shell, "-c", script})
}

func helperRun(in *interp, args []any) (any, error) {
	argv, err := argStrings(args, 0)
	if err != nil {
		return nil, err
	}
	return nil, in.execute(argv)
}

func helperRunOutput(in *interp, args []any) (any, error) {
	argv, err := argStrings(args, 0)
	if err != nil {
		return nil, err
	}
	return in.output(argv)
}

func (in *interp) glob(args []any) ([]string, error) {
	pattern, err := in.pathArg(args, 0)
	if err != nil {
		return nil, err
	}
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files match %s", pattern)
	}
	return matches, nil
}

// installer copies matching files into a fixed directory under the prefix.
func installer(subdir string, perm os.FileMode) func(*interp, []any) (any, error) {
	return func(in *interp, args []any) (any, error) {
		matches, err := in.glob(args)
		if err != nil {
			return nil, err
		}
		dir := filepath.Join(in.script.ec.Prefix, subdir)
		for _, m := range matches {
			dst := filepath.Join(dir, filepath.Base(m))
			if err := hobfs.CopyFile(m, dst, perm); err != nil {
				return nil, err
			}
			in.produced(dst)
		}
		return int64(len(matches)), nil
	}
}

// helperInstallMan places pages under share/man/manN by their section suffix.
func helperInstallMan(in *interp, args []any) (any, error) {
	matches, err := in.glob(args)
	if err != nil {
		return nil, err
	}
	for _, m := range matches {
		base := strings.TrimSuffix(filepath.Base(m), ".gz")
		ext := strings.TrimPrefix(filepath.Ext(base), ".")
		if ext == "" || ext[0] < '1' || ext[0] > '9' {
			return nil, fmt.Errorf("cannot determine man section of %s", filepath.Base(m))
		}
		dst := filepath.Join(in.script.ec.Prefix, "share", "man", "man"+ext[:1], filepath.Base(m))
		if err := hobfs.CopyFile(m, dst, domain.FilePerm); err != nil {
			return nil, err
		}
		in.produced(dst)
	}
	return int64(len(matches)), nil
}

func helperLen(_ *interp, args []any) (any, error) {
	switch x := args[0].(type) {
	case string:
		return int64(len([]rune(x))), nil
	case []any:
		return int64(len(x)), nil
	case map[string]any:
		return int64(len(x)), nil
	default:
		return nil, fmt.Errorf("len of %s", typeName(x))
	}
}

func helperContains(_ *interp, args []any) (any, error) {
	switch x := args[0].(type) {
	case string:
		return strings.Contains(x, display(args[1])), nil
	case []any:
		for _, item := range x {
			if equal(item, args[1]) {
				return true, nil
			}
		}
		return false, nil
	case map[string]any:
		k, ok := args[1].(string)
		if !ok {
			return false, nil
		}
		_, found := x[k]
		return found, nil
	default:
		return nil, fmt.Errorf("contains on %s", typeName(x))
	}
}

func stringPredicate(fn func(s, affix string) bool) func(*interp, []any) (any, error) {
	return func(_ *interp, args []any) (any, error) {
		s, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		affix, err := argString(args, 1)
		if err != nil {
			return nil, err
		}
		return fn(s, affix), nil
	}
}

func helperTrim(_ *interp, args []any) (any, error) {
	s, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	return strings.TrimSpace(s), nil
}

func helperReplace(_ *interp, args []any) (any, error) {
	s, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	old, err := argString(args, 1)
	if err != nil {
		return nil, err
	}
	return strings.ReplaceAll(s, old, display(args[2])), nil
}

func helperSplit(_ *interp, args []any) (any, error) {
	s, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	sep, err := argString(args, 1)
	if err != nil {
		return nil, err
	}
	parts := strings.Split(s, sep)
	out := make([]any, len(parts))
	for i, p := range parts {
		out[i] = p
	}
	return out, nil
}

func helperParseInt(_ *interp, args []any) (any, error) {
	s, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("not an integer: %q", s)
	}
	return n, nil
}
