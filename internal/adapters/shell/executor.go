// Package shell runs recipe helper processes.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/creack/pty"
	"go.trai.ch/hob/internal/core/domain"
	"go.trai.ch/hob/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Executor = (*Executor)(nil)

// tailLines is the number of trailing output lines attached to a failure.
const tailLines = 20

// Executor implements ports.Executor using os/exec and pty.
type Executor struct {
	logger ports.Logger
}

// NewExecutor creates a new Executor. Output is logged through logger when
// the caller provides no writer.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{logger: logger}
}

// Execute runs the command in a PTY so tools keep their terminal formatting.
// The PTY merges both streams into stdout.
func (e *Executor) Execute(ctx context.Context, cmd *domain.Command, stdout, _ io.Writer) error {
	c, err := e.command(ctx, cmd)
	if err != nil {
		return err
	}

	tail := &tailWriter{max: tailLines}
	var sink io.Writer = tail
	if stdout != nil {
		sink = io.MultiWriter(tail, stdout)
	} else {
		lw := &logWriter{logger: e.logger}
		defer func() { _ = lw.Close() }()
		sink = io.MultiWriter(tail, lw)
	}

	ptmx, err := pty.Start(c)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to start process"), "command", cmd.Args[0])
	}
	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		// Reading a PTY after the child exits fails with EIO; that is the normal end of output.
		_, _ = io.Copy(sink, ptmx)
	}()

	waitErr := c.Wait()
	<-ioDone
	_ = ptmx.Close()

	if waitErr != nil {
		return failure(waitErr, cmd, tail.String())
	}
	return nil
}

// Output runs the command with plain pipes and returns its standard output.
func (e *Executor) Output(ctx context.Context, cmd *domain.Command, stderr io.Writer) ([]byte, error) {
	c, err := e.command(ctx, cmd)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	tail := &tailWriter{max: tailLines}
	c.Stdout = &out
	if stderr != nil {
		c.Stderr = io.MultiWriter(tail, stderr)
	} else {
		lw := &logWriter{logger: e.logger}
		defer func() { _ = lw.Close() }()
		c.Stderr = io.MultiWriter(tail, lw)
	}
	if err := c.Run(); err != nil {
		return nil, failure(err, cmd, tail.String())
	}
	return out.Bytes(), nil
}

func (e *Executor) command(ctx context.Context, cmd *domain.Command) (*exec.Cmd, error) {
	if cmd == nil || len(cmd.Args) == 0 {
		return nil, zerr.New("empty command")
	}
	name := cmd.Args[0]
	env := resolveEnvironment(os.Environ(), cmd.Env)

	executable := name
	if !filepath.IsAbs(name) && !strings.ContainsRune(name, filepath.Separator) {
		if lp, err := lookPath(name, env); err == nil {
			executable = lp
		}
	}

	c := exec.CommandContext(ctx, executable, cmd.Args[1:]...) //nolint:gosec // recipe-provided command
	c.Args[0] = name
	c.Dir = cmd.Dir
	c.Env = env
	return c, nil
}

func failure(err error, cmd *domain.Command, output string) error {
	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	wrapped := zerr.With(zerr.Wrap(err, "command failed"), "exit_code", exitCode)
	wrapped = zerr.With(wrapped, "command", strings.Join(cmd.Args, " "))
	if output != "" {
		wrapped = zerr.With(wrapped, "output", output)
	}
	return wrapped
}

// logWriter forwards complete output lines to the logger.
type logWriter struct {
	logger ports.Logger
	buf    []byte
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.logLine(w.buf[:i])
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

func (w *logWriter) Close() error {
	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *logWriter) logLine(line []byte) {
	// PTYs terminate lines with \r\n.
	w.logger.Info(strings.TrimSuffix(string(line), "\r"))
}

// tailWriter keeps the last max lines written to it.
type tailWriter struct {
	max   int
	lines []string
	part  []byte
}

func (w *tailWriter) Write(p []byte) (int, error) {
	w.part = append(w.part, p...)
	for {
		i := bytes.IndexByte(w.part, '\n')
		if i < 0 {
			break
		}
		w.push(strings.TrimSuffix(string(w.part[:i]), "\r"))
		w.part = w.part[i+1:]
	}
	return len(p), nil
}

func (w *tailWriter) push(line string) {
	w.lines = append(w.lines, line)
	if len(w.lines) > w.max {
		w.lines = w.lines[len(w.lines)-w.max:]
	}
}

func (w *tailWriter) String() string {
	lines := w.lines
	if len(w.part) > 0 {
		lines = append(lines[:len(lines):len(lines)], strings.TrimSuffix(string(w.part), "\r"))
	}
	return strings.Join(lines, "\n")
}

// allowListedEnvVars are the system environment variables recipe processes
// inherit. Everything else comes from the recipe's own overrides.
var allowListedEnvVars = map[string]struct{}{
	"HOME":          {},
	"TERM":          {},
	"USER":          {},
	"PATH":          {},
	"LANG":          {},
	"LC_ALL":        {},
	"TMPDIR":        {},
	"SSL_CERT_FILE": {},
	"SSL_CERT_DIR":  {},
	"HTTP_PROXY":    {},
	"HTTPS_PROXY":   {},
	"NO_PROXY":      {},
	"http_proxy":    {},
	"https_proxy":   {},
	"no_proxy":      {},
}

// resolveEnvironment filters the system environment through the allow-list
// and applies overrides on top.
func resolveEnvironment(sysEnv []string, overrides map[string]string) []string {
	envMap := make(map[string]string)
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if _, allowed := allowListedEnvVars[k]; allowed {
			envMap[k] = v
		}
	}
	for k, v := range overrides {
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	return result
}

// lookPath searches for an executable in the PATH of env rather than the
// PATH of the current process.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
			break
		}
	}
	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
