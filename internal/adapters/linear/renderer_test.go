package linear_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/hob/internal/adapters/linear"
	"go.trai.ch/zerr"
)

var started = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func TestRenderer_Lifecycle(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var stdout, stderr bytes.Buffer
	r := linear.NewRenderer(&stdout, &stderr)
	require.NoError(t, r.Start(context.Background()))

	r.OnPlanEmit([]string{"pcre2", "ripgrep"}, []string{"ripgrep"})
	r.OnTaskStart("s1", "", "ripgrep", started)
	r.OnTaskStart("s2", "s1", "ripgrep:build", started)
	r.OnTaskLog("s2", []byte("compiling\nlinking\n"))
	r.OnTaskComplete("s2", started.Add(1500*time.Millisecond), nil)
	r.OnTaskComplete("s1", started.Add(2*time.Second), nil)

	require.NoError(t, r.Stop())
	require.NoError(t, r.Wait())

	assert.Equal(t, "[ripgrep:build] compiling\n[ripgrep:build] linking\n", stdout.String())
	assert.Equal(t, strings.Join([]string{
		"Plan 2 recipe(s) for ripgrep: pcre2 → ripgrep",
		"[ripgrep] Starting...",
		"[ripgrep:build] Starting...",
		"[ripgrep:build] ✓ Completed in 1.5s",
		"[ripgrep] ✓ Completed in 2s",
		"",
	}, "\n"), stderr.String())
}

func TestRenderer_PartialLines(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := linear.NewRenderer(&stdout, &stderr)
	r.OnTaskStart("s1", "", "zlib:acquire", started)

	r.OnTaskLog("s1", []byte("downloading"))
	assert.Empty(t, stdout.String())

	r.OnTaskLog("s1", []byte(" zlib.tar.gz\nverif"))
	assert.Equal(t, "[zlib:acquire] downloading zlib.tar.gz\n", stdout.String())

	r.OnTaskComplete("s1", started, nil)
	assert.Equal(t, "[zlib:acquire] downloading zlib.tar.gz\n[zlib:acquire] verif\n", stdout.String())
}

func TestRenderer_Failure(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var stdout, stderr bytes.Buffer
	r := linear.NewRenderer(&stdout, &stderr)

	r.OnTaskStart("s1", "", "zlib:build", started)
	r.OnTaskComplete("s1", started.Add(250*time.Millisecond), zerr.New("make: exit status 2"))

	assert.Contains(t, stderr.String(), "[zlib:build] ✗ Failed after 250ms: make: exit status 2")
}

func TestRenderer_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var stdout, stderr bytes.Buffer
	r := linear.NewRenderer(&stdout, &stderr)

	r.OnTaskStart("s1", "", "zlib", started)
	r.OnTaskComplete("s1", started, nil)
	assert.NotContains(t, stderr.String(), "\x1b[")
}

func TestRenderer_Color(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	var stdout, stderr bytes.Buffer
	r := linear.NewRenderer(&stdout, &stderr)

	r.OnTaskStart("s1", "", "zlib", started)
	r.OnTaskComplete("s1", started, nil)
	assert.Contains(t, stderr.String(), "\x1b[")
}

func TestRenderer_UnknownSpan(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := linear.NewRenderer(&stdout, &stderr)

	r.OnTaskLog("missing", []byte("ignored\n"))
	r.OnTaskComplete("missing", time.Now(), nil)
	assert.Zero(t, stdout.Len())
	assert.Zero(t, stderr.Len())
}

func TestRenderer_EmptyLines(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := linear.NewRenderer(&stdout, &stderr)
	r.OnTaskStart("s1", "", "zlib", started)

	r.OnTaskLog("s1", []byte("\n\r\n"))
	assert.Empty(t, stdout.String())
}

func TestRenderer_StopFlushes(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := linear.NewRenderer(&stdout, &stderr)
	r.OnTaskStart("s1", "", "a", started)
	r.OnTaskStart("s2", "", "b", started)
	r.OnTaskLog("s1", []byte("tail-a"))
	r.OnTaskLog("s2", []byte("tail-b"))

	require.NoError(t, r.Stop())
	assert.Contains(t, stdout.String(), "[a] tail-a\n")
	assert.Contains(t, stdout.String(), "[b] tail-b\n")
}
