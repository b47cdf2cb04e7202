package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/hob/internal/adapters/logger"
	"go.trai.ch/zerr"
)

// newTestLogger creates a logger writing to a buffer without colours.
func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := logger.New().(*logger.Logger)
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_InfoWarn(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Info("resolving ripgrep")
	lg.Warn("skipping broken.recipe")

	assert.Equal(t, "resolving ripgrep\n! skipping broken.recipe\n", buf.String())
}

func TestLogger_ErrorChain(t *testing.T) {
	lg, buf := newTestLogger(t)

	cause := zerr.With(zerr.New("download failed"), "url", "https://example.com/rg.tar.gz")
	err := zerr.With(zerr.Wrap(cause, "failed to install ripgrep"), "recipe", "ripgrep")
	lg.Error(err)

	g := goldie.New(t)
	g.Assert(t, "error_chain", buf.Bytes())
}

func TestLogger_ErrorNil(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Error(nil)
	assert.Empty(t, buf.String())
}

func TestLogger_JSON(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)
	lg.Error(zerr.New("boom"))
	lg.Info("hello")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &rec))
	assert.Equal(t, "ERROR", rec["level"])
	assert.Equal(t, "operation failed", rec["msg"])

	require.NoError(t, json.Unmarshal(lines[1], &rec))
	assert.Equal(t, "hello", rec["msg"])

	// SetOutput keeps JSON mode.
	other := &bytes.Buffer{}
	lg.SetOutput(other)
	lg.Warn("still json")
	assert.Contains(t, other.String(), `"msg":"still json"`)
}

func TestCollectErrorEntries(t *testing.T) {
	assert.Empty(t, logger.CollectErrorEntries(nil))

	entries := logger.CollectErrorEntries(errors.New("plain"))
	require.Len(t, entries, 1)
	assert.Equal(t, "plain", entries[0].Message)
	assert.Nil(t, entries[0].Metadata)

	inner := zerr.With(zerr.New("inner"), "k", 1)
	outer := zerr.Wrap(zerr.Wrap(inner, "middle"), "outer")
	entries = logger.CollectErrorEntries(outer)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"outer", "middle", "inner"}, []string{entries[0].Message, entries[1].Message, entries[2].Message})
	assert.Equal(t, map[string]any{"k": 1}, entries[2].Metadata)

	// Metadata on a wrapped plain error moves to the plain error's entry.
	entries = logger.CollectErrorEntries(zerr.With(errors.New("disk full"), "path", "/p"))
	require.Len(t, entries, 1)
	assert.Equal(t, "disk full", entries[0].Message)
	assert.Equal(t, map[string]any{"path": "/p"}, entries[0].Metadata)

	// A typed error ends the walk with its full message.
	entries = logger.CollectErrorEntries(zerr.Wrap(errors.Join(errors.New("a"), errors.New("b")), "top"))
	require.Len(t, entries, 2)
	assert.Equal(t, "a\nb", entries[1].Message)
}

func TestFormatErrorEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []logger.ErrorEntry
		want    string
	}{
		{"empty", nil, ""},
		{"single", []logger.ErrorEntry{{Message: "single error"}}, "Error: single error"},
		{
			"causes",
			[]logger.ErrorEntry{{Message: "first"}, {Message: "second"}, {Message: "third"}},
			"Error: first\n\n  Caused by:\n    → second\n    → third",
		},
		{
			"multiline cause",
			[]logger.ErrorEntry{{Message: "main"}, {Message: "cause line1\ncause line2"}},
			"Error: main\n\n  Caused by:\n    → cause line1\n      cause line2",
		},
		{
			"sorted metadata",
			[]logger.ErrorEntry{{Message: "error", Metadata: map[string]any{"zebra": "z", "alpha": "a", "mike": 3}}},
			"Error: error\n       alpha: a\n       mike: 3\n       zebra: z",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.FormatErrorEntries(tt.entries))
		})
	}
}
