package shell_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/hob/internal/adapters/shell"
	"go.trai.ch/hob/internal/core/domain"
	"go.trai.ch/hob/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestExecutor_Execute_PathFromOverrides(t *testing.T) {
	ctrl := gomock.NewController(t)
	executor := shell.NewExecutor(mocks.NewMockLogger(ctrl))

	toolDir := t.TempDir()
	//nolint:gosec // test requires an executable file
	require.NoError(t, os.WriteFile(filepath.Join(toolDir, "my-build-tool"), []byte("#!/bin/sh\necho success\n"), 0o700))

	cmd := &domain.Command{
		Args: []string{"my-build-tool"},
		Dir:  toolDir,
		Env:  map[string]string{"PATH": toolDir + string(os.PathListSeparator) + os.Getenv("PATH")},
	}

	var out bytes.Buffer
	require.NoError(t, executor.Execute(context.Background(), cmd, &out, io.Discard))
	assert.Contains(t, out.String(), "success")
}
