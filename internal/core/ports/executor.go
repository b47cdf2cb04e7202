package ports

import (
	"context"
	"io"

	"go.trai.ch/hob/internal/core/domain"
)

// Executor runs processes on behalf of recipe helpers.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs the command to completion, streaming its combined output to
	// stdout. A non-zero exit status is returned as an error carrying exit_code.
	Execute(ctx context.Context, cmd *domain.Command, stdout, stderr io.Writer) error

	// Output runs the command and returns its standard output. Standard error
	// goes to stderr.
	Output(ctx context.Context, cmd *domain.Command, stderr io.Writer) ([]byte, error)
}
