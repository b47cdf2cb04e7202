package ports

import (
	"context"
	"time"
)

// Renderer is the abstraction for progress output. It decouples span
// collection from presentation.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// Start initializes the renderer.
	Start(ctx context.Context) error

	// Stop flushes any buffered output.
	Stop() error

	// Wait blocks until the renderer has fully terminated.
	Wait() error

	// OnPlanEmit is called once the resolver has fixed an install plan.
	// recipes lists every plan entry in execution order.
	OnPlanEmit(recipes []string, targets []string)

	// OnTaskStart is called when a recipe or one of its phases begins.
	OnTaskStart(spanID, parentID, name string, startTime time.Time)

	// OnTaskLog is called when a phase emits output. data may hold partial lines.
	OnTaskLog(spanID string, data []byte)

	// OnTaskComplete is called when a recipe or phase finishes. err is nil on success.
	OnTaskComplete(spanID string, endTime time.Time, err error)
}
