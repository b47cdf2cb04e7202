package tui

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/hob/internal/core/ports"
	"golang.org/x/sys/unix"
)

var _ ports.Renderer = (*Renderer)(nil)

// Renderer wraps the Bubble Tea model as a ports.Renderer. Every Start runs
// a fresh program; events outside Start and Stop are dropped.
type Renderer struct {
	opts      []tea.ProgramOption
	interrupt func()

	mu      sync.Mutex
	program *tea.Program
	model   *Model
	errCh   chan error
}

// NewRenderer creates a TUI renderer. Pressing ctrl+c in the UI interrupts
// the whole process so the running phase is cancelled.
func NewRenderer(opts ...tea.ProgramOption) *Renderer {
	return &Renderer{
		opts: opts,
		interrupt: func() {
			_ = unix.Kill(os.Getpid(), unix.SIGINT)
		},
	}
}

// Start launches the TUI in a background goroutine.
func (r *Renderer) Start(ctx context.Context) error {
	model := NewModel()
	program := tea.NewProgram(model, append([]tea.ProgramOption{tea.WithContext(ctx)}, r.opts...)...)
	errCh := make(chan error, 1)

	r.mu.Lock()
	r.model, r.program, r.errCh = model, program, errCh
	r.mu.Unlock()

	go func() {
		_, err := program.Run()
		switch {
		case errors.Is(err, tea.ErrInterrupted):
			r.interrupt()
			err = nil
		case errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil:
			err = nil
		}
		errCh <- err
	}()
	return nil
}

// Stop signals the TUI to quit.
func (r *Renderer) Stop() error {
	if p := r.current(); p != nil {
		p.Quit()
	}
	return nil
}

// Wait blocks until the TUI has terminated.
func (r *Renderer) Wait() error {
	r.mu.Lock()
	errCh := r.errCh
	r.errCh = nil
	r.mu.Unlock()
	if errCh == nil {
		return nil
	}
	return <-errCh
}

// OnPlanEmit forwards the plan to the TUI.
func (r *Renderer) OnPlanEmit(recipes []string, targets []string) {
	r.send(MsgInitRecipes{Recipes: recipes, Targets: targets})
}

// OnTaskStart forwards span start events to the TUI.
func (r *Renderer) OnTaskStart(spanID, parentID, name string, startTime time.Time) {
	r.send(MsgSpanStart{SpanID: spanID, ParentID: parentID, Name: name, StartTime: startTime})
}

// OnTaskLog forwards phase output to the TUI.
func (r *Renderer) OnTaskLog(spanID string, data []byte) {
	// The batcher reuses its buffer.
	r.send(MsgSpanLog{SpanID: spanID, Data: append([]byte(nil), data...)})
}

// OnTaskComplete forwards span completion events to the TUI.
func (r *Renderer) OnTaskComplete(spanID string, endTime time.Time, err error) {
	r.send(MsgSpanComplete{SpanID: spanID, EndTime: endTime, Err: err})
}

func (r *Renderer) current() *tea.Program {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.program
}

func (r *Renderer) send(msg tea.Msg) {
	if p := r.current(); p != nil {
		p.Send(msg)
	}
}
