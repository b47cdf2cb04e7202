package tui

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/grindlemire/graft"
	"go.trai.ch/hob/internal/ui/output"
)

// NodeID is the unique identifier for the TUI renderer Graft node.
const NodeID graft.ID = "adapter.tui"

func init() {
	graft.Register(graft.Node[*Renderer]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Renderer, error) {
			lipgloss.SetColorProfile(output.ColorProfile())
			return NewRenderer(tea.WithOutput(os.Stderr)), nil
		},
	})
}
