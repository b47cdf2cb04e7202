package detector

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/hob/internal/adapters/linear"
	"go.trai.ch/hob/internal/adapters/tui"
	"go.trai.ch/hob/internal/core/ports"
)

// RendererNodeID is the unique identifier for the progress renderer Graft node.
const RendererNodeID graft.ID = "adapter.renderer"

func init() {
	graft.Register(graft.Node[ports.Renderer]{
		ID:        RendererNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{linear.NodeID, tui.NodeID},
		Run: func(ctx context.Context) (ports.Renderer, error) {
			if Mode() == ModeTUI {
				r, err := graft.Dep[*tui.Renderer](ctx)
				if err != nil {
					return nil, err
				}
				return r, nil
			}
			r, err := graft.Dep[*linear.Renderer](ctx)
			if err != nil {
				return nil, err
			}
			return r, nil
		},
	})
}
