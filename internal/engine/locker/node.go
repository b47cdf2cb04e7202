package locker

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/hob/internal/adapters/lockfile" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/hob/internal/core/ports"
)

// NodeID is the unique identifier for the lockfile manager Graft node.
const NodeID graft.ID = "engine.locker"

func init() {
	graft.Register(graft.Node[*Manager]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{lockfile.NodeID},
		Run: func(ctx context.Context) (*Manager, error) {
			store, err := graft.Dep[ports.LockfileStore](ctx)
			if err != nil {
				return nil, err
			}
			return New(store), nil
		},
	})
}
