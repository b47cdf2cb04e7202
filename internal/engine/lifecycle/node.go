package lifecycle

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/hob/internal/adapters/logger"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/hob/internal/adapters/recipefile" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/hob/internal/adapters/script"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/hob/internal/adapters/staging"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/hob/internal/adapters/telemetry"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/hob/internal/core/ports"
)

// NodeID is the unique identifier for the lifecycle executor Graft node.
const NodeID graft.ID = "engine.lifecycle"

func init() {
	graft.Register(graft.Node[*Executor]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			script.NodeID,
			recipefile.StoreNodeID,
			staging.NodeID,
			telemetry.TracerNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Executor, error) {
			scripts, err := graft.Dep[ports.ScriptEngine](ctx)
			if err != nil {
				return nil, err
			}

			store, err := graft.Dep[ports.RecipeStore](ctx)
			if err != nil {
				return nil, err
			}

			installer, err := graft.Dep[ports.Installer](ctx)
			if err != nil {
				return nil, err
			}

			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(scripts, store, installer, tracer, log), nil
		},
	})
}
