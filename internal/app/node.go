package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/hob/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/hob/internal/adapters/detector"  //nolint:depguard // Wired in app layer
	"go.trai.ch/hob/internal/adapters/fs"        //nolint:depguard // Wired in app layer
	"go.trai.ch/hob/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/hob/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/hob/internal/core/ports"
	"go.trai.ch/hob/internal/engine/lifecycle"
	"go.trai.ch/hob/internal/engine/locker"
	"go.trai.ch/hob/internal/engine/resolver"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			resolver.NodeID,
			lifecycle.NodeID,
			locker.NodeID,
			telemetry.TracerNodeID,
			detector.RendererNodeID,
			fs.HasherNodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewComponents(app, log), nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}
	res, err := graft.Dep[*resolver.Resolver](ctx)
	if err != nil {
		return nil, err
	}
	exec, err := graft.Dep[*lifecycle.Executor](ctx)
	if err != nil {
		return nil, err
	}
	locks, err := graft.Dep[*locker.Manager](ctx)
	if err != nil {
		return nil, err
	}
	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}
	renderer, err := graft.Dep[ports.Renderer](ctx)
	if err != nil {
		return nil, err
	}
	hasher, err := graft.Dep[ports.Hasher](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	return New(loader, res, exec, locks, tracer, renderer, hasher, log), nil
}
