package recipefile

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/hob/internal/adapters/fs"
	"go.trai.ch/hob/internal/core/ports"
)

const (
	// StoreNodeID is the unique identifier for the recipe store Graft node.
	StoreNodeID graft.ID = "adapter.recipefile.store"
	// CatalogNodeID is the unique identifier for the recipe catalog Graft node.
	CatalogNodeID graft.ID = "adapter.recipefile.catalog"
)

func init() {
	graft.Register(graft.Node[ports.RecipeStore]{
		ID:        StoreNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.LockerNodeID},
		Run: func(ctx context.Context) (ports.RecipeStore, error) {
			locker, err := graft.Dep[ports.FileLocker](ctx)
			if err != nil {
				return nil, err
			}
			return NewStore(locker), nil
		},
	})

	graft.Register(graft.Node[ports.RecipeCatalog]{
		ID:        CatalogNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{StoreNodeID, fs.WalkerNodeID},
		Run: func(ctx context.Context) (ports.RecipeCatalog, error) {
			store, err := graft.Dep[ports.RecipeStore](ctx)
			if err != nil {
				return nil, err
			}
			walker, err := graft.Dep[*fs.Walker](ctx)
			if err != nil {
				return nil, err
			}
			return NewCatalog(store, walker), nil
		},
	})
}
