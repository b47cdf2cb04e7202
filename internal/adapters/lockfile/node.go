package lockfile

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/hob/internal/adapters/fs"
	"go.trai.ch/hob/internal/build"
	"go.trai.ch/hob/internal/core/domain"
	"go.trai.ch/hob/internal/core/ports"
)

// NodeID is the unique identifier for the lockfile store Graft node.
const NodeID graft.ID = "adapter.lockfile"

func init() {
	graft.Register(graft.Node[ports.LockfileStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.LockerNodeID},
		Run: func(ctx context.Context) (ports.LockfileStore, error) {
			locker, err := graft.Dep[ports.FileLocker](ctx)
			if err != nil {
				return nil, err
			}
			return NewStore(locker, domain.AppName+" "+build.Version), nil
		},
	})
}
