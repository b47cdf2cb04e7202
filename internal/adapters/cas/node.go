package cas

import (
	"context"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/grindlemire/graft"
	"go.trai.ch/hob/internal/adapters/fs"
	"go.trai.ch/hob/internal/core/domain"
	"go.trai.ch/hob/internal/core/ports"
)

// NodeID is the unique identifier for the download cache Graft node.
const NodeID graft.ID = "adapter.download_cache"

func init() {
	graft.Register(graft.Node[ports.DownloadCache]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.HasherNodeID, fs.LockerNodeID},
		Run: func(ctx context.Context) (ports.DownloadCache, error) {
			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}
			locker, err := graft.Dep[ports.FileLocker](ctx)
			if err != nil {
				return nil, err
			}
			return NewStore(filepath.Join(xdg.CacheHome, domain.AppName, domain.DownloadsDirName), hasher, locker)
		},
	})
}
