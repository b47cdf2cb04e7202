package script

import (
	"context"
	"net/http"
	"time"

	"github.com/grindlemire/graft"
	"go.trai.ch/hob/internal/adapters/cas"
	"go.trai.ch/hob/internal/adapters/fs"
	"go.trai.ch/hob/internal/adapters/shell"
	"go.trai.ch/hob/internal/core/ports"
)

// NodeID is the unique identifier for the script engine Graft node.
const NodeID graft.ID = "adapter.script"

// responseHeaderTimeout bounds how long a download waits for the server to answer.
const responseHeaderTimeout = 30 * time.Second

func init() {
	graft.Register(graft.Node[ports.ScriptEngine]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID, fs.HasherNodeID, cas.NodeID},
		Run: func(ctx context.Context) (ports.ScriptEngine, error) {
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}
			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}
			cache, err := graft.Dep[ports.DownloadCache](ctx)
			if err != nil {
				return nil, err
			}
			transport := http.DefaultTransport.(*http.Transport).Clone()
			transport.ResponseHeaderTimeout = responseHeaderTimeout
			return NewEngine(executor, hasher, &http.Client{Transport: transport}, cache), nil
		},
	})
}
