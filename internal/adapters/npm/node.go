package npm

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/filepack/internal/adapters/shell"
	"go.trai.ch/filepack/internal/core/ports"
)

// NodeID is the unique identifier for the package manager adapter node.
const NodeID graft.ID = "adapter.npm"

func init() {
	graft.Register(graft.Node[ports.PackageManager]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID},
		Run: func(ctx context.Context) (ports.PackageManager, error) {
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}
			return NewManager(executor), nil
		},
	})
}
