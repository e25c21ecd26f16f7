package resolver

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/filepack/internal/adapters/fs"                 //nolint:depguard // Wired in engine wiring
	"go.trai.ch/filepack/internal/adapters/logger"             //nolint:depguard // Wired in engine wiring
	"go.trai.ch/filepack/internal/adapters/npm"                //nolint:depguard // Wired in engine wiring
	"go.trai.ch/filepack/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/filepack/internal/core/ports"
)

// NodeID is the unique identifier for the resolver engine Graft node.
const NodeID graft.ID = "engine.resolver"

func init() {
	graft.Register(graft.Node[*Engine]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			fs.FileSystemNodeID,
			fs.HasherNodeID,
			npm.NodeID,
			progrock.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Engine, error) {
			fileSystem, err := graft.Dep[ports.FileSystem](ctx)
			if err != nil {
				return nil, err
			}

			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}

			pm, err := graft.Dep[ports.PackageManager](ctx)
			if err != nil {
				return nil, err
			}

			telemetry, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewEngine(fileSystem, pm, hasher, telemetry, log), nil
		},
	})
}
