package tui

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/filepack/internal/adapters/telemetry/progrock" //nolint:depguard // Display reads the progrock recording
	"go.trai.ch/filepack/internal/core/ports"
	"go.trai.ch/zerr"
)

// NodeID is the unique identifier for the progress display node.
const NodeID graft.ID = "adapter.tui"

func init() {
	graft.Register(graft.Node[ports.Progress]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{progrock.NodeID},
		Run: func(ctx context.Context) (ports.Progress, error) {
			telemetry, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}
			rec, ok := telemetry.(*progrock.Recorder)
			if !ok {
				return nil, zerr.New("progress display requires the progrock recorder")
			}
			return NewDisplay(func() Feed { return rec.Subscribe() }, os.Stderr), nil
		},
	})
}
