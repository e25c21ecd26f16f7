// Package progrock provides the Progrock implementation of the telemetry adapter.
package progrock

import (
	"context"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.trai.ch/filepack/internal/core/ports"
)

var _ ports.Telemetry = (*Recorder)(nil)

// Recorder implements ports.Telemetry on a progrock recording.
// Each install and pack step becomes a vertex carrying the step's output.
type Recorder struct {
	w   *fanout
	rec *progrock.Recorder
}

// New creates a new Recorder backed by an in-memory tape.
func New() *Recorder {
	return NewRecorder(progrock.NewTape())
}

// NewRecorder creates a new Recorder with the given writer.
func NewRecorder(w progrock.Writer) *Recorder {
	f := &fanout{tape: w}
	return &Recorder{
		w:   f,
		rec: progrock.NewRecorder(f),
	}
}

// Record starts recording a new vertex. Vertices with the same name share a digest.
func (r *Recorder) Record(ctx context.Context, name string) (context.Context, ports.Vertex) {
	v := &Vertex{vertex: r.rec.Vertex(digest.FromString(name), name)}
	return ports.ContextWithVertex(ctx, v), v
}

// Subscribe returns a feed of every update recorded from now on.
// The feed ends when it is closed or when the recorder is closed.
func (r *Recorder) Subscribe() *Feed {
	return r.w.subscribe()
}

// Close flushes and closes the recording session.
func (r *Recorder) Close() error {
	return r.w.Close()
}
