//nolint:testpackage // Shares the replay tape with the model tests
package tui

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vito/progrock"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// lockedBuffer guards the program output written from its own goroutine.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestDisplay_StartAndStop(t *testing.T) {
	tape := &sliceTape{updates: []*progrock.StatusUpdate{
		{Vertexes: []*progrock.Vertex{{Id: "1", Name: "pack lib"}}},
		{Vertexes: []*progrock.Vertex{{Id: "1", Name: "pack lib", Completed: timestamppb.New(time.Now())}}},
	}}
	out := &lockedBuffer{}

	stop := NewDisplay(func() Feed { return tape }, out).Start()
	stop()

	tape.mu.Lock()
	assert.True(t, tape.closed)
	tape.mu.Unlock()
	assert.Contains(t, out.String(), "pack lib")
}
