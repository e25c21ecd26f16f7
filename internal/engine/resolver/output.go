package resolver

import (
	"io"
	"strings"
	"sync"

	"go.trai.ch/filepack/internal/core/ports"
	"go.trai.ch/zerr"
)

// tailSize bounds how much suppressed output is attached to a failure.
const tailSize = 4 << 10

// tailBuffer keeps the last tailSize bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	buf []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - tailSize; over > 0 {
		b.buf = append(b.buf[:0], b.buf[over:]...)
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.TrimSpace(string(b.buf))
}

// stdio returns the console when output is visible. Otherwise output goes to the vertex
// and to tail, so that it can be shown if the subprocess fails.
func (s *session) stdio(visible bool, vertex ports.Vertex, tail *tailBuffer) ports.Stdio {
	if visible {
		return s.console
	}
	if vertex == nil {
		return ports.Stdio{Stdout: tail, Stderr: tail}
	}
	return ports.Stdio{
		Stdout: io.MultiWriter(vertex.Stdout(), tail),
		Stderr: io.MultiWriter(vertex.Stderr(), tail),
	}
}

func withOutput(err error, tail *tailBuffer) error {
	out := tail.String()
	if out == "" {
		return err
	}
	return zerr.With(err, "output", out)
}
