// Package shell provides the shell executor adapter.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"go.trai.ch/filepack/internal/core/domain"
	"go.trai.ch/filepack/internal/core/ports"
	"go.trai.ch/zerr"
)

// interruptGrace is how long a cancelled command gets to exit after SIGINT before it is killed.
const interruptGrace = 10 * time.Second

// Executor implements ports.Executor using os/exec.
type Executor struct {
	logger ports.Logger
}

// NewExecutor creates a new Executor.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{
		logger: logger,
	}
}

// Execute runs cmd in its directory and waits for it to exit.
//
// Output sent to a terminal is passed through untouched. Any other output is
// additionally echoed line by line as debug log messages; a nil writer sends
// output to the log only.
func (e *Executor) Execute(ctx context.Context, cmd domain.Command, stdio ports.Stdio) error {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...) //nolint:gosec // command comes from configuration
	c.Dir = cmd.Dir
	c.Cancel = func() error {
		return c.Process.Signal(os.Interrupt)
	}
	c.WaitDelay = interruptGrace

	if stdio.Stdin != nil {
		c.Stdin = stdio.Stdin
	}

	stdout := &logWriter{logger: e.logger}
	stderr := &logWriter{logger: e.logger}
	c.Stdout = attach(stdio.Stdout, stdout)
	c.Stderr = attach(stdio.Stderr, stderr)

	e.logger.Debug("running `" + cmd.String() + "` in " + cmd.Dir)

	err := c.Run()
	stdout.Flush()
	stderr.Flush()

	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}

		return zerr.With(
			zerr.With(errors.Join(domain.ErrSubprocessFailed, zerr.Wrap(err, "command failed")), "command", cmd.String()),
			"exit_code", exitCode,
		)
	}

	return nil
}

// attach combines the caller's writer with the log echo. Terminals are used directly
// so the child process sees a TTY.
func attach(w io.Writer, echo *logWriter) io.Writer {
	if w == nil {
		return echo
	}
	if _, ok := w.(*os.File); ok {
		return w
	}
	return io.MultiWriter(w, echo)
}

// logWriter forwards complete lines to the logger at debug level.
type logWriter struct {
	logger ports.Logger
	mu     sync.Mutex
	buf    []byte
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.emit(w.buf[:i])
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

// Flush logs any trailing partial line.
func (w *logWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.buf) > 0 {
		w.emit(w.buf)
		w.buf = nil
	}
}

func (w *logWriter) emit(line []byte) {
	line = bytes.TrimSuffix(line, []byte("\r"))
	if len(line) == 0 {
		return
	}
	w.logger.Debug(string(line))
}
