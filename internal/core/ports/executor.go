// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"

	"go.trai.ch/filepack/internal/core/domain"
)

// Stdio holds the streams attached to a subprocess. A nil Stdin leaves the process without input.
type Stdio struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Executor defines the interface for running external commands.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs cmd in cmd.Dir and waits for it to exit.
	//
	// A non-zero exit is returned as an error wrapping domain.ErrSubprocessFailed
	// with the exit code attached.
	Execute(ctx context.Context, cmd domain.Command, stdio Stdio) error
}
