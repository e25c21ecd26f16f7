// Package npm drives the npm command line (or a compatible package manager) through an executor.
package npm

import (
	"context"
	"errors"
	"fmt"

	"go.trai.ch/filepack/internal/core/domain"
	"go.trai.ch/filepack/internal/core/ports"
	"go.trai.ch/zerr"
)

const productionFlag = "--production"

var _ ports.PackageManager = (*Manager)(nil)

// Manager implements ports.PackageManager.
type Manager struct {
	executor ports.Executor
}

// NewManager creates a new Manager running commands with executor.
func NewManager(executor ports.Executor) *Manager {
	return &Manager{executor: executor}
}

// Install runs `<pm> install [--production] [args...]` in req.Dir.
func (m *Manager) Install(ctx context.Context, req domain.InstallRequest, stdio ports.Stdio) error {
	args := []string{"install"}
	if req.Production {
		args = append(args, productionFlag)
	}
	args = append(args, req.Args...)

	cmd := domain.Command{Name: binary(req.PackageManager), Args: args, Dir: req.Dir}
	if err := m.executor.Execute(ctx, cmd, stdio); err != nil {
		return annotate(domain.ErrInstallFailed, err, cmd)
	}
	return nil
}

// Pack runs `<pm> pack` in req.Dir.
func (m *Manager) Pack(ctx context.Context, req domain.PackRequest, stdio ports.Stdio) error {
	cmd := domain.Command{Name: binary(req.PackageManager), Args: []string{"pack"}, Dir: req.Dir}
	if err := m.executor.Execute(ctx, cmd, stdio); err != nil {
		return annotate(domain.ErrPackFailed, err, cmd)
	}
	return nil
}

func annotate(sentinel, err error, cmd domain.Command) error {
	wrapped := zerr.With(errors.Join(sentinel, err), "dir", cmd.Dir)
	return zerr.With(wrapped, "hint", fmt.Sprintf("run `%s` in %s for details", cmd.String(), cmd.Dir))
}

func binary(name string) string {
	if name == "" {
		return domain.DefaultPackageManager
	}
	return name
}
