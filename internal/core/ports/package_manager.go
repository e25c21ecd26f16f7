package ports

import (
	"context"

	"go.trai.ch/filepack/internal/core/domain"
)

// PackageManager runs the external package manager.
//
//go:generate go run go.uber.org/mock/mockgen -source=package_manager.go -destination=mocks/mock_package_manager.go -package=mocks
type PackageManager interface {
	// Install installs the dependencies of the project in req.Dir.
	Install(ctx context.Context, req domain.InstallRequest, stdio Stdio) error
	// Pack produces the archive of the project in req.Dir, next to its manifest.
	Pack(ctx context.Context, req domain.PackRequest, stdio Stdio) error
}
