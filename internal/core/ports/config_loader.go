package ports

import "go.trai.ch/filepack/internal/core/domain"

// ConfigLoader defines the interface for loading project configuration.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration of the project in dir.
	// A project without a configuration file yields empty settings.
	Load(dir string) (domain.Settings, error)
}
