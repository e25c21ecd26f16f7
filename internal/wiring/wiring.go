// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/filepack/internal/adapters/config"
	_ "go.trai.ch/filepack/internal/adapters/fs"
	_ "go.trai.ch/filepack/internal/adapters/logger"
	_ "go.trai.ch/filepack/internal/adapters/npm"
	_ "go.trai.ch/filepack/internal/adapters/shell"
	_ "go.trai.ch/filepack/internal/adapters/telemetry/progrock"
	_ "go.trai.ch/filepack/internal/adapters/tui"
	// Register app and engine nodes.
	_ "go.trai.ch/filepack/internal/app"
	_ "go.trai.ch/filepack/internal/engine/resolver"
)
