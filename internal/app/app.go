// Package app implements the application layer for filepack.
package app

import (
	"context"
	"path/filepath"

	"go.trai.ch/filepack/internal/core/domain"
	"go.trai.ch/filepack/internal/core/ports"
	"go.trai.ch/filepack/internal/engine/resolver"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	engine       *resolver.Engine
	progress     ports.Progress
	logger       ports.Logger
}

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App       *App
	Logger    ports.Logger
	Telemetry ports.Telemetry
}

// New creates a new App instance. progress may be nil when no display is available.
func New(loader ports.ConfigLoader, engine *resolver.Engine, progress ports.Progress, log ports.Logger) *App {
	return &App{
		configLoader: loader,
		engine:       engine,
		progress:     progress,
		logger:       log,
	}
}

// LogOptions controls how the run reports progress.
type LogOptions struct {
	Verbose bool
	JSON    bool
}

// InstallOptions configuration for the Install method.
type InstallOptions struct {
	// Dir is the project directory, relative to the working directory or absolute.
	Dir string
	// Overrides hold settings from flags and environment. They win over the project file.
	Overrides domain.Settings
	// Silent hides the output of the top-level install.
	Silent bool
	// Progress draws a live list of steps instead of the package manager output.
	Progress bool
	Log      LogOptions
}

// Install packs the project's file+pack dependencies and runs the package manager install.
func (a *App) Install(ctx context.Context, opts InstallOptions) error {
	a.configureLogger(opts.Log)

	dir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to resolve project directory"), "dir", opts.Dir)
	}

	fileSettings, err := a.configLoader.Load(dir)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}
	settings := domain.DefaultSettings().Merge(fileSettings).Merge(opts.Overrides)

	run := domain.Options{
		ProjectDir:     dir,
		Production:     *settings.Production,
		Output:         !opts.Silent,
		NestedOutput:   *settings.NestedOutput,
		Jobs:           settings.Jobs,
		PackageManager: settings.PackageManager,
		InstallArgs:    settings.InstallArgs,
	}
	if opts.Progress && a.progress != nil {
		// Package manager output would tear the display; it stays on the recorded steps.
		run.Output = false
		run.NestedOutput = false
		stop := a.progress.Start()
		defer stop()
	}

	return a.engine.Run(ctx, run)
}

// RestoreOptions configuration for the Restore method.
type RestoreOptions struct {
	Dir string
	Log LogOptions
}

// Restore puts back a manifest left rewritten by an interrupted run.
func (a *App) Restore(_ context.Context, opts RestoreOptions) error {
	a.configureLogger(opts.Log)

	dir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to resolve project directory"), "dir", opts.Dir)
	}
	return a.engine.Restore(dir)
}

func (a *App) configureLogger(opts LogOptions) {
	if l, ok := a.logger.(interface{ SetVerbose(bool) }); ok {
		l.SetVerbose(opts.Verbose)
	}
	if l, ok := a.logger.(interface{ SetJSON(bool) }); ok {
		l.SetJSON(opts.JSON)
	}
}
