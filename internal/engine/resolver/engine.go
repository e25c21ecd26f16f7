// Package resolver packs file+pack dependencies, points manifests at the archives and installs.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.trai.ch/filepack/internal/core/domain"
	"go.trai.ch/filepack/internal/core/ports"
	"go.trai.ch/filepack/internal/engine/cache"
	"go.trai.ch/filepack/internal/engine/transaction"
)

// Engine runs install sessions. It holds no state between runs.
type Engine struct {
	fs        ports.FileSystem
	pm        ports.PackageManager
	hasher    ports.Hasher
	telemetry ports.Telemetry
	logger    ports.Logger
	console   ports.Stdio
}

// Option configures an Engine.
type Option func(*Engine)

// WithConsole sets the streams used for subprocess output that is shown to the user.
func WithConsole(stdio ports.Stdio) Option {
	return func(e *Engine) {
		e.console = stdio
	}
}

// NewEngine creates a new Engine.
func NewEngine(
	fs ports.FileSystem,
	pm ports.PackageManager,
	hasher ports.Hasher,
	telemetry ports.Telemetry,
	logger ports.Logger,
	opts ...Option,
) *Engine {
	e := &Engine{
		fs:        fs,
		pm:        pm,
		hasher:    hasher,
		telemetry: telemetry,
		logger:    logger,
		console:   ports.Stdio{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run packs the marked dependencies of the project in opts.ProjectDir, installs it and
// restores every manifest it rewrote, whether or not the run succeeds.
func (e *Engine) Run(ctx context.Context, opts domain.Options) error {
	s := &session{
		Engine:   e,
		opts:     opts,
		cache:    cache.New(),
		dirs:     cache.New(),
		registry: transaction.NewRegistry(e.fs, e.hasher, e.logger),
	}

	if err := s.checkCycles(opts.ProjectDir, opts.Production); err != nil {
		return err
	}

	txn, err := s.prepare(ctx, opts.ProjectDir, opts.Production)
	if err != nil {
		return err
	}

	name := displayName(txn.Manifest(), opts.ProjectDir)
	ctx, vertex := s.telemetry.Record(ctx, "install "+name)
	err = s.install(ctx, domain.InstallRequest{
		PackageManager: opts.PackageManager,
		Dir:            opts.ProjectDir,
		Production:     opts.Production,
		Args:           opts.InstallArgs,
	}, opts.Output)
	vertex.Complete(err)
	if err != nil {
		return closeOnError(txn, err)
	}

	if err := txn.Close(); err != nil {
		return err
	}
	s.logger.Debug(fmt.Sprintf("packed %d dependencies from %d directories", s.cache.Len(), s.dirs.Len()))
	s.logger.Info(fmt.Sprintf("done install on %s", name))
	return nil
}

// Restore puts back the manifest backup left in dir by an interrupted run.
func (e *Engine) Restore(dir string) error {
	return transaction.NewRegistry(e.fs, e.hasher, e.logger).Recover(dir)
}

// session is the state of one Run. Its caches and registry are shared by every nested frame.
type session struct {
	*Engine
	opts domain.Options
	// cache maps dependency names to archives, dirs maps project directories to archives.
	cache    *cache.Cache
	dirs     *cache.Cache
	registry *transaction.Registry
}

// prepare opens the manifest in dir, resolves its packed dependencies and persists the
// rewritten manifest. The returned transaction is still open.
func (s *session) prepare(ctx context.Context, dir string, production bool) (*transaction.Transaction, error) {
	txn, err := s.registry.Open(dir)
	if err != nil {
		return nil, err
	}

	s.logger.Info(fmt.Sprintf("running install on %s", displayName(txn.Manifest(), dir)))

	for _, kind := range domain.Sections(production) {
		if err := s.resolveSection(ctx, txn.Manifest(), kind, dir); err != nil {
			return nil, closeOnError(txn, err)
		}
	}

	if err := txn.Persist(); err != nil {
		return nil, closeOnError(txn, err)
	}
	return txn, nil
}

// install runs the package manager install step, showing its output when visible.
// Hidden output goes to the vertex carried by ctx.
func (s *session) install(ctx context.Context, req domain.InstallRequest, visible bool) error {
	tail := &tailBuffer{}
	if err := s.pm.Install(ctx, req, s.stdio(visible, ports.VertexFromContext(ctx), tail)); err != nil {
		return withOutput(err, tail)
	}
	return nil
}

func closeOnError(txn *transaction.Transaction, err error) error {
	if cerr := txn.Close(); cerr != nil {
		return errors.Join(err, cerr)
	}
	return err
}

func displayName(m *domain.Manifest, dir string) string {
	if name := m.Name(); name != "" {
		return name
	}
	return filepath.Base(dir)
}
