package resolver

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/filepack/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// resolveSection packs the dependencies of one section and points the native entries at the
// archives. Entries are rewritten in declaration order even when packed concurrently.
func (s *session) resolveSection(ctx context.Context, m *domain.Manifest, kind domain.SectionKind, dir string) error {
	deps, err := m.PackedDependencies(kind)
	if err != nil {
		return zerr.With(err, "dir", dir)
	}
	if len(deps) == 0 {
		return nil
	}

	s.logger.Debug(fmt.Sprintf("resolving %d packed %s in %s", len(deps), kind, dir))

	archives := make([]string, len(deps))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, s.opts.Jobs))
	for i, dep := range deps {
		g.Go(func() error {
			archive, err := s.resolveDependency(gctx, dep, dir)
			if err != nil {
				return err
			}
			archives[i] = archive
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, dep := range deps {
		m.SetDependency(kind, dep.Name, domain.ArchiveSpecifier(dir, archives[i]))
	}
	return nil
}

// resolveDependency returns the archive for dep, producing it unless this run already did.
// Dependencies pointing at the same directory share one production, so pack never runs twice
// in a directory at the same time.
func (s *session) resolveDependency(ctx context.Context, dep domain.Dependency, dir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.removeInstalled(dep, dir)

	pkgDir := dep.ResolveDir(dir)
	sharedDir := false
	archive, hit, err := s.cache.GetOrProduce(ctx, dep.Name, func(ctx context.Context) (string, error) {
		archive, dirHit, err := s.dirs.GetOrProduce(ctx, pkgDir, func(ctx context.Context) (string, error) {
			return s.produce(ctx, dep, pkgDir)
		})
		sharedDir = dirHit
		return archive, err
	})
	if err != nil {
		return "", err
	}

	if hit || sharedDir {
		msg := fmt.Sprintf("using cache for %s", dep.Name)
		s.logger.Info(msg)
		_, vertex := s.telemetry.Record(ctx, "pack "+dep.Name)
		vertex.Log(domain.LogLevelInfo, msg)
		vertex.Cached()
		vertex.Complete(nil)
	}
	return archive, nil
}

// removeInstalled deletes an extracted copy from an earlier install, which the package manager
// would not refresh. Names that would point outside node_modules are left alone.
func (s *session) removeInstalled(dep domain.Dependency, dir string) {
	modules := filepath.Join(dir, domain.ModulesDirName)
	installed := filepath.Join(modules, filepath.FromSlash(dep.Name))
	if !strings.HasPrefix(installed, modules+string(filepath.Separator)) {
		s.logger.Warn(fmt.Sprintf("not removing %s: dependency name leaves %s", installed, domain.ModulesDirName))
		return
	}
	if err := s.fs.RemoveAll(installed); err != nil {
		s.logger.Warn(fmt.Sprintf("could not remove %s: %v", installed, err))
	}
}

// checkCycles walks the dependencies that packing would recurse into and fails when a
// dependency, by name or by directory, is reached again through its own prepack chain.
func (s *session) checkCycles(dir string, production bool) error {
	done := make(map[string]bool)

	var walk func(dir string, sections []domain.SectionKind, names, dirs []string) error
	walk = func(dir string, sections []domain.SectionKind, names, dirs []string) error {
		m, err := s.readManifest(dir)
		if err != nil {
			return nil //nolint:nilerr // reported with context once the run reaches this manifest
		}
		if len(names) > 0 && !m.HasScript(domain.PrepackScript) {
			return nil
		}

		for _, kind := range sections {
			deps, err := m.PackedDependencies(kind)
			if err != nil {
				return nil //nolint:nilerr // reported by resolveSection
			}
			for _, dep := range deps {
				depDir := dep.ResolveDir(dir)
				if slices.Contains(names, dep.Name) || slices.Contains(dirs, depDir) {
					cycle := strings.Join(append(slices.Clone(names), dep.Name), " -> ")
					return zerr.With(zerr.Wrap(domain.ErrDependencyCycle, "prepack recursion would never end"), "cycle", cycle)
				}
				if done[depDir] {
					continue
				}
				err := walk(depDir, domain.Sections(false),
					append(slices.Clone(names), dep.Name),
					append(slices.Clone(dirs), depDir))
				if err != nil {
					return err
				}
				done[depDir] = true
			}
		}
		return nil
	}

	return walk(dir, domain.Sections(production), nil, nil)
}
