package resolver

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.trai.ch/filepack/internal/core/domain"
	"go.trai.ch/filepack/internal/core/ports"
	"go.trai.ch/zerr"
)

// produce packs the project in dir and returns the absolute path of its archive.
// A project with a prepack script has its own packed dependencies resolved and installed first.
func (s *session) produce(ctx context.Context, dep domain.Dependency, dir string) (archive string, err error) {
	ctx, vertex := s.telemetry.Record(ctx, "pack "+dep.Name)
	defer func() {
		vertex.Complete(err)
	}()

	m, err := s.readManifest(dir)
	if err != nil {
		return "", zerr.With(err, "dependency", dep.Name)
	}
	if m.Name() == "" || m.Version() == "" {
		err := zerr.With(zerr.Wrap(domain.ErrManifestInvalid, "cannot predict the archive name"), "dependency", dep.Name)
		return "", zerr.With(err, "dir", dir)
	}

	if !m.HasScript(domain.PrepackScript) {
		archive, err = s.pack(ctx, dep, dir, m)
	} else {
		archive, err = s.prepackAndPack(ctx, dep, dir, m)
	}
	if err != nil {
		return "", err
	}

	s.note(ctx, fmt.Sprintf("done on %s", dep.Name))
	return archive, nil
}

// prepackAndPack resolves and installs the dependencies the prepack script needs, packs, and
// restores the manifest it rewrote.
func (s *session) prepackAndPack(
	ctx context.Context,
	dep domain.Dependency,
	dir string,
	m *domain.Manifest,
) (string, error) {
	txn, err := s.prepare(ctx, dir, false)
	if err != nil {
		return "", err
	}

	err = s.install(ctx, domain.InstallRequest{PackageManager: s.opts.PackageManager, Dir: dir}, s.opts.NestedOutput)
	if err != nil {
		return "", closeOnError(txn, zerr.With(err, "dependency", dep.Name))
	}

	s.note(ctx, fmt.Sprintf("running prepack for %s", dep.Name))
	archive, err := s.pack(ctx, dep, dir, m)
	if err != nil {
		return "", closeOnError(txn, err)
	}
	s.note(ctx, fmt.Sprintf("done prepack for %s", dep.Name))

	if err := txn.Close(); err != nil {
		return "", err
	}
	return archive, nil
}

// pack runs the package manager pack step in dir and checks the archive it should have written.
func (s *session) pack(ctx context.Context, dep domain.Dependency, dir string, m *domain.Manifest) (string, error) {
	tail := &tailBuffer{}
	req := domain.PackRequest{PackageManager: s.opts.PackageManager, Dir: dir}
	if err := s.pm.Pack(ctx, req, s.stdio(s.opts.NestedOutput, ports.VertexFromContext(ctx), tail)); err != nil {
		return "", withOutput(zerr.With(err, "dependency", dep.Name), tail)
	}

	archive := filepath.Join(dir, domain.ArchiveFileName(m.Name(), m.Version()))
	exists, err := s.fs.Exists(archive)
	if err != nil {
		return "", zerr.With(err, "dependency", dep.Name)
	}
	if !exists {
		err := zerr.With(zerr.Wrap(domain.ErrArchiveNotFound, "pack did not write the expected archive"), "archive", archive)
		return "", zerr.With(err, "dependency", dep.Name)
	}
	return archive, nil
}

// note logs msg and records it on the step carried by ctx.
func (s *session) note(ctx context.Context, msg string) {
	s.logger.Info(msg)
	if vertex := ports.VertexFromContext(ctx); vertex != nil {
		vertex.Log(domain.LogLevelInfo, msg)
	}
}

func (s *session) readManifest(dir string) (*domain.Manifest, error) {
	path := filepath.Join(dir, domain.ManifestFileName)
	data, err := s.fs.ReadFile(path)
	if err != nil {
		return nil, zerr.With(errors.Join(domain.ErrManifestRead, err), "path", path)
	}
	m, err := domain.ParseManifest(data)
	if err != nil {
		return nil, zerr.With(errors.Join(domain.ErrManifestRead, err), "path", path)
	}
	return m, nil
}
