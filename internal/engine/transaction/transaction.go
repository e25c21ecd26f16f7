// Package transaction rewrites package manifests with a backup on disk and guaranteed restoration.
package transaction

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"path/filepath"
	"sync"

	"go.trai.ch/filepack/internal/core/domain"
	"go.trai.ch/filepack/internal/core/ports"
	"go.trai.ch/zerr"
)

// Registry opens manifest transactions and tracks the ones still open in the current run.
type Registry struct {
	fs     ports.FileSystem
	hasher ports.Hasher
	logger ports.Logger

	mu   sync.Mutex
	open map[string]struct{}
}

// NewRegistry creates a Registry with no open transactions.
func NewRegistry(fs ports.FileSystem, hasher ports.Hasher, logger ports.Logger) *Registry {
	return &Registry{
		fs:     fs,
		hasher: hasher,
		logger: logger,
		open:   make(map[string]struct{}),
	}
}

// Open reads and parses the manifest in dir and writes its unmodified bytes to the backup file.
func (r *Registry) Open(dir string) (*Transaction, error) {
	dir = filepath.Clean(dir)
	if err := r.acquire(dir); err != nil {
		return nil, err
	}

	txn, err := r.begin(dir)
	if err != nil {
		r.release(dir)
		return nil, err
	}
	return txn, nil
}

// Recover puts the backup left by an interrupted run back in place of the manifest in dir.
func (r *Registry) Recover(dir string) error {
	dir = filepath.Clean(dir)
	if err := r.acquire(dir); err != nil {
		return err
	}
	defer r.release(dir)

	manifestPath := filepath.Join(dir, domain.ManifestFileName)
	backupPath := filepath.Join(dir, domain.BackupFileName)

	backup, err := r.fs.ReadFile(backupPath)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return zerr.With(zerr.Wrap(domain.ErrNoBackup, "nothing to restore"), "dir", dir)
		}
		return zerr.With(errors.Join(domain.ErrManifestRead, err), "backup", backupPath)
	}

	if err := r.fs.WriteFile(manifestPath, backup); err != nil {
		return zerr.With(errors.Join(domain.ErrManifestRestore, err), "backup", backupPath)
	}
	if err := r.fs.Remove(backupPath); err != nil {
		return zerr.With(errors.Join(domain.ErrManifestRestore, err), "backup", backupPath)
	}

	r.logger.Info(fmt.Sprintf("restored %s from backup", manifestPath))
	return nil
}

func (r *Registry) acquire(dir string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.open[dir]; busy {
		return zerr.With(zerr.Wrap(domain.ErrTransactionInProgress, "cannot open manifest twice"), "dir", dir)
	}
	r.open[dir] = struct{}{}
	return nil
}

func (r *Registry) release(dir string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.open, dir)
}

func (r *Registry) begin(dir string) (*Transaction, error) {
	manifestPath := filepath.Join(dir, domain.ManifestFileName)
	backupPath := filepath.Join(dir, domain.BackupFileName)

	original, err := r.fs.ReadFile(manifestPath)
	if err != nil {
		return nil, zerr.With(errors.Join(domain.ErrManifestRead, err), "path", manifestPath)
	}
	manifest, err := domain.ParseManifest(original)
	if err != nil {
		return nil, zerr.With(errors.Join(domain.ErrManifestRead, err), "path", manifestPath)
	}
	digest := r.hasher.ComputeDigest(original)

	if err := r.checkStaleBackup(backupPath, digest); err != nil {
		return nil, err
	}

	if err := r.fs.WriteFile(backupPath, original); err != nil {
		return nil, zerr.With(errors.Join(domain.ErrManifestWrite, err), "path", backupPath)
	}

	return &Transaction{
		registry:     r,
		dir:          dir,
		manifestPath: manifestPath,
		backupPath:   backupPath,
		original:     original,
		digest:       digest,
		manifest:     manifest,
	}, nil
}

// checkStaleBackup lets an identical leftover backup be overwritten and refuses any other.
func (r *Registry) checkStaleBackup(backupPath, digest string) error {
	stale, err := r.fs.Exists(backupPath)
	if err != nil {
		return zerr.With(errors.Join(domain.ErrManifestRead, err), "path", backupPath)
	}
	if !stale {
		return nil
	}

	backupDigest, err := r.hasher.ComputeFileDigest(backupPath)
	if err != nil {
		return zerr.With(errors.Join(domain.ErrManifestRead, err), "path", backupPath)
	}
	if backupDigest != digest {
		err := zerr.Wrap(domain.ErrStaleBackup, "backup differs from the current manifest")
		err = zerr.With(err, "backup", backupPath)
		return zerr.With(err, "hint", "run `filepack restore` to recover the original manifest")
	}

	r.logger.Warn(fmt.Sprintf("overwriting leftover backup %s", backupPath))
	return nil
}

// Transaction holds one manifest open for rewriting. The original bytes stay in memory
// and in the backup file until Close puts them back.
type Transaction struct {
	registry     *Registry
	dir          string
	manifestPath string
	backupPath   string
	original     []byte
	digest       string
	manifest     *domain.Manifest

	mu     sync.Mutex
	closed bool
}

// Dir returns the project directory of the manifest.
func (t *Transaction) Dir() string {
	return t.dir
}

// Manifest returns the parsed manifest to mutate.
func (t *Transaction) Manifest() *domain.Manifest {
	return t.manifest
}

// Persist writes the mutated manifest to disk.
func (t *Transaction) Persist() error {
	data, err := t.manifest.Encode()
	if err != nil {
		return zerr.With(errors.Join(domain.ErrManifestWrite, err), "path", t.manifestPath)
	}
	if err := t.registry.fs.WriteFile(t.manifestPath, data); err != nil {
		return zerr.With(errors.Join(domain.ErrManifestWrite, err), "path", t.manifestPath)
	}
	return nil
}

// Close writes the original bytes back, checks them by digest and removes the backup.
// Calling Close again is a no-op. On failure the backup is left in place.
func (t *Transaction) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	defer t.registry.release(t.dir)

	if err := t.registry.fs.WriteFile(t.manifestPath, t.original); err != nil {
		return t.restoreError(err)
	}

	digest, err := t.registry.hasher.ComputeFileDigest(t.manifestPath)
	if err != nil {
		return t.restoreError(err)
	}
	if digest != t.digest {
		return t.restoreError(zerr.With(zerr.New("restored manifest does not match the original"), "digest", digest))
	}

	if err := t.registry.fs.Remove(t.backupPath); err != nil {
		t.registry.logger.Warn(fmt.Sprintf("manifest restored but backup %s could not be removed: %v", t.backupPath, err))
	}
	return nil
}

func (t *Transaction) restoreError(cause error) error {
	err := zerr.With(errors.Join(domain.ErrManifestRestore, cause), "manifest", t.manifestPath)
	return zerr.With(err, "backup", t.backupPath)
}
