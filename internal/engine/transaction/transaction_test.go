package transaction_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/filepack/internal/adapters/fs"
	"go.trai.ch/filepack/internal/core/domain"
	"go.trai.ch/filepack/internal/core/ports"
	"go.trai.ch/filepack/internal/core/ports/mocks"
	"go.trai.ch/filepack/internal/engine/transaction"
	"go.uber.org/mock/gomock"
)

const original = "{\n    \"name\": \"app\",\n    \"dependencies\": {\"lib\": \"file+pack:../lib\"}\n}\n"

// faultyFS fails writes to one path after a number of successful ones.
type faultyFS struct {
	*fs.FileSystem
	failPath   string
	okWrites   int
	failErr    error
	failRemove bool
}

func (f *faultyFS) WriteFile(path string, data []byte) error {
	if path == f.failPath {
		if f.okWrites == 0 {
			return f.failErr
		}
		f.okWrites--
	}
	return f.FileSystem.WriteFile(path, data)
}

func (f *faultyFS) Remove(path string) error {
	if f.failRemove {
		return errors.New("remove denied")
	}
	return f.FileSystem.Remove(path)
}

func newRegistry(t *testing.T, fsys ports.FileSystem) *transaction.Registry {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	return transaction.NewRegistry(fsys, fs.NewHasher(), logger)
}

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.ManifestFileName), []byte(content), domain.FilePerm))
	return dir
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestTransaction_RoundTrip(t *testing.T) {
	dir := writeManifest(t, original)
	registry := newRegistry(t, fs.NewFileSystem())

	txn, err := registry.Open(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, txn.Dir())
	assert.Equal(t, original, readFile(t, filepath.Join(dir, domain.BackupFileName)))

	txn.Manifest().SetDependency(domain.SectionRuntime, "lib", "./lib-1.0.0.tgz")
	require.NoError(t, txn.Persist())
	assert.Contains(t, readFile(t, filepath.Join(dir, domain.ManifestFileName)), `"lib": "./lib-1.0.0.tgz"`)

	require.NoError(t, txn.Close())
	assert.Equal(t, original, readFile(t, filepath.Join(dir, domain.ManifestFileName)))
	assert.NoFileExists(t, filepath.Join(dir, domain.BackupFileName))

	require.NoError(t, txn.Close(), "second close is a no-op")
	assert.Equal(t, original, readFile(t, filepath.Join(dir, domain.ManifestFileName)))
}

func TestRegistry_Open_Twice(t *testing.T) {
	dir := writeManifest(t, original)
	registry := newRegistry(t, fs.NewFileSystem())

	txn, err := registry.Open(dir)
	require.NoError(t, err)

	_, err = registry.Open(dir)
	require.ErrorIs(t, err, domain.ErrTransactionInProgress)

	require.NoError(t, txn.Close())

	again, err := registry.Open(dir)
	require.NoError(t, err, "closing releases the manifest")
	require.NoError(t, again.Close())
}

func TestRegistry_Open_Errors(t *testing.T) {
	t.Run("missing manifest", func(t *testing.T) {
		registry := newRegistry(t, fs.NewFileSystem())

		_, err := registry.Open(t.TempDir())
		require.ErrorIs(t, err, domain.ErrManifestRead)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		dir := writeManifest(t, `{"name": `)
		registry := newRegistry(t, fs.NewFileSystem())

		_, err := registry.Open(dir)
		require.ErrorIs(t, err, domain.ErrManifestRead)
		assert.NoFileExists(t, filepath.Join(dir, domain.BackupFileName))

		_, err = registry.Open(dir)
		require.ErrorIs(t, err, domain.ErrManifestRead, "failed open does not hold the manifest")
	})

	t.Run("backup write fails", func(t *testing.T) {
		dir := writeManifest(t, original)
		fsys := &faultyFS{
			FileSystem: fs.NewFileSystem(),
			failPath:   filepath.Join(dir, domain.BackupFileName),
			failErr:    errors.New("disk full"),
		}
		registry := newRegistry(t, fsys)

		_, err := registry.Open(dir)
		require.ErrorIs(t, err, domain.ErrManifestWrite)
		assert.Equal(t, original, readFile(t, filepath.Join(dir, domain.ManifestFileName)))
	})
}

func TestRegistry_Open_StaleBackup(t *testing.T) {
	t.Run("identical backup is overwritten", func(t *testing.T) {
		dir := writeManifest(t, original)
		require.NoError(t, os.WriteFile(filepath.Join(dir, domain.BackupFileName), []byte(original), domain.FilePerm))
		registry := newRegistry(t, fs.NewFileSystem())

		txn, err := registry.Open(dir)
		require.NoError(t, err)
		require.NoError(t, txn.Close())
		assert.NoFileExists(t, filepath.Join(dir, domain.BackupFileName))
	})

	t.Run("differing backup is kept", func(t *testing.T) {
		dir := writeManifest(t, `{"name":"app","dependencies":{"lib":"./lib-1.0.0.tgz"}}`)
		backupPath := filepath.Join(dir, domain.BackupFileName)
		require.NoError(t, os.WriteFile(backupPath, []byte(original), domain.FilePerm))
		registry := newRegistry(t, fs.NewFileSystem())

		_, err := registry.Open(dir)
		require.ErrorIs(t, err, domain.ErrStaleBackup)
		assert.Equal(t, original, readFile(t, backupPath))
	})
}

func TestTransaction_Close_RestoreFails(t *testing.T) {
	dir := writeManifest(t, original)
	manifestPath := filepath.Join(dir, domain.ManifestFileName)
	fsys := &faultyFS{
		FileSystem: fs.NewFileSystem(),
		failPath:   manifestPath,
		okWrites:   1,
		failErr:    errors.New("read-only file system"),
	}
	registry := newRegistry(t, fsys)

	txn, err := registry.Open(dir)
	require.NoError(t, err)
	txn.Manifest().SetDependency(domain.SectionRuntime, "lib", "./lib-1.0.0.tgz")
	require.NoError(t, txn.Persist())

	err = txn.Close()
	require.ErrorIs(t, err, domain.ErrManifestRestore)
	assert.Equal(t, original, readFile(t, filepath.Join(dir, domain.BackupFileName)), "backup survives a failed restore")

	fsys.failPath = ""
	require.NoError(t, registry.Recover(dir))
	assert.Equal(t, original, readFile(t, manifestPath))
	assert.NoFileExists(t, filepath.Join(dir, domain.BackupFileName))
}

func TestTransaction_Close_BackupRemovalFails(t *testing.T) {
	dir := writeManifest(t, original)
	fsys := &faultyFS{FileSystem: fs.NewFileSystem(), failRemove: true}
	registry := newRegistry(t, fsys)

	txn, err := registry.Open(dir)
	require.NoError(t, err)

	require.NoError(t, txn.Close(), "the manifest itself was restored")
	assert.Equal(t, original, readFile(t, filepath.Join(dir, domain.ManifestFileName)))
}

func TestRegistry_Recover_NoBackup(t *testing.T) {
	dir := writeManifest(t, original)
	registry := newRegistry(t, fs.NewFileSystem())

	err := registry.Recover(dir)
	require.ErrorIs(t, err, domain.ErrNoBackup)
}

func TestRegistry_Recover_WhileOpen(t *testing.T) {
	dir := writeManifest(t, original)
	registry := newRegistry(t, fs.NewFileSystem())

	txn, err := registry.Open(dir)
	require.NoError(t, err)
	defer func() { require.NoError(t, txn.Close()) }()

	err = registry.Recover(dir)
	require.ErrorIs(t, err, domain.ErrTransactionInProgress)
}

func TestTransaction_PersistFails(t *testing.T) {
	dir := writeManifest(t, original)
	manifestPath := filepath.Join(dir, domain.ManifestFileName)
	backupPath := filepath.Join(dir, domain.BackupFileName)
	disk := fs.NewFileSystem()

	ctrl := gomock.NewController(t)
	fileSystem := mocks.NewMockFileSystem(ctrl)
	fileSystem.EXPECT().ReadFile(gomock.Any()).DoAndReturn(disk.ReadFile).AnyTimes()
	fileSystem.EXPECT().Exists(gomock.Any()).DoAndReturn(disk.Exists).AnyTimes()
	fileSystem.EXPECT().Remove(gomock.Any()).DoAndReturn(disk.Remove).AnyTimes()
	fileSystem.EXPECT().WriteFile(backupPath, gomock.Any()).DoAndReturn(disk.WriteFile)
	gomock.InOrder(
		fileSystem.EXPECT().WriteFile(manifestPath, gomock.Any()).Return(errors.New("disk full")),
		fileSystem.EXPECT().WriteFile(manifestPath, gomock.Any()).DoAndReturn(disk.WriteFile),
	)

	txn, err := newRegistry(t, fileSystem).Open(dir)
	require.NoError(t, err)

	txn.Manifest().SetDependency(domain.SectionRuntime, "lib", "./lib-1.0.0.tgz")
	err = txn.Persist()
	require.ErrorIs(t, err, domain.ErrManifestWrite)

	require.NoError(t, txn.Close())
	assert.Equal(t, original, readFile(t, manifestPath))
	assert.NoFileExists(t, backupPath)
}
