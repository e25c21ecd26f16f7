package app_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/filepack/internal/adapters/fs"
	"go.trai.ch/filepack/internal/adapters/telemetry"
	"go.trai.ch/filepack/internal/app"
	"go.trai.ch/filepack/internal/core/domain"
	"go.trai.ch/filepack/internal/core/ports"
	"go.trai.ch/filepack/internal/core/ports/mocks"
	"go.trai.ch/filepack/internal/engine/resolver"
	"go.uber.org/mock/gomock"
)

// recordingLogger is a ports.Logger that remembers how it was configured.
type recordingLogger struct {
	verbose bool
	json    bool
}

func (l *recordingLogger) Debug(string)       {}
func (l *recordingLogger) Info(string)        {}
func (l *recordingLogger) Warn(string)        {}
func (l *recordingLogger) Error(error)        {}
func (l *recordingLogger) SetVerbose(on bool) { l.verbose = on }
func (l *recordingLogger) SetJSON(on bool)    { l.json = on }

// fakeProgress records when the display starts and stops.
type fakeProgress struct {
	events *[]string
}

func (p fakeProgress) Start() func() {
	*p.events = append(*p.events, "start")
	return func() { *p.events = append(*p.events, "stop") }
}

func newApp(loader ports.ConfigLoader, pm ports.PackageManager, log ports.Logger) *app.App {
	return newAppWithProgress(loader, pm, nil, log)
}

func newAppWithProgress(loader ports.ConfigLoader, pm ports.PackageManager, progress ports.Progress, log ports.Logger) *app.App {
	engine := resolver.NewEngine(fs.NewFileSystem(), pm, fs.NewHasher(), telemetry.NewNoOp(), log,
		resolver.WithConsole(ports.Stdio{Stdout: io.Discard, Stderr: io.Discard}))
	return app.New(loader, engine, progress, log)
}

func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	manifest := `{"name":"app","dependencies":{"left-pad":"^1.0.0"}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.ManifestFileName), []byte(manifest), domain.FilePerm))
	return dir
}

func boolPtr(v bool) *bool {
	return &v
}

func TestApp_Install_MergesSettings(t *testing.T) {
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockConfigLoader(ctrl)
	pm := mocks.NewMockPackageManager(ctrl)
	log := &recordingLogger{}
	dir := writeProject(t)

	loader.EXPECT().Load(dir).Return(domain.Settings{
		PackageManager: "pnpm",
		Production:     boolPtr(false),
		Jobs:           2,
		InstallArgs:    []string{"--frozen-lockfile"},
	}, nil)
	pm.EXPECT().Install(gomock.Any(), domain.InstallRequest{
		PackageManager: "pnpm",
		Dir:            dir,
		Production:     true,
		Args:           []string{"--frozen-lockfile"},
	}, gomock.Any()).Return(nil)

	err := newApp(loader, pm, log).Install(context.Background(), app.InstallOptions{
		Dir:       dir,
		Overrides: domain.Settings{Production: boolPtr(true)},
		Log:       app.LogOptions{Verbose: true, JSON: true},
	})

	require.NoError(t, err)
	assert.True(t, log.verbose)
	assert.True(t, log.json)
}

func TestApp_Install_Defaults(t *testing.T) {
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockConfigLoader(ctrl)
	pm := mocks.NewMockPackageManager(ctrl)
	root := t.TempDir()
	dir := filepath.Join(root, "app")
	require.NoError(t, os.MkdirAll(dir, domain.DirPerm))
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.ManifestFileName), []byte(`{"name":"app"}`), domain.FilePerm))
	t.Chdir(root)

	loader.EXPECT().Load(dir).Return(domain.Settings{}, nil)
	pm.EXPECT().Install(gomock.Any(), domain.InstallRequest{
		PackageManager: domain.DefaultPackageManager,
		Dir:            dir,
	}, gomock.Any()).Return(nil)

	err := newApp(loader, pm, &recordingLogger{}).Install(context.Background(), app.InstallOptions{Dir: "app"})
	require.NoError(t, err)
}

func TestApp_Install_Progress(t *testing.T) {
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockConfigLoader(ctrl)
	pm := mocks.NewMockPackageManager(ctrl)
	dir := writeProject(t)
	var events []string

	loader.EXPECT().Load(dir).Return(domain.Settings{}, nil)
	pm.EXPECT().Install(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, domain.InstallRequest, ports.Stdio) error {
			events = append(events, "install")
			return nil
		})

	a := newAppWithProgress(loader, pm, fakeProgress{events: &events}, &recordingLogger{})
	require.NoError(t, a.Install(context.Background(), app.InstallOptions{Dir: dir, Progress: true}))

	assert.Equal(t, []string{"start", "install", "stop"}, events)
}

func TestApp_Install_ConfigError(t *testing.T) {
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockConfigLoader(ctrl)
	pm := mocks.NewMockPackageManager(ctrl)
	dir := writeProject(t)

	loader.EXPECT().Load(dir).Return(domain.Settings{}, errors.Join(domain.ErrConfigParse, errors.New("bad yaml")))

	err := newApp(loader, pm, &recordingLogger{}).Install(context.Background(), app.InstallOptions{Dir: dir})
	require.ErrorIs(t, err, domain.ErrConfigParse)
	assert.NoFileExists(t, filepath.Join(dir, domain.BackupFileName))
}

func TestApp_Restore(t *testing.T) {
	ctrl := gomock.NewController(t)
	dir := writeProject(t)
	a := newApp(mocks.NewMockConfigLoader(ctrl), mocks.NewMockPackageManager(ctrl), &recordingLogger{})

	err := a.Restore(context.Background(), app.RestoreOptions{Dir: dir})
	require.ErrorIs(t, err, domain.ErrNoBackup)

	original := `{"name":"app","dependencies":{"lib":"file+pack:../lib"}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.BackupFileName), []byte(original), domain.FilePerm))

	require.NoError(t, a.Restore(context.Background(), app.RestoreOptions{Dir: dir}))
	data, err := os.ReadFile(filepath.Join(dir, domain.ManifestFileName))
	require.NoError(t, err)
	assert.Equal(t, original, string(data))
	assert.NoFileExists(t, filepath.Join(dir, domain.BackupFileName))
}
