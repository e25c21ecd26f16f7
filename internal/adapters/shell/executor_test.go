package shell_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/filepack/internal/adapters/shell"
	"go.trai.ch/filepack/internal/core/domain"
	"go.trai.ch/filepack/internal/core/ports"
	"go.trai.ch/filepack/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

func TestExecutor_Execute_MultiLineOutput(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Debug(gomock.Any()).Times(1) // command line
	gomock.InOrder(
		mockLogger.EXPECT().Debug("line1").Times(1),
		mockLogger.EXPECT().Debug("line2").Times(1),
	)

	executor := shell.NewExecutor(mockLogger)

	err := executor.Execute(context.Background(), domain.Command{
		Name: "sh",
		Args: []string{"-c", "echo line1; echo line2"},
		Dir:  t.TempDir(),
	}, ports.Stdio{})
	require.NoError(t, err)
}

func TestExecutor_Execute_FragmentedOutput(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Debug(gomock.Any()).Times(1)
	mockLogger.EXPECT().Debug("part1part2").Times(1)

	executor := shell.NewExecutor(mockLogger)

	var stdout bytes.Buffer
	err := executor.Execute(context.Background(), domain.Command{
		Name: "sh",
		Args: []string{"-c", "printf part1; sleep 0.1; printf part2"},
		Dir:  t.TempDir(),
	}, ports.Stdio{Stdout: &stdout})
	require.NoError(t, err)
	assert.Equal(t, "part1part2", stdout.String())
}

func TestExecutor_Execute_WorkingDir(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Debug(gomock.Any()).AnyTimes()

	dir := t.TempDir()
	executor := shell.NewExecutor(mockLogger)

	err := executor.Execute(context.Background(), domain.Command{
		Name: "sh",
		Args: []string{"-c", "touch marker"},
		Dir:  dir,
	}, ports.Stdio{})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "marker"))
}

func TestExecutor_Execute_CommandFailure(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Debug(gomock.Any()).AnyTimes()

	executor := shell.NewExecutor(mockLogger)

	var stderr bytes.Buffer
	err := executor.Execute(context.Background(), domain.Command{
		Name: "sh",
		Args: []string{"-c", "echo boom >&2; exit 42"},
		Dir:  t.TempDir(),
	}, ports.Stdio{Stderr: &stderr})
	require.Error(t, err)

	assert.True(t, errors.Is(err, domain.ErrSubprocessFailed))
	assert.Contains(t, err.Error(), "command failed")
	assert.Equal(t, "boom\n", stderr.String())

	var zErr *zerr.Error
	require.True(t, errors.As(err, &zErr))
	assert.Equal(t, 42, zErr.Metadata()["exit_code"])
	assert.Equal(t, "sh -c echo boom >&2; exit 42", zErr.Metadata()["command"])
}

func TestExecutor_Execute_InvalidCommand(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Debug(gomock.Any()).AnyTimes()

	executor := shell.NewExecutor(mockLogger)

	err := executor.Execute(context.Background(), domain.Command{
		Name: "nonexistent-command-xyz123",
		Dir:  t.TempDir(),
	}, ports.Stdio{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSubprocessFailed))
}

func TestExecutor_Execute_Cancelled(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Debug(gomock.Any()).AnyTimes()

	executor := shell.NewExecutor(mockLogger)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := executor.Execute(ctx, domain.Command{
		Name: "sleep",
		Args: []string{"30"},
		Dir:  t.TempDir(),
	}, ports.Stdio{})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 15*time.Second)
}

func TestExecutor_Execute_TerminalPassthrough(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockLogger := mocks.NewMockLogger(ctrl)
	// Only the command line is logged; output goes straight to the file.
	mockLogger.EXPECT().Debug(gomock.Any()).Times(1)

	out, err := os.CreateTemp(t.TempDir(), "stdout")
	require.NoError(t, err)
	defer out.Close() //nolint:errcheck // Best effort close in test

	executor := shell.NewExecutor(mockLogger)
	err = executor.Execute(context.Background(), domain.Command{
		Name: "sh",
		Args: []string{"-c", "echo visible"},
		Dir:  t.TempDir(),
	}, ports.Stdio{Stdout: out})
	require.NoError(t, err)

	data, err := os.ReadFile(out.Name())
	require.NoError(t, err)
	assert.Equal(t, "visible\n", string(data))
}
