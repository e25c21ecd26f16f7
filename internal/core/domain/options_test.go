package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/filepack/internal/core/domain"
)

func TestSettings_Merge(t *testing.T) {
	yes := true

	file := domain.Settings{PackageManager: "pnpm", Jobs: 4, InstallArgs: []string{"--no-audit"}}
	flags := domain.Settings{Production: &yes, Jobs: 2}

	got := domain.DefaultSettings().Merge(file).Merge(flags)

	assert.Equal(t, "pnpm", got.PackageManager)
	assert.True(t, *got.Production)
	assert.False(t, *got.NestedOutput)
	assert.Equal(t, 2, got.Jobs)
	assert.Equal(t, []string{"--no-audit"}, got.InstallArgs)
}

func TestCommand_String(t *testing.T) {
	cmd := domain.Command{Name: "npm", Args: []string{"install", "--production"}}
	assert.Equal(t, "npm install --production", cmd.String())
}

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", domain.LogLevelDebug.String())
	assert.Equal(t, "WARN", domain.LogLevelWarn.String())
	assert.Equal(t, "ERROR", domain.LogLevelError.String())
	assert.Equal(t, "INFO", domain.LogLevelInfo.String())
}
