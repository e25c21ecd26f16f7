package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/filepack/internal/core/domain"
)

const sampleManifest = `{
  "name": "app",
  "version": "1.2.3",
  "private": true,
  "scripts": {
    "build": "tsc",
    "prepack": "npm run build"
  },
  "dependencies": {
    "left-pad": "^1.3.0",
    "lib-a": "file+pack:../lib-a",
    "@scope/lib-b": "file+pack:../lib-b"
  },
  "devDependencies": {
    "tool": "file+pack:/opt/tool"
  },
  "filepackDevDependencies": {
    "helper": "../helper"
  },
  "engines": {"node": ">=18"}
}`

func TestParseManifest_Accessors(t *testing.T) {
	m, err := domain.ParseManifest([]byte(sampleManifest))
	require.NoError(t, err)

	assert.Equal(t, "app", m.Name())
	assert.Equal(t, "1.2.3", m.Version())
	assert.True(t, m.HasScript("prepack"))
	assert.True(t, m.HasScript("build"))
	assert.False(t, m.HasScript("postinstall"))

	spec, ok := m.Section(domain.SectionRuntime).Get("lib-a")
	require.True(t, ok)
	assert.Equal(t, "file+pack:../lib-a", spec)
	assert.Equal(t, 3, m.Section(domain.SectionRuntime).Len())
	assert.Nil(t, m.PackSection(domain.SectionRuntime))
	assert.Equal(t, 1, m.PackSection(domain.SectionDev).Len())
}

func TestParseManifest_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty", data: ""},
		{name: "array", data: `[]`},
		{name: "truncated", data: `{"name": "app"`},
		{name: "trailing garbage", data: `{"name": "app"} x`},
		{name: "non string specifier", data: `{"dependencies": {"a": 1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.ParseManifest([]byte(tt.data))
			require.Error(t, err)
		})
	}
}

func TestManifest_MissingFields(t *testing.T) {
	m, err := domain.ParseManifest([]byte(`{"name": 42, "scripts": {"prepack": ""}}`))
	require.NoError(t, err)

	assert.Empty(t, m.Name())
	assert.Empty(t, m.Version())
	assert.False(t, m.HasScript("prepack"))
	assert.Nil(t, m.Section(domain.SectionRuntime))
}

func TestManifest_EncodeKeepsOrder(t *testing.T) {
	m, err := domain.ParseManifest([]byte(`{"version":"1.0.0","name":"x","dependencies":{"b":"1","a":"file+pack:./a"},"z":[1,2]}`))
	require.NoError(t, err)

	m.SetDependency(domain.SectionRuntime, "a", "./a/a-1.0.0.tgz")

	out, err := m.Encode()
	require.NoError(t, err)

	want := `{
  "version": "1.0.0",
  "name": "x",
  "dependencies": {
    "b": "1",
    "a": "./a/a-1.0.0.tgz"
  },
  "z": [
    1,
    2
  ]
}`
	assert.Equal(t, want, string(out))
}

func TestManifest_SetDependencyCreatesSection(t *testing.T) {
	m, err := domain.ParseManifest([]byte(`{"name":"x","filepackDependencies":{"a":"../a"}}`))
	require.NoError(t, err)

	m.SetDependency(domain.SectionRuntime, "a", "../a/a-1.0.0.tgz")

	out, err := m.Encode()
	require.NoError(t, err)
	assert.Equal(t, `{
  "name": "x",
  "filepackDependencies": {
    "a": "../a"
  },
  "dependencies": {
    "a": "../a/a-1.0.0.tgz"
  }
}`, string(out))
}

func TestManifest_EncodeDoesNotEscapeHTML(t *testing.T) {
	m, err := domain.ParseManifest([]byte(`{"dependencies":{"a":">=1 <2"}}`))
	require.NoError(t, err)

	out, err := m.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(out), `">=1 <2"`)
}

func TestManifest_PackedDependencies(t *testing.T) {
	m, err := domain.ParseManifest([]byte(sampleManifest))
	require.NoError(t, err)

	runtime, err := m.PackedDependencies(domain.SectionRuntime)
	require.NoError(t, err)
	assert.Equal(t, []domain.Dependency{
		{Name: "lib-a", Path: "../lib-a"},
		{Name: "@scope/lib-b", Path: "../lib-b"},
	}, runtime)

	dev, err := m.PackedDependencies(domain.SectionDev)
	require.NoError(t, err)
	assert.Equal(t, []domain.Dependency{
		{Name: "tool", Path: "/opt/tool"},
		{Name: "helper", Path: "../helper"},
	}, dev)
}

func TestManifest_PackedDependencies_EmptyPath(t *testing.T) {
	m, err := domain.ParseManifest([]byte(`{"dependencies":{"broken":"file+pack:"}}`))
	require.NoError(t, err)

	_, err = m.PackedDependencies(domain.SectionRuntime)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidSpecifier))
}

func TestSections(t *testing.T) {
	assert.Equal(t, []domain.SectionKind{domain.SectionRuntime}, domain.Sections(true))
	assert.Equal(t, []domain.SectionKind{domain.SectionRuntime, domain.SectionDev}, domain.Sections(false))
	assert.Equal(t, "devDependencies", domain.SectionDev.String())
	assert.Equal(t, "filepackDependencies", domain.SectionRuntime.PackKey())
}

func TestDependency_ResolveDir(t *testing.T) {
	assert.Equal(t, "/work/app/lib", domain.Dependency{Name: "lib", Path: "lib"}.ResolveDir("/work/app"))
	assert.Equal(t, "/work/lib", domain.Dependency{Name: "lib", Path: "../lib"}.ResolveDir("/work/app"))
	assert.Equal(t, "/opt/lib", domain.Dependency{Name: "lib", Path: "/opt/lib/"}.ResolveDir("/work/app"))
}
