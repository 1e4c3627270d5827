package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), "/tmp/data")
	require.NoError(t, err)

	assert.Equal(t, "QA", cfg.Category)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "/tmp/data", cfg.DataDir)
}

func TestLoad_ParsesFields(t *testing.T) {
	path := writeConfig(t, `
endpoint: https://sync.example.com/api/v1/sync
owner: acme
repo: design-sync
category: Accessibility
labels: [design, qa]
label_rules:
  - pattern: "Checkout/**"
    labels: [checkout]
project:
  name: Design QA
  owner: acme
timeout_seconds: 30
`)

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "acme", cfg.Owner)
	assert.Equal(t, "design-sync", cfg.Repo)
	assert.Equal(t, "Accessibility", cfg.Category)
	assert.Equal(t, []string{"design", "qa"}, cfg.Labels)
	require.Len(t, cfg.LabelRules, 1)
	assert.Equal(t, "Checkout/**", cfg.LabelRules[0].Pattern)
	assert.True(t, cfg.Project.Configured())
	assert.Equal(t, 30, cfg.TimeoutSeconds)
}

func TestLoad_InvalidEndpoint(t *testing.T) {
	path := writeConfig(t, "endpoint: not-a-url\n")

	_, err := Load(path, t.TempDir())
	assert.Error(t, err)
}

func TestLoad_InvalidLabelRulePattern(t *testing.T) {
	path := writeConfig(t, `
label_rules:
  - pattern: "[unclosed"
    labels: [x]
`)

	_, err := Load(path, t.TempDir())
	assert.Error(t, err)
}

func TestRequireSyncTarget(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.RequireSyncTarget())

	cfg.Endpoint = "https://sync.example.com"
	cfg.Owner = "acme"
	cfg.Repo = "design-sync"
	assert.NoError(t, cfg.RequireSyncTarget())
}

func TestProjectConfig_Configured(t *testing.T) {
	assert.False(t, ProjectConfig{}.Configured())
	assert.True(t, ProjectConfig{Name: "Board"}.Configured())
	assert.True(t, ProjectConfig{Number: 7}.Configured())
}
