// Test Type: Unit Test
// Description: Tests for configuration layering - defaults, config files and environment overrides

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/recookio/recook/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, []string{"sha256new"}, cfg.Digest.Algorithms)
	assert.Equal(t, ".bak", cfg.Backup.Suffix)
	assert.NotEmpty(t, cfg.Store.Dir)
}

func TestLoadExplicitTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recook.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[store]
dir = "/srv/archives"

[digest]
algorithms = ["sha1", "sha256"]
`), 0644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/archives", cfg.Store.Dir)
	assert.Equal(t, []string{"sha1", "sha256"}, cfg.Digest.Algorithms)
	// Unset keys keep their defaults.
	assert.Equal(t, ".bak", cfg.Backup.Suffix)
}

func TestLoadExplicitYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recook.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  dir: /data/store
backup:
  suffix: .orig
`), 0644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/store", cfg.Store.Dir)
	assert.Equal(t, ".orig", cfg.Backup.Suffix)
}

func TestEnvOverridesStoreDir(t *testing.T) {
	t.Setenv(config.EnvStoreDir, "/env/override")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "/env/override", cfg.Store.Dir)
}

func TestLoadBadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recook.toml")
	require.NoError(t, os.WriteFile(path, []byte("not [valid toml"), 0644))

	_, err := config.Load(path)
	require.Error(t, err)
}

func TestGenerateDefault(t *testing.T) {
	out, err := config.GenerateDefault()
	require.NoError(t, err)
	assert.Contains(t, out, "[digest]")
	assert.Contains(t, out, "sha256new")
}
