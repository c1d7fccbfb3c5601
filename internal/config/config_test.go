package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Storage.ProjectCap)
	assert.Equal(t, 600, cfg.Schema.CheckTTLSeconds)
	assert.Equal(t, "chainguard", cfg.Server.Name)
	assert.Contains(t, cfg.Dispatch.AlwaysAllowed, "set_scope")
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chainguard.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[storage]
project_cap = 5

[schema]
check_ttl_seconds = 120
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Storage.ProjectCap)
	assert.Equal(t, 120, cfg.Schema.CheckTTLSeconds)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chainguard.toml")
	require.NoError(t, os.WriteFile(path, []byte("[storage]\nhome = \"/tmp/file-home\"\n"), 0o644))
	t.Setenv("CHAINGUARD_HOME", "/tmp/custom-home")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom-home", cfg.Storage.Home)
}

func TestValidateRejectsNonPositiveProjectCap(t *testing.T) {
	cfg := defaults()
	cfg.Storage.ProjectCap = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsNonPositiveSchemaTTL(t *testing.T) {
	cfg := defaults()
	cfg.Schema.CheckTTLSeconds = 0
	assert.Error(t, cfg.Validate())
}

func TestDurationHelpers(t *testing.T) {
	cfg := defaults()
	assert.Equal(t, 6e11, float64(cfg.SchemaCheckTTL()))
	assert.Equal(t, 5e8, float64(cfg.DebounceWindow()))
}
