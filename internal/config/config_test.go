package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"SAGE_DB_PATH", "SAGE_GENERATOR_URL", "SAGE_GENERATOR_API_KEY", "SAGE_GENERATOR_TIMEOUT"} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRolloverCron, cfg.RolloverCron)
	assert.Equal(t, DefaultGeneratorTimeout, cfg.Generator.Timeout)
	assert.Equal(t, DefaultGeneratorRetries, cfg.Generator.Retries)
	assert.Empty(t, cfg.Generator.URL)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
db_path: /tmp/sage.db
rollover_cron: "30 5 * * *"
seed: 42
generator:
  url: https://missions.example
  model: sage-small
  timeout: 5s
  retries: 2
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/sage.db", cfg.DBPath)
	assert.Equal(t, "30 5 * * *", cfg.RolloverCron)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, "https://missions.example", cfg.Generator.URL)
	assert.Equal(t, "sage-small", cfg.Generator.Model)
	assert.Equal(t, 5*time.Second, cfg.Generator.Timeout)
	assert.Equal(t, 2, cfg.Generator.Retries)
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "db_path: /tmp/file.db\ngenerator:\n  url: https://file.example\n")
	t.Setenv("SAGE_DB_PATH", "/tmp/env.db")
	t.Setenv("SAGE_GENERATOR_API_KEY", "secret")
	t.Setenv("SAGE_GENERATOR_TIMEOUT", "3s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.db", cfg.DBPath)
	assert.Equal(t, "https://file.example", cfg.Generator.URL)
	assert.Equal(t, "secret", cfg.Generator.APIKey)
	assert.Equal(t, 3*time.Second, cfg.Generator.Timeout)
}

func TestExplicitMissingFileFails(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
