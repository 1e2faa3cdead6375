// ABOUTME: Tests for YAML config loading, env expansion, and validation
// ABOUTME: Defaults must always produce a valid configuration

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
	path := filepath.Join(t.TempDir(), "mailstore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "data", cfg.Storage.DataDir)
	assert.Equal(t, 10, cfg.Pages.Inbox)
	assert.Equal(t, 20, cfg.Pages.Thread)
	assert.Equal(t, 20, cfg.Pages.Audit)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
storage:
  data_dir: "/var/lib/mailstore"
pages:
  inbox: 5
logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/mailstore", cfg.Storage.DataDir)
	assert.Equal(t, 5, cfg.Pages.Inbox)
	assert.Equal(t, 20, cfg.Pages.Thread) // default fills the gap
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("MAILSTORE_TEST_DATA", "/tmp/expanded")
	path := writeConfig(t, `
storage:
  data_dir: "${MAILSTORE_TEST_DATA}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/expanded", cfg.Storage.DataDir)
}

func TestLoad_UnsetEnvFallsBackToDefault(t *testing.T) {
	path := writeConfig(t, `
storage:
  data_dir: "${MAILSTORE_TEST_UNSET_VAR}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultDataDir, cfg.Storage.DataDir)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "storage: [broken")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative inbox page size", func(c *Config) { c.Pages.Inbox = -1 }},
		{"zero thread page size", func(c *Config) { c.Pages.Thread = 0 }},
		{"bad logging level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad logging format", func(c *Config) { c.Logging.Format = "xml" }},
		{"empty data dir", func(c *Config) { c.Storage.DataDir = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_RejectsNegativePageSize(t *testing.T) {
	path := writeConfig(t, `
pages:
  audit: -3
`)
	_, err := Load(path)
	assert.Error(t, err)
}
