package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadClientConfig_Defaults(t *testing.T) {
	t.Setenv("MINICLOUD_CONFIG_DIR", t.TempDir())

	cfg, err := LoadClientConfig("")
	require.NoError(t, err)

	assert.Equal(t, DefaultServer, cfg.Server)
	assert.Equal(t, DefaultTimeout, cfg.RequestTimeout())
	assert.Equal(t, OutputStyled, cfg.OutputFormat)
	assert.Equal(t, int64(100_000_000), cfg.UploadLimit())
	assert.Equal(t, GetConfigPath(), cfg.Path())
}

func TestClientConfig_SaveAndReload(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MINICLOUD_CONFIG_DIR", dir)

	cfg, err := LoadClientConfig("")
	require.NoError(t, err)

	require.NoError(t, cfg.Set("server", "https://cloud.example.com/"))
	require.NoError(t, cfg.Set("timeout", "5s"))
	require.NoError(t, cfg.Set("max_upload_size", "1GiB"))
	require.NoError(t, cfg.Save())

	info, err := os.Stat(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reloaded, err := LoadClientConfig("")
	require.NoError(t, err)
	assert.Equal(t, "https://cloud.example.com", reloaded.Server)
	assert.Equal(t, 5*time.Second, reloaded.RequestTimeout())
	assert.Equal(t, int64(1<<30), reloaded.UploadLimit())
}

func TestLoadClientConfig_EnvOverride(t *testing.T) {
	t.Setenv("MINICLOUD_CONFIG_DIR", t.TempDir())
	t.Setenv("MINICLOUD_SERVER", "http://10.0.0.5:9000")
	t.Setenv("MINICLOUD_OUTPUT_FORMAT", "json")

	cfg, err := LoadClientConfig("")
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:9000", cfg.Server)
	assert.Equal(t, OutputJSON, cfg.OutputFormat)
}

func TestLoadClientConfig_ExplicitMissingFile(t *testing.T) {
	t.Setenv("MINICLOUD_CONFIG_DIR", t.TempDir())

	path := filepath.Join(t.TempDir(), "custom.yaml")
	cfg, err := LoadClientConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path())
}

func TestClientConfig_SetRejectsInvalid(t *testing.T) {
	t.Setenv("MINICLOUD_CONFIG_DIR", t.TempDir())
	cfg, err := LoadClientConfig("")
	require.NoError(t, err)

	tests := []struct {
		key, value string
	}{
		{"server", "not a url"},
		{"timeout", "soon"},
		{"max_upload_size", "lots"},
		{"output_format", "xml"},
		{"colour", "blue"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			fresh := *cfg
			assert.Error(t, fresh.Set(tt.key, tt.value))
		})
	}
}

func TestGetConfigDir_XDG(t *testing.T) {
	t.Setenv("MINICLOUD_CONFIG_DIR", "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", "minicloud"), GetConfigDir())
}

func TestClientConfig_SessionStore(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MINICLOUD_CONFIG_DIR", dir)

	cfg, err := LoadClientConfig("")
	require.NoError(t, err)
	assert.Equal(t, SessionStoreFile, cfg.SessionStore)
	assert.Equal(t, filepath.Join(dir, "session.json"), cfg.SessionPath())

	require.NoError(t, cfg.Set("session_store", SessionStoreBolt))
	assert.Equal(t, filepath.Join(dir, "session.db"), cfg.SessionPath())
	assert.Error(t, cfg.Set("session_store", "redis"))
}
