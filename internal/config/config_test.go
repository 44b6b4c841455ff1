package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	t.Setenv("SBX_CONFIG_DIR", dir)
	t.Chdir(t.TempDir())
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.IsConfigured())
	assert.Equal(t, time.Second, cfg.Poll.OutboxInterval)
	assert.Equal(t, 5*time.Second, cfg.Poll.BoxesInterval)
	assert.Equal(t, 30*time.Second, cfg.Notify.ErrorTimeout)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := isolate(t)
	yaml := "server:\n  url: http://node:5000\npoll:\n  outbox_interval: 2s\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))
	t.Setenv("SBX_SERVER_USERNAME", "admin")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsConfigured())
	assert.Equal(t, "http://node:5000", cfg.Server.URL)
	assert.Equal(t, "admin", cfg.Server.Username)
	assert.Equal(t, 2*time.Second, cfg.Poll.OutboxInterval)
	assert.Equal(t, 5*time.Second, cfg.Poll.BoxesInterval)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	isolate(t)

	cfg := DefaultConfig()
	cfg.Server.URL = "http://node:5000"
	cfg.Poll.BoxesInterval = 10 * time.Second
	require.NoError(t, SaveConfig(cfg))

	viper.Reset()
	loaded, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://node:5000", loaded.Server.URL)
	assert.Equal(t, 10*time.Second, loaded.Poll.BoxesInterval)

	require.NoError(t, ClearServerConfig())
	viper.Reset()
	cleared, err := LoadConfig()
	require.NoError(t, err)
	assert.False(t, cleared.IsConfigured())
	assert.Equal(t, 10*time.Second, cleared.Poll.BoxesInterval)
}
