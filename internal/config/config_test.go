package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	os.Args = append([]string{orig[0]}, args...)
	t.Cleanup(func() { os.Args = orig })
}

func TestLoadDefaults(t *testing.T) {
	var cfg Config
	cfg.LoadDefaults()

	assert.Equal(t, "stockwise.db", cfg.SQLitePath)
	assert.Empty(t, cfg.RemoteDSN, "offline by default")
	assert.Empty(t, cfg.S3Bucket)
	assert.Equal(t, "stockwise_changes_", cfg.ChannelPrefix)
	assert.Equal(t, 30*time.Second, cfg.RefreshInterval)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfig_FlagsOverrideDefaults(t *testing.T) {
	withArgs(t, "-d", "cache.db", "-r", "postgres://localhost/stock", "-i", "5", "-l", "debug")

	cfg := LoadConfig()

	assert.Equal(t, "cache.db", cfg.SQLitePath)
	assert.Equal(t, "postgres://localhost/stock", cfg.RemoteDSN)
	assert.Equal(t, 5*time.Second, cfg.RefreshInterval)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfig_JsonFileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"sqlite_path": "from-json.db",
		"remote_dsn": "postgres://json/stock",
		"refresh_interval_seconds": 60
	}`), 0600))

	withArgs(t, "-c", path, "-d", "from-flag.db")

	cfg := LoadConfig()

	assert.Equal(t, "from-flag.db", cfg.SQLitePath, "flags win over the json file")
	assert.Equal(t, "postgres://json/stock", cfg.RemoteDSN)
	assert.Equal(t, time.Minute, cfg.RefreshInterval)
	assert.Equal(t, "info", cfg.LogLevel, "untouched keys keep their defaults")
}
