// Package config loads runtime settings for the Stock-Wise dashboard cache.
// Sources are layered: defaults, then a JSON file (-c/-config), then
// command-line flags; later sources win.
package config

import "time"

// Config holds runtime settings.
//
// An empty RemoteDSN runs the application offline: every operation answers
// from the local cache. An empty SQLitePath (with no S3 bucket) degrades the
// cache itself to process memory.
type Config struct {
	// SQLitePath is the local cache database file.
	SQLitePath string

	// S3Bucket, when set, stores the cache in an S3-compatible bucket
	// instead of SQLite. S3Prefix namespaces the objects; S3Endpoint,
	// S3Region and the key pair configure the client (MinIO friendly).
	S3Bucket    string
	S3Prefix    string
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string

	// RemoteDSN points at the remote Postgres backend.
	RemoteDSN string

	// ChannelPrefix is prepended to table names to form notification
	// channels.
	ChannelPrefix string

	// RefreshInterval is how often collections are re-pulled even without a
	// change notification.
	RefreshInterval time.Duration

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.SQLitePath = "stockwise.db"
	c.S3Prefix = "stockwise"
	c.S3Region = "us-east-1"
	c.ChannelPrefix = "stockwise_changes_"
	c.RefreshInterval = 30 * time.Second
	c.LogLevel = "info"
}

// LoadConfig constructs a Config from defaults, JSON file and flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
