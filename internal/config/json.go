package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/Amrutha-Gopalakrishnan/Stock-Wise/internal/flagx"
)

// JsonConfig is the DTO for the optional JSON config file. The refresh
// interval is given in seconds.
type JsonConfig struct {
	SQLitePath             string `json:"sqlite_path"`
	S3Bucket               string `json:"s3_bucket"`
	S3Prefix               string `json:"s3_prefix"`
	S3Endpoint             string `json:"s3_endpoint"`
	S3Region               string `json:"s3_region"`
	S3AccessKey            string `json:"s3_access_key"`
	S3SecretKey            string `json:"s3_secret_key"`
	RemoteDSN              string `json:"remote_dsn"`
	ChannelPrefix          string `json:"channel_prefix"`
	RefreshIntervalSeconds int    `json:"refresh_interval_seconds"`
	LogLevel               string `json:"log_level"`
}

// parseJson overlays Config with values from the file named by -c/-config.
// Only keys present in the file override; a missing file name is a no-op.
// Read or unmarshal errors panic, matching flag-parse failures.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	overlayString(&cfg.SQLitePath, jc.SQLitePath)
	overlayString(&cfg.S3Bucket, jc.S3Bucket)
	overlayString(&cfg.S3Prefix, jc.S3Prefix)
	overlayString(&cfg.S3Endpoint, jc.S3Endpoint)
	overlayString(&cfg.S3Region, jc.S3Region)
	overlayString(&cfg.S3AccessKey, jc.S3AccessKey)
	overlayString(&cfg.S3SecretKey, jc.S3SecretKey)
	overlayString(&cfg.RemoteDSN, jc.RemoteDSN)
	overlayString(&cfg.ChannelPrefix, jc.ChannelPrefix)
	overlayString(&cfg.LogLevel, jc.LogLevel)
	if jc.RefreshIntervalSeconds > 0 {
		cfg.RefreshInterval = time.Duration(jc.RefreshIntervalSeconds) * time.Second
	}
}

func overlayString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
