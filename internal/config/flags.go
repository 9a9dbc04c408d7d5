package config

import (
	"flag"
	"os"
	"time"

	"github.com/Amrutha-Gopalakrishnan/Stock-Wise/internal/flagx"
)

// parseFlags overlays Config fields from command-line flags:
//
//	-d string   local sqlite database path
//	-r string   remote Postgres DSN (empty = offline)
//	-b string   S3 bucket for the cache (overrides sqlite)
//	-i int      refresh interval in seconds
//	-l string   log level
//
// Arguments are filtered with flagx.FilterArgs so the JSON config flags and
// any test flags pass through untouched.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-r", "-b", "-i", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.SQLitePath, "d", cfg.SQLitePath, "local sqlite database path")
	fs.StringVar(&cfg.RemoteDSN, "r", cfg.RemoteDSN, "remote postgres dsn")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "s3 bucket for the cache")
	refreshInterval := fs.Int("i", int(cfg.RefreshInterval.Seconds()), "refresh interval (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RefreshInterval = time.Duration(*refreshInterval) * time.Second
}
