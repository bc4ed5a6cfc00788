package config

import "time"

// Config holds runtime settings for the nutrilog CLI.
//
// Fields:
//   - APIBaseURL: base URL of the backend REST API, path prefix included.
//   - RequestTimeout: per-request HTTP timeout.
//   - DatabasePath: location of the local SQLite credential database.
//   - LogLevel: minimum level emitted by the logger.
//
// Units: RequestTimeout is a time.Duration (e.g., 10*time.Second).
type Config struct {
	APIBaseURL     string
	DatabasePath   string
	LogLevel       string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8000/api"
	c.DatabasePath = "nutrilog.db"
	c.LogLevel = "info"
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
