package config

import "time"

// Config holds runtime settings for the FitLife CLI.
//
// Fields:
//   - APIBaseURL: base URL of the identity API, including the /api/auth prefix.
//   - DataDir: directory for the local record database; empty means a
//     per-user subdirectory resolved at startup.
//   - RequestTimeout: per-request deadline for API calls.
type Config struct {
	APIBaseURL     string
	DataDir        string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:5000/api/auth"
	c.DataDir = ""
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), environment variables, and command-line flags. Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
