package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// envConfig is a DTO for environment parsing; only set variables overlay the
// Config.
type envConfig struct {
	APIBaseURL     string        `env:"API_BASE_URL"`
	DataDir        string        `env:"DATA_DIR"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// parseEnv overlays Config with values from FITLIFE_-prefixed environment
// variables. Parse errors panic, matching the JSON loader.
func parseEnv(cfg *Config) {
	var ec envConfig
	if err := env.ParseWithOptions(&ec, env.Options{Prefix: "FITLIFE_"}); err != nil {
		panic(err)
	}

	if ec.APIBaseURL != "" {
		cfg.APIBaseURL = ec.APIBaseURL
	}
	if ec.DataDir != "" {
		cfg.DataDir = ec.DataDir
	}
	if ec.RequestTimeout != 0 {
		cfg.RequestTimeout = ec.RequestTimeout
	}
}
