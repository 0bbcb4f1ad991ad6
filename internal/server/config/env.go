package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// envConfig is a DTO for environment parsing; only set variables overlay the
// Config.
type envConfig struct {
	EndpointAddr        string        `env:"ENDPOINT_ADDR"`
	DatabaseDSN         string        `env:"DATABASE_DSN"`
	SecretKey           string        `env:"SECRET_KEY"`
	AccessTokenValidity time.Duration `env:"ACCESS_TOKEN_VALIDITY"`
	ResetTokenValidity  time.Duration `env:"RESET_TOKEN_VALIDITY"`
	OTPValidity         time.Duration `env:"OTP_VALIDITY"`
	S3RootUser          string        `env:"S3_ROOT_USER"`
	S3RootPassword      string        `env:"S3_ROOT_PASSWORD"`
	S3Bucket            string        `env:"S3_BUCKET"`
	S3Region            string        `env:"S3_REGION"`
	S3BaseEndpoint      string        `env:"S3_BASE_ENDPOINT"`
	S3PublicBaseURL     string        `env:"S3_PUBLIC_BASE_URL"`
}

// parseEnv overlays Config with values from FITLIFE_-prefixed environment
// variables. Parse errors panic, matching the JSON loader.
func parseEnv(cfg *Config) {
	var ec envConfig
	if err := env.ParseWithOptions(&ec, env.Options{Prefix: "FITLIFE_"}); err != nil {
		panic(err)
	}

	if ec.EndpointAddr != "" {
		cfg.EndpointAddr = ec.EndpointAddr
	}
	if ec.DatabaseDSN != "" {
		cfg.DatabaseDSN = ec.DatabaseDSN
	}
	if ec.SecretKey != "" {
		cfg.SecretKey = ec.SecretKey
	}
	if ec.AccessTokenValidity != 0 {
		cfg.AccessTokenValidity = ec.AccessTokenValidity
	}
	if ec.ResetTokenValidity != 0 {
		cfg.ResetTokenValidity = ec.ResetTokenValidity
	}
	if ec.OTPValidity != 0 {
		cfg.OTPValidity = ec.OTPValidity
	}
	if ec.S3RootUser != "" {
		cfg.S3RootUser = ec.S3RootUser
	}
	if ec.S3RootPassword != "" {
		cfg.S3RootPassword = ec.S3RootPassword
	}
	if ec.S3Bucket != "" {
		cfg.S3Bucket = ec.S3Bucket
	}
	if ec.S3Region != "" {
		cfg.S3Region = ec.S3Region
	}
	if ec.S3BaseEndpoint != "" {
		cfg.S3BaseEndpoint = ec.S3BaseEndpoint
	}
	if ec.S3PublicBaseURL != "" {
		cfg.S3PublicBaseURL = ec.S3PublicBaseURL
	}
}
