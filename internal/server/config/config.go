// Package config handles configuration for the development server,
// including defaults, a JSON overlay, environment variables and
// command-line flags.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/dmitrijs2005/tradeguard/internal/common"
)

// Config holds runtime settings for the development server.
//
// Fields:
//   - Addr: HTTP bind address.
//   - SecretKey: HMAC secret for signing access tokens (HS256). A random
//     key is generated when empty, so tokens do not survive a restart.
//   - TokenTTL: access token lifetime.
//   - LogLevel: debug, info, warn or error.
//   - ShutdownTimeout: how long in-flight requests get on shutdown.
type Config struct {
	Addr            string
	SecretKey       string
	TokenTTL        time.Duration
	LogLevel        string
	ShutdownTimeout time.Duration
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.Addr = ":8000"
	c.TokenTTL = 30 * time.Minute
	c.LogLevel = "info"
	c.ShutdownTimeout = 5 * time.Second
}

// LoadConfig builds a Config from defaults, the JSON file, the environment
// and the flags in fs, in that order. fs may be nil.
func LoadConfig(fs *pflag.FlagSet) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, configPath(fs)); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, fs); err != nil {
		return nil, err
	}

	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", cfg.TokenTTL)
	}
	if cfg.SecretKey == "" {
		key, err := common.MakeRandHexString(32)
		if err != nil {
			return nil, fmt.Errorf("generate secret key: %w", err)
		}
		cfg.SecretKey = key
	}
	return cfg, nil
}
