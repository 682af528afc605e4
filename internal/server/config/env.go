package config

import (
	"fmt"
	"os"
	"time"
)

// EnvPrefix prefixes every environment variable read by this package.
const EnvPrefix = "TRADEGUARD_SERVER_"

var lookupEnv = os.LookupEnv

func parseEnv(cfg *Config) error {
	strs := map[string]*string{
		"ADDR":       &cfg.Addr,
		"SECRET_KEY": &cfg.SecretKey,
		"LOG_LEVEL":  &cfg.LogLevel,
	}
	for name, dst := range strs {
		if v, ok := lookupEnv(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}

	durs := map[string]*time.Duration{
		"TOKEN_TTL":        &cfg.TokenTTL,
		"SHUTDOWN_TIMEOUT": &cfg.ShutdownTimeout,
	}
	for name, dst := range durs {
		v, ok := lookupEnv(EnvPrefix + name)
		if !ok || v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = d
	}
	return nil
}
