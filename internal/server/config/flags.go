package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Flag names registered by RegisterFlags.
const (
	FlagConfig    = "config"
	FlagAddr      = "addr"
	FlagSecretKey = "secret-key"
	FlagTokenTTL  = "token-ttl"
	FlagLogLevel  = "log-level"
)

// RegisterFlags adds the server flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringP(FlagConfig, "c", "", "path to a JSON config file")
	fs.StringP(FlagAddr, "a", d.Addr, "address and port to listen on")
	fs.StringP(FlagSecretKey, "s", "", "token signing key (random when empty)")
	fs.DurationP(FlagTokenTTL, "t", d.TokenTTL, "access token lifetime")
	fs.String(FlagLogLevel, d.LogLevel, "log level: debug, info, warn, error")
}

func configPath(fs *pflag.FlagSet) string {
	if fs != nil {
		if f := fs.Lookup(FlagConfig); f != nil && f.Changed {
			return f.Value.String()
		}
	}
	if v, ok := lookupEnv(EnvPrefix + "CONFIG"); ok {
		return v
	}
	return ""
}

// parseFlags copies explicitly set flags into cfg.
func parseFlags(cfg *Config, fs *pflag.FlagSet) error {
	if fs == nil {
		return nil
	}

	strs := map[string]*string{
		FlagAddr:      &cfg.Addr,
		FlagSecretKey: &cfg.SecretKey,
		FlagLogLevel:  &cfg.LogLevel,
	}
	for name, dst := range strs {
		if f := fs.Lookup(name); f != nil && f.Changed {
			*dst = f.Value.String()
		}
	}

	if f := fs.Lookup(FlagTokenTTL); f != nil && f.Changed {
		d, err := fs.GetDuration(FlagTokenTTL)
		if err != nil {
			return fmt.Errorf("--%s: %w", FlagTokenTTL, err)
		}
		cfg.TokenTTL = d
	}
	return nil
}
