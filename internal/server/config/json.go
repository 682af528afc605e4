package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/tradeguard/internal/timex"
)

// JsonConfig is a DTO used only for reading JSON configuration files.
// Durations accept "30m" style strings or integer nanoseconds.
type JsonConfig struct {
	Addr            string          `json:"addr"`
	SecretKey       string          `json:"secret_key"`
	TokenTTL        *timex.Duration `json:"token_ttl"`
	LogLevel        string          `json:"log_level"`
	ShutdownTimeout *timex.Duration `json:"shutdown_timeout"`
}

// parseJson overlays cfg with the JSON file at path. An empty path is a
// no-op.
func parseJson(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.Addr != "" {
		cfg.Addr = jc.Addr
	}
	if jc.SecretKey != "" {
		cfg.SecretKey = jc.SecretKey
	}
	if jc.TokenTTL != nil {
		cfg.TokenTTL = jc.TokenTTL.Duration
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	if jc.ShutdownTimeout != nil {
		cfg.ShutdownTimeout = jc.ShutdownTimeout.Duration
	}
	return nil
}
