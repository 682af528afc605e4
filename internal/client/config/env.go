package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by this package.
const EnvPrefix = "TRADEGUARD_"

var (
	dotEnvFile = ".env"
	lookupEnv  = os.LookupEnv
)

// parseEnv loads the .env file, if any, and overlays cfg with TRADEGUARD_*
// variables.
func parseEnv(cfg *Config) error {
	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", dotEnvFile, err)
	}

	strs := map[string]*string{
		"API_URL":       &cfg.APIBaseURL,
		"DATA_DIR":      &cfg.DataDir,
		"LOG_LEVEL":     &cfg.LogLevel,
		"REPORT_DIR":    &cfg.ReportDir,
		"S3_BUCKET":     &cfg.S3.Bucket,
		"S3_REGION":     &cfg.S3.Region,
		"S3_ENDPOINT":   &cfg.S3.Endpoint,
		"S3_ACCESS_KEY": &cfg.S3.AccessKey,
		"S3_SECRET_KEY": &cfg.S3.SecretKey,
		"METRICS_FILE":  &cfg.MetricsFile,
	}
	for name, dst := range strs {
		if v, ok := lookupEnv(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookupEnv(EnvPrefix + "TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sTIMEOUT: %w", EnvPrefix, err)
		}
		cfg.RequestTimeout = d
	}
	return nil
}
