package config

import (
	"time"

	"github.com/spf13/pflag"
)

// Config holds runtime settings for the TradeGuard CLI.
//
// Fields:
//   - APIBaseURL: scheme and host of the TradeGuard backend.
//   - RequestTimeout: upper bound for a single HTTP call.
//   - DataDir: directory holding the local session database.
//   - LogLevel: debug, info, warn or error.
//   - ReportDir: where downloaded reports are archived on disk.
//   - S3: optional object-storage archive; disabled while Bucket is empty.
//   - MetricsFile: when set, gateway request metrics are written there in
//     Prometheus text format as the command exits.
type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	DataDir        string
	LogLevel       string
	ReportDir      string
	S3             S3
	MetricsFile    string
}

// S3 configures the report archive bucket.
type S3 struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// Enabled reports whether a bucket is configured.
func (s S3) Enabled() bool { return s.Bucket != "" }

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8000"
	c.RequestTimeout = 30 * time.Second
	c.DataDir = ".tradeguard"
	c.LogLevel = "warn"
	c.ReportDir = "reports"
	c.S3 = S3{Region: "us-east-1"}
}

// LoadConfig builds a Config from defaults, the config file, the
// environment and the flags in fs, in that order. fs may be nil.
func LoadConfig(fs *pflag.FlagSet) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseFile(cfg, configPath(fs)); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, fs); err != nil {
		return nil, err
	}
	return cfg, nil
}
