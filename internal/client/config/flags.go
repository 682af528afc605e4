package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Flag names registered by RegisterFlags.
const (
	FlagConfig     = "config"
	FlagAPIURL     = "api-url"
	FlagTimeout    = "timeout"
	FlagDataDir    = "data-dir"
	FlagLogLevel   = "log-level"
	FlagReportDir  = "report-dir"
	FlagS3Bucket   = "s3-bucket"
	FlagS3Region   = "s3-region"
	FlagS3Endpoint = "s3-endpoint"
	FlagMetrics    = "metrics-file"
)

// RegisterFlags adds the configuration flags to fs. Defaults shown in help
// come from LoadDefaults.
func RegisterFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringP(FlagConfig, "c", "", "path to a JSON or YAML config file")
	fs.StringP(FlagAPIURL, "a", d.APIBaseURL, "TradeGuard API base URL")
	fs.Duration(FlagTimeout, d.RequestTimeout, "HTTP request timeout")
	fs.String(FlagDataDir, d.DataDir, "directory for the local session database")
	fs.String(FlagLogLevel, d.LogLevel, "log level: debug, info, warn, error")
	fs.String(FlagReportDir, d.ReportDir, "directory for archived reports")
	fs.String(FlagS3Bucket, d.S3.Bucket, "S3 bucket for archived reports")
	fs.String(FlagS3Region, d.S3.Region, "S3 region")
	fs.String(FlagS3Endpoint, d.S3.Endpoint, "S3-compatible endpoint URL")
	fs.String(FlagMetrics, "", "write request metrics to this file on exit")
}

// configPath returns the config file named by the flag or the environment.
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

// parseFlags copies explicitly set flags into cfg. Flags missing from fs
// are ignored so callers may register a subset.
func parseFlags(cfg *Config, fs *pflag.FlagSet) error {
	if fs == nil {
		return nil
	}

	strs := map[string]*string{
		FlagAPIURL:     &cfg.APIBaseURL,
		FlagDataDir:    &cfg.DataDir,
		FlagLogLevel:   &cfg.LogLevel,
		FlagReportDir:  &cfg.ReportDir,
		FlagS3Bucket:   &cfg.S3.Bucket,
		FlagS3Region:   &cfg.S3.Region,
		FlagS3Endpoint: &cfg.S3.Endpoint,
		FlagMetrics:    &cfg.MetricsFile,
	}
	for name, dst := range strs {
		if f := fs.Lookup(name); f != nil && f.Changed {
			*dst = f.Value.String()
		}
	}

	if f := fs.Lookup(FlagTimeout); f != nil && f.Changed {
		d, err := fs.GetDuration(FlagTimeout)
		if err != nil {
			return fmt.Errorf("--%s: %w", FlagTimeout, err)
		}
		cfg.RequestTimeout = d
	}
	return nil
}
