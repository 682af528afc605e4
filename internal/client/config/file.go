package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/tradeguard/internal/timex"
)

// FileConfig is a DTO used exclusively for file unmarshalling. Empty fields
// leave the corresponding Config value untouched.
type FileConfig struct {
	APIBaseURL     string          `json:"api_base_url" yaml:"api_base_url"`
	RequestTimeout *timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	DataDir        string          `json:"data_dir" yaml:"data_dir"`
	LogLevel       string          `json:"log_level" yaml:"log_level"`
	ReportDir      string          `json:"report_dir" yaml:"report_dir"`
	S3             struct {
		Bucket    string `json:"bucket" yaml:"bucket"`
		Region    string `json:"region" yaml:"region"`
		Endpoint  string `json:"endpoint" yaml:"endpoint"`
		AccessKey string `json:"access_key" yaml:"access_key"`
		SecretKey string `json:"secret_key" yaml:"secret_key"`
	} `json:"s3" yaml:"s3"`
	MetricsFile string `json:"metrics_file" yaml:"metrics_file"`
}

// parseFile overlays cfg with values from the file at path. An empty path
// is a no-op.
func parseFile(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.APIBaseURL, fc.APIBaseURL)
	if fc.RequestTimeout != nil {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	setString(&cfg.DataDir, fc.DataDir)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.ReportDir, fc.ReportDir)
	setString(&cfg.S3.Bucket, fc.S3.Bucket)
	setString(&cfg.S3.Region, fc.S3.Region)
	setString(&cfg.S3.Endpoint, fc.S3.Endpoint)
	setString(&cfg.S3.AccessKey, fc.S3.AccessKey)
	setString(&cfg.S3.SecretKey, fc.S3.SecretKey)
	setString(&cfg.MetricsFile, fc.MetricsFile)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
