// Package config loads runtime configuration for the TradeGuard CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c/--config or TRADEGUARD_CONFIG.
//     Files ending in .yaml or .yml are read as YAML, anything else as JSON.
//  3. Environment variables prefixed with TRADEGUARD_. A .env file in the
//     working directory is loaded first; variables already set win.
//  4. Command-line flags registered with RegisterFlags. Only flags the user
//     actually set override earlier values.
//
// # File schema
//
// Durations use timex.Duration, so they can be strings like "30s" or
// integer nanoseconds:
//
//	{
//	  "api_base_url": "http://localhost:8000",
//	  "request_timeout": "30s",
//	  "data_dir": ".tradeguard",
//	  "log_level": "warn",
//	  "report_dir": "reports",
//	  "s3": {"bucket": "reports", "region": "us-east-1", "endpoint": "http://127.0.0.1:9000"}
//	}
//
// Credentials for the S3 archive are best kept in the environment
// (TRADEGUARD_S3_ACCESS_KEY, TRADEGUARD_S3_SECRET_KEY); they have no flags.
package config
