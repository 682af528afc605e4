package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the .env lookup at an empty temp dir and clears every
// TRADEGUARD_ variable for the duration of the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	orig := dotEnvFile
	dotEnvFile = filepath.Join(dir, ".env")
	t.Cleanup(func() { dotEnvFile = orig })

	for _, name := range []string{"CONFIG", "API_URL", "TIMEOUT", "DATA_DIR", "LOG_LEVEL", "REPORT_DIR",
		"S3_BUCKET", "S3_REGION", "S3_ENDPOINT", "S3_ACCESS_KEY", "S3_SECRET_KEY", "METRICS_FILE"} {
		t.Setenv(EnvPrefix+name, "")
	}
	return dir
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func defaults() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func TestLoadDefaults(t *testing.T) {
	want := &Config{
		APIBaseURL:     "http://localhost:8000",
		RequestTimeout: 30 * time.Second,
		DataDir:        ".tradeguard",
		LogLevel:       "warn",
		ReportDir:      "reports",
		S3:             S3{Region: "us-east-1"},
	}
	if diff := cmp.Diff(want, defaults()); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, defaults().S3.Enabled())
}

func TestLoadConfig_NoSources(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	if diff := cmp.Diff(defaults(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	cfg, err = LoadConfig(newFlags(t))
	require.NoError(t, err)
	if diff := cmp.Diff(defaults(), cfg); diff != "" {
		t.Errorf("unset flags must not override (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_JSONFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "cfg.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"api_base_url": "https://api.example.com",
		"request_timeout": "5s",
		"s3": {"bucket": "reports", "endpoint": "http://127.0.0.1:9000"}
	}`), 0o600))

	cfg, err := LoadConfig(newFlags(t, "-c", path))
	require.NoError(t, err)

	want := defaults()
	want.APIBaseURL = "https://api.example.com"
	want.RequestTimeout = 5 * time.Second
	want.S3.Bucket = "reports"
	want.S3.Endpoint = "http://127.0.0.1:9000"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, cfg.S3.Enabled())
}

func TestLoadConfig_YAMLFileFromEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_dir: /var/lib/tg\nrequest_timeout: 2000000000\nlog_level: debug\n"), 0o600))
	t.Setenv(EnvPrefix+"CONFIG", path)

	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/tg", cfg.DataDir)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfig_FileErrors(t *testing.T) {
	dir := isolate(t)

	_, err := LoadConfig(newFlags(t, "--config", filepath.Join(dir, "missing.json")))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"request_timeout": true}`), 0o600))
	_, err = LoadConfig(newFlags(t, "--config", bad))
	assert.Error(t, err)
}

func TestLoadConfig_Env(t *testing.T) {
	isolate(t)
	t.Setenv(EnvPrefix+"API_URL", "http://env:8000")
	t.Setenv(EnvPrefix+"TIMEOUT", "45s")
	t.Setenv(EnvPrefix+"S3_ACCESS_KEY", "minio")

	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "http://env:8000", cfg.APIBaseURL)
	assert.Equal(t, 45*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "minio", cfg.S3.AccessKey)

	t.Setenv(EnvPrefix+"TIMEOUT", "soon")
	_, err = LoadConfig(nil)
	assert.Error(t, err)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.Unsetenv(EnvPrefix+"S3_BUCKET"))
	t.Cleanup(func() { _ = os.Unsetenv(EnvPrefix + "S3_BUCKET") })
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("TRADEGUARD_S3_BUCKET=from-dotenv\n"), 0o600))

	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.S3.Bucket)
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "cfg.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"api_base_url":"http://file","report_dir":"file-reports","log_level":"info"}`), 0o600))
	t.Setenv(EnvPrefix+"API_URL", "http://env")
	t.Setenv(EnvPrefix+"LOG_LEVEL", "error")

	cfg, err := LoadConfig(newFlags(t, "-c", path, "--api-url", "http://flag", "--timeout", "3s"))
	require.NoError(t, err)

	assert.Equal(t, "http://flag", cfg.APIBaseURL)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, "file-reports", cfg.ReportDir)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
}

func TestLoadConfig_MetricsFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("metrics_file: from-file.prom\n"), 0o600))

	cfg, err := LoadConfig(newFlags(t, "-c", path))
	require.NoError(t, err)
	assert.Equal(t, "from-file.prom", cfg.MetricsFile)

	t.Setenv(EnvPrefix+"METRICS_FILE", "from-env.prom")
	cfg, err = LoadConfig(newFlags(t, "-c", path))
	require.NoError(t, err)
	assert.Equal(t, "from-env.prom", cfg.MetricsFile)

	cfg, err = LoadConfig(newFlags(t, "-c", path, "--metrics-file", "from-flag.prom"))
	require.NoError(t, err)
	assert.Equal(t, "from-flag.prom", cfg.MetricsFile)
}
