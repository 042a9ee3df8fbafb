package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iwvelando/loan-schedule/pkg/constants"
)

func TestLoadConfigDefaultsWhenMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Address != constants.DefaultServerAddress {
		t.Fatalf("expected default address, got %q", cfg.Address)
	}
	if cfg.RequestSizeBytes() != constants.DefaultMaxRequestSizeBytes {
		t.Fatalf("expected default request size, got %d", cfg.RequestSizeBytes())
	}
	if cfg.Logging.Level != "" || cfg.Logging.Format != "" || cfg.Logging.OutputFile != "" {
		t.Fatalf("expected empty logging defaults, got %+v", cfg.Logging)
	}
	if cfg.RateLimit.Requests != constants.DefaultRateLimitRequests || cfg.RateLimit.Window != constants.DefaultRateLimitWindow {
		t.Fatalf("unexpected rate limit defaults %+v", cfg.RateLimit)
	}
	if cfg.Suggestions.Model != constants.DefaultSuggestionModel {
		t.Fatalf("expected default model, got %q", cfg.Suggestions.Model)
	}
	if cfg.Suggestions.Cache.Backend != constants.CacheBackendMemory {
		t.Fatalf("expected memory cache by default, got %q", cfg.Suggestions.Cache.Backend)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Address != constants.DefaultServerAddress {
		t.Fatalf("expected default address, got %q", cfg.Address)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server-config.yaml")

	contents := []byte(`address: 127.0.0.1:9000
maxRequestSize: 128K
logging:
  level: debug
  format: console
  outputFile: /tmp/server.log
rateLimit:
  requests: 10
  window: 30s
cors:
  allowedOrigins:
    - https://loans.example.com
suggestions:
  enabled: true
  apiKey: from-file
  timeout: 10s
  maxInFlight: 2
  cache:
    backend: redis
    redisAddress: redis:6379
    ttl: 1h
`)
	if err := os.WriteFile(path, contents, 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Address != "127.0.0.1:9000" {
		t.Fatalf("expected address override, got %s", cfg.Address)
	}
	if cfg.RequestSizeBytes() != 128*1024 {
		t.Fatalf("expected request size override, got %d", cfg.RequestSizeBytes())
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "console" || cfg.Logging.OutputFile != "/tmp/server.log" {
		t.Fatalf("unexpected logging config %+v", cfg.Logging)
	}
	if cfg.RateLimit.Requests != 10 || cfg.RateLimit.Window != 30*time.Second {
		t.Fatalf("unexpected rate limit %+v", cfg.RateLimit)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "https://loans.example.com" {
		t.Fatalf("unexpected CORS config %+v", cfg.CORS)
	}

	s := cfg.Suggestions
	if !s.Enabled || s.APIKey != "from-file" || s.Timeout != 10*time.Second || s.MaxInFlight != 2 {
		t.Fatalf("unexpected suggestions config %+v", s)
	}
	// Keys absent from the file keep their defaults.
	if s.Model != constants.DefaultSuggestionModel {
		t.Fatalf("expected default model to survive, got %q", s.Model)
	}
	if s.Cache.Backend != "redis" || s.Cache.RedisAddress != "redis:6379" || s.Cache.TTL != time.Hour {
		t.Fatalf("unexpected cache config %+v", s.Cache)
	}
}

func TestLoadConfigAPIKeyFromEnvironment(t *testing.T) {
	t.Setenv("LOAN_SCHEDULE_SUGGESTIONS_APIKEY", "from-env")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Suggestions.APIKey != "from-env" {
		t.Fatalf("expected API key from environment, got %q", cfg.Suggestions.APIKey)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := map[string]string{
		"Bad size":          "maxRequestSize: invalid",
		"Bad YAML":          "address: [",
		"Bad cache backend": "suggestions:\n  cache:\n    backend: disk\n",
	}

	for name, contents := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
				t.Fatalf("failed to write temp config: %v", err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Fatal("expected error but got nil")
			}
		})
	}
}

func TestSetRequestSizeBytes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SetRequestSizeBytes(2048)
	if cfg.RequestSizeBytes() != 2048 || cfg.MaxRequestSize != "2048" {
		t.Fatalf("unexpected size after override: %d %q", cfg.RequestSizeBytes(), cfg.MaxRequestSize)
	}
	cfg.SetRequestSizeBytes(0)
	if cfg.RequestSizeBytes() != 2048 {
		t.Fatalf("non-positive override should be ignored")
	}
}

func TestParseSize(t *testing.T) {
	tests := map[string]int64{
		"":          constants.DefaultMaxRequestSizeBytes,
		"1024":      1024,
		"512b":      512,
		"256K":      256 * 1024,
		"1m":        1024 * 1024,
		"3MB":       3 * 1024 * 1024,
		"  4096   ": 4096,
	}

	for input, expected := range tests {
		got, err := ParseSize(input)
		if err != nil {
			t.Fatalf("ParseSize(%q) returned error: %v", input, err)
		}
		if got != expected {
			t.Fatalf("ParseSize(%q) = %d, expected %d", input, got, expected)
		}
	}

	for _, input := range []string{"1TB", "abc", "9223372036854775807M"} {
		if _, err := ParseSize(input); err == nil {
			t.Fatalf("ParseSize(%q) expected error", input)
		}
	}
}
