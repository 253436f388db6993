package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadValidConfig(t *testing.T) {
	t.Setenv("PORT", "8002")
	t.Setenv("ADDRESS", "127.0.0.1")
	t.Setenv("ENV", "dev")
	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("CATALOG_DRIVER", "postgres")
	t.Setenv("CATALOG_DSN", "postgres://pharmacy@localhost/inventory?sslmode=disable")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8002" {
		t.Errorf("Expected port 8002, got %s", cfg.Port)
	}
	if cfg.Env != EnvDevelopment {
		t.Errorf("Expected env dev, got %s", cfg.Env)
	}
	if cfg.CatalogDriver != DriverPostgres {
		t.Errorf("Expected postgres driver, got %s", cfg.CatalogDriver)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	for _, name := range GetEnvVars() {
		t.Setenv(name, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("Expected default port 8000, got %s", cfg.Port)
	}
	if cfg.Address != "127.0.0.1" {
		t.Errorf("Expected default address 127.0.0.1, got %s", cfg.Address)
	}
	if cfg.Env != EnvDevelopment {
		t.Errorf("Expected default env dev, got %s", cfg.Env)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level info, got %s", cfg.LogLevel)
	}
	if cfg.SearchTopK != 3 || cfg.FilterTopK != 100 || cfg.SearchThreshold != 50 {
		t.Errorf("Unexpected search defaults: top_k=%d filter_top_k=%d threshold=%v",
			cfg.SearchTopK, cfg.FilterTopK, cfg.SearchThreshold)
	}
	if cfg.ListThresholds.LowStock != 10 || cfg.ListThresholds.ExpiringSoonDays != 30 {
		t.Errorf("Unexpected list thresholds: %+v", cfg.ListThresholds)
	}
	if cfg.StatsThresholds.LowStock != 5 || cfg.StatsThresholds.ExpiringSoonDays != 15 {
		t.Errorf("Unexpected stats thresholds: %+v", cfg.StatsThresholds)
	}
	if cfg.ReloadSchedule != "06:00;18:00" {
		t.Errorf("Unexpected reload schedule %q", cfg.ReloadSchedule)
	}
	if cfg.ReloadRetryDelay != 5*time.Second {
		t.Errorf("Unexpected retry delay %s", cfg.ReloadRetryDelay)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		expected string
	}{
		{"port not a number", "PORT", "abc", "PORT must be a valid number"},
		{"port zero", "PORT", "0", "PORT must be between 1 and 65535"},
		{"port too large", "PORT", "65536", "PORT must be between 1 and 65535"},
		{"privileged port", "PORT", "80", "PORT 80 is privileged"},
		{"address", "ADDRESS", "invalid", "ADDRESS must be a valid IP address"},
		{"public address", "ADDRESS", "8.8.8.8", "is a public IP"},
		{"env", "ENV", "invalid", "ENV must be one of"},
		{"log level", "LOG_LEVEL", "invalid", "LOG_LEVEL must be one of"},
		{"driver", "CATALOG_DRIVER", "mysql", "CATALOG_DRIVER must be one of"},
		{"schedule", "RELOAD_SCHEDULE", "06:00;25:99", "RELOAD_SCHEDULE"},
		{"retry delay", "RELOAD_RETRY_DELAY", "soon", "RELOAD_RETRY_DELAY"},
		{"negative retry delay", "RELOAD_RETRY_DELAY", "-1s", "RELOAD_RETRY_DELAY"},
		{"retries", "RELOAD_MAX_RETRIES", "50", "RELOAD_MAX_RETRIES"},
		{"top k", "SEARCH_TOP_K", "0", "SEARCH_TOP_K"},
		{"filter top k", "FILTER_TOP_K", "2", "FILTER_TOP_K"},
		{"threshold", "SEARCH_THRESHOLD", "150", "SEARCH_THRESHOLD"},
		{"page size", "MAX_PAGE_SIZE", "0", "MAX_PAGE_SIZE"},
		{"list low stock", "LIST_LOW_STOCK_THRESHOLD", "0", "LIST_LOW_STOCK_THRESHOLD"},
		{"stats window", "STATS_EXPIRING_SOON_DAYS", "-3", "STATS_EXPIRING_SOON_DAYS"},
		{"request body", "MAX_REQUEST_BODY", "0", "MAX_REQUEST_BODY"},
		{"log file size", "MAX_LOG_FILE_SIZE", "1024", "MAX_LOG_FILE_SIZE is too small"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatalf("Expected error for %s=%s, got nil", tt.key, tt.value)
			}
			if !strings.Contains(err.Error(), tt.expected) {
				t.Errorf("Expected error containing %q, got %q", tt.expected, err.Error())
			}
		})
	}
}

func TestParseEnvironment(t *testing.T) {
	tests := []struct {
		input    string
		expected Environment
		hasError bool
	}{
		{"dev", EnvDevelopment, false},
		{"development", EnvDevelopment, false},
		{"staging", EnvStaging, false},
		{"prod", EnvProduction, false},
		{"PRODUCTION", EnvProduction, false},
		{"test", EnvTest, false},
		{"invalid", EnvDevelopment, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			env, err := ParseEnvironment(tt.input)
			if tt.hasError != (err != nil) {
				t.Fatalf("ParseEnvironment(%q) error = %v, want error %v", tt.input, err, tt.hasError)
			}
			if env != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, env)
			}
		})
	}
}

func TestEnvironmentString(t *testing.T) {
	tests := []struct {
		env      Environment
		expected string
	}{
		{EnvDevelopment, "dev"},
		{EnvStaging, "staging"},
		{EnvProduction, "prod"},
		{EnvTest, "test"},
	}

	for _, tt := range tests {
		if got := tt.env.String(); got != tt.expected {
			t.Errorf("Expected %s, got %s", tt.expected, got)
		}
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("SEARCH_TOP_K=7\nPORT=9001\n"), 0600); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)
	t.Setenv("PORT", "8123")
	t.Setenv("SEARCH_TOP_K", "")
	os.Unsetenv("SEARCH_TOP_K")

	if err := LoadDotEnv(); err != nil {
		t.Fatalf("LoadDotEnv returned error: %v", err)
	}

	if got := os.Getenv("SEARCH_TOP_K"); got != "7" {
		t.Errorf("Expected SEARCH_TOP_K=7 from .env, got %q", got)
	}
	if got := os.Getenv("PORT"); got != "8123" {
		t.Errorf("Existing PORT should not be overridden, got %q", got)
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	chdir(t, t.TempDir())

	if err := LoadDotEnv(); err != nil {
		t.Errorf("Missing .env should not be an error, got %v", err)
	}
}

// chdir changes the working directory for the duration of the test,
// equivalent to testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
