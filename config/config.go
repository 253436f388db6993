// Package config loads the service configuration from environment variables
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/giygas/pharmacy-inventory-api/status"
)

// Environment is the deployment stage the service runs in
type Environment int

const (
	EnvDevelopment Environment = iota
	EnvStaging
	EnvProduction
	EnvTest
)

// String returns the short name used in the ENV variable
func (e Environment) String() string {
	switch e {
	case EnvStaging:
		return "staging"
	case EnvProduction:
		return "prod"
	case EnvTest:
		return "test"
	default:
		return "dev"
	}
}

// ParseEnvironment accepts the short and the long spelling of each stage.
// Unknown values fall back to EnvDevelopment with an error.
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dev", "development":
		return EnvDevelopment, nil
	case "staging":
		return EnvStaging, nil
	case "prod", "production":
		return EnvProduction, nil
	case "test":
		return EnvTest, nil
	}
	return EnvDevelopment, fmt.Errorf("ENV must be one of: [dev staging prod test], got: %s", s)
}

// Catalog drivers accepted in CATALOG_DRIVER
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
	DriverFile     = "file" // .csv, .xlsx or .xls, local path or http(s) URL
)

// Config holds all application configuration
type Config struct {
	Port              string
	Address           string
	Env               Environment
	LogLevel          string
	LogDir            string
	LogRetentionWeeks int   // Number of weeks to keep log files
	MaxLogFileSize    int64 // Maximum log file size in bytes
	MaxRequestBody    int64 // Maximum request body size in bytes
	MaxHeaderSize     int64 // Maximum header size in bytes

	CatalogDriver    string
	CatalogDSN       string // connection string, file path or URL depending on the driver
	ReloadSchedule   string // gocron At() expression, times separated by ';'
	ReloadMaxRetries int
	ReloadRetryDelay time.Duration

	SearchTopK      int
	FilterTopK      int
	SearchThreshold float64 // 0-100
	DefaultPageSize int
	MaxPageSize     int

	// The listing and the stats endpoint deliberately use different profiles.
	ListThresholds  status.Thresholds
	StatsThresholds status.Thresholds
}

// Load loads and validates configuration from environment variables
func Load() (*Config, error) {
	env, err := ParseEnvironment(getEnvWithDefault("ENV", "dev"))
	if err != nil {
		return nil, fmt.Errorf("configuration validation failed: invalid ENV: %w", err)
	}

	retryDelay, err := time.ParseDuration(getEnvWithDefault("RELOAD_RETRY_DELAY", "5s"))
	if err != nil {
		return nil, fmt.Errorf("configuration validation failed: invalid RELOAD_RETRY_DELAY: %w", err)
	}

	cfg := &Config{
		Port:              getEnvWithDefault("PORT", "8000"),
		Address:           getEnvWithDefault("ADDRESS", "127.0.0.1"),
		Env:               env,
		LogLevel:          strings.ToLower(getEnvWithDefault("LOG_LEVEL", "info")),
		LogDir:            getEnvWithDefault("LOG_DIR", "logs"),
		LogRetentionWeeks: getIntEnvWithDefault("LOG_RETENTION_WEEKS", 4),
		MaxLogFileSize:    getInt64EnvWithDefault("MAX_LOG_FILE_SIZE", 104857600), // 100MB
		MaxRequestBody:    getInt64EnvWithDefault("MAX_REQUEST_BODY", 1048576),    // 1MB
		MaxHeaderSize:     getInt64EnvWithDefault("MAX_HEADER_SIZE", 1048576),     // 1MB

		CatalogDriver:    strings.ToLower(getEnvWithDefault("CATALOG_DRIVER", DriverSQLite)),
		CatalogDSN:       getEnvWithDefault("CATALOG_DSN", "catalog.db"),
		ReloadSchedule:   getEnvWithDefault("RELOAD_SCHEDULE", "06:00;18:00"),
		ReloadMaxRetries: getIntEnvWithDefault("RELOAD_MAX_RETRIES", 3),
		ReloadRetryDelay: retryDelay,

		SearchTopK:      getIntEnvWithDefault("SEARCH_TOP_K", 3),
		FilterTopK:      getIntEnvWithDefault("FILTER_TOP_K", 100),
		SearchThreshold: getFloatEnvWithDefault("SEARCH_THRESHOLD", 50),
		DefaultPageSize: getIntEnvWithDefault("DEFAULT_PAGE_SIZE", 50),
		MaxPageSize:     getIntEnvWithDefault("MAX_PAGE_SIZE", 5000),

		ListThresholds: status.Thresholds{
			LowStock:         getIntEnvWithDefault("LIST_LOW_STOCK_THRESHOLD", 10),
			ExpiringSoonDays: getIntEnvWithDefault("LIST_EXPIRING_SOON_DAYS", 30),
		},
		StatsThresholds: status.Thresholds{
			LowStock:         getIntEnvWithDefault("STATS_LOW_STOCK_THRESHOLD", 5),
			ExpiringSoonDays: getIntEnvWithDefault("STATS_EXPIRING_SOON_DAYS", 15),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// validateConfig validates all configuration values
func validateConfig(cfg *Config) error {
	if err := validatePort(cfg.Port); err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}

	if err := validateAddress(cfg.Address); err != nil {
		return fmt.Errorf("invalid ADDRESS: %w", err)
	}

	if err := validateLogLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if err := validateSizeLimit(cfg.MaxRequestBody, "MAX_REQUEST_BODY"); err != nil {
		return fmt.Errorf("invalid MAX_REQUEST_BODY: %w", err)
	}

	if err := validateSizeLimit(cfg.MaxHeaderSize, "MAX_HEADER_SIZE"); err != nil {
		return fmt.Errorf("invalid MAX_HEADER_SIZE: %w", err)
	}

	if err := validateLogRetentionWeeks(cfg.LogRetentionWeeks); err != nil {
		return fmt.Errorf("invalid LOG_RETENTION_WEEKS: %w", err)
	}

	if err := validateMaxLogFileSize(cfg.MaxLogFileSize); err != nil {
		return fmt.Errorf("invalid MAX_LOG_FILE_SIZE: %w", err)
	}

	if err := validateCatalog(cfg.CatalogDriver, cfg.CatalogDSN); err != nil {
		return fmt.Errorf("invalid catalog source: %w", err)
	}

	if err := validateReload(cfg); err != nil {
		return err
	}

	if err := validateSearch(cfg); err != nil {
		return err
	}

	if err := validateThresholds(cfg.ListThresholds, "LIST"); err != nil {
		return err
	}

	return validateThresholds(cfg.StatsThresholds, "STATS")
}

// validatePort validates the PORT environment variable
func validatePort(port string) error {
	if port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	portNum, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid number: %w", err)
	}

	if portNum < 1 || portNum > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}

	if portNum < 1024 {
		return fmt.Errorf("PORT %d is privileged (less than 1024), use ports 1024-65535", portNum)
	}

	return nil
}

// validateAddress validates the ADDRESS environment variable
func validateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("ADDRESS cannot be empty")
	}

	if address == "127.0.0.1" || address == "::1" || address == "localhost" {
		return nil
	}

	ip := net.ParseIP(address)
	if ip == nil {
		return fmt.Errorf("ADDRESS must be a valid IP address or 'localhost', got: %s", address)
	}

	if !ip.IsLoopback() && !ip.IsPrivate() && !ip.IsUnspecified() {
		return fmt.Errorf("ADDRESS %s is a public IP, consider using private network ranges for security", address)
	}

	return nil
}

// validateLogLevel validates the LOG_LEVEL environment variable
func validateLogLevel(logLevel string) error {
	if logLevel == "" {
		return fmt.Errorf("LOG_LEVEL cannot be empty")
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	for _, level := range validLevels {
		if logLevel == level {
			return nil
		}
	}

	return fmt.Errorf("LOG_LEVEL must be one of: %v, got: %s", validLevels, logLevel)
}

// validateSizeLimit validates size limit configuration values
func validateSizeLimit(size int64, configName string) error {
	if size <= 0 {
		return fmt.Errorf("%s must be positive, got: %d", configName, size)
	}

	if size > 100*1024*1024 {
		return fmt.Errorf("%s is too large (max 100MB), got: %d bytes", configName, size)
	}

	return nil
}

// validateLogRetentionWeeks validates the LOG_RETENTION_WEEKS environment variable
func validateLogRetentionWeeks(weeks int) error {
	if weeks <= 0 {
		return fmt.Errorf("LOG_RETENTION_WEEKS must be positive, got: %d", weeks)
	}

	if weeks > 52 {
		return fmt.Errorf("LOG_RETENTION_WEEKS is too large (max 52 weeks), got: %d", weeks)
	}

	return nil
}

// validateMaxLogFileSize validates the MAX_LOG_FILE_SIZE environment variable
func validateMaxLogFileSize(size int64) error {
	if size < 1024*1024 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE is too small (min 1MB), got: %d bytes", size)
	}

	if size > 1024*1024*1024 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE is too large (max 1GB), got: %d bytes", size)
	}

	return nil
}

// validateCatalog checks the driver name and that a source is given
func validateCatalog(driver, dsn string) error {
	switch driver {
	case DriverPostgres, DriverSQLite, DriverFile:
	default:
		return fmt.Errorf("CATALOG_DRIVER must be one of: [%s %s %s], got: %s",
			DriverPostgres, DriverSQLite, DriverFile, driver)
	}

	if strings.TrimSpace(dsn) == "" {
		return fmt.Errorf("CATALOG_DSN cannot be empty")
	}

	return nil
}

// validateReload checks the reload schedule and retry policy
func validateReload(cfg *Config) error {
	for _, at := range strings.Split(cfg.ReloadSchedule, ";") {
		if _, err := time.Parse("15:04", strings.TrimSpace(at)); err != nil {
			return fmt.Errorf("invalid RELOAD_SCHEDULE: %q is not a HH:MM time", at)
		}
	}

	if cfg.ReloadMaxRetries < 0 || cfg.ReloadMaxRetries > 10 {
		return fmt.Errorf("invalid RELOAD_MAX_RETRIES: must be between 0 and 10, got: %d", cfg.ReloadMaxRetries)
	}

	if cfg.ReloadRetryDelay <= 0 {
		return fmt.Errorf("invalid RELOAD_RETRY_DELAY: must be positive, got: %s", cfg.ReloadRetryDelay)
	}

	return nil
}

// validateSearch checks the matcher and pagination limits
func validateSearch(cfg *Config) error {
	if cfg.SearchTopK < 1 {
		return fmt.Errorf("invalid SEARCH_TOP_K: must be positive, got: %d", cfg.SearchTopK)
	}

	if cfg.FilterTopK < cfg.SearchTopK {
		return fmt.Errorf("invalid FILTER_TOP_K: must be at least SEARCH_TOP_K (%d), got: %d", cfg.SearchTopK, cfg.FilterTopK)
	}

	if cfg.SearchThreshold < 0 || cfg.SearchThreshold > 100 {
		return fmt.Errorf("invalid SEARCH_THRESHOLD: must be between 0 and 100, got: %v", cfg.SearchThreshold)
	}

	if cfg.MaxPageSize < 1 {
		return fmt.Errorf("invalid MAX_PAGE_SIZE: must be positive, got: %d", cfg.MaxPageSize)
	}

	if cfg.DefaultPageSize < 1 || cfg.DefaultPageSize > cfg.MaxPageSize {
		return fmt.Errorf("invalid DEFAULT_PAGE_SIZE: must be between 1 and %d, got: %d", cfg.MaxPageSize, cfg.DefaultPageSize)
	}

	return nil
}

// validateThresholds checks one classification profile
func validateThresholds(th status.Thresholds, prefix string) error {
	if th.LowStock < 1 {
		return fmt.Errorf("invalid %s_LOW_STOCK_THRESHOLD: must be positive, got: %d", prefix, th.LowStock)
	}

	if th.ExpiringSoonDays < 0 || th.ExpiringSoonDays > 3650 {
		return fmt.Errorf("invalid %s_EXPIRING_SOON_DAYS: must be between 0 and 3650, got: %d", prefix, th.ExpiringSoonDays)
	}

	return nil
}

// getEnvWithDefault gets an environment variable with a default value
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnvWithDefault gets an environment variable as int with a default value
func getIntEnvWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getInt64EnvWithDefault gets an environment variable as int64 with a default value
func getInt64EnvWithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getFloatEnvWithDefault gets an environment variable as float64 with a default value
func getFloatEnvWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// GetEnvVars returns a list of all expected environment variables
func GetEnvVars() []string {
	return []string{
		"PORT", "ADDRESS", "ENV", "LOG_LEVEL", "LOG_DIR", "LOG_RETENTION_WEEKS",
		"MAX_LOG_FILE_SIZE", "MAX_REQUEST_BODY", "MAX_HEADER_SIZE",
		"CATALOG_DRIVER", "CATALOG_DSN", "RELOAD_SCHEDULE", "RELOAD_MAX_RETRIES", "RELOAD_RETRY_DELAY",
		"SEARCH_TOP_K", "FILTER_TOP_K", "SEARCH_THRESHOLD", "DEFAULT_PAGE_SIZE", "MAX_PAGE_SIZE",
		"LIST_LOW_STOCK_THRESHOLD", "LIST_EXPIRING_SOON_DAYS",
		"STATS_LOW_STOCK_THRESHOLD", "STATS_EXPIRING_SOON_DAYS",
	}
}
