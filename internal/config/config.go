// Package config handles loading and validating configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Data sources.
const (
	SourceSheet = "sheet"
	SourceLocal = "local"
)

// Config holds all configuration values for the parlay tracker.
type Config struct {
	// Data source
	DataSource string

	// Google Sheet
	SheetID     string
	SheetName   string
	SheetFormat string
	// SheetURL overrides the URL built from SheetID and SheetName
	SheetURL    string
	HTTPTimeout time.Duration

	// Refresh
	RefreshInterval time.Duration

	// Season
	SeasonStartYear  int
	SeasonStartMonth time.Month

	// Derivation
	GroupKey     string
	BankPolicy   string
	StartingBank float64
	DefaultStake float64

	// Database
	DBPath string

	// HTTP API
	EnableHTTP   bool
	HTTPPort     int
	APIRateLimit float64

	// UI
	EnableTUI     bool
	UIRefreshRate time.Duration

	// Logging
	LogLevel string
	// LogFile receives logs while the TUI owns the terminal
	LogFile string
}

// Load reads configuration from environment variables with fallback to .env file.
// Priority order: Environment variables > .env file > hardcoded defaults
func Load() (*Config, error) {
	// Attempt to load .env file (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DataSource: strings.ToLower(getEnv("DATA_SOURCE", SourceSheet)),

		// Sheet
		SheetID:     getEnv("SHEET_ID", "1hqgI3ZtPxQfSTA9y5w3jBmedTZP7sqlMGIVqm4mqZB8"),
		SheetName:   getEnv("SHEET_NAME", "season 2025/2026"),
		SheetFormat: strings.ToLower(getEnv("SHEET_FORMAT", "csv")),
		SheetURL:    getEnv("SHEET_URL", ""),
		HTTPTimeout: time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 10)) * time.Second,

		// Refresh
		RefreshInterval: time.Duration(getEnvInt("REFRESH_INTERVAL_SECONDS", 60)) * time.Second,

		// Season
		SeasonStartYear:  getEnvInt("SEASON_START_YEAR", 2025),
		SeasonStartMonth: time.Month(getEnvInt("SEASON_START_MONTH", 8)),

		// Derivation
		GroupKey:     strings.ToLower(getEnv("GROUP_KEY", "date_odds")),
		BankPolicy:   strings.ToLower(getEnv("BANK_POLICY", "snapshot")),
		StartingBank: getEnvFloat("STARTING_BANK", 0),
		DefaultStake: getEnvFloat("DEFAULT_STAKE", 10),

		// Database
		DBPath: getEnv("DB_PATH", "./data/bets.db"),

		// HTTP
		EnableHTTP:   getEnvBool("ENABLE_HTTP", true),
		HTTPPort:     getEnvInt("HTTP_PORT", 8080),
		APIRateLimit: getEnvFloat("API_RATE_LIMIT", 5),

		// UI
		EnableTUI:     getEnvBool("ENABLE_TUI", true),
		UIRefreshRate: time.Duration(getEnvInt("UI_REFRESH_MS", 500)) * time.Millisecond,

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "INFO"),
		LogFile:  getEnv("LOG_FILE", "./data/tracker.log"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set and valid.
func (c *Config) Validate() error {
	switch c.DataSource {
	case SourceSheet:
		if c.SheetURL == "" && (c.SheetID == "" || c.SheetName == "") {
			return fmt.Errorf("SHEET_ID and SHEET_NAME are required unless SHEET_URL is set")
		}
	case SourceLocal:
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH is required for the local data source")
		}
	default:
		return fmt.Errorf("DATA_SOURCE must be %q or %q, got %q", SourceSheet, SourceLocal, c.DataSource)
	}

	if c.SheetFormat != "csv" && c.SheetFormat != "json" {
		return fmt.Errorf("SHEET_FORMAT must be csv or json")
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT_SECONDS must be positive")
	}

	if c.RefreshInterval < time.Second {
		return fmt.Errorf("REFRESH_INTERVAL_SECONDS must be at least 1")
	}

	if c.SeasonStartYear < 1900 || c.SeasonStartYear > 9999 {
		return fmt.Errorf("SEASON_START_YEAR must be a four-digit year")
	}

	if c.SeasonStartMonth < time.January || c.SeasonStartMonth > time.December {
		return fmt.Errorf("SEASON_START_MONTH must be between 1 and 12")
	}

	if c.GroupKey != "date_odds" && c.GroupKey != "date" {
		return fmt.Errorf("GROUP_KEY must be date_odds or date")
	}

	if c.BankPolicy != "snapshot" && c.BankPolicy != "delta" {
		return fmt.Errorf("BANK_POLICY must be snapshot or delta")
	}

	if c.StartingBank < 0 {
		return fmt.Errorf("STARTING_BANK must not be negative")
	}

	if c.DefaultStake <= 0 {
		return fmt.Errorf("DEFAULT_STAKE must be positive")
	}

	if c.EnableHTTP && (c.HTTPPort < 1 || c.HTTPPort > 65535) {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}

	if c.APIRateLimit < 0 {
		return fmt.Errorf("API_RATE_LIMIT must not be negative")
	}

	return nil
}

// MaskedSheetID returns the sheet ID with most characters hidden for logging.
// Anyone holding the ID of a link-shared sheet can read it.
func (c *Config) MaskedSheetID() string {
	return maskSecret(c.SheetID)
}

// maskSecret hides all but the first and last 4 characters of a secret.
func maskSecret(s string) string {
	if len(s) <= 8 {
		if len(s) == 0 {
			return "(not set)"
		}
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as an integer or returns a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat retrieves an environment variable as a float64 or returns a default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// getEnvBool retrieves an environment variable as a boolean or returns a default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
