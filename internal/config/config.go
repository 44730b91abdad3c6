package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port  string
	Debug bool

	// Schedule configuration
	ReportSchedule string // "daily" or "weekly"
	TimeZone       string

	// Review sources
	Brands     []string
	BackendURL string // analytics backend, e.g. http://localhost:5000/api
	ReviewsDir string // scraper JSON output

	// Keyword categories
	KeywordBackend         string // "api" or "blob"
	CategoryReloadInterval time.Duration
	MatchMode              string // "word" or "lemma"

	// Aggregation
	TrendWindow            int
	TrendGranularity       string // "month" or "year"
	NegativeAlertThreshold float64

	// Storage configuration
	StorageBackend   string // "azure" or "sqlite"
	StorageAccount   string
	StorageContainer string
	SQLitePath       string

	// Notification configuration
	TeamsWebhookURL   string
	NotificationEmail string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Debug:          getBoolEnv("DEBUG", false),
		ReportSchedule: getEnv("REPORT_SCHEDULE", "weekly"),
		TimeZone:       getEnv("TIMEZONE", "UTC"),

		Brands:     getSliceEnv("BRANDS", nil),
		BackendURL: getEnv("BACKEND_URL", ""),
		ReviewsDir: getEnv("REVIEWS_DIR", ""),

		KeywordBackend:         getEnv("KEYWORD_BACKEND", "api"),
		CategoryReloadInterval: getDurationEnv("CATEGORY_RELOAD_INTERVAL", 5*time.Minute),
		MatchMode:              getEnv("MATCH_MODE", "word"),

		TrendWindow:            getIntEnv("TREND_WINDOW", 6),
		TrendGranularity:       getEnv("TREND_GRANULARITY", "month"),
		NegativeAlertThreshold: getFloatEnv("NEGATIVE_ALERT_THRESHOLD", 0.4),

		StorageBackend:   getEnv("STORAGE_BACKEND", "sqlite"),
		StorageAccount:   getEnv("AZURE_STORAGE_ACCOUNT", ""),
		StorageContainer: getEnv("AZURE_STORAGE_CONTAINER", "reviews"),
		SQLitePath:       getEnv("SQLITE_PATH", "review-analytics.db"),

		TeamsWebhookURL:   getEnv("TEAMS_WEBHOOK_URL", ""),
		NotificationEmail: getEnv("NOTIFICATION_EMAIL", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getIntEnv("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
	}

	// Validate required configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.ReportSchedule != "daily" && c.ReportSchedule != "weekly" {
		return fmt.Errorf("REPORT_SCHEDULE must be 'daily' or 'weekly'")
	}

	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.TimeZone, err)
	}

	switch c.StorageBackend {
	case "azure":
		if c.StorageAccount == "" {
			return fmt.Errorf("AZURE_STORAGE_ACCOUNT is required when STORAGE_BACKEND is 'azure'")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when STORAGE_BACKEND is 'sqlite'")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be 'azure' or 'sqlite'")
	}

	switch c.KeywordBackend {
	case "api":
		if c.BackendURL == "" {
			return fmt.Errorf("BACKEND_URL is required when KEYWORD_BACKEND is 'api'")
		}
	case "blob":
	default:
		return fmt.Errorf("KEYWORD_BACKEND must be 'api' or 'blob'")
	}

	switch strings.ToLower(c.MatchMode) {
	case "word", "substring", "lemma", "nlp":
	default:
		return fmt.Errorf("MATCH_MODE must be 'word' or 'lemma'")
	}

	if c.TrendGranularity != "month" && c.TrendGranularity != "year" {
		return fmt.Errorf("TREND_GRANULARITY must be 'month' or 'year'")
	}

	if c.TrendWindow <= 0 {
		return fmt.Errorf("TREND_WINDOW must be positive")
	}

	if c.NegativeAlertThreshold <= 0 || c.NegativeAlertThreshold > 1 {
		return fmt.Errorf("NEGATIVE_ALERT_THRESHOLD must be in (0, 1]")
	}

	if c.NotificationEmail != "" {
		if c.SMTPHost == "" || c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP configuration is required when NOTIFICATION_EMAIL is set")
		}
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
