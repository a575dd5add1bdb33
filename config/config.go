package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"wheeltracker/internal/adapters/logger" // Import the logger package for LogLevel
)

// Config holds all application configuration.
type Config struct {
	// Database
	DBPath string

	// Logging
	LogLevel  logger.LogLevel
	LogFormat string // "std" or "zerolog"

	// Price feed
	PriceFeedURL     string
	PriceFeedTimeout time.Duration
	PriceFeedRetries int

	// Strategy detector thresholds
	DetectPartialCoverageFloor float64
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var errs []string

	cfg.DBPath = getEnv("DB_PATH", "./data/wheeltracker.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", "INFO"))
	cfg.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", "zerolog"))
	if cfg.LogFormat != "std" && cfg.LogFormat != "zerolog" {
		errs = append(errs, fmt.Sprintf("invalid LOG_FORMAT %q (want std or zerolog)", cfg.LogFormat))
	}

	cfg.PriceFeedURL = getEnv("PRICE_FEED_URL", "")
	if cfg.PriceFeedURL == "" {
		errs = append(errs, "PRICE_FEED_URL must be set")
	}

	timeoutSeconds := getEnvAsInt("PRICE_FEED_TIMEOUT_SECONDS", 10)
	if timeoutSeconds <= 0 {
		errs = append(errs, "PRICE_FEED_TIMEOUT_SECONDS must be positive")
	}
	cfg.PriceFeedTimeout = time.Duration(timeoutSeconds) * time.Second

	cfg.PriceFeedRetries = getEnvAsInt("PRICE_FEED_RETRIES", 2)
	if cfg.PriceFeedRetries < 0 {
		errs = append(errs, "PRICE_FEED_RETRIES cannot be negative")
	}

	cfg.DetectPartialCoverageFloor = getEnvAsFloat("DETECT_PARTIAL_COVERAGE_FLOOR", 0.5)
	if cfg.DetectPartialCoverageFloor <= 0 || cfg.DetectPartialCoverageFloor >= 1 {
		errs = append(errs, "DETECT_PARTIAL_COVERAGE_FLOOR must be between 0 and 1 (exclusive)")
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}
