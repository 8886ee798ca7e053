/**
 * Configuration for the document viewer client
 *
 * Loads configuration from environment variables matching .env
 */

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds client configuration
type Config struct {
	// Backend base URL (the opiniowanie service)
	BaseURL string

	// HTTP behavior
	RequestTimeout time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration

	// OCR polling
	OcrPollInterval    time.Duration
	OcrPollMaxAttempts int

	// Text editor
	AutoSave         bool
	AutoSaveInterval time.Duration

	// Viewer
	PdfScale float64

	// Alerts
	AlertDuration time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		BaseURL:            getEnvOrDefault("OPINIE_BASE_URL", "http://localhost:8000"),
		RequestTimeout:     getEnvAsDurationOrDefault("REQUEST_TIMEOUT", 60*time.Second),
		MaxRetries:         getEnvAsIntOrDefault("MAX_RETRIES", 3),
		RetryBaseDelay:     getEnvAsDurationOrDefault("RETRY_BASE_DELAY", time.Second),
		OcrPollInterval:    getEnvAsDurationOrDefault("OCR_POLL_INTERVAL", 2*time.Second),
		OcrPollMaxAttempts: getEnvAsIntOrDefault("OCR_POLL_MAX_ATTEMPTS", 300),
		AutoSave:           getEnvAsBoolOrDefault("AUTO_SAVE", false),
		AutoSaveInterval:   getEnvAsDurationOrDefault("AUTO_SAVE_INTERVAL", 30*time.Second),
		PdfScale:           getEnvAsFloatOrDefault("PDF_SCALE", 1.5),
		AlertDuration:      getEnvAsDurationOrDefault("ALERT_DURATION", 5*time.Second),
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("OPINIE_BASE_URL is required")
	}

	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("MAX_RETRIES must be between 0 and 10, got %d", c.MaxRetries)
	}

	if c.OcrPollMaxAttempts < 1 {
		return fmt.Errorf("OCR_POLL_MAX_ATTEMPTS must be at least 1, got %d", c.OcrPollMaxAttempts)
	}

	if c.OcrPollInterval < 100*time.Millisecond {
		return fmt.Errorf("OCR_POLL_INTERVAL must be at least 100ms, got %v", c.OcrPollInterval)
	}

	if c.PdfScale <= 0 {
		return fmt.Errorf("PDF_SCALE must be positive, got %f", c.PdfScale)
	}

	return nil
}

// getEnvOrDefault gets environment variable or returns default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault gets environment variable as int or returns default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
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

// getEnvAsFloatOrDefault gets environment variable as float64 or returns default
func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
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

// getEnvAsBoolOrDefault gets environment variable as bool or returns default
func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsDurationOrDefault gets environment variable as duration (seconds when
// a bare number, otherwise Go duration syntax) or returns default
func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
