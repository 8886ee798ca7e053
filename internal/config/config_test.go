/**
 * Configuration Tests
 */

package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.BaseURL != "http://localhost:8000" {
		t.Errorf("base URL: %q", cfg.BaseURL)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("max retries: %d", cfg.MaxRetries)
	}
	if cfg.OcrPollInterval != 2*time.Second {
		t.Errorf("poll interval: %v", cfg.OcrPollInterval)
	}
	if cfg.OcrPollMaxAttempts != 300 {
		t.Errorf("poll attempts: %d", cfg.OcrPollMaxAttempts)
	}
	if cfg.PdfScale != 1.5 {
		t.Errorf("pdf scale: %v", cfg.PdfScale)
	}
	if cfg.AutoSave {
		t.Error("auto-save on by default")
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("OPINIE_BASE_URL", "http://opinie.example:9000")
	t.Setenv("MAX_RETRIES", "5")
	t.Setenv("OCR_POLL_INTERVAL", "500ms")
	t.Setenv("AUTO_SAVE", "true")
	t.Setenv("PDF_SCALE", "2.0")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BaseURL != "http://opinie.example:9000" {
		t.Errorf("base URL: %q", cfg.BaseURL)
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("max retries: %d", cfg.MaxRetries)
	}
	if cfg.OcrPollInterval != 500*time.Millisecond {
		t.Errorf("poll interval: %v", cfg.OcrPollInterval)
	}
	if !cfg.AutoSave {
		t.Error("auto-save not enabled")
	}
	if cfg.PdfScale != 2.0 {
		t.Errorf("pdf scale: %v", cfg.PdfScale)
	}
}

func TestBareNumberDurationsAreSeconds(t *testing.T) {
	t.Setenv("OCR_POLL_INTERVAL", "4")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OcrPollInterval != 4*time.Second {
		t.Errorf("poll interval: %v", cfg.OcrPollInterval)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty base URL", func(c *Config) { c.BaseURL = "" }},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }},
		{"excessive retries", func(c *Config) { c.MaxRetries = 11 }},
		{"zero poll attempts", func(c *Config) { c.OcrPollMaxAttempts = 0 }},
		{"too fast polling", func(c *Config) { c.OcrPollInterval = 50 * time.Millisecond }},
		{"non-positive scale", func(c *Config) { c.PdfScale = 0 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := LoadConfig()
			if err != nil {
				t.Fatalf("baseline config invalid: %v", err)
			}
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}
