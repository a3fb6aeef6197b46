// Package config loads everything the API needs from the environment,
// once, at startup. Components receive the resulting struct through their
// constructors; nothing reads os.Getenv after Load returns.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Tracking identifier schemes accepted in TRACKING_SCHEME.
const (
	SchemeRandom     = "random"
	SchemeSequential = "sequential"
)

// Config carries the full runtime configuration of the order API.
type Config struct {
	Port          string
	AllowedOrigin string

	// Ledger (Google Sheets)
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON []byte

	// Payment gateway (Razorpay)
	RazorpayKeyID     string
	RazorpayKeySecret string
	WebhookSecret     string

	// Tracking identifier generation
	TrackingScheme     string
	TrackingPrefix     string
	TrackingStartBatch int
	TrackingRandomLen  int
}

// Load builds a Config from the environment. Credentials the gateway or
// ledger code paths cannot run without fail the load, so misconfiguration
// surfaces at startup rather than on the first order.
func Load() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		AllowedOrigin:      getEnv("ALLOWED_ORIGIN", "*"),
		SpreadsheetID:      os.Getenv("SPREADSHEET_ID"),
		SheetName:          getEnv("SHEET_NAME", "Orders"),
		RazorpayKeyID:      os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret:  os.Getenv("RAZORPAY_KEY_SECRET"),
		WebhookSecret:      os.Getenv("RAZORPAY_WEBHOOK_SECRET"),
		TrackingScheme:     getEnv("TRACKING_SCHEME", SchemeRandom),
		TrackingPrefix:     getEnv("TRACKING_PREFIX", "SPL"),
		TrackingStartBatch: getEnvInt("TRACKING_START_BATCH", 351),
		TrackingRandomLen:  getEnvInt("TRACKING_RANDOM_LENGTH", 6),
	}

	creds, err := loadCredentials()
	if err != nil {
		return nil, err
	}
	cfg.CredentialsJSON = creds

	var missing []string
	if cfg.SpreadsheetID == "" {
		missing = append(missing, "SPREADSHEET_ID")
	}
	if len(cfg.CredentialsJSON) == 0 {
		missing = append(missing, "GOOGLE_CREDENTIALS_JSON (or GOOGLE_CREDENTIALS_FILE)")
	}
	if cfg.RazorpayKeyID == "" {
		missing = append(missing, "RAZORPAY_KEY_ID")
	}
	if cfg.RazorpayKeySecret == "" {
		missing = append(missing, "RAZORPAY_KEY_SECRET")
	}
	if cfg.WebhookSecret == "" {
		missing = append(missing, "RAZORPAY_WEBHOOK_SECRET")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if cfg.TrackingScheme != SchemeRandom && cfg.TrackingScheme != SchemeSequential {
		return nil, fmt.Errorf("unsupported TRACKING_SCHEME %q (want %q or %q)", cfg.TrackingScheme, SchemeRandom, SchemeSequential)
	}

	return cfg, nil
}

// loadCredentials reads the service-account key, preferring the inline
// GOOGLE_CREDENTIALS_JSON variable over a GOOGLE_CREDENTIALS_FILE path.
func loadCredentials() ([]byte, error) {
	if inline := os.Getenv("GOOGLE_CREDENTIALS_JSON"); inline != "" {
		return []byte(inline), nil
	}
	if path := os.Getenv("GOOGLE_CREDENTIALS_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		return data, nil
	}
	return nil, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
