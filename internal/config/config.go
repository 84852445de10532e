package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	PublicBaseURL string
	DatabaseURL   string

	// Inbound lead webhook
	WebhookSecret    string
	WebhookRateLimit float64
	WebhookRateBurst int

	// Admin surface
	AdminSecret string

	// Dashboard tokens
	TokenDefaultDays int

	// Clinic feed sync
	ClinicFeedURL      string
	ClinicFeedTimeout  time.Duration
	ClinicSyncEnabled  bool
	ClinicSyncInterval time.Duration

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),

		WebhookSecret:    getEnv("WEBHOOK_SECRET", ""),
		WebhookRateLimit: getEnvAsFloat("WEBHOOK_RATE_LIMIT", 5),
		WebhookRateBurst: getEnvAsInt("WEBHOOK_RATE_BURST", 20),

		AdminSecret: getEnv("ADMIN_SECRET", ""),

		TokenDefaultDays: getEnvAsInt("TOKEN_DEFAULT_DAYS", 365),

		ClinicFeedURL:      getEnv("CLINIC_FEED_URL", ""),
		ClinicFeedTimeout:  getEnvAsDuration("CLINIC_FEED_TIMEOUT", 10*time.Second),
		ClinicSyncEnabled:  getEnvAsBool("CLINIC_SYNC_ENABLED", true),
		ClinicSyncInterval: getEnvAsDuration("CLINIC_SYNC_INTERVAL", 5*time.Minute),

		CORSAllowedOrigins: splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitAndTrim(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
