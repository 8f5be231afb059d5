package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string
	LogFormat  string
	RedisURL   string

	// EvalServiceURL is the base URL of the external AI evaluation service
	// that performs PDF question extraction, answer grading, explanation
	// generation and company research. All AI work is delegated there.
	EvalServiceURL string
	EvalTimeout    time.Duration

	MaxUploadBytes int64

	// DefaultDurationMinutes seeds the countdown for sessions that were
	// never explicitly started with a duration.
	DefaultDurationMinutes int

	// SessionTTL bounds how long abandoned session snapshots survive in
	// Redis. Zero disables expiry.
	SessionTTL time.Duration

	// CompanyModeEnabled toggles the experimental company-based assessment
	// endpoints.
	CompanyModeEnabled bool

	// ReportFontPath is the TTF font used for PDF report rendering.
	ReportFontPath string

	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // Ignore error — .env is optional

	return &Config{
		ServerPort:             getEnv("SERVER_PORT", "8080"),
		GinMode:                getEnv("GIN_MODE", "debug"),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		LogFormat:              getEnv("LOG_FORMAT", "pretty"),
		RedisURL:               getEnv("REDIS_URL", "redis://localhost:6379/0"),
		EvalServiceURL:         getEnv("EVAL_SERVICE_URL", "http://localhost:9090"),
		EvalTimeout:            time.Duration(getEnvInt("EVAL_TIMEOUT_SECONDS", 60)) * time.Second,
		MaxUploadBytes:         int64(getEnvInt("MAX_UPLOAD_SIZE_MB", 10)) * 1024 * 1024,
		DefaultDurationMinutes: getEnvInt("DEFAULT_DURATION_MINUTES", 30),
		SessionTTL:             time.Duration(getEnvInt("SESSION_TTL_HOURS", 72)) * time.Hour,
		CompanyModeEnabled:     getEnvBool("COMPANY_MODE_ENABLED", true),
		ReportFontPath:         getEnv("REPORT_FONT_PATH", "./assets/fonts/DejaVuSans.ttf"),
		AllowedOrigins:         parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
