package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds application configuration.
type Config struct {
	// Server
	ServerAddr string
	ServerPort int

	// JWT
	JWTSecret       string
	JWTIssuer       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// RotateRefreshTokens makes /auth/refresh issue a new refresh token
	// on every exchange. Off by default: clients then keep reusing the
	// one issued at login.
	RotateRefreshTokens bool

	// Rate limiting for /auth/login
	RateLimit RateLimitConfig

	// Client (SDK / CLI console)
	APIBaseURL  string
	TokenFile   string
	HTTPTimeout time.Duration
}

// RateLimitConfig holds login rate-limit knobs.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerWindow int
	WindowMinutes     int
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		// Server defaults
		ServerAddr: getEnv("SERVER_ADDR", "0.0.0.0"),
		ServerPort: getEnvInt("SERVER_PORT", 8080),

		// JWT defaults
		JWTSecret:           getEnv("JWT_SECRET", ""),
		JWTIssuer:           getEnv("JWT_ISSUER", "medsched"),
		AccessTokenTTL:      getEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL:     getEnvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		RotateRefreshTokens: getEnvBool("ROTATE_REFRESH_TOKENS", false),

		RateLimit: RateLimitConfig{
			Enabled:           getEnvBool("RATE_LIMIT_ENABLED", true),
			RequestsPerWindow: getEnvInt("LOGIN_REQUESTS_PER_WINDOW", 10),
			WindowMinutes:     getEnvInt("LOGIN_WINDOW_MINUTES", 1),
		},

		// Client defaults
		APIBaseURL:  getEnv("API_BASE_URL", "http://localhost:8080"),
		TokenFile:   getEnv("TOKEN_FILE", defaultTokenFile()),
		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 30*time.Second),
	}

	// Validate required fields
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// LoadClient loads only the client-side configuration; it does not
// require JWT_SECRET.
func LoadClient() *Config {
	return &Config{
		APIBaseURL:  getEnv("API_BASE_URL", "http://localhost:8080"),
		TokenFile:   getEnv("TOKEN_FILE", defaultTokenFile()),
		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 30*time.Second),
	}
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".medsched-tokens.json"
	}
	return filepath.Join(dir, "medsched", "tokens.json")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
