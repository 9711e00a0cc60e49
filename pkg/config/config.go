package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration
type Config struct {
	Environment        string
	ServerPort         int
	RedisURL           string
	JWTSecret          string
	TokenTTL           time.Duration
	LogLevel           string
	CORSAllowedOrigins []string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	AuthRateLimitMax  int
	DirectoryCacheTTL time.Duration
	StatsInterval     time.Duration
	PaymentsPageSize  int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	tokenTTLHours, err := strconv.Atoi(getEnv("TOKEN_TTL_HOURS", "168"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL_HOURS: %w", err)
	}

	authRateLimitMax, err := strconv.Atoi(getEnv("AUTH_RATE_LIMIT_MAX", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTH_RATE_LIMIT_MAX: %w", err)
	}

	cacheTTLSeconds, err := strconv.Atoi(getEnv("DIRECTORY_CACHE_TTL_SECONDS", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid DIRECTORY_CACHE_TTL_SECONDS: %w", err)
	}

	statsIntervalSeconds, err := strconv.Atoi(getEnv("STATS_INTERVAL_SECONDS", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid STATS_INTERVAL_SECONDS: %w", err)
	}

	pageSize, err := strconv.Atoi(getEnv("PAYMENTS_PAGE_SIZE", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYMENTS_PAGE_SIZE: %w", err)
	}

	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerPort:  port,
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		TokenTTL:    time.Duration(tokenTTLHours) * time.Hour,
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: parseCSVEnv("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:5173",
			"http://localhost:3000",
		}),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            dbPort,
		DBUser:            getEnv("DB_USER", "staffdesk"),
		DBPassword:        getEnv("DB_PASSWORD", "dev"),
		DBName:            getEnv("DB_NAME", "staffdesk"),
		DBSSLMode:         getEnv("DB_SSLMODE", "disable"),
		AuthRateLimitMax:  authRateLimitMax,
		DirectoryCacheTTL: time.Duration(cacheTTLSeconds) * time.Second,
		StatsInterval:     time.Duration(statsIntervalSeconds) * time.Second,
		PaymentsPageSize:  pageSize,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseCSVEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
