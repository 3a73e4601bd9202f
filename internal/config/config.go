package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string

	PollInterval     time.Duration
	MaxItemsPerCheck int
	LookbackDays     int
	RetentionDays    int
	NotifyDelay      time.Duration
	FetchTimeout     time.Duration

	// ProxyListFile is optional; without it, blocked fetches are not
	// retried because there is nothing to rotate to.
	ProxyListFile string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		RedisURL:         getEnv("REDIS_URL", ""),
		PollInterval:     getEnvDuration("POLL_INTERVAL", 300*time.Second),
		MaxItemsPerCheck: getEnvInt("MAX_ITEMS_PER_CHECK", 10),
		LookbackDays:     getEnvInt("LOOKBACK_DAYS", 7),
		RetentionDays:    getEnvInt("SEEN_RETENTION_DAYS", 30),
		NotifyDelay:      getEnvDuration("NOTIFY_DELAY", time.Second),
		FetchTimeout:     getEnvDuration("FETCH_TIMEOUT", 10*time.Second),
		ProxyListFile:    getEnv("PROXY_LIST_FILE", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}
	if cfg.MaxItemsPerCheck <= 0 {
		return nil, fmt.Errorf("MAX_ITEMS_PER_CHECK must be positive")
	}
	if cfg.RetentionDays <= 0 {
		return nil, fmt.Errorf("SEEN_RETENTION_DAYS must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err == nil {
			return d
		}
	}
	return fallback
}
