// Package config loads runtime settings from environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/glp-lookup/pkg/client"
	"github.com/Sternrassler/glp-lookup/pkg/logging"
	"github.com/Sternrassler/glp-lookup/pkg/lookup"
)

const (
	defaultHTTPAddr        = ":5000"
	defaultUserAgent       = "glp-lookup/0.1.0"
	defaultRequestTimeout  = 10 * time.Second
	defaultShutdownTimeout = 15 * time.Second
)

// Config stores runtime settings loaded from environment variables.
type Config struct {
	HTTPAddr        string
	StaticDir       string
	ShutdownTimeout time.Duration

	UpstreamBaseURL string
	UserAgent       string
	RequestTimeout  time.Duration
	MaxAttempts     int

	DeviceBatchSize          int
	DeviceCallInterval       time.Duration
	SubscriptionPageSize     int
	SubscriptionPageInterval time.Duration
	SubscriptionConcurrency  int
	SubscriptionMaxPages     int

	RedisURL string
	CacheTTL time.Duration

	LogLevel  logging.LogLevel
	LogPretty bool
}

// Load builds Config from environment variables using stable defaults.
func Load() Config {
	def := lookup.DefaultConfig()
	return Config{
		HTTPAddr:        getenv("HTTP_ADDR", defaultHTTPAddr),
		StaticDir:       getenv("STATIC_DIR", ""),
		ShutdownTimeout: parseDuration("SHUTDOWN_TIMEOUT", defaultShutdownTimeout),

		UpstreamBaseURL: getenv("UPSTREAM_BASE_URL", client.DefaultBaseURL),
		UserAgent:       getenv("USER_AGENT", defaultUserAgent),
		RequestTimeout:  parseDuration("REQUEST_TIMEOUT", defaultRequestTimeout),
		MaxAttempts:     parseInt("MAX_ATTEMPTS", client.DefaultRetryConfig().MaxAttempts),

		DeviceBatchSize:          parseInt("DEVICE_BATCH_SIZE", def.DeviceBatchSize),
		DeviceCallInterval:       parseInterval("DEVICE_CALL_INTERVAL", def.DeviceInterval),
		SubscriptionPageSize:     parseInt("SUBSCRIPTION_PAGE_SIZE", def.PageSize),
		SubscriptionPageInterval: parseInterval("SUBSCRIPTION_PAGE_INTERVAL", def.PageInterval),
		SubscriptionConcurrency:  parseInt("SUBSCRIPTION_CONCURRENCY", def.Concurrency),
		SubscriptionMaxPages:     parseInt("SUBSCRIPTION_MAX_PAGES", def.MaxPages),

		RedisURL: getenv("REDIS_URL", ""),
		CacheTTL: parseInterval("CACHE_TTL", 0),

		LogLevel:  logging.LogLevel(getenv("LOG_LEVEL", string(logging.LevelInfo))),
		LogPretty: parseBool("LOG_PRETTY", false),
	}
}

// Client returns the upstream client configuration. Redis is wired by the caller.
func (c Config) Client() client.Config {
	cfg := client.DefaultConfig(c.UserAgent)
	cfg.BaseURL = c.UpstreamBaseURL
	cfg.Timeout = c.RequestTimeout
	cfg.Retry.MaxAttempts = c.MaxAttempts
	cfg.CacheTTL = c.CacheTTL
	return cfg
}

// Lookup returns the pipeline configuration.
func (c Config) Lookup() lookup.Config {
	return lookup.Config{
		DeviceBatchSize: c.DeviceBatchSize,
		DeviceInterval:  c.DeviceCallInterval,
		PageSize:        c.SubscriptionPageSize,
		PageInterval:    c.SubscriptionPageInterval,
		Concurrency:     c.SubscriptionConcurrency,
		MaxPages:        c.SubscriptionMaxPages,
	}
}

// Logging returns the logger configuration.
func (c Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.LogLevel
	cfg.Pretty = c.LogPretty
	return cfg
}

// CacheEnabled reports whether a response cache is configured.
func (c Config) CacheEnabled() bool {
	return c.RedisURL != "" && c.CacheTTL > 0
}

func getenv(key string, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func parseDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

// parseInterval is parseDuration but accepts "0" to disable pacing or caching.
func parseInterval(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

func parseInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func parseBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return value
}
