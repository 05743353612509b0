package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the Sightline service.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	ClickHouse ClickHouseConfig
	Redis      RedisConfig
	Auth       AuthConfig
	RateLimit  RateLimitConfig
	Log        LogConfig
	Metrics    MetricsConfig
	Cache      CacheConfig
}

type ServerConfig struct {
	Addr            string
	Env             string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MinConns        int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// ClickHouseConfig configures the optional analytics store used for
// server-side aggregation. When disabled the service groups raw rows
// in-process instead.
type ClickHouseConfig struct {
	Enabled  bool
	Addr     string
	Database string
	User     string
	Password string
}

type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
}

// AuthConfig configures session-token verification. Tokens are issued
// by the hosted auth provider; this service only verifies them.
type AuthConfig struct {
	JWTSecret  string
	SignInPath string
	SkipPaths  []string
}

type RateLimitConfig struct {
	Enabled  bool
	APIRPS   float64
	APIBurst int
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// CacheConfig controls the Redis response cache for aggregate
// payloads.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:            getEnv("SIGHTLINE_HTTP_ADDR", ":8080"),
			Env:             getEnv("SIGHTLINE_ENV", "development"),
			ShutdownTimeout: getDurationEnv("SIGHTLINE_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getEnv("SIGHTLINE_DB_HOST", "localhost"),
			Port:            getIntEnv("SIGHTLINE_DB_PORT", 5432),
			User:            getEnv("SIGHTLINE_DB_USER", "sightline"),
			Password:        getEnv("SIGHTLINE_DB_PASSWORD", "sightline_secret"),
			DBName:          getEnv("SIGHTLINE_DB_NAME", "sightline"),
			SSLMode:         getEnv("SIGHTLINE_DB_SSLMODE", "disable"),
			MaxConns:        getIntEnv("SIGHTLINE_DB_MAX_CONNS", 25),
			MinConns:        getIntEnv("SIGHTLINE_DB_MIN_CONNS", 5),
			ConnMaxLifetime: getDurationEnv("SIGHTLINE_DB_CONN_LIFETIME", time.Hour),
			ConnMaxIdleTime: getDurationEnv("SIGHTLINE_DB_CONN_IDLE_TIME", 30*time.Minute),
		},
		ClickHouse: ClickHouseConfig{
			Enabled:  getBoolEnv("SIGHTLINE_CLICKHOUSE_ENABLED", false),
			Addr:     getEnv("SIGHTLINE_CLICKHOUSE_ADDR", "localhost:9000"),
			Database: getEnv("SIGHTLINE_CLICKHOUSE_DB", "sightline"),
			User:     getEnv("SIGHTLINE_CLICKHOUSE_USER", "default"),
			Password: getEnv("SIGHTLINE_CLICKHOUSE_PASSWORD", ""),
		},
		Redis: RedisConfig{
			Addr:         getEnv("SIGHTLINE_REDIS_ADDR", "localhost:6379"),
			Password:     getEnv("SIGHTLINE_REDIS_PASSWORD", ""),
			DB:           getIntEnv("SIGHTLINE_REDIS_DB", 0),
			PoolSize:     getIntEnv("SIGHTLINE_REDIS_POOL_SIZE", 50),
			MinIdleConns: getIntEnv("SIGHTLINE_REDIS_MIN_IDLE_CONNS", 5),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("SIGHTLINE_JWT_SECRET", ""),
			SignInPath: getEnv("SIGHTLINE_SIGNIN_PATH", "/auth/signin"),
			SkipPaths:  getSliceEnv("SIGHTLINE_AUTH_SKIP_PATHS", []string{"/health", "/metrics"}),
		},
		RateLimit: RateLimitConfig{
			Enabled:  getBoolEnv("SIGHTLINE_RATE_LIMIT_ENABLED", true),
			APIRPS:   getFloatEnv("SIGHTLINE_RATE_LIMIT_RPS", 100),
			APIBurst: getIntEnv("SIGHTLINE_RATE_LIMIT_BURST", 20),
		},
		Log: LogConfig{
			Level:  getEnv("SIGHTLINE_LOG_LEVEL", "info"),
			Format: getEnv("SIGHTLINE_LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getBoolEnv("SIGHTLINE_METRICS_ENABLED", true),
			Path:    getEnv("SIGHTLINE_METRICS_PATH", "/metrics"),
		},
		Cache: CacheConfig{
			Enabled: getBoolEnv("SIGHTLINE_CACHE_ENABLED", true),
			TTL:     getDurationEnv("SIGHTLINE_CACHE_TTL", 60*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("SIGHTLINE_JWT_SECRET is required")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Helper functions for reading environment variables

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getFloatEnv(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getSliceEnv(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				result = append(result, p)
			}
		}
		return result
	}
	return def
}
