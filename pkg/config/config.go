package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds process-level configuration for the quant engine.
// Engine thresholds live in the YAML engine config (internal/engineconfig);
// this struct only carries what differs per deployment.
type Config struct {
	Env string // development, staging, production

	// EngineConfigPath points at the YAML file with scoring/draft/scanner thresholds.
	// Empty means built-in defaults.
	EngineConfigPath string

	Database DatabaseConfig
	Redis    RedisConfig
	QuoteAPI QuoteAPIConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Ops server (/health, /metrics)
	MetricsEnabled bool
	MetricsAddr    string

	// Scan/score fan-out
	Workers int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
	Prefix   string
}

// QuoteAPIConfig points the signal auditor at an HTTP quote service.
type QuoteAPIConfig struct {
	URL        string
	Timeout    time.Duration
	MaxRetries int
}

// Enabled reports whether a quote service URL was configured.
func (q QuoteAPIConfig) Enabled() bool {
	return q.URL != ""
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether a database URL was configured.
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// Load reads configuration from environment variables (and .env when present).
// Only this file calls os.Getenv.
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Env:              getEnv("ENV", "development"),
		EngineConfigPath: getEnv("ENGINE_CONFIG", ""),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Prefix:   getEnv("REDIS_PREFIX", "quant"),
		},

		QuoteAPI: QuoteAPIConfig{
			URL:        getEnv("QUOTE_API_URL", ""),
			Timeout:    getEnvAsDuration("QUOTE_API_TIMEOUT", "10s"),
			MaxRetries: getEnvAsInt("QUOTE_API_RETRIES", 3),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		MetricsAddr:    getEnv("METRICS_ADDR", ":9090"),

		Workers: getEnvAsInt("ENGINE_WORKERS", 8),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// RequireDatabase fails when a command that persists results runs without DATABASE_URL.
func (c *Config) RequireDatabase() error {
	if !c.Database.Enabled() {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}
	if c.Workers < 1 {
		return fmt.Errorf("ENGINE_WORKERS must be >= 1")
	}
	if c.QuoteAPI.MaxRetries < 0 {
		return fmt.Errorf("QUOTE_API_RETRIES must be >= 0")
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS must not exceed DB_MAX_CONNS")
	}
	return nil
}

// loadEnvFile tries to load .env from the working directory or next to the executable
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
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

func getEnvAsBool(key string, defaultValue bool) bool {
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

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
