package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// All environment variables are read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Market data source
	MarketData MarketDataConfig

	// Pipeline
	Pipeline PipelineConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	URL string

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// MarketDataConfig holds price-history source configuration.
type MarketDataConfig struct {
	ChartURL     string // JSON chart API endpoint
	ArchiveURL   string // HTML daily-quotes page (fallback)
	Timeout      time.Duration
	RateLimit    float64 // requests per second
	LookbackDays int
	CacheTTL     time.Duration
}

// PipelineConfig holds daily-run tuning knobs.
type PipelineConfig struct {
	FetchTimeout   time.Duration // per-symbol budget, timeout counts as fetch failure
	MaxConcurrency int
	Benchmark      string // benchmark index symbol for sector relative strength
}

// Load reads configuration from environment variables.
// Only this function calls os.Getenv.
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8087"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},

		MarketData: MarketDataConfig{
			ChartURL:     getEnv("MARKETDATA_CHART_URL", "https://fchart.stock.naver.com/siseJson.naver"),
			ArchiveURL:   getEnv("MARKETDATA_ARCHIVE_URL", "https://finance.naver.com/item/sise_day.naver"),
			Timeout:      getEnvAsDuration("MARKETDATA_TIMEOUT", "30s"),
			RateLimit:    getEnvAsFloat("MARKETDATA_RATE_LIMIT", 5),
			LookbackDays: getEnvAsInt("MARKETDATA_LOOKBACK_DAYS", 365),
			CacheTTL:     getEnvAsDuration("MARKETDATA_CACHE_TTL", "6h"),
		},

		Pipeline: PipelineConfig{
			FetchTimeout:   getEnvAsDuration("PIPELINE_FETCH_TIMEOUT", "45s"),
			MaxConcurrency: getEnvAsInt("PIPELINE_MAX_CONCURRENCY", 8),
			Benchmark:      getEnv("PIPELINE_BENCHMARK", "^NSEI"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set.
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Pipeline.MaxConcurrency < 1 {
		return fmt.Errorf("PIPELINE_MAX_CONCURRENCY must be at least 1")
	}

	if c.MarketData.RateLimit <= 0 {
		return fmt.Errorf("MARKETDATA_RATE_LIMIT must be positive")
	}

	return nil
}

// loadEnvFile tries to load .env from a few likely locations.
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
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
