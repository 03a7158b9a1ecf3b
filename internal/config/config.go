package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the CMLWatch server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Forecast ForecastConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// ForecastConfig carries the forecasting knobs. Defaults come from the
// inspection-planning rules: 3.0 mm minimum safe thickness, a 1.5 safety
// factor, and a 1-6 year inspection cadence.
type ForecastConfig struct {
	MinimumThicknessMM float64
	SafetyFactor       float64
	MinIntervalMonths  int
	MaxIntervalMonths  int
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("CMLWATCH_PORT", 8080),
			Env:  envString("CMLWATCH_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Forecast: ForecastConfig{
			MinimumThicknessMM: envFloat("FORECAST_MIN_THICKNESS_MM", 3.0),
			SafetyFactor:       envFloat("FORECAST_SAFETY_FACTOR", 1.5),
			MinIntervalMonths:  envInt("FORECAST_MIN_INTERVAL_MONTHS", 12),
			MaxIntervalMonths:  envInt("FORECAST_MAX_INTERVAL_MONTHS", 72),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Forecast.MinimumThicknessMM <= 0 {
		return fmt.Errorf("FORECAST_MIN_THICKNESS_MM must be positive, got %g", c.Forecast.MinimumThicknessMM)
	}
	if c.Forecast.SafetyFactor < 1.0 {
		return fmt.Errorf("FORECAST_SAFETY_FACTOR must be at least 1.0, got %g", c.Forecast.SafetyFactor)
	}
	if c.Forecast.MinIntervalMonths < 1 {
		return fmt.Errorf("FORECAST_MIN_INTERVAL_MONTHS must be at least 1, got %d", c.Forecast.MinIntervalMonths)
	}
	if c.Forecast.MaxIntervalMonths < c.Forecast.MinIntervalMonths {
		return fmt.Errorf("FORECAST_MAX_INTERVAL_MONTHS (%d) must not be below FORECAST_MIN_INTERVAL_MONTHS (%d)",
			c.Forecast.MaxIntervalMonths, c.Forecast.MinIntervalMonths)
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
