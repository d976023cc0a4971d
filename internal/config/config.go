package config

import (
	"os"
	"strconv"
	"time"

	"climindex/domain/grid"
	"climindex/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Compute  ComputeConfig
	LogLevel string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port           string
	RequestTimeout time.Duration
}

// ComputeConfig holds the defaults applied to indice computations
type ComputeConfig struct {
	OutUnit       grid.OutUnit
	FillValue     float64
	BatchCapacity int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:   *loadServerConfig(),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	computeConfig, err := loadComputeConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load compute configuration")
	}
	config.Compute = *computeConfig

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:           getEnvOrDefault("PORT", "8080"),
		RequestTimeout: getEnvDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
	}
}

func loadComputeConfig() (*ComputeConfig, error) {
	unit, err := grid.ParseOutUnit(os.Getenv("OUT_UNIT"))
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}

	return &ComputeConfig{
		OutUnit:       unit,
		FillValue:     getEnvFloatOrDefault("FILL_VALUE", 1e20),
		BatchCapacity: getEnvIntOrDefault("BATCH_CAPACITY", 4),
	}, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Server.RequestTimeout <= 0 {
		return errors.ConfigInvalid("request timeout must be positive")
	}
	if config.Compute.BatchCapacity < 1 {
		return errors.ConfigInvalid("batch capacity must be at least 1")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
