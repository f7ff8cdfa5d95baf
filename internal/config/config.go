package config

import (
	"os"
	"strconv"
	"time"

	"cardstock/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server ServerConfig
	Paths  PathConfig
	View   ViewConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
	// AssetVersion tags static assets for cache invalidation; bumping it
	// evicts prior browser cache entries.
	AssetVersion string
}

// PathConfig holds file system paths under which all local state lives
type PathConfig struct {
	DataDir string
}

// ViewConfig holds card rendering and search tuning
type ViewConfig struct {
	PageSize  int
	ChunkSize int
	Debounce  time.Duration
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: loadServerConfig(),
		Paths:  loadPathConfig(),
		View:   loadViewConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:         getEnvOrDefault("CARDSTOCK_PORT", "8080"),
		AssetVersion: getEnvOrDefault("CARDSTOCK_ASSET_VERSION", "v1"),
	}
}

func loadPathConfig() PathConfig {
	return PathConfig{
		DataDir: getEnvOrDefault("CARDSTOCK_DATA_DIR", "./data"),
	}
}

func loadViewConfig() ViewConfig {
	debounceMS := getEnvIntOrDefault("CARDSTOCK_DEBOUNCE_MS", 200)
	return ViewConfig{
		PageSize:  getEnvIntOrDefault("CARDSTOCK_PAGE_SIZE", 30),
		ChunkSize: getEnvIntOrDefault("CARDSTOCK_CHUNK_SIZE", 10),
		Debounce:  time.Duration(debounceMS) * time.Millisecond,
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("CARDSTOCK_PORT must not be empty")
	}
	if config.Paths.DataDir == "" {
		return errors.ConfigInvalid("CARDSTOCK_DATA_DIR must not be empty")
	}
	if config.View.PageSize <= 0 {
		return errors.ConfigInvalid("CARDSTOCK_PAGE_SIZE must be positive")
	}
	if config.View.ChunkSize <= 0 {
		return errors.ConfigInvalid("CARDSTOCK_CHUNK_SIZE must be positive")
	}
	return nil
}

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
