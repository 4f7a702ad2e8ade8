package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
)

// Config holds all terminal configuration.
type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	Terminal TerminalConfig
	Storage  StorageConfig
	Sync     SyncConfig
	Logger   LoggerConfig
}

// ServerConfig holds the local control-surface listener configuration.
type ServerConfig struct {
	Host string
	Port int
}

// BackendConfig holds order-backend connection configuration.
type BackendConfig struct {
	BaseURL        string
	RequestTimeout int // seconds, applies to non-probe requests
}

// TerminalConfig identifies this terminal to the backend.
type TerminalConfig struct {
	UserID         int
	LocationID     int
	OrderTypeID    int
	TerminalNumber string
}

// StorageConfig holds the embedded database location.
type StorageConfig struct {
	Path string
}

// SyncConfig holds the periodic-loop intervals, all in seconds.
type SyncConfig struct {
	ProbeInterval        int
	ProbeTimeout         int
	CountRefreshInterval int
	DrainPollInterval    int
	CatalogSyncInterval  int
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "127.0.0.1"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Backend: BackendConfig{
			BaseURL:        getEnv("BACKEND_URL", ""),
			RequestTimeout: getEnvAsInt("BACKEND_TIMEOUT", 15),
		},
		Terminal: TerminalConfig{
			UserID:         getEnvAsInt("TERMINAL_USER_ID", 0),
			LocationID:     getEnvAsInt("TERMINAL_LOCATION_ID", 0),
			OrderTypeID:    getEnvAsInt("TERMINAL_ORDER_TYPE_ID", 1),
			TerminalNumber: getEnv("TERMINAL_NUMBER", ""),
		},
		Storage: StorageConfig{
			Path: getEnv("DB_PATH", "data/terminal.db"),
		},
		Sync: SyncConfig{
			ProbeInterval:        getEnvAsInt("PROBE_INTERVAL", 5),
			ProbeTimeout:         getEnvAsInt("PROBE_TIMEOUT", 2),
			CountRefreshInterval: getEnvAsInt("COUNT_REFRESH_INTERVAL", 2),
			DrainPollInterval:    getEnvAsInt("DRAIN_POLL_INTERVAL", 2),
			CatalogSyncInterval:  getEnvAsInt("CATALOG_SYNC_INTERVAL", 300),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend URL is required")
	}

	if u, err := url.Parse(c.Backend.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid backend URL: %s", c.Backend.BaseURL)
	}

	if c.Backend.RequestTimeout < 1 {
		return fmt.Errorf("backend request timeout must be at least 1 second")
	}

	if c.Terminal.UserID < 1 {
		return fmt.Errorf("terminal user ID is required")
	}

	if c.Terminal.LocationID < 1 {
		return fmt.Errorf("terminal location ID is required")
	}

	if c.Terminal.OrderTypeID < 1 {
		return fmt.Errorf("invalid order type ID: %d", c.Terminal.OrderTypeID)
	}

	if c.Terminal.TerminalNumber == "" {
		return fmt.Errorf("terminal number is required")
	}

	if c.Storage.Path == "" {
		return fmt.Errorf("database path is required")
	}

	if c.Sync.ProbeInterval < 1 {
		return fmt.Errorf("probe interval must be at least 1 second")
	}

	if c.Sync.ProbeTimeout < 1 {
		return fmt.Errorf("probe timeout must be at least 1 second")
	}

	if c.Sync.ProbeTimeout > c.Sync.ProbeInterval {
		return fmt.Errorf("probe timeout cannot exceed probe interval")
	}

	if c.Sync.CountRefreshInterval < 1 {
		return fmt.Errorf("count refresh interval must be at least 1 second")
	}

	if c.Sync.DrainPollInterval < 1 {
		return fmt.Errorf("drain poll interval must be at least 1 second")
	}

	if c.Sync.CatalogSyncInterval < 1 {
		return fmt.Errorf("catalog sync interval must be at least 1 second")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	return nil
}

// Address returns the control-surface listen address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
