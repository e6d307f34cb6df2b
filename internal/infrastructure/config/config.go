// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	dbPath := cfg.Storage.DatabasePath
//	endpoint := cfg.Bank.Endpoint
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the entire application configuration
type Config struct {
	Bank          BankConfig          `yaml:"bank"`
	Recon         ReconConfig         `yaml:"recon"`
	Storage       StorageConfig       `yaml:"storage"`
	API           APIConfig           `yaml:"api"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// BankConfig holds bank feed API configuration.
// Password and Token are opaque secrets and must never be logged.
type BankConfig struct {
	Endpoint      string        `yaml:"endpoint"`
	AccountNumber string        `yaml:"account_number"`
	Password      string        `yaml:"password"`
	Token         string        `yaml:"token"`
	Timeout       time.Duration `yaml:"timeout"`
}

// ReconConfig holds reconciliation engine settings
type ReconConfig struct {
	PollInterval    time.Duration `yaml:"poll_interval"`
	AmountTolerance int64         `yaml:"amount_tolerance"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// APIConfig holds HTTP API settings
type APIConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${BANK_TOKEN})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := &Config{
		Bank: BankConfig{
			Endpoint:      os.Getenv("BANK_ENDPOINT"),
			AccountNumber: os.Getenv("BANK_ACCOUNT_NUMBER"),
			Password:      os.Getenv("BANK_PASSWORD"),
			Token:         os.Getenv("BANK_TOKEN"),
			Timeout:       getEnvDuration("BANK_TIMEOUT", 15*time.Second),
		},
		Recon: ReconConfig{
			PollInterval:    getEnvDuration("RECON_POLL_INTERVAL", 2*time.Minute),
			AmountTolerance: int64(getEnvInt("RECON_AMOUNT_TOLERANCE", 100)),
		},
		Storage: StorageConfig{
			DatabasePath: getEnv("RECON_DB_PATH", "recon.db"),
		},
		API: APIConfig{
			Port: getEnvInt("API_PORT", 8080),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}

	cfg.applyDefaults()

	return cfg
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnvWithPath("config.yaml")
}

// LoadOrEnvWithPath tries to load from specified path, falls back to environment variables
func LoadOrEnvWithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

// applyDefaults fills in zero values that have safe non-secret defaults
func (c *Config) applyDefaults() {
	if c.Bank.Timeout <= 0 {
		c.Bank.Timeout = 15 * time.Second
	}
	if c.Recon.PollInterval <= 0 {
		c.Recon.PollInterval = 2 * time.Minute
	}
	if c.Recon.AmountTolerance <= 0 {
		c.Recon.AmountTolerance = 100
	}
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = "recon.db"
	}
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}

// getEnvDuration retrieves a duration environment variable with a fallback default
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
