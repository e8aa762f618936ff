package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all configuration for the application
// Following 12-factor app principles, all config is loaded from environment variables
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Pricing  PricingConfig
	Events   EventsConfig
	Storage  StorageConfig
	Client   ClientConfig
	Catalog  CatalogConfig
	LogLevel string
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
	AllowedOrigins  []string
}

type AuthConfig struct {
	APIKeys []string // Valid API keys for authentication
}

type PricingConfig struct {
	DeliveryFee  decimal.Decimal
	TaxRate      decimal.Decimal
	DistanceFees bool
}

// EventsConfig points at the RabbitMQ broker. An empty URL disables events.
type EventsConfig struct {
	AMQPURL  string
	Exchange string
}

// StorageConfig selects where the client keeps its cart
type StorageConfig struct {
	Driver      string // memory, sqlite or postgres
	SQLitePath  string
	PostgresDSN string
	Namespace   string
}

// ClientConfig is used by cartctl to reach the backend
type ClientConfig struct {
	BaseURL      string
	APIKey       string
	Timeout      time.Duration
	PollInterval time.Duration
}

type CatalogConfig struct {
	File string // empty means the built-in fixture
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			ReadTimeout:     getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout:    getEnvAsInt("WRITE_TIMEOUT", 15),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 30),
			AllowedOrigins:  getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Auth: AuthConfig{
			APIKeys: getEnvAsSlice("API_KEYS", []string{"apitest"}),
		},
		Pricing: PricingConfig{
			DeliveryFee:  getEnvAsDecimal("DELIVERY_FEE", decimal.NewFromInt(50)),
			TaxRate:      getEnvAsDecimal("TAX_RATE", decimal.RequireFromString("0.05")),
			DistanceFees: getEnvAsBool("DISTANCE_FEES", false),
		},
		Events: EventsConfig{
			AMQPURL:  getEnv("AMQP_URL", ""),
			Exchange: getEnv("EVENTS_EXCHANGE", "fooddelivery.events"),
		},
		Storage: StorageConfig{
			Driver:      strings.ToLower(getEnv("CART_STORAGE", "sqlite")),
			SQLitePath:  getEnv("CART_SQLITE_PATH", defaultSQLitePath()),
			PostgresDSN: getEnv("CART_POSTGRES_DSN", ""),
			Namespace:   getEnv("CART_NAMESPACE", "default"),
		},
		Client: ClientConfig{
			BaseURL:      getEnv("API_BASE_URL", "http://localhost:8080/api/v1"),
			APIKey:       getEnv("API_KEY", "apitest"),
			Timeout:      getEnvAsDuration("API_TIMEOUT", 10*time.Second),
			PollInterval: getEnvAsDuration("TRACK_POLL_INTERVAL", 5*time.Second),
		},
		Catalog: CatalogConfig{
			File: getEnv("CATALOG_FILE", ""),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if len(c.Auth.APIKeys) == 0 {
		return fmt.Errorf("at least one API key must be configured")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	if c.Pricing.DeliveryFee.IsNegative() {
		return fmt.Errorf("DELIVERY_FEE must not be negative")
	}
	if c.Pricing.TaxRate.IsNegative() || c.Pricing.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("TAX_RATE must be between 0 and 1")
	}

	switch c.Storage.Driver {
	case "memory":
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("CART_SQLITE_PATH is required for sqlite storage")
		}
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("CART_POSTGRES_DSN is required for postgres storage")
		}
	default:
		return fmt.Errorf("invalid cart storage: %s (must be memory, sqlite, or postgres)", c.Storage.Driver)
	}

	if c.Client.PollInterval <= 0 {
		return fmt.Errorf("TRACK_POLL_INTERVAL must be positive")
	}

	return nil
}

func defaultSQLitePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "cart.db"
	}
	return dir + string(os.PathSeparator) + "fooddelivery" + string(os.PathSeparator) + "cart.db"
}

// Helper functions for reading environment variables

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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := decimal.NewFromString(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
