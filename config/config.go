// Package config provides configuration management for the application.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Server  ServerConfig
	Admin   AdminConfig
	Storage StorageConfig
	Cache   CacheConfig
	Metrics MetricsConfig
	Catalog CatalogConfig
	Landing LandingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port          string
	BodySizeLimit int64
}

// AdminConfig holds the HTTP basic-auth credentials for the admin API.
// An empty password disables all /api/admin routes.
type AdminConfig struct {
	Username string
	Password string
}

// StorageConfig selects and configures the database backend.
type StorageConfig struct {
	// Type is one of "sqlite", "postgresql", "mongodb"
	Type string

	SQLitePath string

	PostgresURL      string
	PostgresMaxConns int

	MongoURL      string
	MongoDatabase string
}

// CacheConfig configures the testimonial snapshot cache.
type CacheConfig struct {
	// Type is "local" or "redis"
	Type     string
	Path     string
	RedisURL string
	TTL      time.Duration
}

// MetricsConfig holds Prometheus metrics configuration
type MetricsConfig struct {
	Enabled  bool
	Endpoint string
}

// CatalogConfig points at an optional YAML file overriding the built-in
// visa type catalog.
type CatalogConfig struct {
	File string
}

// LandingConfig holds configuration for the landing page server.
type LandingConfig struct {
	Port          string
	BackendURL    string
	WhatsAppPhone string
	PayPalURL     string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() (*Config, error) {
	// Optional .env file, same convention as the original deployment
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("BODY_SIZE_LIMIT", int64(10*1024*1024))
	viper.SetDefault("ADMIN_USERNAME", "admin")
	viper.SetDefault("STORAGE_TYPE", "sqlite")
	viper.SetDefault("SQLITE_PATH", "data/visaserbia.db")
	viper.SetDefault("POSTGRES_MAX_CONNS", 10)
	viper.SetDefault("DB_NAME", "visaserbia")
	viper.SetDefault("CACHE_TYPE", "local")
	viper.SetDefault("CACHE_PATH", ".cache/testimonials.json")
	viper.SetDefault("CACHE_TTL", "5m")
	viper.SetDefault("METRICS_ENDPOINT", "/metrics")
	viper.SetDefault("LANDING_PORT", "3000")
	viper.SetDefault("WHATSAPP_PHONE", "+5355555555")
	viper.SetDefault("PAYPAL_URL", "https://www.paypal.com/paypalme/visaserbia")

	viper.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port:          viper.GetString("PORT"),
			BodySizeLimit: viper.GetInt64("BODY_SIZE_LIMIT"),
		},
		Admin: AdminConfig{
			Username: viper.GetString("ADMIN_USERNAME"),
			Password: viper.GetString("ADMIN_PASSWORD"),
		},
		Storage: StorageConfig{
			Type:             viper.GetString("STORAGE_TYPE"),
			SQLitePath:       viper.GetString("SQLITE_PATH"),
			PostgresURL:      viper.GetString("POSTGRES_URL"),
			PostgresMaxConns: viper.GetInt("POSTGRES_MAX_CONNS"),
			MongoURL:         viper.GetString("MONGO_URL"),
			MongoDatabase:    viper.GetString("DB_NAME"),
		},
		Cache: CacheConfig{
			Type:     viper.GetString("CACHE_TYPE"),
			Path:     viper.GetString("CACHE_PATH"),
			RedisURL: viper.GetString("REDIS_URL"),
			TTL:      viper.GetDuration("CACHE_TTL"),
		},
		Metrics: MetricsConfig{
			Enabled:  viper.GetBool("METRICS_ENABLED"),
			Endpoint: viper.GetString("METRICS_ENDPOINT"),
		},
		Catalog: CatalogConfig{
			File: viper.GetString("VISA_TYPES_FILE"),
		},
		Landing: LandingConfig{
			Port:          viper.GetString("LANDING_PORT"),
			BackendURL:    viper.GetString("BACKEND_URL"),
			WhatsAppPhone: viper.GetString("WHATSAPP_PHONE"),
			PayPalURL:     viper.GetString("PAYPAL_URL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field constraints that viper defaults cannot express.
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when STORAGE_TYPE=sqlite")
		}
	case "postgresql":
		if c.Storage.PostgresURL == "" {
			return fmt.Errorf("POSTGRES_URL is required when STORAGE_TYPE=postgresql")
		}
	case "mongodb":
		if c.Storage.MongoURL == "" {
			return fmt.Errorf("MONGO_URL is required when STORAGE_TYPE=mongodb")
		}
	default:
		return fmt.Errorf("unknown STORAGE_TYPE: %s (valid: sqlite, postgresql, mongodb)", c.Storage.Type)
	}

	switch c.Cache.Type {
	case "local":
		// empty CACHE_PATH disables persistence, still valid
	case "redis":
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when CACHE_TYPE=redis")
		}
	default:
		return fmt.Errorf("unknown CACHE_TYPE: %s (valid: local, redis)", c.Cache.Type)
	}

	if c.Cache.TTL < 0 {
		return fmt.Errorf("CACHE_TTL must not be negative")
	}

	return nil
}
