package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store types
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	USDA      USDAConfig      `mapstructure:"usda"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Store     StoreConfig     `mapstructure:"store"`
	Reference ReferenceConfig `mapstructure:"reference"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// USDAConfig holds USDA API configuration
type USDAConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url"`
	GTINMapPath     string        `mapstructure:"gtin_map_path"`
	RequestsPerHour int           `mapstructure:"requests_per_hour"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// CacheConfig holds the bounded result cache configuration
type CacheConfig struct {
	Capacity        int           `mapstructure:"capacity"`
	FreshnessWindow time.Duration `mapstructure:"freshness_window"`
	FreshnessBonus  int64         `mapstructure:"freshness_bonus"`
	PhraseMemoSize  int           `mapstructure:"phrase_memo_size"`
}

// StoreConfig holds the durable product store configuration
type StoreConfig struct {
	Type       string `mapstructure:"type"` // "memory" or "sqlite"
	SQLitePath string `mapstructure:"sqlite_path"`
	MaxRows    int    `mapstructure:"max_rows"`
}

// ReferenceConfig points at the reference datasets
type ReferenceConfig struct {
	SubstancesPath        string `mapstructure:"substances_path"`
	CommonIngredientsPath string `mapstructure:"common_ingredients_path"`
	CommonRegulatedPath   string `mapstructure:"common_regulated_path"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// Load loads configuration from environment variables and config files
// and validates it.
func Load() (*Config, error) {
	config, err := Read()
	if err != nil {
		return nil, err
	}

	if err := validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Read loads configuration without validating it. Offline tools that never
// call USDA use it so they run without an API key.
func Read() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/foodtrust/")

	// FOODTRUST_CACHE_CAPACITY -> cache.capacity
	v.SetEnvPrefix("FOODTRUST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads a .env file from the working directory if there is one.
// Variables already set in the environment win.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(".env")
}

// setDefaults sets default configuration values. Every key needs a default so
// AutomaticEnv can bind it during Unmarshal.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// USDA defaults
	v.SetDefault("usda.api_key", "")
	v.SetDefault("usda.base_url", "https://api.nal.usda.gov/fdc")
	v.SetDefault("usda.gtin_map_path", "data/gtin_map.json")
	v.SetDefault("usda.requests_per_hour", 1000)
	v.SetDefault("usda.timeout", "10s")

	// Cache defaults
	v.SetDefault("cache.capacity", 1000)
	v.SetDefault("cache.freshness_window", "168h") // 7 days
	v.SetDefault("cache.freshness_bonus", 5)
	v.SetDefault("cache.phrase_memo_size", 4096)

	// Store defaults
	v.SetDefault("store.type", StoreMemory)
	v.SetDefault("store.sqlite_path", "foodtrust.db")
	v.SetDefault("store.max_rows", 1000)

	// Reference data defaults
	v.SetDefault("reference.substances_path", "data/fda_substances.json")
	v.SetDefault("reference.common_ingredients_path", "data/common_ingredients.json")
	v.SetDefault("reference.common_regulated_path", "data/common_regulated.json")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.USDA.APIKey == "" {
		return fmt.Errorf("USDA API key is required (set FOODTRUST_USDA_API_KEY)")
	}

	if config.Store.Type != StoreMemory && config.Store.Type != StoreSQLite {
		return fmt.Errorf("store type must be 'memory' or 'sqlite', got: %s", config.Store.Type)
	}

	if config.Store.Type == StoreSQLite {
		if config.Store.SQLitePath == "" {
			return fmt.Errorf("SQLite path is required when store type is 'sqlite'")
		}
		if config.Store.MaxRows < 1 {
			return fmt.Errorf("store max_rows must be at least 1, got: %d", config.Store.MaxRows)
		}
	}

	if config.Cache.Capacity < 1 {
		return fmt.Errorf("cache capacity must be at least 1, got: %d", config.Cache.Capacity)
	}

	if config.Cache.FreshnessBonus < 0 {
		return fmt.Errorf("cache freshness_bonus must not be negative, got: %d", config.Cache.FreshnessBonus)
	}

	if config.Log.Format != "" && config.Log.Format != "json" && config.Log.Format != "console" {
		return fmt.Errorf("log format must be 'json' or 'console', got: %s", config.Log.Format)
	}

	return nil
}
