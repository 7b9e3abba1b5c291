package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	LLM       LLMConfig
	Auth      AuthConfig
	Database  DatabaseConfig
	Catalog   CatalogConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LLMConfig holds model API configuration
type LLMConfig struct {
	APIKey            string `mapstructure:"api_key"`
	BaseURL           string `mapstructure:"base_url"`
	Model             string `mapstructure:"model"`
	MaxSteps          int    `mapstructure:"max_steps"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
}

// AuthConfig holds session signing configuration
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// DatabaseConfig holds sqlite configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// CatalogConfig holds catalog import configuration
type CatalogConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// CacheConfig holds parse-result cache configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/sparradar/")

	// Environment variable settings
	v.SetEnvPrefix("SPARRADAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// LLM defaults
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.max_steps", 5)
	v.SetDefault("llm.requests_per_minute", 60)

	// Database defaults
	v.SetDefault("database.path", "db.sqlite")

	// Catalog defaults
	v.SetDefault("catalog.data_dir", "data")

	// Cache defaults
	v.SetDefault("cache.ttl", "24h")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.LLM.APIKey == "" {
		return fmt.Errorf("LLM API key is required (set SPARRADAR_LLM_API_KEY)")
	}

	if config.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required (set SPARRADAR_AUTH_JWT_SECRET)")
	}

	if config.LLM.MaxSteps < 1 {
		return fmt.Errorf("llm.max_steps must be at least 1, got: %d", config.LLM.MaxSteps)
	}

	return nil
}
