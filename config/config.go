package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Cache       CacheConfig
	Models      ModelsConfig
	Recommender RecommenderConfig
	Assistant   AssistantConfig
	RateLimit   RateLimitConfig
	Log         LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig selects the store behind the product, customer, order and chat repositories
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // "sqlite" or "postgres"
	DSN    string `mapstructure:"dsn"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"` // catalog snapshot lifetime
}

// ModelsConfig points at the trained model artifacts
type ModelsConfig struct {
	RulesPath      string `mapstructure:"rules_path"`
	ClassifierPath string `mapstructure:"classifier_path"`
}

// RecommenderConfig holds association-rule recommender defaults
type RecommenderConfig struct {
	DefaultMetric string         `mapstructure:"default_metric"`
	DefaultTopN   int            `mapstructure:"default_top_n"`
	Placements    map[string]int `mapstructure:"placements"`
}

// AssistantConfig holds chat assistant configuration
type AssistantConfig struct {
	EntityThreshold float64      `mapstructure:"entity_threshold"`
	FallbackSample  int          `mapstructure:"fallback_sample"`
	Gemini          GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds generative backend credentials and behavior
type GeminiConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	MaxRetries int    `mapstructure:"max_retries"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP  int     `mapstructure:"per_ip"` // requests per minute
	Gemini float64 `mapstructure:"gemini"` // requests per second
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "console" or "json"
}

// Load loads configuration from an optional .env file, config files and environment variables
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/auroramart/")

	// AURORA_MODELS_RULES_PATH overrides models.rules_path
	v.SetEnvPrefix("AURORA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile exports the variables of ./.env, if present, without overriding the environment
func loadEnvFile() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error reading .env file: %w", err)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"https://shop.auroramart.sg", "http://localhost:3000"})

	// Database defaults
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "auroramart.db")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "1h")

	// Model artifact defaults
	v.SetDefault("models.rules_path", "mlmodels/association_rules.json")
	v.SetDefault("models.classifier_path", "mlmodels/customer_category_tree.json")

	// Recommender defaults
	v.SetDefault("recommender.default_metric", "lift")
	v.SetDefault("recommender.default_top_n", 5)
	v.SetDefault("recommender.placements.homepage", 8)
	v.SetDefault("recommender.placements.product_detail", 4)
	v.SetDefault("recommender.placements.cart", 3)
	v.SetDefault("recommender.placements.category", 6)

	// Assistant defaults
	v.SetDefault("assistant.entity_threshold", 80)
	v.SetDefault("assistant.fallback_sample", 5)
	v.SetDefault("assistant.gemini.api_key", "")
	v.SetDefault("assistant.gemini.model", "gemini-2.5-flash")
	v.SetDefault("assistant.gemini.max_retries", 3)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.gemini", 1.0)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Database.Driver != "sqlite" && config.Database.Driver != "postgres" {
		return fmt.Errorf("database driver must be 'sqlite' or 'postgres', got: %s", config.Database.Driver)
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if config.Models.ClassifierPath == "" {
		return fmt.Errorf("classifier path is required (set AURORA_MODELS_CLASSIFIER_PATH)")
	}

	if config.Assistant.EntityThreshold <= 0 || config.Assistant.EntityThreshold > 100 {
		return fmt.Errorf("assistant entity threshold must be above 0 and at most 100, got: %v", config.Assistant.EntityThreshold)
	}

	switch config.Recommender.DefaultMetric {
	case "confidence", "lift", "support":
	default:
		return fmt.Errorf("recommender default metric must be 'confidence', 'lift' or 'support', got: %s",
			config.Recommender.DefaultMetric)
	}

	return nil
}
