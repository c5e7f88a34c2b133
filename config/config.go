// Package config loads runtime settings for the paysheet binaries.
//
// Sources, lowest to highest precedence: defaults, an optional YAML file,
// a .env file in the working directory, and PAYSHEET_* environment variables.
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

// EnvPrefix prefixes every environment variable, e.g. PAYSHEET_STORE_DRIVER
const EnvPrefix = "PAYSHEET"

// Store drivers
const (
	DriverMemory   = "memory"
	DriverBolt     = "bolt"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Sentinel errors for Validate
var (
	ErrMissingPublishableKey = errors.New("publishable_key is required")
	ErrUnknownStoreDriver    = errors.New("unknown store driver")
	ErrMissingBoltPath       = errors.New("store.bolt_path is required for the bolt driver")
	ErrMissingRedisAddr      = errors.New("store.redis_addr is required for the redis driver")
	ErrMissingPostgresDSN    = errors.New("store.postgres_dsn is required for the postgres driver")
	ErrInvalidRetries        = errors.New("max_network_retries cannot be negative")
)

// Config holds all runtime settings
type Config struct {
	PublishableKey    string        `mapstructure:"publishable_key"`
	StripeAccount     string        `mapstructure:"stripe_account"`
	APIBaseURL        string        `mapstructure:"api_base_url"`
	MaxNetworkRetries int64         `mapstructure:"max_network_retries"`
	Timeout           time.Duration `mapstructure:"timeout"`
	DurableSelection  bool          `mapstructure:"durable_selection"`
	SupportedTypes    []string      `mapstructure:"supported_types"`
	Store             StoreConfig   `mapstructure:"store"`
	HTTP              HTTPConfig    `mapstructure:"http"`
}

// StoreConfig selects and configures the selection store
type StoreConfig struct {
	Driver        string        `mapstructure:"driver"`
	BoltPath      string        `mapstructure:"bolt_path"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	RedisTTL      time.Duration `mapstructure:"redis_ttl"`
	PostgresDSN   string        `mapstructure:"postgres_dsn"`
}

// HTTPConfig configures the serve command
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// setDefaults registers every key so environment variables bind during Unmarshal
func setDefaults(v *viper.Viper) {
	v.SetDefault("publishable_key", "")
	v.SetDefault("stripe_account", "")
	v.SetDefault("api_base_url", "")
	v.SetDefault("max_network_retries", 2)
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("durable_selection", false)
	v.SetDefault("supported_types", []string{"card"})
	v.SetDefault("store.driver", DriverMemory)
	v.SetDefault("store.bolt_path", "paysheet.db")
	v.SetDefault("store.redis_addr", "")
	v.SetDefault("store.redis_password", "")
	v.SetDefault("store.redis_db", 0)
	v.SetDefault("store.redis_ttl", time.Duration(0))
	v.SetDefault("store.postgres_dsn", "")
	v.SetDefault("http.addr", ":8080")
}

// Load reads configuration. path may be empty to skip the YAML file.
func Load(path string) (*Config, error) {
	// A missing .env is normal outside development
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Validate checks required settings for the selected store driver
func (c *Config) Validate() error {
	if c.PublishableKey == "" {
		return ErrMissingPublishableKey
	}
	if c.MaxNetworkRetries < 0 {
		return ErrInvalidRetries
	}

	switch c.Store.Driver {
	case DriverMemory, "":
	case DriverBolt:
		if c.Store.BoltPath == "" {
			return ErrMissingBoltPath
		}
	case DriverRedis:
		if c.Store.RedisAddr == "" {
			return ErrMissingRedisAddr
		}
	case DriverPostgres:
		if c.Store.PostgresDSN == "" {
			return ErrMissingPostgresDSN
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStoreDriver, c.Store.Driver)
	}
	return nil
}
