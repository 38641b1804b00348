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
	Naver     NaverConfig
	Tracking  TrackingConfig
	Storage   StorageConfig
	Cache     CacheConfig
	Scheduler SchedulerConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// NaverConfig holds Naver open API configuration
type NaverConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	BaseURL      string `mapstructure:"base_url"`
}

// Credentials implements domain.CredentialsProvider. ok is false when either
// credential is absent; runs treat that as a fatal precondition.
func (c NaverConfig) Credentials() (id, secret string, ok bool) {
	if c.ClientID == "" || c.ClientSecret == "" {
		return "", "", false
	}
	return c.ClientID, c.ClientSecret, true
}

// TrackingConfig holds pacing and budget parameters for rank lookups
type TrackingConfig struct {
	MaxPages  int           `mapstructure:"max_pages"`  // 1 page = page_size ranks
	PageSize  int           `mapstructure:"page_size"`  // upstream maximum is 100
	PageDelay time.Duration `mapstructure:"page_delay"` // between page requests
	PairDelay time.Duration `mapstructure:"pair_delay"` // between (product, keyword) lookups
}

// StorageConfig holds database configuration
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// CacheConfig holds search-page cache configuration
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// SchedulerConfig holds the periodic run trigger configuration
type SchedulerConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/shoprank/")

	// Environment variable settings
	v.SetEnvPrefix("SHOPRANK")
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

	// Naver defaults. Credentials default to empty so env overrides are
	// visible to Unmarshal; absence fails individual runs, not startup.
	v.SetDefault("naver.base_url", "https://openapi.naver.com")
	v.SetDefault("naver.client_id", "")
	v.SetDefault("naver.client_secret", "")

	// Tracking defaults: 10 pages of 100 = ranks 1..1000, pacing taken
	// from the upstream courtesy interval
	v.SetDefault("tracking.max_pages", 10)
	v.SetDefault("tracking.page_size", 100)
	v.SetDefault("tracking.page_delay", "120ms")
	v.SetDefault("tracking.pair_delay", "100ms")

	// Storage defaults
	v.SetDefault("storage.path", "shoprank.db")

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "10m")

	// Scheduler defaults
	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.interval", "6h")
}

// validate validates the configuration. API credentials are deliberately not
// required here: their absence fails a run, not the process start.
func validate(config *Config) error {
	if config.Tracking.MaxPages <= 0 {
		return fmt.Errorf("tracking max_pages must be positive, got: %d", config.Tracking.MaxPages)
	}

	if config.Tracking.PageSize <= 0 || config.Tracking.PageSize > 100 {
		return fmt.Errorf("tracking page_size must be in 1..100, got: %d", config.Tracking.PageSize)
	}

	if config.Storage.Path == "" {
		return fmt.Errorf("storage path is required (set SHOPRANK_STORAGE_PATH)")
	}

	if config.Scheduler.Enabled && config.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler interval must be positive when enabled, got: %s", config.Scheduler.Interval)
	}

	return nil
}
