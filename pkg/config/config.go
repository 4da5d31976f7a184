package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/zpam/hamspam/pkg/learning"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings
const (
	EnvAddress  = "HAMSPAM_ADDRESS"
	EnvLanguage = "HAMSPAM_LANGUAGE"
	EnvRedisURL = "HAMSPAM_REDIS_URL"
	EnvLogLevel = "HAMSPAM_LOG_LEVEL"
)

// Config represents hamspam configuration
type Config struct {
	// HTTP server settings
	Server ServerConfig `yaml:"server"`

	// Classifier model settings
	Model ModelConfig `yaml:"model"`

	// Classification result cache settings
	Cache CacheConfig `yaml:"cache"`

	// Milter server settings
	Milter MilterConfig `yaml:"milter"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address           string `yaml:"address"`
	BodyLimitBytes    int    `yaml:"body_limit_bytes"`
	ReadTimeoutMs     int    `yaml:"read_timeout_ms"`
	WriteTimeoutMs    int    `yaml:"write_timeout_ms"`
	ShutdownTimeoutMs int    `yaml:"shutdown_timeout_ms"`
}

// ModelConfig contains classifier settings
type ModelConfig struct {
	// Snowball stemming language, fixed for the process lifetime
	Language string `yaml:"language"`

	// Maximum examples accepted in one /train_bulk call, 0 = unlimited
	MaxBatchSize int `yaml:"max_batch_size"`
}

// CacheConfig contains Redis result cache settings
type CacheConfig struct {
	Enabled   bool   `yaml:"enabled"`
	RedisURL  string `yaml:"redis_url"`
	KeyPrefix string `yaml:"key_prefix"`
	TTL       string `yaml:"ttl"` // Duration string like "10m"

	// Circuit breaker around Redis calls
	BreakerFailures int    `yaml:"breaker_failures"` // Consecutive failures before opening
	BreakerTimeout  string `yaml:"breaker_timeout"`  // Duration string like "30s"
}

// MilterConfig contains milter server settings
type MilterConfig struct {
	// Enable milter server
	Enabled bool `yaml:"enabled"`

	// Network and address for milter socket
	Network string `yaml:"network"` // "tcp" or "unix"
	Address string `yaml:"address"` // "127.0.0.1:7357" or "/tmp/hamspam.sock"

	// Connection settings
	ReadTimeoutMs  int `yaml:"read_timeout_ms"`
	WriteTimeoutMs int `yaml:"write_timeout_ms"`

	// Header modifications
	HeaderPrefix string `yaml:"header_prefix"` // Prefix for result headers (default: "X-Hamspam-")

	// Response mode
	RejectSpam    bool   `yaml:"reject_spam"`
	RejectMessage string `yaml:"reject_message"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns hamspam default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:           ":3000",
			BodyLimitBytes:    4 * 1024 * 1024,
			ReadTimeoutMs:     10000,
			WriteTimeoutMs:    10000,
			ShutdownTimeoutMs: 10000,
		},
		Model: ModelConfig{
			Language:     "english",
			MaxBatchSize: 10000,
		},
		Cache: CacheConfig{
			Enabled:         false,
			RedisURL:        "redis://localhost:6379",
			KeyPrefix:       "hamspam:classify",
			TTL:             "10m",
			BreakerFailures: 5,
			BreakerTimeout:  "30s",
		},
		Milter: MilterConfig{
			Enabled:        false,
			Network:        "tcp",
			Address:        "127.0.0.1:7357",
			ReadTimeoutMs:  10000,
			WriteTimeoutMs: 10000,
			HeaderPrefix:   "X-Hamspam-",
			RejectSpam:     false,
			RejectMessage:  "",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig loads configuration from file, then applies environment
// overrides. An empty path means defaults plus environment.
func LoadConfig(configPath string) (*Config, error) {
	// Start with defaults
	config := DefaultConfig()

	if configPath != "" {
		// Check if config file exists
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}

		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// ApplyEnv loads a .env file from the working directory if one exists and
// applies HAMSPAM_* overrides
func (c *Config) ApplyEnv() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}

	if v := os.Getenv(EnvAddress); v != "" {
		c.Server.Address = v
	}
	if v := os.Getenv(EnvLanguage); v != "" {
		c.Model.Language = v
	}
	if v := os.Getenv(EnvRedisURL); v != "" {
		c.Cache.RedisURL = v
		c.Cache.Enabled = true
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}

	return nil
}

// SaveConfig saves configuration to file
func (c *Config) SaveConfig(configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server address cannot be empty")
	}

	if c.Server.BodyLimitBytes < 1024 {
		return fmt.Errorf("server body_limit_bytes must be >= 1024")
	}

	if c.Server.ReadTimeoutMs < 0 || c.Server.WriteTimeoutMs < 0 || c.Server.ShutdownTimeoutMs < 0 {
		return fmt.Errorf("server timeouts must not be negative")
	}

	if _, err := learning.NewTokenizer(c.Model.Language); err != nil {
		return fmt.Errorf("model language: %w", err)
	}

	if c.Model.MaxBatchSize < 0 {
		return fmt.Errorf("model max_batch_size must be >= 0")
	}

	// Validate logging
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid logging format: %s", c.Logging.Format)
	}

	// Validate cache settings
	if c.Cache.Enabled {
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("cache redis_url cannot be empty when enabled")
		}

		if ttl, err := time.ParseDuration(c.Cache.TTL); err != nil || ttl <= 0 {
			return fmt.Errorf("cache ttl must be a positive duration: %q", c.Cache.TTL)
		}

		if _, err := time.ParseDuration(c.Cache.BreakerTimeout); err != nil {
			return fmt.Errorf("cache breaker_timeout must be a duration: %q", c.Cache.BreakerTimeout)
		}

		if c.Cache.BreakerFailures < 1 {
			return fmt.Errorf("cache breaker_failures must be >= 1")
		}
	}

	// Validate milter settings
	if c.Milter.Enabled {
		if c.Milter.Network != "tcp" && c.Milter.Network != "unix" {
			return fmt.Errorf("milter network must be 'tcp' or 'unix'")
		}

		if c.Milter.Address == "" {
			return fmt.Errorf("milter address cannot be empty when enabled")
		}

		if c.Milter.ReadTimeoutMs < 1000 {
			return fmt.Errorf("milter read_timeout_ms must be >= 1000")
		}

		if c.Milter.WriteTimeoutMs < 1000 {
			return fmt.Errorf("milter write_timeout_ms must be >= 1000")
		}
	}

	return nil
}

// CacheTTL returns the parsed cache TTL, falling back to ten minutes
func (c *Config) CacheTTL() time.Duration {
	ttl, err := time.ParseDuration(c.Cache.TTL)
	if err != nil || ttl <= 0 {
		return 10 * time.Minute
	}
	return ttl
}

// BreakerTimeout returns the parsed breaker open-state timeout
func (c *Config) BreakerTimeout() time.Duration {
	d, err := time.ParseDuration(c.Cache.BreakerTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// Millis converts a millisecond setting to a duration
func Millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
