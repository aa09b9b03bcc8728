package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Logging LogConfig     `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServerConfig holds diagnostic HTTP server configuration.
type ServerConfig struct {
	Port           string        `envconfig:"PORT" default:"8080" yaml:"port"`
	Host           string        `envconfig:"HOST" default:"0.0.0.0" yaml:"host"`
	ScanTimeout    time.Duration `envconfig:"SCAN_TIMEOUT" default:"30s" yaml:"scan_timeout"`
	RateLimitRPS   int           `envconfig:"SERVER_RATE_LIMIT_RPS" default:"0" yaml:"rate_limit_rps"`
	RateLimitBurst int           `envconfig:"SERVER_RATE_LIMIT_BURST" default:"20" yaml:"rate_limit_burst"`
}

// FetchConfig controls how style sheets and pages are re-fetched.
type FetchConfig struct {
	Timeout      time.Duration `envconfig:"FETCH_TIMEOUT" default:"15s" yaml:"timeout"`
	Retries      int           `envconfig:"FETCH_RETRIES" default:"2" yaml:"retries"`
	RetryWait    time.Duration `envconfig:"FETCH_RETRY_WAIT" default:"500ms" yaml:"retry_wait"`
	RetryMaxWait time.Duration `envconfig:"FETCH_RETRY_MAX_WAIT" default:"5s" yaml:"retry_max_wait"`
	RateLimitRPS float64       `envconfig:"FETCH_RATE_LIMIT_RPS" default:"0" yaml:"rate_limit_rps"`
	UserAgent    string        `envconfig:"FETCH_USER_AGENT" default:"sheetguard/1.0" yaml:"user_agent"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" yaml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" yaml:"development"`
}

// MetricsConfig holds Prometheus exposition configuration.
type MetricsConfig struct {
	Enabled bool `envconfig:"METRICS_ENABLED" default:"true" yaml:"enabled"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadFile loads the environment and then overlays the YAML file at path.
// Keys present in the file win; absent keys keep their environment or
// default value.
func LoadFile(path string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate rejects settings the fetch client cannot work with.
func (c *Config) Validate() error {
	if c.Server.ScanTimeout <= 0 {
		return fmt.Errorf("scan timeout must be positive, got %s", c.Server.ScanTimeout)
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %s", c.Fetch.Timeout)
	}
	if c.Fetch.Retries < 0 {
		return fmt.Errorf("fetch retries must not be negative, got %d", c.Fetch.Retries)
	}
	if c.Fetch.RateLimitRPS < 0 {
		return fmt.Errorf("fetch rate limit must not be negative, got %v", c.Fetch.RateLimitRPS)
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8080",
			Host:           "0.0.0.0",
			ScanTimeout:    30 * time.Second,
			RateLimitRPS:   0,
			RateLimitBurst: 20,
		},
		Fetch: FetchConfig{
			Timeout:      15 * time.Second,
			Retries:      2,
			RetryWait:    500 * time.Millisecond,
			RetryMaxWait: 5 * time.Second,
			RateLimitRPS: 0,
			UserAgent:    "sheetguard/1.0",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}
