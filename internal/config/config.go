// Package config provides configuration management for netinfo.
//
// The configuration is loaded from a YAML file (default: /etc/netinfo/config.yaml).
// JSON files are accepted as well since JSON is a YAML subset.
//
// Configuration Structure:
//   - Platform: resolver configuration path and procfs mount point
//   - Store: BadgerDB path, snapshot retention and recording interval
//   - API: HTTP API and /metrics listener
//   - Metrics: Prometheus namespace
//   - Logging: Log level and file path
//
// Environment variables prefixed NETINFO_ override file values. An optional
// .env file in the working directory is loaded first.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for its configuration file
const DefaultPath = "/etc/netinfo/config.yaml"

// Config represents the complete application configuration
type Config struct {
	Platform PlatformConfig `yaml:"platform" json:"platform"`
	Store    StoreConfig    `yaml:"store" json:"store"`
	API      APIConfig      `yaml:"api" json:"api"`
	Metrics  MetricsConfig  `yaml:"metrics" json:"metrics"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
}

// PlatformConfig points the platform layer at its data sources
type PlatformConfig struct {
	ResolvConf string `yaml:"resolv_conf" json:"resolv_conf"`
	ProcRoot   string `yaml:"proc_root" json:"proc_root"`
}

// StoreConfig contains snapshot history settings
type StoreConfig struct {
	Path      string        `yaml:"path" json:"path"`
	Retention time.Duration `yaml:"retention" json:"retention"`
	Interval  time.Duration `yaml:"interval" json:"interval"`
}

// APIConfig contains API server settings
type APIConfig struct {
	Host               string `yaml:"host" json:"host"`
	Port               int    `yaml:"port" json:"port"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute" json:"rate_limit_per_minute"`
}

// MetricsConfig contains Prometheus exporter settings
type MetricsConfig struct {
	Namespace string `yaml:"namespace" json:"namespace"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Platform: PlatformConfig{
			ResolvConf: "/etc/resolv.conf",
			ProcRoot:   "/proc",
		},
		Store: StoreConfig{
			Path:      "/var/lib/netinfo/db",
			Retention: 7 * 24 * time.Hour,
			Interval:  time.Minute,
		},
		API: APIConfig{
			Host:               "0.0.0.0",
			Port:               9464,
			RateLimitPerMinute: 100,
		},
		Metrics: MetricsConfig{
			Namespace: "netinfo",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	// Start with default configuration
	config := DefaultConfig()

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// LoadOrDefault loads path when it exists and falls back to defaults otherwise
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// ApplyEnv overlays NETINFO_* environment variables, loading envFile first
// when it exists. Variables already set in the process environment win over
// the file.
func (c *Config) ApplyEnv(envFile string) error {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("failed to load %s: %w", envFile, err)
			}
		}
	}

	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	setString("NETINFO_RESOLV_CONF", &c.Platform.ResolvConf)
	setString("NETINFO_PROC_ROOT", &c.Platform.ProcRoot)
	setString("NETINFO_STORE_PATH", &c.Store.Path)
	setString("NETINFO_METRICS_NAMESPACE", &c.Metrics.Namespace)
	setString("NETINFO_LOG_LEVEL", &c.Logging.Level)
	setString("NETINFO_LOG_FILE", &c.Logging.File)

	setString("NETINFO_API_HOST", &c.API.Host)

	if v, ok := os.LookupEnv("NETINFO_STORE_RETENTION"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid NETINFO_STORE_RETENTION: %w", err)
		}
		c.Store.Retention = d
	}
	if v, ok := os.LookupEnv("NETINFO_STORE_INTERVAL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid NETINFO_STORE_INTERVAL: %w", err)
		}
		c.Store.Interval = d
	}
	if v, ok := os.LookupEnv("NETINFO_API_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid NETINFO_API_PORT: %w", err)
		}
		c.API.Port = port
	}

	return c.Validate()
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Platform.ResolvConf == "" {
		return fmt.Errorf("resolv.conf path cannot be empty")
	}
	if c.Platform.ProcRoot == "" {
		return fmt.Errorf("proc root cannot be empty")
	}

	if c.Store.Path == "" {
		return fmt.Errorf("store path cannot be empty")
	}
	if c.Store.Retention < time.Minute {
		return fmt.Errorf("store retention must be at least 1 minute")
	}
	if c.Store.Interval < time.Second {
		return fmt.Errorf("store interval must be at least 1 second")
	}

	// Port 0 lets the kernel pick a free port
	if c.API.Port < 0 || c.API.Port > 65535 {
		return fmt.Errorf("API port must be between 0 and 65535")
	}
	if c.API.RateLimitPerMinute < 1 {
		return fmt.Errorf("API rate limit must be at least 1")
	}

	if c.Metrics.Namespace == "" {
		return fmt.Errorf("metrics namespace cannot be empty")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	// Validate log file directory exists or can be created
	if c.Logging.File != "" {
		logDir := filepath.Dir(c.Logging.File)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return fmt.Errorf("cannot create log directory %s: %w", logDir, err)
		}
	}

	return nil
}
