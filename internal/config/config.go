// Package config loads lanes settings from defaults, the config file and the
// environment, in increasing order of precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/thenoetrevino/lanes/internal/config/colors"
)

// EnvPrefix prefixes every environment override, e.g. LANES_DATABASE_DRIVER
const EnvPrefix = "LANES"

// ColorScheme is re-exported so callers only import config
type ColorScheme = colors.ColorScheme

// Config represents the application configuration
type Config struct {
	Database    DatabaseConfig  `yaml:"database" mapstructure:"database"`
	Ordering    OrderingConfig  `yaml:"ordering" mapstructure:"ordering"`
	Retry       RetryConfig     `yaml:"retry" mapstructure:"retry"`
	Daemon      DaemonConfig    `yaml:"daemon" mapstructure:"daemon"`
	Telemetry   TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
	KeyMappings KeyMappings     `yaml:"key_mappings" mapstructure:"key_mappings"`
	ColorScheme ColorScheme     `yaml:"theme" mapstructure:"theme"`
}

// DatabaseConfig selects the ticket store
type DatabaseConfig struct {
	// Driver is "sqlite" or "mysql"
	Driver string `yaml:"driver" mapstructure:"driver"`
	// Path is the SQLite file, empty for ~/.lanes/lanes.db
	Path string `yaml:"path" mapstructure:"path"`
	// DSN is the MySQL data source name
	DSN string `yaml:"dsn" mapstructure:"dsn"`
}

// OrderingConfig tunes the ordering engines
type OrderingConfig struct {
	// AutoRebalance lets a reorder rebalance the column and retry once when the gap is exhausted
	AutoRebalance bool `yaml:"auto_rebalance" mapstructure:"auto_rebalance"`
}

// RetryConfig bounds transaction conflict retries
type RetryConfig struct {
	MaxElapsed time.Duration `yaml:"max_elapsed" mapstructure:"max_elapsed"`
}

// DaemonConfig locates the live update daemon
type DaemonConfig struct {
	// SocketPath is empty for ~/.lanes/lanes.sock
	SocketPath string `yaml:"socket_path" mapstructure:"socket_path"`
	// Disabled skips connecting to the daemon entirely
	Disabled bool `yaml:"disabled" mapstructure:"disabled"`
	// BroadcastBuffer and ClientBuffer size the daemon's relay and per-client queues
	BroadcastBuffer int `yaml:"broadcast_buffer" mapstructure:"broadcast_buffer"`
	ClientBuffer    int `yaml:"client_buffer" mapstructure:"client_buffer"`
}

// TelemetryConfig toggles OpenTelemetry export
type TelemetryConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	Stdout  bool `yaml:"stdout" mapstructure:"stdout"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Driver: "sqlite"},
		Retry:    RetryConfig{MaxElapsed: 2 * time.Second},
		Daemon:   DaemonConfig{BroadcastBuffer: 100, ClientBuffer: 10},
		Telemetry: TelemetryConfig{
			Stdout: true,
		},
		KeyMappings: DefaultKeyMappings(),
		// Colors are filled from the preset after loading
		ColorScheme: ColorScheme{Preset: "default"},
	}
}

// Load loads config from the user's config directory.
// Returns the default config, still subject to environment overrides, if the
// file doesn't exist.
func Load() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		configPath = ""
	}
	return LoadFile(configPath)
}

// LoadFile layers defaults, the YAML file at path (skipped when missing) and
// LANES_* environment variables
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// Seeding viper with the marshalled defaults makes every key known, which
	// AutomaticEnv needs to bind nested keys during Unmarshal
	defaults, err := yaml.Marshal(Default())
	if err != nil {
		return nil, err
	}
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	if path != "" {
		if _, statErr := os.Stat(path); statErr == nil {
			v.SetConfigFile(path)
			if err := v.MergeInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		} else if !errors.Is(statErr, os.ErrNotExist) {
			return nil, statErr
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	// Load theme from LANES_THEME_FILE if set
	loadThemeFile(&config)

	// Fill in any missing values with defaults
	config.applyDefaults()

	return &config, nil
}

// loadThemeFile loads and merges theme from LANES_THEME_FILE environment variable
func loadThemeFile(config *Config) {
	themeFile := os.Getenv(EnvPrefix + "_THEME_FILE")
	if themeFile == "" {
		return
	}

	themeData, err := os.ReadFile(themeFile)
	if err != nil {
		return
	}

	var themeConfig struct {
		Theme ColorScheme `yaml:"theme"`
	}

	if yaml.Unmarshal(themeData, &themeConfig) == nil {
		config.ColorScheme.MergeFrom(themeConfig.Theme, true)
	}
}

// Save saves the config to the user's config directory
func (c *Config) Save() error {
	configPath, err := getConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(configPath)
}

// SaveFile writes the config as YAML, creating parent directories
func (c *Config) SaveFile(configPath string) error {
	// Create config directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0o644)
}

// Path returns the config file location, honouring XDG_CONFIG_HOME
func Path() (string, error) {
	return getConfigPath()
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	// Try XDG_CONFIG_HOME first
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "lanes", "config.yaml"), nil
	}

	// Fall back to ~/.config
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".config", "lanes", "config.yaml"), nil
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Retry.MaxElapsed <= 0 {
		c.Retry.MaxElapsed = Default().Retry.MaxElapsed
	}
	c.KeyMappings.applyDefaults()
	c.ColorScheme.ApplyDefaults()
}
