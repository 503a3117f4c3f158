package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix prefixes environment overrides, e.g. LABELSYNC_GITHUB_ORGANIZATION
	EnvPrefix = "LABELSYNC"

	configDirName  = ".labelsync"
	configFileName = "config.yaml"
)

// Config represents the labelsync configuration
type Config struct {
	GitHub      GitHubConfig      `yaml:"github" mapstructure:"github"`
	Labels      LabelsConfig      `yaml:"labels" mapstructure:"labels"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Discovery   DiscoveryConfig   `yaml:"discovery" mapstructure:"discovery"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// GitHubConfig represents GitHub-specific configuration
type GitHubConfig struct {
	Token        string `yaml:"token,omitempty" mapstructure:"token"`
	Organization string `yaml:"organization,omitempty" mapstructure:"organization"`
	BaseURL      string `yaml:"base_url,omitempty" mapstructure:"base_url"`
}

// LabelsConfig locates the desired label document
type LabelsConfig struct {
	ConfigRepository string `yaml:"config_repository" mapstructure:"config_repository"`
	File             string `yaml:"file" mapstructure:"file"`
}

// ConcurrencyConfig bounds concurrent work
type ConcurrencyConfig struct {
	Repositories int `yaml:"repositories" mapstructure:"repositories"`
	Requests     int `yaml:"requests" mapstructure:"requests"`
}

// DiscoveryConfig configures organization repository discovery
type DiscoveryConfig struct {
	PageSize       int `yaml:"page_size" mapstructure:"page_size"`
	MaxFailedPages int `yaml:"max_failed_pages" mapstructure:"max_failed_pages"`
}

// LogConfig configures logging
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Defaults returns the default value of every configuration key
func Defaults() map[string]any {
	return map[string]any{
		"github.token":               "",
		"github.organization":        "",
		"github.base_url":            "",
		"labels.config_repository":   ".github",
		"labels.file":                "labels.json",
		"concurrency.repositories":   5,
		"concurrency.requests":       20,
		"discovery.page_size":        100,
		"discovery.max_failed_pages": 3,
		"log.level":                  "info",
		"log.format":                 "auto",
	}
}

// DefaultConfig returns a configuration holding only default values
func DefaultConfig() *Config {
	return &Config{
		Labels: LabelsConfig{
			ConfigRepository: ".github",
			File:             "labels.json",
		},
		Concurrency: ConcurrencyConfig{
			Repositories: 5,
			Requests:     20,
		},
		Discovery: DiscoveryConfig{
			PageSize:       100,
			MaxFailedPages: 3,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// LoadConfig loads configuration from the default location
func LoadConfig() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	return LoadConfigFromPath(configPath)
}

// LoadConfigFromPath loads configuration from a specific path, applying
// defaults and LABELSYNC_* environment overrides. A missing file yields the
// defaults.
func LoadConfigFromPath(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveConfig saves configuration to the default location
func (c *Config) SaveConfig() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	return c.SaveConfigToPath(configPath)
}

// SaveConfigToPath saves configuration to a specific path
func (c *Config) SaveConfigToPath(path string) error {
	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file may hold a token.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, configDirName, configFileName), nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Concurrency.Repositories < 1 {
		return fmt.Errorf("concurrency.repositories must be at least 1")
	}

	if c.Concurrency.Requests < 1 {
		return fmt.Errorf("concurrency.requests must be at least 1")
	}

	if c.Discovery.PageSize < 1 || c.Discovery.PageSize > 100 {
		return fmt.Errorf("discovery.page_size must be between 1 and 100")
	}

	if c.Discovery.MaxFailedPages < 1 {
		return fmt.Errorf("discovery.max_failed_pages must be at least 1")
	}

	if c.Labels.File == "" {
		return fmt.Errorf("labels.file is required")
	}

	if c.Labels.ConfigRepository == "" {
		return fmt.Errorf("labels.config_repository is required")
	}

	return nil
}
