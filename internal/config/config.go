// Package config loads and persists the engine configuration stored at
// .ctxgov/config.json in the project root.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Dir is the config directory name inside the project root.
const Dir = ".ctxgov"

// Config is the complete engine configuration (v1 schema).
type Config struct {
	Version     int    `json:"version" mapstructure:"version"`
	ProjectRoot string `json:"projectRoot" mapstructure:"projectRoot"`

	Planning PlanningConfig `json:"planning" mapstructure:"planning"`
	Filter   FilterConfig   `json:"filter" mapstructure:"filter"`
	Metrics  MetricsConfig  `json:"metrics" mapstructure:"metrics"`
	Logging  LoggingConfig  `json:"logging" mapstructure:"logging"`
}

// PlanningConfig holds planning pipeline defaults.
type PlanningConfig struct {
	DefaultBudget         int    `json:"defaultBudget" mapstructure:"defaultBudget"`
	DefaultModel          string `json:"defaultModel" mapstructure:"defaultModel"`
	PreferCostSavings     bool   `json:"preferCostSavings" mapstructure:"preferCostSavings"`
	TieredArchitecture    bool   `json:"tieredArchitecture" mapstructure:"tieredArchitecture"`
	RelevanceScoring      bool   `json:"relevanceScoring" mapstructure:"relevanceScoring"`
	AutoFilterPackages    bool   `json:"autoFilterPackages" mapstructure:"autoFilterPackages"`
}

// FilterConfig holds path filter configuration.
type FilterConfig struct {
	CustomIgnores []string `json:"customIgnores" mapstructure:"customIgnores"`
}

// MetricsConfig holds metrics tracking configuration.
type MetricsConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Dir     string `json:"dir" mapstructure:"dir"` // empty: <projectRoot>/.ctxgov
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `json:"level" mapstructure:"level"`
	Format string `json:"format" mapstructure:"format"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Version:     1,
		ProjectRoot: ".",
		Planning: PlanningConfig{
			DefaultBudget:      8000,
			DefaultModel:       "claude-3-sonnet",
			PreferCostSavings:  true,
			TieredArchitecture: true,
			RelevanceScoring:   true,
			AutoFilterPackages: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "human",
		},
	}
}

// LoadConfig loads configuration from projectRoot/.ctxgov/config.json,
// falling back to defaults when the file does not exist.
func LoadConfig(projectRoot string) (*Config, error) {
	v := viper.New()

	v.SetDefault("version", 1)
	v.SetDefault("projectRoot", ".")
	v.SetDefault("planning.defaultBudget", 8000)
	v.SetDefault("planning.defaultModel", "claude-3-sonnet")
	v.SetDefault("planning.preferCostSavings", true)
	v.SetDefault("planning.tieredArchitecture", true)
	v.SetDefault("planning.relevanceScoring", true)
	v.SetDefault("planning.autoFilterPackages", true)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "human")

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(projectRoot, Dir))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration to projectRoot/.ctxgov/config.json.
func (c *Config) Save(projectRoot string) error {
	dir := filepath.Join(projectRoot, Dir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Planning.DefaultBudget <= 0 {
		return &ConfigError{Field: "planning.defaultBudget", Message: "budget must be positive"}
	}
	return nil
}

// ConfigDir returns projectRoot/.ctxgov.
func ConfigDir(projectRoot string) string {
	return filepath.Join(projectRoot, Dir)
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
