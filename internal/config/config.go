// Package config provides configuration management for fracalc.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration file written by "fracalc config init".
const DefaultFile = ".fracalc.yaml"

// ErrInvalidConfig is returned when a loaded configuration holds unusable values.
var ErrInvalidConfig = errors.New("invalid configuration")

var (
	outputFormats = []string{"text", "json"}
	logLevels     = []string{"disabled", "debug", "info", "warn", "error"}
)

// Config represents the configuration for fracalc.
type Config struct {
	// General settings
	Verbose  bool   `yaml:"verbose,omitempty" json:"verbose,omitempty"`
	LogLevel string `yaml:"logLevel,omitempty" json:"logLevel,omitempty"`

	Output      OutputConfig      `yaml:"output,omitempty" json:"output,omitempty"`
	History     HistoryConfig     `yaml:"history,omitempty" json:"history,omitempty"`
	Interactive InteractiveConfig `yaml:"interactive,omitempty" json:"interactive,omitempty"`
}

// OutputConfig controls how results are printed.
type OutputConfig struct {
	Format string `yaml:"format,omitempty" json:"format,omitempty"`
	Color  bool   `yaml:"color" json:"color"`
	Label  string `yaml:"label,omitempty" json:"label,omitempty"`
}

// HistoryConfig controls the calculation history file.
type HistoryConfig struct {
	Enabled    bool   `yaml:"enabled" json:"enabled"`
	File       string `yaml:"file,omitempty" json:"file,omitempty"`
	MaxEntries int    `yaml:"maxEntries,omitempty" json:"maxEntries,omitempty"`
}

// InteractiveConfig controls the interactive session.
type InteractiveConfig struct {
	Greeting bool `yaml:"greeting" json:"greeting"`
	// ConfirmOnInvalidArgs asks whether to continue interactively when the
	// command-line arguments cannot be parsed.
	ConfirmOnInvalidArgs bool `yaml:"confirmOnInvalidArgs" json:"confirmOnInvalidArgs"`
}

// Default returns a config with default values.
func Default() *Config {
	return &Config{
		LogLevel: "disabled",
		Output: OutputConfig{
			Format: "text",
			Color:  true,
			Label:  "The fraction returned by the operation is:",
		},
		History: HistoryConfig{
			Enabled:    true,
			File:       ".fracalc_history.json",
			MaxEntries: 100,
		},
		Interactive: InteractiveConfig{
			Greeting:             true,
			ConfirmOnInvalidArgs: true,
		},
	}
}

// Load loads configuration from file, falling back to defaults.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	// If no config file specified, try default locations
	if configFile == "" {
		candidates := []string{DefaultFile, ".fracalc.yml"}
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				configFile = candidate

				break
			}
		}
	}

	if configFile != "" {
		if err := cfg.loadFromFile(configFile); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML config file: %w", err)
	}

	return nil
}

// Validate fills empty fields with defaults and rejects unknown enum values.
func (c *Config) Validate() error {
	if c.LogLevel == "" {
		c.LogLevel = "disabled"
	}

	if c.Output.Format == "" {
		c.Output.Format = "text"
	}

	if c.Output.Label == "" {
		c.Output.Label = Default().Output.Label
	}

	if c.History.File == "" {
		c.History.File = ".fracalc_history.json"
	}

	if c.History.MaxEntries <= 0 {
		c.History.MaxEntries = 100
	}

	if !slices.Contains(outputFormats, c.Output.Format) {
		return fmt.Errorf("%w: output format %q (want one of %v)", ErrInvalidConfig, c.Output.Format, outputFormats)
	}

	if !slices.Contains(logLevels, c.LogLevel) {
		return fmt.Errorf("%w: log level %q (want one of %v)", ErrInvalidConfig, c.LogLevel, logLevels)
	}

	return nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0600); err != nil {
		return fmt.Errorf("failed to write YAML config file: %w", err)
	}

	return nil
}
