// Package config loads and validates editor configuration from a YAML
// file. Missing files yield the defaults.
package config

import (
	"fmt"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Theme names.
const (
	ThemeDefault = "default"
	ThemeMono    = "mono"
)

// Config represents the editor configuration.
type Config struct {
	Editor EditorConfig `yaml:"editor"`
	Search SearchConfig `yaml:"search"`
	Log    LogConfig    `yaml:"log"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Editor.Validate(); err != nil {
		return err
	}
	if err := c.Search.Validate(); err != nil {
		return err
	}
	return c.Log.Validate()
}

// EditorConfig holds display and completion settings.
type EditorConfig struct {
	Theme          string `yaml:"theme"`
	MaxSuggestions int    `yaml:"max_suggestions"`
}

// Validate validates the editor configuration.
func (c *EditorConfig) Validate() error {
	// Normalise empty theme to the default scheme.
	if c.Theme == "" {
		c.Theme = ThemeDefault
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Theme, validation.Required, validation.In(ThemeDefault, ThemeMono)),
		validation.Field(&c.MaxSuggestions, validation.Required, validation.Min(1), validation.Max(50)),
	)
}

// SearchConfig holds find-bar behavior.
type SearchConfig struct {
	DebounceMS    int  `yaml:"debounce_ms"`
	CaseSensitive bool `yaml:"case_sensitive"`
	WholeWord     bool `yaml:"whole_word"`
}

// Validate validates the search configuration.
func (c *SearchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DebounceMS, validation.Min(0), validation.Max(1000)),
	)
}

// LogConfig holds logging configuration. An empty path disables the
// log file.
type LogConfig struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// Validate validates the log configuration.
func (c *LogConfig) Validate() error {
	if c.Level == "" {
		c.Level = "info"
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Level, validation.In("debug", "info", "warn", "error")),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		Editor: EditorConfig{
			Theme:          ThemeDefault,
			MaxSuggestions: 10,
		},
		Search: SearchConfig{
			DebounceMS: 150,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a config file, layering it over the defaults. A missing
// file returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
