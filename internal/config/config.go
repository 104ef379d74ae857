package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// --- Configuration Structures ---

// Config holds the overall application configuration.
type Config struct {
	LogLevel string `toml:"log_level"` // debug, info, warn, error
	LogFile  string `toml:"log_file"`  // Optional; logs go to stderr when empty

	Keywords   KeywordsConfig   `toml:"keywords"`
	Completion CompletionConfig `toml:"completion"`

	// Derived fields (not from TOML)
	Source string `toml:"-"` // Path the config was read from, empty for defaults
}

// KeywordsConfig controls the keyword documentation store.
type KeywordsConfig struct {
	DocsFile string `toml:"docs_file"` // Optional TOML/YAML file overlaid on the bundled docs
}

// CompletionConfig controls completion resolution.
type CompletionConfig struct {
	// FlattenMultiline joins multi-line documents onto one line before the
	// completion cascade runs.
	FlattenMultiline bool `toml:"flatten_multiline"`
}

// --- Loading Logic ---

const configAppName = "sqlhopper" // Used for config directory name

// Environment overrides.
const (
	envLogLevel     = "SQLHOPPER_LOG_LEVEL"
	envKeywordsDocs = "SQLHOPPER_KEYWORD_DOCS"
)

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Default configuration values.
func defaultConfig() Config {
	return Config{
		LogLevel:   "info",
		Completion: CompletionConfig{FlattenMultiline: true},
	}
}

// DefaultPath returns the per-user config location, e.g.
// ~/.config/sqlhopper/config.toml.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configAppName, "config.toml"), nil
}

// LoadConfig loads configuration from a TOML file. An explicit path must
// exist; without one the per-user location is tried and silently skipped when
// absent. Environment variables override file values.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig() // Start with defaults

	explicit := path != ""
	if !explicit {
		// Without a user config dir we run on defaults and env vars
		path, _ = DefaultPath()
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return nil, fmt.Errorf("error decoding config file '%s': %w", path, err)
			}
			cfg.Source = path
		} else if explicit || !os.IsNotExist(err) {
			return nil, fmt.Errorf("error checking config file '%s': %w", path, err)
		}
	}

	// --- Apply Fallbacks and Defaults ---

	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(envKeywordsDocs); v != "" {
		cfg.Keywords.DocsFile = v
	}

	if err := cfg.SetLogLevel(cfg.LogLevel); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SetLogLevel normalizes and validates level before storing it.
func (c *Config) SetLogLevel(level string) error {
	level = strings.ToLower(strings.TrimSpace(level))
	if !validLogLevels[level] {
		return fmt.Errorf("invalid log_level %q (want debug, info, warn or error)", level)
	}
	c.LogLevel = level
	return nil
}
