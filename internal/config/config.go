// Package config provides configuration management for ethraw.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/nexeth/ethraw/internal/fileutil"
)

// Config represents the application configuration.
type Config struct {
	Version    int              `yaml:"version"`
	Home       string           `yaml:"home"`
	Derivation DerivationConfig `yaml:"derivation"`
	Output     OutputConfig     `yaml:"output"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// DerivationConfig defines key derivation settings.
type DerivationConfig struct {
	DefaultPath string `yaml:"default_path"`
}

// OutputConfig defines output formatting settings.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	Color         string `yaml:"color"`
	Verbose       bool   `yaml:"verbose"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load reads configuration from the specified file. Missing keys keep
// their default values.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config file path is from validated user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to the specified file.
func Save(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return fileutil.WriteAtomic(path, data, 0o600)
}

// Path returns the default config file path under home.
func Path(home string) string {
	return filepath.Join(home, "config.yaml")
}

// KeystoreDir returns the directory holding encrypted key files.
func KeystoreDir(home string) string {
	return filepath.Join(home, "keys")
}

// GetLoggingLevel returns the configured logging level.
func (c *Config) GetLoggingLevel() string {
	return c.Logging.Level
}

// GetLoggingFile returns the configured log file path.
func (c *Config) GetLoggingFile() string {
	return c.Logging.File
}

// GetOutputFormat returns the default output format.
func (c *Config) GetOutputFormat() string {
	return c.Output.DefaultFormat
}

// IsVerbose returns true if verbose output is enabled.
func (c *Config) IsVerbose() bool {
	return c.Output.Verbose
}

// GetDerivationPath returns the default BIP32 derivation path.
func (c *Config) GetDerivationPath() string {
	return c.Derivation.DefaultPath
}

// DefaultHome returns the default ethraw home directory.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ethraw"
	}
	return filepath.Join(home, ".ethraw")
}

// ExpandHome expands a leading ~/ in path to the user home directory.
func ExpandHome(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
