package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/splinetool/pkg/encoding"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	// Start with defaults
	cfg := Default()

	// Try to load from file (explicit path takes priority)
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	// Apply CLI flags (highest priority)
	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid config")

// Validate rejects settings the spline core cannot use.
func (c *Config) Validate() error {
	if c.Spline.Resolution < 1 {
		return fmt.Errorf("%w: spline.resolution must be positive, got %d", ErrInvalid, c.Spline.Resolution)
	}
	if !(c.Spline.SampleStep > 0) {
		return fmt.Errorf("%w: spline.sample_step must be positive, got %v", ErrInvalid, c.Spline.SampleStep)
	}
	return nil
}

// Resolve returns path joined to the data directory unless it is absolute.
func (c *Config) Resolve(path string) string {
	if c.Data.Dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Data.Dir, path)
}

// appName names the per-user config directory.
const appName = "splinetool"

// findConfigFile returns the first existing config file: splinetool.yaml in
// the working directory, then config.yaml in ConfigDir.
func findConfigFile() string {
	for _, path := range []string{appName + ".yaml", filepath.Join(ConfigDir(), "config.yaml")} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the per-user config directory for splinetool, falling
// back to ~/.config when the platform has none.
func ConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName)
}

// loadFromFile merges a YAML file into cfg. Unknown keys are errors so a
// misspelt setting does not silently fall back to its default.
func loadFromFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(encoding.NewReader(f))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
