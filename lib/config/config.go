// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/llio/lib/handle"
)

// EnvironmentVariable names the configuration file for [Load].
const EnvironmentVariable = "LLIO_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for interactive use.
	Development Environment = "development"
	// Production is for unattended use in scripts and services.
	Production Environment = "production"
)

// Config is the llio configuration.
type Config struct {
	Environment Environment `yaml:"environment"`

	Paths   PathsConfig   `yaml:"paths"`
	IO      IOConfig      `yaml:"io"`
	Locking LockingConfig `yaml:"locking"`
	Logging LoggingConfig `yaml:"logging"`

	// Per-environment overrides, applied after the base config.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Paths   *PathsConfig   `yaml:"paths,omitempty"`
	IO      *IOConfig      `yaml:"io,omitempty"`
	Locking *LockingConfig `yaml:"locking,omitempty"`
	Logging *LoggingConfig `yaml:"logging,omitempty"`
}

// PathsConfig configures directory locations.
type PathsConfig struct {
	// Temporary is the base directory for named pipes. Empty means
	// the storage-backed temporary directory found at run time.
	Temporary string `yaml:"temporary"`
}

// IOConfig configures how the command opens and reads files.
type IOConfig struct {
	// Caching is the caching mode name for opened files.
	// Default: all
	Caching string `yaml:"caching"`

	// BufferSize is the size of each scatter buffer in bytes.
	// Default: 65536
	BufferSize int `yaml:"buffer_size"`

	// Buffers is the number of scatter buffers per vectored read.
	// Default: 16
	Buffers int `yaml:"buffers"`
}

// LockingConfig configures byte-range lock acquisition.
type LockingConfig struct {
	// Wait is "infinite" (block until granted) or "immediate" (fail
	// with a timeout if the range is held).
	// Default: infinite (development), immediate (production)
	Wait string `yaml:"wait"`
}

// LoggingConfig configures the command logger.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	// Default: info (development), warn (production)
	Level string `yaml:"level"`
}

// Default returns the default configuration, the base onto which the
// configuration file is loaded.
func Default() *Config {
	return &Config{
		Environment: Development,
		IO: IOConfig{
			Caching:    handle.CachingAll.String(),
			BufferSize: 64 * 1024,
			Buffers:    16,
		},
		Locking: LockingConfig{Wait: "infinite"},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load loads configuration from the file named by LLIO_CONFIG. It
// fails when the variable is not set.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your llio.yaml config file, or use --config flag", EnvironmentVariable)
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

// loadFile merges a single configuration file into c.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// applyEnvironmentOverrides applies the section matching Environment.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Production:
		overrides = c.Production
		if overrides == nil {
			overrides = &ConfigOverrides{
				Locking: &LockingConfig{Wait: "immediate"},
				Logging: &LoggingConfig{Level: "warn"},
			}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.Paths != nil && overrides.Paths.Temporary != "" {
		c.Paths.Temporary = overrides.Paths.Temporary
	}

	if overrides.IO != nil {
		if overrides.IO.Caching != "" {
			c.IO.Caching = overrides.IO.Caching
		}
		if overrides.IO.BufferSize != 0 {
			c.IO.BufferSize = overrides.IO.BufferSize
		}
		if overrides.IO.Buffers != 0 {
			c.IO.Buffers = overrides.IO.Buffers
		}
	}

	if overrides.Locking != nil && overrides.Locking.Wait != "" {
		c.Locking.Wait = overrides.Locking.Wait
	}

	if overrides.Logging != nil && overrides.Logging.Level != "" {
		c.Logging.Level = overrides.Logging.Level
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Paths.Temporary = expandVars(c.Paths.Temporary, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns, looking
// names up in vars first and then the process environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors, reporting all of them.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if _, err := handle.ParseCaching(c.IO.Caching); err != nil {
		errs = append(errs, fmt.Errorf("io.caching: %w", err))
	}
	if c.IO.BufferSize <= 0 {
		errs = append(errs, fmt.Errorf("io.buffer_size must be positive, got %d", c.IO.BufferSize))
	}
	if c.IO.Buffers <= 0 || c.IO.Buffers > handle.MaxBuffers {
		errs = append(errs, fmt.Errorf("io.buffers must be between 1 and %d, got %d", handle.MaxBuffers, c.IO.Buffers))
	}

	if _, err := handle.ParseWait(c.Locking.Wait); err != nil {
		errs = append(errs, fmt.Errorf("locking.wait: %w", err))
	}

	if _, err := parseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Caching returns the configured caching mode.
func (c *Config) Caching() (handle.Caching, error) {
	return handle.ParseCaching(c.IO.Caching)
}

// Wait returns the configured lock deadline.
func (c *Config) Wait() (handle.Deadline, error) {
	return handle.ParseWait(c.Locking.Wait)
}

// LogLevel returns the configured logging level.
func (c *Config) LogLevel() (slog.Level, error) {
	return parseLevel(c.Logging.Level)
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, err
	}
	return level, nil
}

// EnsurePaths creates the configured temporary directory if it does
// not exist.
func (c *Config) EnsurePaths() error {
	if c.Paths.Temporary == "" {
		return nil
	}
	if err := os.MkdirAll(c.Paths.Temporary, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", c.Paths.Temporary, err)
	}
	return nil
}
