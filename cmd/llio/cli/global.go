// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bureau-foundation/llio/lib/config"
)

// GlobalParams is embedded in every command's parameters to provide
// --config and --verbose.
type GlobalParams struct {
	ConfigPath string `json:"-" flag:"config" desc:"configuration file (default: $LLIO_CONFIG)"`
	Verbose    bool   `json:"-" flag:"verbose,v" desc:"log at debug level"`
}

// LoadConfig returns the configuration named by --config, else by
// LLIO_CONFIG, else the defaults. The result is validated.
func (g *GlobalParams) LoadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case g.ConfigPath != "":
		cfg, err = config.LoadFile(g.ConfigPath)
	case os.Getenv(config.EnvironmentVariable) != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Resolve loads the configuration and builds a logger on stderr at the
// configured level, or debug with --verbose.
func (g *GlobalParams) Resolve(stderr io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := g.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, nil, err
	}
	if g.Verbose {
		level = slog.LevelDebug
	}
	return cfg, NewCommandLogger(stderr, level), nil
}
