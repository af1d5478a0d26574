// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/llio/lib/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "llio.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestGlobalParams_DefaultsWithoutConfig(t *testing.T) {
	t.Setenv(config.EnvironmentVariable, "")
	var params GlobalParams
	cfg, err := params.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.IO.Caching != config.Default().IO.Caching {
		t.Errorf("caching = %s", cfg.IO.Caching)
	}
}

func TestGlobalParams_FlagBeatsEnvironment(t *testing.T) {
	t.Setenv(config.EnvironmentVariable, writeConfig(t, "io:\n  caching: reads\n"))
	params := GlobalParams{ConfigPath: writeConfig(t, "io:\n  caching: none\n")}
	cfg, err := params.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.IO.Caching != "none" {
		t.Errorf("caching = %s, want none from --config", cfg.IO.Caching)
	}

	params.ConfigPath = ""
	cfg, err = params.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.IO.Caching != "reads" {
		t.Errorf("caching = %s, want reads from LLIO_CONFIG", cfg.IO.Caching)
	}
}

func TestGlobalParams_InvalidConfig(t *testing.T) {
	params := GlobalParams{ConfigPath: writeConfig(t, "io:\n  buffers: 0\n")}
	if _, err := params.LoadConfig(); err == nil || !strings.Contains(err.Error(), "io.buffers") {
		t.Errorf("LoadConfig error = %v", err)
	}
}

func TestGlobalParams_ResolveLevel(t *testing.T) {
	params := GlobalParams{ConfigPath: writeConfig(t, "logging:\n  level: warn\n")}

	var stderr bytes.Buffer
	_, logger, err := params.Resolve(&stderr)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info enabled at configured level warn")
	}
	logger.Warn("visible")
	if !strings.Contains(stderr.String(), `"msg":"visible"`) {
		t.Errorf("non-terminal output is not JSON: %q", stderr.String())
	}

	params.Verbose = true
	_, logger, err = params.Resolve(&stderr)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("--verbose did not enable debug")
	}
}
