// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/llio/lib/handle"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "llio.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return configPath
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != Development {
		t.Errorf("expected environment=development, got %s", cfg.Environment)
	}
	if cfg.IO.Caching != "all" {
		t.Errorf("expected io.caching=all, got %s", cfg.IO.Caching)
	}
	if cfg.Locking.Wait != "infinite" {
		t.Errorf("expected locking.wait=infinite, got %s", cfg.Locking.Wait)
	}
	if cfg.Paths.Temporary != "" {
		t.Errorf("expected empty paths.temporary, got %s", cfg.Paths.Temporary)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoad_RequiresEnvironmentVariable(t *testing.T) {
	t.Setenv(EnvironmentVariable, "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when LLIO_CONFIG not set, got nil")
	}
	if !strings.HasPrefix(err.Error(), "LLIO_CONFIG environment variable not set") {
		t.Errorf("unexpected error message %q", err)
	}
}

func TestLoad_WithEnvironmentVariable(t *testing.T) {
	t.Setenv(EnvironmentVariable, writeConfig(t, `
io:
  caching: reads
`))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.IO.Caching != "reads" {
		t.Errorf("expected io.caching=reads, got %s", cfg.IO.Caching)
	}
	if cfg.IO.Buffers != 16 {
		t.Errorf("unset io.buffers lost its default: %d", cfg.IO.Buffers)
	}
}

func TestLoadFile(t *testing.T) {
	configPath := writeConfig(t, `
environment: development

paths:
  temporary: /custom/tmp

io:
  caching: only_metadata
  buffer_size: 4096
  buffers: 4

locking:
  wait: immediate

logging:
  level: debug
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Paths.Temporary != "/custom/tmp" {
		t.Errorf("expected temporary=/custom/tmp, got %s", cfg.Paths.Temporary)
	}
	if caching, err := cfg.Caching(); err != nil || caching != handle.CachingOnlyMetadata {
		t.Errorf("Caching() = %v, %v", caching, err)
	}
	if cfg.IO.BufferSize != 4096 || cfg.IO.Buffers != 4 {
		t.Errorf("io = %+v", cfg.IO)
	}
	if wait, err := cfg.Wait(); err != nil || !wait.IsImmediate() {
		t.Errorf("Wait() = %v, %v", wait, err)
	}
	if level, err := cfg.LogLevel(); err != nil || level != slog.LevelDebug {
		t.Errorf("LogLevel() = %v, %v", level, err)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("loading a missing file succeeded")
	}
	if _, err := LoadFile(writeConfig(t, "io: [unterminated")); err == nil {
		t.Error("loading malformed YAML succeeded")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantWait    string
		wantLevel   string
		wantCaching string
	}{
		{
			name: "production defaults",
			content: `
environment: production
`,
			wantWait:    "immediate",
			wantLevel:   "warn",
			wantCaching: "all",
		},
		{
			name: "explicit production section replaces defaults",
			content: `
environment: production
production:
  io:
    caching: safety_fsyncs
`,
			wantWait:    "infinite",
			wantLevel:   "info",
			wantCaching: "safety_fsyncs",
		},
		{
			name: "development section",
			content: `
environment: development
development:
  locking:
    wait: immediate
  logging:
    level: debug
production:
  io:
    caching: none
`,
			wantWait:    "immediate",
			wantLevel:   "debug",
			wantCaching: "all",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg, err := LoadFile(writeConfig(t, test.content))
			if err != nil {
				t.Fatalf("LoadFile failed: %v", err)
			}
			if cfg.Locking.Wait != test.wantWait {
				t.Errorf("locking.wait = %s, want %s", cfg.Locking.Wait, test.wantWait)
			}
			if cfg.Logging.Level != test.wantLevel {
				t.Errorf("logging.level = %s, want %s", cfg.Logging.Level, test.wantLevel)
			}
			if cfg.IO.Caching != test.wantCaching {
				t.Errorf("io.caching = %s, want %s", cfg.IO.Caching, test.wantCaching)
			}
		})
	}
}

func TestEnvVarsDoNotOverride(t *testing.T) {
	t.Setenv("LLIO_IO_CACHING", "none")

	cfg, err := LoadFile(writeConfig(t, "io:\n  caching: reads\n"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.IO.Caching != "reads" {
		t.Errorf("environment variable overrode io.caching: %s", cfg.IO.Caching)
	}
}

func TestExpandVars(t *testing.T) {
	t.Setenv("LLIO_TEST_SCRATCH", "/scratch")

	tests := []struct {
		input string
		vars  map[string]string
		want  string
	}{
		{"${HOME}/pipes", map[string]string{"HOME": "/home/test"}, "/home/test/pipes"},
		{"${LLIO_TEST_SCRATCH}/pipes", nil, "/scratch/pipes"},
		{"${LLIO_TEST_UNSET:-/fallback}/pipes", nil, "/fallback/pipes"},
		{"${LLIO_TEST_UNSET}", nil, ""},
		{"/plain/path", nil, "/plain/path"},
	}

	for _, test := range tests {
		if got := expandVars(test.input, test.vars); got != test.want {
			t.Errorf("expandVars(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestLoadFile_ExpandsTemporary(t *testing.T) {
	t.Setenv("LLIO_TEST_SCRATCH", "/scratch")
	cfg, err := LoadFile(writeConfig(t, "paths:\n  temporary: ${LLIO_TEST_SCRATCH}/llio\n"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Paths.Temporary != "/scratch/llio" {
		t.Errorf("paths.temporary = %s", cfg.Paths.Temporary)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad environment", func(c *Config) { c.Environment = "staging" }, "invalid environment"},
		{"bad caching", func(c *Config) { c.IO.Caching = "sometimes" }, "io.caching"},
		{"zero buffer size", func(c *Config) { c.IO.BufferSize = 0 }, "io.buffer_size"},
		{"no buffers", func(c *Config) { c.IO.Buffers = 0 }, "io.buffers"},
		{"too many buffers", func(c *Config) { c.IO.Buffers = handle.MaxBuffers + 1 }, "io.buffers"},
		{"bad wait", func(c *Config) { c.Locking.Wait = "eventually" }, "locking.wait"},
		{"bad level", func(c *Config) { c.Logging.Level = "chatty" }, "logging.level"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := Default()
			test.modify(cfg)
			err := cfg.Validate()
			if test.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, test.wantErr)
			}
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.IO.Caching = "sometimes"
	cfg.Locking.Wait = "eventually"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected errors")
	}
	for _, want := range []string{"io.caching", "locking.wait"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestEnsurePaths(t *testing.T) {
	cfg := Default()
	if err := cfg.EnsurePaths(); err != nil {
		t.Fatalf("EnsurePaths with no temporary path: %v", err)
	}

	cfg.Paths.Temporary = filepath.Join(t.TempDir(), "nested", "pipes")
	if err := cfg.EnsurePaths(); err != nil {
		t.Fatalf("EnsurePaths failed: %v", err)
	}
	info, err := os.Stat(cfg.Paths.Temporary)
	if err != nil || !info.IsDir() {
		t.Errorf("temporary directory not created: %v", err)
	}
}
