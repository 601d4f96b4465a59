// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate points every discovery variable at a temporary directory.
func isolate(t *testing.T) string {
	t.Helper()
	directory := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", directory)
	t.Setenv("SPREAD_CONFIG", "")
	t.Setenv("SPREAD_SERVER", "")
	t.Setenv("SPREAD_SESSION_FILE", "")
	return directory
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if time.Duration(cfg.Server.Timeout) != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", time.Duration(cfg.Server.Timeout))
	}
	if cfg.Server.ActivateRoute != "active" {
		t.Errorf("activate_route = %q, want active", cfg.Server.ActivateRoute)
	}
	if cfg.Cache.Compression != "zstd" {
		t.Errorf("compression = %q, want zstd", cfg.Cache.Compression)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default() does not validate: %v", err)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Path() != "" {
		t.Errorf("Path = %q, want empty when no file exists", cfg.Path())
	}
	if cfg.Server.URL != Default().Server.URL {
		t.Errorf("URL = %q", cfg.Server.URL)
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	isolate(t)
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Load with a missing explicit file succeeded")
	}
}

func TestLoadYAML(t *testing.T) {
	directory := isolate(t)
	path := filepath.Join(directory, "spread", "config.yaml")
	writeFile(t, path, `
server:
  url: https://releases.example.com/api
  timeout: 5s
  activate_route: legacy
session:
  file: ${XDG_CONFIG_HOME}/spread/creds.json
  identity_file: ~/.config/spread/identity.txt
cache:
  compression: lz4
output:
  color: never
`)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Path() != path {
		t.Errorf("Path = %q, want %q", cfg.Path(), path)
	}
	if cfg.Server.URL != "https://releases.example.com/api" {
		t.Errorf("URL = %q", cfg.Server.URL)
	}
	if time.Duration(cfg.Server.Timeout) != 5*time.Second {
		t.Errorf("timeout = %v", time.Duration(cfg.Server.Timeout))
	}
	if cfg.Server.ActivateRoute != "legacy" {
		t.Errorf("activate_route = %q", cfg.Server.ActivateRoute)
	}
	if cfg.Session.File != filepath.Join(directory, "spread", "creds.json") {
		t.Errorf("session.file = %q, want ${XDG_CONFIG_HOME} expanded", cfg.Session.File)
	}
	home, _ := os.UserHomeDir()
	if cfg.Session.IdentityFile != filepath.Join(home, ".config", "spread", "identity.txt") {
		t.Errorf("identity_file = %q, want ~ expanded", cfg.Session.IdentityFile)
	}
	if cfg.Cache.Compression != "lz4" || cfg.Output.Color != "never" {
		t.Errorf("cache/output = %+v %+v", cfg.Cache, cfg.Output)
	}
}

func TestLoadJSONC(t *testing.T) {
	directory := isolate(t)
	path := filepath.Join(directory, "custom.jsonc")
	writeFile(t, path, `{
  // Staging service.
  "server": {"url": "https://staging.example.com", "timeout": "1m",},
  "cache": {"disabled": true},
}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.URL != "https://staging.example.com" {
		t.Errorf("URL = %q", cfg.Server.URL)
	}
	if time.Duration(cfg.Server.Timeout) != time.Minute {
		t.Errorf("timeout = %v", time.Duration(cfg.Server.Timeout))
	}
	if !cfg.Cache.Disabled {
		t.Error("cache.disabled not read")
	}
	if cfg.Server.ActivateRoute != "active" {
		t.Errorf("unset field lost its default: %q", cfg.Server.ActivateRoute)
	}
}

func TestSpreadConfigVariable(t *testing.T) {
	directory := isolate(t)
	path := filepath.Join(directory, "elsewhere.yaml")
	writeFile(t, path, "server:\n  url: https://from-env.example.com\n")
	t.Setenv("SPREAD_CONFIG", path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.URL != "https://from-env.example.com" {
		t.Errorf("URL = %q", cfg.Server.URL)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	directory := isolate(t)
	writeFile(t, filepath.Join(directory, "spread", "config.yaml"), "server:\n  url: https://file.example.com\n")
	t.Setenv("SPREAD_SERVER", "https://override.example.com")
	t.Setenv("SPREAD_SESSION_FILE", "/tmp/override-session.json")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.URL != "https://override.example.com" {
		t.Errorf("URL = %q, want SPREAD_SERVER to win", cfg.Server.URL)
	}
	if cfg.Session.File != "/tmp/override-session.json" {
		t.Errorf("session.file = %q", cfg.Session.File)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing url", func(c *Config) { c.Server.URL = "" }, "server.url is required"},
		{"bad scheme", func(c *Config) { c.Server.URL = "ftp://x" }, "http or https"},
		{"zero timeout", func(c *Config) { c.Server.Timeout = 0 }, "server.timeout"},
		{"unknown route", func(c *Config) { c.Server.ActivateRoute = "enable" }, "activate_route"},
		{"unknown compression", func(c *Config) { c.Cache.Compression = "gzip" }, "cache.compression"},
		{"unknown color", func(c *Config) { c.Output.Color = "rainbow" }, "output.color"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := Default()
			test.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), test.want) {
				t.Errorf("Validate = %v, want mention of %q", err, test.want)
			}
		})
	}

	t.Run("reports every problem", func(t *testing.T) {
		cfg := Default()
		cfg.Server.URL = ""
		cfg.Output.Color = "rainbow"
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), "server.url") || !strings.Contains(err.Error(), "output.color") {
			t.Errorf("Validate = %v, want both problems", err)
		}
	})
}

func TestInvalidDuration(t *testing.T) {
	directory := isolate(t)
	path := filepath.Join(directory, "bad.yaml")
	writeFile(t, path, "server:\n  timeout: soon\n")
	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted an invalid duration")
	}
}
