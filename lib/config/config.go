// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Config is the spread CLI configuration.
type Config struct {
	// Server configures the release service connection.
	Server ServerConfig `yaml:"server" json:"server"`

	// Session configures credential storage.
	Session SessionConfig `yaml:"session" json:"session"`

	// Cache configures the entity cache snapshot.
	Cache CacheConfig `yaml:"cache" json:"cache"`

	// Output configures terminal rendering.
	Output OutputConfig `yaml:"output" json:"output"`

	// path is the file the configuration was read from, or "" when
	// only defaults apply.
	path string
}

// ServerConfig configures the release service connection.
type ServerConfig struct {
	// URL is the release service root, e.g. https://releases.example.com/api.
	URL string `yaml:"url" json:"url"`

	// Timeout bounds each command's remote calls. Default: 30s.
	Timeout Duration `yaml:"timeout" json:"timeout"`

	// ActivateRoute selects the activation endpoint: "active",
	// "activate", or "legacy". Default: active.
	ActivateRoute string `yaml:"activate_route" json:"activate_route"`
}

// SessionConfig configures credential storage.
type SessionConfig struct {
	// File is the credential file. Default: $XDG_CONFIG_HOME/spread/session.json.
	File string `yaml:"file" json:"file"`

	// IdentityFile, when set, names an age identity file; the
	// credential file is then encrypted to it. The identity is created
	// on first login if the file does not exist.
	IdentityFile string `yaml:"identity_file" json:"identity_file"`
}

// CacheConfig configures the entity cache snapshot.
type CacheConfig struct {
	// SnapshotFile is where the cache persists between invocations.
	// Default: $XDG_CACHE_HOME/spread/cache.snapshot.
	SnapshotFile string `yaml:"snapshot_file" json:"snapshot_file"`

	// Compression is "none", "lz4", or "zstd". Default: zstd.
	Compression string `yaml:"compression" json:"compression"`

	// Disabled turns snapshot persistence off.
	Disabled bool `yaml:"disabled" json:"disabled"`
}

// OutputConfig configures terminal rendering.
type OutputConfig struct {
	// Color is "auto", "always", or "never". Default: auto.
	Color string `yaml:"color" json:"color"`
}

// Duration is a time.Duration that reads from "30s"-style strings in
// both YAML and JSON.
type Duration time.Duration

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText formats the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			URL:           "http://localhost:3000",
			Timeout:       Duration(30 * time.Second),
			ActivateRoute: "active",
		},
		Cache: CacheConfig{
			Compression: "zstd",
		},
		Output: OutputConfig{
			Color: "auto",
		},
	}
}

// Path returns the file the configuration was read from, or "".
func (c *Config) Path() string { return c.path }

// DefaultPath returns $XDG_CONFIG_HOME/spread/config.yaml, falling back
// to ~/.config/spread/config.yaml.
func DefaultPath() string {
	configDirectory := os.Getenv("XDG_CONFIG_HOME")
	if configDirectory == "" {
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configDirectory = filepath.Join(homeDirectory, ".config")
	}
	return filepath.Join(configDirectory, "spread", "config.yaml")
}

// Load resolves the configuration file (explicitPath, then
// SPREAD_CONFIG, then DefaultPath) and loads it.
func Load(explicitPath string) (*Config, error) {
	path, required := explicitPath, true
	if path == "" {
		path = os.Getenv("SPREAD_CONFIG")
	}
	if path == "" {
		path, required = DefaultPath(), false
	}

	cfg := Default()
	if path != "" {
		err := cfg.loadFile(path)
		switch {
		case err == nil:
			cfg.path = path
		case errors.Is(err, fs.ErrNotExist) && !required:
		default:
			return nil, err
		}
	}

	cfg.applyEnvironment()
	cfg.expandVariables()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads configuration from path with no discovery. The file
// must exist.
func LoadFile(path string) (*Config, error) {
	return Load(path)
}

// loadFile merges path into c.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		if err := yaml.Unmarshal(jsonc.ToJSON(data), c); err != nil {
			return fmt.Errorf("config: parsing %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}
	return nil
}

// applyEnvironment applies SPREAD_SERVER and SPREAD_SESSION_FILE.
func (c *Config) applyEnvironment() {
	if server := os.Getenv("SPREAD_SERVER"); server != "" {
		c.Server.URL = server
	}
	if sessionFile := os.Getenv("SPREAD_SESSION_FILE"); sessionFile != "" {
		c.Session.File = sessionFile
	}
}

// expandVariables expands ~/ and ${VAR} patterns in path fields.
func (c *Config) expandVariables() {
	c.Session.File = expandPath(c.Session.File)
	c.Session.IdentityFile = expandPath(c.Session.IdentityFile)
	c.Cache.SnapshotFile = expandPath(c.Cache.SnapshotFile)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandPath(path string) string {
	if path == "" {
		return ""
	}
	path = varPattern.ReplaceAllStringFunc(path, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return path
}

// Validate checks the configuration for errors. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.URL == "" {
		errs = append(errs, fmt.Errorf("server.url is required"))
	} else if parsed, err := url.Parse(c.Server.URL); err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		errs = append(errs, fmt.Errorf("server.url %q must be an http or https URL", c.Server.URL))
	}

	if c.Server.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("server.timeout must be positive"))
	}

	switch c.Server.ActivateRoute {
	case "", "active", "activate", "legacy":
	default:
		errs = append(errs, fmt.Errorf("server.activate_route %q must be active, activate, or legacy", c.Server.ActivateRoute))
	}

	switch c.Cache.Compression {
	case "", "none", "lz4", "zstd":
	default:
		errs = append(errs, fmt.Errorf("cache.compression %q must be none, lz4, or zstd", c.Cache.Compression))
	}

	switch c.Output.Color {
	case "", "auto", "always", "never":
	default:
		errs = append(errs, fmt.Errorf("output.color %q must be auto, always, or never", c.Output.Color))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
