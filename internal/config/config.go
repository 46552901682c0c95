// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads the application configuration from a TOML file,
// applies environment overrides and validates the result.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/chatter-tui/internal/util"
)

// Environment variables recognized as overrides. Environment wins over
// the file, the file wins over the defaults.
const (
	EnvAPIURL       = "CHATTER_API_URL"
	EnvAPITimeoutMS = "CHATTER_API_TIMEOUT_MS"
	EnvTheme        = "CHATTER_THEME"
	EnvDataDir      = "CHATTER_DATA_DIR"
)

// ConfigFileName is the TOML file under the config directory.
const ConfigFileName = "config.toml"

// =============================================================================
// TYPES
// =============================================================================

// APIConfig configures the backend connection.
type APIConfig struct {
	BaseURL   string `toml:"base_url"`
	TimeoutMS int    `toml:"timeout_ms"`
}

// UIConfig configures the terminal front-end.
type UIConfig struct {
	Theme string `toml:"theme"`
}

// StorageConfig configures where session and cache data live.
type StorageConfig struct {
	DataDir string `toml:"data_dir"`
}

// Config is the complete application configuration.
type Config struct {
	API     APIConfig     `toml:"api"`
	UI      UIConfig      `toml:"ui"`
	Storage StorageConfig `toml:"storage"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "http://localhost:8000",
			TimeoutMS: 10000,
		},
		UI: UIConfig{
			Theme: "dark",
		},
		Storage: StorageConfig{
			DataDir: "", // resolved lazily to ~/.chatter
		},
	}
}

// ConfigDir returns the directory holding the config file (~/.chatter).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".chatter"), nil
}

// ConfigPath returns the full path of the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load builds the effective configuration: defaults, then the TOML file
// if present, then environment overrides, then validation. A missing
// file is not an error.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadPath(path)
}

// LoadPath is Load with an explicit file location.
func LoadPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if err := loadTOML(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadTOML decodes the file over the current values, so absent keys
// keep their defaults.
func loadTOML(path string, cfg *Config) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// ApplyEnvOverrides applies recognized environment variables on top of
// the current values. Unparseable numeric values are ignored.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv(EnvAPITimeoutMS); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			c.API.TimeoutMS = ms
		}
	}
	if v := os.Getenv(EnvTheme); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		c.Storage.DataDir = v
	}
}

// fillDefaults resolves values that cannot be computed statically.
func (c *Config) fillDefaults() {
	if c.Storage.DataDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.Storage.DataDir = filepath.Join(home, ".chatter")
		}
	}
	if c.API.TimeoutMS <= 0 {
		c.API.TimeoutMS = Default().API.TimeoutMS
	}
	if c.UI.Theme == "" {
		c.UI.Theme = Default().UI.Theme
	}
}

// Validate rejects configurations the application cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api.base_url %q", c.API.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url scheme must be http or https, got %q", u.Scheme)
	}
	if c.API.TimeoutMS <= 0 {
		return fmt.Errorf("api.timeout_ms must be positive, got %d", c.API.TimeoutMS)
	}
	switch strings.ToLower(c.UI.Theme) {
	case "dark", "light", "system":
	default:
		return fmt.Errorf("ui.theme must be dark, light or system, got %q", c.UI.Theme)
	}
	if c.Storage.DataDir == "" {
		return fmt.Errorf("storage.data_dir is empty")
	}
	return nil
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration to the default location with 0600
// permissions, creating the directory if needed.
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SavePath(path)
}

// SavePath is Save with an explicit file location.
func (c *Config) SavePath(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("# chatter configuration\n")
	sb.WriteString("# Environment variables override this file.\n\n")
	if err := toml.NewEncoder(&sb).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
