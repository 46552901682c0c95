// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPathMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadPath(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("missing file must not be an error: %v", err)
	}

	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Errorf("unexpected default base url %q", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutMS != 10000 {
		t.Errorf("unexpected default timeout %d", cfg.API.TimeoutMS)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("unexpected default theme %q", cfg.UI.Theme)
	}
	if cfg.Storage.DataDir == "" {
		t.Error("data dir must be resolved")
	}
}

func TestLoadPathPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[api]
base_url = "https://api.example.com"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadPath(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.API.BaseURL != "https://api.example.com" {
		t.Errorf("file value not applied, got %q", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutMS != 10000 {
		t.Errorf("absent key must keep default, got %d", cfg.API.TimeoutMS)
	}
}

func TestLoadPathInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("not [valid toml"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPath(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[api]
base_url = "https://file.example.com"
timeout_ms = 5000

[ui]
theme = "dark"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvAPIURL, "https://env.example.com")
	t.Setenv(EnvAPITimeoutMS, "2500")
	t.Setenv(EnvTheme, "light")
	t.Setenv(EnvDataDir, t.TempDir())

	cfg, err := LoadPath(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.API.BaseURL != "https://env.example.com" {
		t.Errorf("env url not applied, got %q", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutMS != 2500 {
		t.Errorf("env timeout not applied, got %d", cfg.API.TimeoutMS)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("env theme not applied, got %q", cfg.UI.Theme)
	}
}

func TestEnvOverrideBadTimeoutIgnored(t *testing.T) {
	t.Setenv(EnvAPITimeoutMS, "not-a-number")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if cfg.API.TimeoutMS != 10000 {
		t.Errorf("bad env timeout must be ignored, got %d", cfg.API.TimeoutMS)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"system theme valid", func(c *Config) { c.UI.Theme = "system" }, false},
		{"empty url", func(c *Config) { c.API.BaseURL = "" }, true},
		{"no scheme", func(c *Config) { c.API.BaseURL = "localhost:8000" }, true},
		{"bad scheme", func(c *Config) { c.API.BaseURL = "ftp://x" }, true},
		{"zero timeout", func(c *Config) { c.API.TimeoutMS = 0 }, true},
		{"unknown theme", func(c *Config) { c.UI.Theme = "neon" }, true},
		{"empty data dir", func(c *Config) { c.Storage.DataDir = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.fillDefaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.fillDefaults()
	cfg.API.BaseURL = "https://api.example.com"
	if err := cfg.SavePath(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected 0600 permissions, got %o", perm)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(raw), "# chatter configuration") {
		t.Error("saved file must start with the header comment")
	}

	loaded, err := LoadPath(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if loaded.API.BaseURL != "https://api.example.com" {
		t.Errorf("round trip lost base url, got %q", loaded.API.BaseURL)
	}
}
