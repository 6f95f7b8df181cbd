// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for the NeuroForge client.
//
// Configuration is read from ~/.neuroforge/config.toml when present, with
// environment variable overrides and built-in defaults.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete client configuration.
type Config struct {
	// User is the identifier chats are scoped to. Empty means resolve from
	// the environment.
	User string `toml:"user"`

	// Inference configuration
	Inference InferenceConfig `toml:"inference"`

	// Storage configuration
	Storage StorageConfig `toml:"storage"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// InferenceConfig contains the remote endpoint configuration.
type InferenceConfig struct {
	// URL is the chat endpoint the client POSTs to.
	URL string `toml:"url"`
	// TimeoutSecs bounds requests at the transport layer. 0 disables the
	// client-side timeout and defers to the transport's own limits.
	TimeoutSecs int `toml:"timeout_secs"`
}

// StorageConfig contains persistence configuration.
type StorageConfig struct {
	// DatabasePath is the SQLite file holding chats and messages.
	// Empty means ~/.neuroforge/chats.db.
	DatabasePath string `toml:"database_path"`
}

// UIConfig contains presentation options.
type UIConfig struct {
	// ShowTimestamps toggles per-message timestamps in the thread view.
	ShowTimestamps bool `toml:"show_timestamps"`
	// SidebarWidth is the sidebar width in columns.
	SidebarWidth int `toml:"sidebar_width"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Inference: InferenceConfig{
			URL:         "http://127.0.0.1:5000/chat",
			TimeoutSecs: 0,
		},
		Storage: StorageConfig{
			DatabasePath: "",
		},
		UI: UIConfig{
			ShowTimestamps: true,
			SidebarWidth:   32,
		},
	}
}

// ConfigDir returns the directory holding the config file and the database.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".neuroforge"), nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration from the default location, applies
// environment overrides, and validates the result. A missing config file is
// not an error; defaults are used.
func Load() (*Config, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(filepath.Join(dir, "config.toml"))
}

// LoadFrom reads the configuration from an explicit path.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv overrides file values from the environment.
func (c *Config) applyEnv() {
	if v := os.Getenv("NEUROFORGE_ENDPOINT"); v != "" {
		c.Inference.URL = v
	}
	if v := os.Getenv("NEUROFORGE_DB"); v != "" {
		c.Storage.DatabasePath = v
	}
	if v := os.Getenv("NEUROFORGE_USER"); v != "" {
		c.User = v
	}
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Inference.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("inference.url %q is not a valid URL", c.Inference.URL)
	}
	if c.Inference.TimeoutSecs < 0 {
		return fmt.Errorf("inference.timeout_secs must not be negative")
	}
	if c.UI.SidebarWidth < 20 {
		c.UI.SidebarWidth = 20
	}
	return nil
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// DatabasePath returns the configured database path, defaulting to
// ~/.neuroforge/chats.db.
func (c *Config) DatabasePath() (string, error) {
	if c.Storage.DatabasePath != "" {
		return c.Storage.DatabasePath, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "chats.db"), nil
}

// InferenceTimeout returns the configured timeout as a duration.
func (c *Config) InferenceTimeout() time.Duration {
	return time.Duration(c.Inference.TimeoutSecs) * time.Second
}
