// Package config persists the small amount of client state that must
// survive between invocations: the server address and the session
// token from the last login.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const (
	configDir  = ".jl"
	configFile = "config.json"
)

// DefaultBaseURL is used when no server has been configured.
const DefaultBaseURL = "http://localhost:8000"

// Config is the on-disk client configuration.
type Config struct {
	BaseURL string `json:"base_url,omitempty"`
	Token   string `json:"token,omitempty"`
}

// Dir returns the config directory, honoring JL_CONFIG_DIR for tests
// and unusual setups.
func Dir() (string, error) {
	if dir := os.Getenv("JL_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDir), nil
}

// Load reads the config from disk. A missing file yields an empty
// config, not an error.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, configFile))
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to disk, creating the directory if needed.
func Save(cfg *Config) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, configFile), data, 0600)
}

// ServerURL returns the configured server address or the default.
func (c *Config) ServerURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return DefaultBaseURL
}

// SetToken stores a session token.
func SetToken(token string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	cfg.Token = token
	return Save(cfg)
}

// ClearToken removes the stored session token.
func ClearToken() error {
	return SetToken("")
}
