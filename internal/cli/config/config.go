// Package config resolves CLI-side settings: which API server to talk to
// and where local state lives.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultAPIURL is used when nothing else configures the server
const DefaultAPIURL = "http://localhost:8080"

// Config holds the CLI configuration
type Config struct {
	APIURL string `json:"api_url"`
}

// Dir returns the CLI's config directory, creating it if needed
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	dir := filepath.Join(homeDir, ".config", "alumnihub")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return dir, nil
}

// Load resolves the CLI configuration. Precedence: ALUMNIHUB_API_URL env
// var, then ~/.config/alumnihub/config.json, then the default.
func Load() (*Config, error) {
	cfg := &Config{APIURL: DefaultAPIURL}

	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, "config.json"))
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config.json: %w", err)
		}
		if cfg.APIURL == "" {
			cfg.APIURL = DefaultAPIURL
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config.json: %w", err)
	}

	if url := os.Getenv("ALUMNIHUB_API_URL"); url != "" {
		cfg.APIURL = url
	}

	return cfg, nil
}

// Save writes the CLI configuration to config.json
func (c *Config) Save() error {
	dir, err := Dir()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "config.json"), data, 0o600); err != nil {
		return fmt.Errorf("failed to write config.json: %w", err)
	}

	return nil
}
