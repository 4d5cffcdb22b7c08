// Package config stores AstroChat user preferences in a JSON file, either
// in a project-local .astrochat directory or under the user's home.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"astrochat/internal/logging"
)

// Config holds user preferences.
type Config struct {
	APIKey       string          `json:"api_key,omitempty"`
	Theme        string          `json:"theme"`    // "dark" or "light"
	Language     string          `json:"language"` // "en" or "id"
	MusicEnabled bool            `json:"music_enabled"`
	Logging      logging.Options `json:"logging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Theme:    "dark",
		Language: "en",
	}
}

// Dir returns the directory where config is stored. A project-local
// .astrochat directory wins over the home-level one.
func Dir() (string, error) {
	if cwd, err := os.Getwd(); err == nil {
		localDir := filepath.Join(cwd, ".astrochat")
		if stat, err := os.Stat(localDir); err == nil && stat.IsDir() {
			return localDir, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".astrochat"), nil
}

// File returns the full path to the config file.
func File() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the configuration from disk. A missing file yields defaults.
func Load() (Config, error) {
	path, err := File()
	if err != nil {
		return DefaultConfig(), err
	}
	return LoadFrom(path)
}

// LoadFrom reads a configuration from an explicit path.
func LoadFrom(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return DefaultConfig(), err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}

// Save writes the configuration to disk, creating the directory if needed.
func Save(cfg Config) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return SaveTo(filepath.Join(dir, "config.json"), cfg)
}

// SaveTo writes the configuration to an explicit path.
func SaveTo(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
