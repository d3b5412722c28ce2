// Package config resolves the API endpoint and the persisted session token.
//
// Precedence for the API URL is: explicit override (flag) > NOTES_API_URL >
// config file > default. The token is read from NOTES_TOKEN, then from the
// token file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/notesapp/notes/pkg/client"
)

const (
	EnvAPIURL  = "NOTES_API_URL"
	EnvToken   = "NOTES_TOKEN"
	EnvConfig  = "NOTES_CONFIG"
	EnvLogFile = "NOTES_LOG_FILE"
	EnvWebURL  = "NOTES_WEB_URL"

	// DefaultWebURL is the browser dashboard served alongside the API.
	DefaultWebURL = "http://localhost:3000"

	dirName = ".notes"
)

// Config is the on-disk configuration.
type Config struct {
	APIURL    string `yaml:"api_url"`
	TokenFile string `yaml:"token_file"`
	WebURL    string `yaml:"web_url,omitempty"`
	LogFile   string `yaml:"log_file,omitempty"`
}

// Dir returns ~/.notes.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// DefaultPath returns the config file location: NOTES_CONFIG or ~/.notes/config.yaml.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config at path (DefaultPath when empty), applies
// environment overrides and fills defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("config.Load: %w", err)
		}
		path = p
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv(EnvWebURL); v != "" {
		cfg.WebURL = v
	}
	if cfg.WebURL == "" {
		cfg.WebURL = DefaultWebURL
	}
	if cfg.APIURL == "" {
		cfg.APIURL = client.DefaultBaseURL
	}
	if cfg.TokenFile == "" {
		dir, err := Dir()
		if err != nil {
			return nil, fmt.Errorf("config.Load: %w", err)
		}
		cfg.TokenFile = filepath.Join(dir, "token")
	}
	return cfg, nil
}

// Save writes cfg as YAML to path, creating the parent directory.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config.Save: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config.Save: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("config.Save: %w", err)
	}
	return nil
}

// ReadToken returns the auth token using precedence: env var > file > empty.
func (c *Config) ReadToken() string {
	if tok := os.Getenv(EnvToken); tok != "" {
		return tok
	}
	data, err := os.ReadFile(c.TokenFile)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// SaveToken persists token to the token file with owner-only permissions.
func (c *Config) SaveToken(token string) error {
	if err := os.MkdirAll(filepath.Dir(c.TokenFile), 0700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(c.TokenFile, []byte(token), 0600); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// ClearToken removes the token file. It reports false if there was none.
func (c *Config) ClearToken() (bool, error) {
	err := os.Remove(c.TokenFile)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("remove token: %w", err)
	}
	return true, nil
}
