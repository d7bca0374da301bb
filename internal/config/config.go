// Package config handles the XDG configuration directory, config.yaml and file paths.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "taskman"

	// SettingsFile is the optional YAML settings filename.
	SettingsFile = "config.yaml"

	// OAuthClientFile is the OAuth client credentials filename (googletasks backend).
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored session credential filename.
	TokenFile = "token.json"

	// ServerEnv overrides the server URL from config.yaml.
	ServerEnv = "TASKMAN_SERVER"
)

// Backend names accepted in config.yaml.
const (
	BackendREST        = "rest"
	BackendGoogleTasks = "googletasks"
)

// Settings is the content of config.yaml.
type Settings struct {
	Backend string        `yaml:"backend"`
	Server  string        `yaml:"server"`
	Timeout time.Duration `yaml:"timeout"`
	Filter  string        `yaml:"filter"`
	Sort    string        `yaml:"sort"`
	Order   string        `yaml:"order"`
}

// DefaultSettings returns the settings used when config.yaml is absent.
func DefaultSettings() Settings {
	return Settings{
		Backend: BackendREST,
		Server:  "http://127.0.0.1:5000",
		Timeout: 10 * time.Second,
		Filter:  "all",
		Sort:    "title",
		Order:   "asc",
	}
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	Settings
}

// New creates a new Config with the default or specified config directory
// and default settings. Call Load to read config.yaml.
// If configDir is empty, uses XDG_CONFIG_HOME/taskman or $HOME/.config/taskman.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{Dir: dir, Settings: DefaultSettings()}, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// Load reads config.yaml from Dir on top of the current settings.
// A missing file is not an error. TASKMAN_SERVER wins over the file.
func (c *Config) Load() error {
	data, err := os.ReadFile(c.SettingsPath())
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return fmt.Errorf("failed to read %s: %w", SettingsFile, err)
	default:
		if err := yaml.Unmarshal(data, &c.Settings); err != nil {
			return fmt.Errorf("invalid %s: %w", SettingsFile, err)
		}
	}

	if server := os.Getenv(ServerEnv); server != "" {
		c.Server = server
	}

	switch c.Backend {
	case BackendREST, BackendGoogleTasks:
	default:
		return fmt.Errorf("invalid backend in %s: %q", SettingsFile, c.Backend)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid timeout in %s: %s", SettingsFile, c.Timeout)
	}
	return nil
}

// Logger returns the structured logger for this invocation.
// Without --debug every record is discarded.
func (c *Config) Logger(errOut io.Writer) *slog.Logger {
	if !c.Debug {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// SettingsPath returns the path to config.yaml.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored session credential.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}
