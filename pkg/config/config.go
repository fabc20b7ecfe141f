// Package config loads the service configuration from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	GitHub   GitHubConfig   `yaml:"github"`
	Desktop  DesktopConfig  `yaml:"desktop"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	StaticDir       string        `yaml:"staticDir"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	TLS             bool          `yaml:"tls"`
	CertFile        string        `yaml:"certFile"`
	KeyFile         string        `yaml:"keyFile"`
	AllowedOrigins  []string      `yaml:"allowedOrigins"`
}

// DatabaseConfig configures the SQLite document store.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	BusyTimeout int    `yaml:"busyTimeout"` // milliseconds
}

// AuthConfig configures admin login.
type AuthConfig struct {
	JWTSecret        string        `yaml:"jwtSecret"`
	TokenTTL         time.Duration `yaml:"tokenTTL"`
	MaxLoginAttempts int           `yaml:"maxLoginAttempts"`
	LockoutDuration  time.Duration `yaml:"lockoutDuration"`
}

// GitHubConfig configures the GitHub profile integration.
type GitHubConfig struct {
	Username string        `yaml:"username"`
	Token    string        `yaml:"token"`
	BaseURL  string        `yaml:"baseURL"`
	Timeout  time.Duration `yaml:"timeout"`
}

// DesktopConfig configures desktop sessions.
type DesktopConfig struct {
	SessionTTL      time.Duration `yaml:"sessionTTL"`
	CleanupInterval time.Duration `yaml:"cleanupInterval"`
	MaxSessions     int           `yaml:"maxSessions"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"`
	File    string `yaml:"file"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":5000",
			StaticDir:       "./client/dist",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CertFile:        "server.crt",
			KeyFile:         "server.key",
			AllowedOrigins:  []string{"*"},
		},
		Database: DatabaseConfig{
			Path:        "portfolio.db",
			BusyTimeout: 5000,
		},
		Auth: AuthConfig{
			TokenTTL:         30 * 24 * time.Hour,
			MaxLoginAttempts: 5,
			LockoutDuration:  15 * time.Minute,
		},
		GitHub: GitHubConfig{
			Username: "randomvariable",
			BaseURL:  "https://api.github.com",
			Timeout:  10 * time.Second,
		},
		Desktop: DesktopConfig{
			SessionTTL:      2 * time.Hour,
			CleanupInterval: 10 * time.Minute,
			MaxSessions:     10000,
		},
		Log: LogConfig{
			Level:   "info",
			Console: true,
		},
	}
}

// DefaultConfigPath returns ~/.config/portfolioos/config.yaml.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "portfolioos", "config.yaml"), nil
}

// Load reads path over the defaults and applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables. PORT mirrors the hosting
// convention of a bare port number.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("PORT"); ok && v != "" {
		c.Server.Addr = ":" + v
	}
	if v, ok := lookup("PORTFOLIO_ADDR"); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup("PORTFOLIO_STATIC"); ok && v != "" {
		c.Server.StaticDir = v
	}
	if v, ok := lookup("PORTFOLIO_TLS"); ok && v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid PORTFOLIO_TLS %q: %w", v, err)
		}
		c.Server.TLS = enabled
	}
	if v, ok := lookup("PORTFOLIO_DB"); ok && v != "" {
		c.Database.Path = v
	}
	if v, ok := lookup("JWT_SECRET"); ok && v != "" {
		c.Auth.JWTSecret = v
	}
	if v, ok := lookup("GITHUB_USERNAME"); ok && v != "" {
		c.GitHub.Username = v
	}
	if v, ok := lookup("GITHUB_TOKEN"); ok {
		c.GitHub.Token = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}
	return nil
}

// Validate checks the fields that have no usable zero value.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Server.Addr) == "" {
		problems = append(problems, "server.addr is empty")
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		problems = append(problems, "database.path is empty")
	}
	if c.Auth.TokenTTL <= 0 {
		problems = append(problems, "auth.tokenTTL must be positive")
	}
	if c.Desktop.SessionTTL <= 0 {
		problems = append(problems, "desktop.sessionTTL must be positive")
	}
	if c.Server.TLS && (c.Server.CertFile == "" || c.Server.KeyFile == "") {
		problems = append(problems, "server.tls requires certFile and keyFile")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
