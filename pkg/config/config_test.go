package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	def := Default()
	if cfg.Server.Addr != def.Server.Addr && os.Getenv("PORT") == "" && os.Getenv("PORTFOLIO_ADDR") == "" {
		t.Errorf("expected default addr %q, got %q", def.Server.Addr, cfg.Server.Addr)
	}
	if cfg.Auth.TokenTTL != 30*24*time.Hour {
		t.Errorf("expected 30 day token TTL, got %s", cfg.Auth.TokenTTL)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, `
server:
  addr: ":9000"
  staticDir: /srv/www
database:
  path: /var/lib/portfolio.db
github:
  username: octocat
desktop:
  sessionTTL: 30m
log:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.StaticDir != "/srv/www" {
		t.Errorf("expected static dir /srv/www, got %q", cfg.Server.StaticDir)
	}
	if cfg.Database.Path != "/var/lib/portfolio.db" && os.Getenv("PORTFOLIO_DB") == "" {
		t.Errorf("unexpected database path %q", cfg.Database.Path)
	}
	if cfg.Desktop.SessionTTL != 30*time.Minute {
		t.Errorf("expected 30m session TTL, got %s", cfg.Desktop.SessionTTL)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("expected default read timeout to survive, got %s", cfg.Server.ReadTimeout)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "server: [unterminated")

	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"PORT":            "8081",
		"JWT_SECRET":      "s3cret",
		"GITHUB_USERNAME": "octocat",
		"GITHUB_TOKEN":    "ghp_x",
		"PORTFOLIO_TLS":   "true",
		"LOG_LEVEL":       "warn",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	cfg := Default()
	if err := cfg.applyEnv(lookup); err != nil {
		t.Fatalf("applyEnv failed: %v", err)
	}

	if cfg.Server.Addr != ":8081" {
		t.Errorf("expected :8081, got %q", cfg.Server.Addr)
	}
	if cfg.Auth.JWTSecret != "s3cret" {
		t.Errorf("unexpected secret %q", cfg.Auth.JWTSecret)
	}
	if cfg.GitHub.Username != "octocat" || cfg.GitHub.Token != "ghp_x" {
		t.Errorf("unexpected github config %+v", cfg.GitHub)
	}
	if !cfg.Server.TLS {
		t.Error("expected TLS enabled")
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected warn, got %q", cfg.Log.Level)
	}
}

func TestApplyEnvAddrWinsOverPort(t *testing.T) {
	env := map[string]string{"PORT": "8081", "PORTFOLIO_ADDR": "127.0.0.1:7000"}
	cfg := Default()
	cfg.applyEnv(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})

	if cfg.Server.Addr != "127.0.0.1:7000" {
		t.Errorf("expected PORTFOLIO_ADDR to win, got %q", cfg.Server.Addr)
	}
}

func TestApplyEnvInvalidBool(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(func(key string) (string, bool) {
		if key == "PORTFOLIO_TLS" {
			return "maybe", true
		}
		return "", false
	})
	if err == nil {
		t.Error("expected error for invalid PORTFOLIO_TLS")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Server.Addr = ""
	cfg.Auth.TokenTTL = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "server.addr") || !strings.Contains(err.Error(), "auth.tokenTTL") {
		t.Errorf("expected both problems reported, got %v", err)
	}
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "github:\n  username: first\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 1)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(cfg *Config) {
			select {
			case changes <- cfg:
			default:
			}
		}, nil)
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, path, "github:\n  username: second\n")

	select {
	case cfg := <-changes:
		if cfg.GitHub.Username != "second" && os.Getenv("GITHUB_USERNAME") == "" {
			t.Errorf("expected reloaded username, got %q", cfg.GitHub.Username)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch returned error: %v", err)
	}
}
