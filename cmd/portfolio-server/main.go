// portfolio-server serves the Portfolio OS desktop: the REST API, desktop
// sessions and the built frontend.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"portfolioos/pkg/api"
	"portfolioos/pkg/auth"
	"portfolioos/pkg/config"
	"portfolioos/pkg/desktop"
	"portfolioos/pkg/github"
	"portfolioos/pkg/logger"
	"portfolioos/pkg/router"
	"portfolioos/pkg/server"
	"portfolioos/pkg/store"
)

func main() {
	defaultPath, err := config.DefaultConfigPath()
	if err != nil {
		defaultPath = "config.yaml"
	}
	configPath := flag.String("config", defaultPath, "Path to the YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "portfolio-server: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.LogConfig) (*logger.Logger, error) {
	opts := []logger.Option{logger.WithLevel(logger.ParseLevel(cfg.Level))}
	if cfg.Console {
		opts = append(opts, logger.WithConsole())
	}
	if cfg.File != "" {
		opts = append(opts, logger.WithFile(cfg.File))
	}
	return logger.New(opts...)
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	docs, err := store.Open(ctx, store.Config{
		Path:        cfg.Database.Path,
		BusyTimeout: cfg.Database.BusyTimeout,
	}, log)
	if err != nil {
		return err
	}
	defer docs.Close()

	if n, err := docs.CountUsers(ctx); err == nil && n == 0 {
		log.Warn("No users exist, run portfolio-seed -admin to create the admin account")
	}

	authn, err := auth.NewAuthenticator(docs, auth.Config{
		Secret:      []byte(cfg.Auth.JWTSecret),
		TokenTTL:    cfg.Auth.TokenTTL,
		MaxAttempts: cfg.Auth.MaxLoginAttempts,
		Lockout:     cfg.Auth.LockoutDuration,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to create authenticator: %w", err)
	}
	authn.StartCleanup(ctx)

	gh, err := github.New(github.Config{
		BaseURL:  cfg.GitHub.BaseURL,
		Username: cfg.GitHub.Username,
		Token:    cfg.GitHub.Token,
		Timeout:  cfg.GitHub.Timeout,
	}, log)
	if err != nil {
		return err
	}

	sessions := desktop.NewStore(
		desktop.WithTTL(cfg.Desktop.SessionTTL),
		desktop.WithCleanupInterval(cfg.Desktop.CleanupInterval),
		desktop.WithMaxSessions(cfg.Desktop.MaxSessions),
		desktop.WithLogger(log),
	)
	sessions.StartCleanup(ctx)

	metrics := server.NewMetrics(log)
	metrics.Gauge("desktopSessions", sessions.Len)

	r := router.New()
	r.Use(
		router.RecoveryMiddleware(log),
		router.RequestIDMiddleware(),
		router.LoggingMiddleware(log),
		router.CORSMiddleware(cfg.Server.AllowedOrigins...),
	)

	r.GET("/health", server.HealthHandler())
	r.GET("/ready", server.ReadyHandler(map[string]server.Check{"store": docs.Ping}))
	r.GET("/metrics", server.MetricsHandler(metrics))
	api.New(docs, authn, gh, log).Register(r)
	desktop.NewHandler(sessions, log).Register(r, "/api/desktop")

	if cfg.Server.StaticDir != "" {
		r.SetNotFoundHandler(server.NewStaticFileHandler(cfg.Server.StaticDir))
	}

	srv := server.New(server.Config{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		Logger:       log,
	})
	if cfg.Server.TLS {
		if err := srv.EnableTLS(cfg.Server.CertFile, cfg.Server.KeyFile); err != nil {
			return fmt.Errorf("failed to enable TLS: %w", err)
		}
	}

	go watchConfig(ctx, configPath, log, gh, cfg.GitHub.Token)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("Server exited")
	return nil
}

// watchConfig applies the settings that can change without a restart: log
// level and the GitHub account. Everything else needs a restart.
func watchConfig(ctx context.Context, path string, log *logger.Logger, gh *github.Client, token string) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		log.Debug("Config file not found, hot reload disabled", "path", path)
		return
	}

	rl := &reloader{log: log, gh: gh, token: token}
	err := config.Watch(ctx, path, func(cfg *config.Config) {
		rl.apply(cfg)
		log.Info("Configuration reloaded", "path", path, "level", cfg.Log.Level)
	}, func(err error) {
		log.Error("Failed to reload configuration", err, "path", path)
	})
	if err != nil {
		log.Error("Config watcher stopped", err, "path", path)
	}
}

type reloader struct {
	log   *logger.Logger
	gh    *github.Client
	token string
}

func (rl *reloader) apply(cfg *config.Config) {
	rl.log.SetLevel(logger.ParseLevel(cfg.Log.Level))
	if cfg.GitHub.Username != rl.gh.Username() {
		rl.gh.SetUsername(cfg.GitHub.Username)
	}
	if cfg.GitHub.Token != rl.token {
		// Cached responses were fetched with the old credentials.
		rl.token = cfg.GitHub.Token
		rl.gh.SetToken(rl.token)
		rl.gh.Purge()
	}
}
