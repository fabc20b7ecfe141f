// portfolio-seed fills the document store with the sample projects and the
// admin account.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"portfolioos/pkg/auth"
	"portfolioos/pkg/config"
	"portfolioos/pkg/logger"
	"portfolioos/pkg/store"
)

// DefaultAdminPassword must be changed after the first login.
const DefaultAdminPassword = "ForceResetPassword2025!"

var sampleProjects = []store.Project{
	{
		Title:       "Game Engine",
		Description: "A custom 2D/3D game engine built from scratch. Because why use Unity when you can suffer?",
		Tags:        []string{"C++", "OpenGL", "Physics"},
		Status:      store.StatusInProgress,
	},
	{
		Title:       "Physics Simulation",
		Description: "Real-time fluid dynamics and particle systems. Very satisfying to watch, painful to debug.",
		Tags:        []string{"Rust", "WGPU", "Math"},
		Status:      store.StatusConcept,
	},
	{
		Title:       "Multiplayer Game",
		Description: "Fast-paced multiplayer racing game. Currently just cubes racing, but it's a start.",
		Tags:        []string{"Unity", "C#", "Networking"},
		Status:      store.StatusInProgress,
	},
}

func main() {
	defaultPath, err := config.DefaultConfigPath()
	if err != nil {
		defaultPath = "config.yaml"
	}
	configPath := flag.String("config", defaultPath, "Path to the YAML config file")
	seedProjects := flag.Bool("projects", false, "Replace all projects with the samples")
	seedAdmin := flag.Bool("admin", false, "Create the admin user or reset its password")
	username := flag.String("username", "admin", "Admin username")
	flag.Parse()

	if !*seedProjects && !*seedAdmin {
		*seedProjects, *seedAdmin = true, true
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = DefaultAdminPassword
	}

	if err := run(*configPath, *seedProjects, *seedAdmin, *username, password); err != nil {
		fmt.Fprintf(os.Stderr, "portfolio-seed: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, projects, admin bool, username, password string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(logger.WithConsole(), logger.WithLevel(logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		return err
	}
	defer log.Close()

	ctx := context.Background()
	docs, err := store.Open(ctx, store.Config{
		Path:        cfg.Database.Path,
		BusyTimeout: cfg.Database.BusyTimeout,
	}, log)
	if err != nil {
		return err
	}
	defer docs.Close()

	if projects {
		n, err := replaceProjects(ctx, docs)
		if err != nil {
			return err
		}
		log.Info("Projects seeding complete", "count", n)
	}
	if admin {
		created, err := ensureAdmin(ctx, docs, username, password)
		if err != nil {
			return err
		}
		log.Info("Admin user ready", "username", username, "created", created)
	}
	return nil
}

// replaceProjects deletes every project and inserts the samples.
func replaceProjects(ctx context.Context, docs *store.Store) (int, error) {
	existing, err := docs.ListProjects(ctx)
	if err != nil {
		return 0, err
	}
	for _, p := range existing {
		if err := docs.DeleteProject(ctx, p.ID); err != nil {
			return 0, err
		}
	}
	for _, p := range sampleProjects {
		if _, err := docs.CreateProject(ctx, p); err != nil {
			return 0, fmt.Errorf("failed to seed %q: %w", p.Title, err)
		}
	}
	return len(sampleProjects), nil
}

// ensureAdmin creates the admin account, or resets the password and keeps
// the account when it already exists.
func ensureAdmin(ctx context.Context, docs *store.Store, username, password string) (bool, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}

	u, err := docs.UserByUsername(ctx, username)
	switch {
	case errors.Is(err, store.ErrNotFound):
		_, err := docs.CreateUser(ctx, username, hash, true)
		return err == nil, err
	case err != nil:
		return false, err
	}
	return false, docs.SetPassword(ctx, u.ID, hash)
}
