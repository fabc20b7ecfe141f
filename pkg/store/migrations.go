package store

import (
	"context"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// goose keeps its dialect and base FS in package globals.
var (
	gooseConfigOnce sync.Once
	gooseConfigErr  error
)

func configureGoose() error {
	gooseConfigOnce.Do(func() {
		if err := goose.SetDialect("sqlite3"); err != nil {
			gooseConfigErr = fmt.Errorf("failed to set dialect: %w", err)
			return
		}
		goose.SetBaseFS(embedMigrations)
		goose.SetLogger(goose.NopLogger())
	})
	return gooseConfigErr
}

// Migrate applies all pending migrations.
func (s *Store) Migrate(ctx context.Context) error {
	if err := configureGoose(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, s.db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if version, err := goose.GetDBVersionContext(ctx, s.db); err == nil {
		s.log.Info("Database migrated", "version", version)
	}
	return nil
}

// Version returns the current schema version.
func (s *Store) Version(ctx context.Context) (int64, error) {
	if err := configureGoose(); err != nil {
		return 0, err
	}
	version, err := goose.GetDBVersionContext(ctx, s.db)
	if err != nil {
		return 0, fmt.Errorf("failed to get version: %w", err)
	}
	return version, nil
}
