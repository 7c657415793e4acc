package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Migrate applies every pending up migration found in migrationsDir.
func Migrate(ctx context.Context, databaseURL, migrationsDir string) error {
	conn, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	driver, err := migratepostgres.WithInstance(conn, &migratepostgres.Config{})
	if err != nil {
		return err
	}
	path, err := ResolveMigrationsDir(migrationsDir)
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+filepath.ToSlash(path), "postgres", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// ResolveMigrationsDir returns dir as an absolute path. Relative paths that do
// not exist from the working directory are looked up next to the nearest
// go.mod, so tests in nested packages find the repository migrations.
func ResolveMigrationsDir(dir string) (string, error) {
	if filepath.IsAbs(dir) {
		return dir, nil
	}
	if _, err := os.Stat(dir); err == nil {
		return filepath.Abs(dir)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for current := cwd; ; {
		if _, err := os.Stat(filepath.Join(current, "go.mod")); err == nil {
			return filepath.Join(current, dir), nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("migrations directory %q not found from %s", dir, cwd)
		}
		current = parent
	}
}
