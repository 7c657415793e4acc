package db

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveMigrationsDirFindsModuleRoot(t *testing.T) {
	got, err := ResolveMigrationsDir("migrations")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, err := os.Stat(filepath.Join(got, "000001_init.up.sql")); err != nil {
		t.Fatalf("expected initial migration under %s: %v", got, err)
	}
}

func TestResolveMigrationsDirKeepsAbsolute(t *testing.T) {
	dir := t.TempDir()
	got, err := ResolveMigrationsDir(dir)
	if err != nil || got != dir {
		t.Fatalf("expected %s, got %s (%v)", dir, got, err)
	}
}
