package db

import (
	"io/fs"
	"path/filepath"
	"testing"
)

// openTestDB creates a migrated database under a per-test temp dir.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := NewDB(filepath.Join(t.TempDir(), "tracks.db"))
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func tableExists(t *testing.T, database *DB, name string) bool {
	t.Helper()
	var count int
	err := database.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name,
	).Scan(&count)
	if err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	return count > 0
}

func TestNewDB_AppliesMigrations(t *testing.T) {
	database := openTestDB(t)

	for _, table := range []string{"sessions", "tracks", "track_obs"} {
		if !tableExists(t, database, table) {
			t.Errorf("expected table %q after migrations", table)
		}
	}
}

func TestOpenDB_DoesNotTouchSchema(t *testing.T) {
	database, err := OpenDB(filepath.Join(t.TempDir(), "raw.db"))
	if err != nil {
		t.Fatalf("OpenDB failed: %v", err)
	}
	defer database.Close()

	if tableExists(t, database, "sessions") {
		t.Error("OpenDB must not create schema")
	}
}

func TestMigrateVersionAndRollback(t *testing.T) {
	database := openTestDB(t)

	migrationsFS, err := getMigrationsFS()
	if err != nil {
		t.Fatalf("getMigrationsFS failed: %v", err)
	}

	version, dirty, err := database.MigrateVersion(migrationsFS)
	if err != nil {
		t.Fatalf("MigrateVersion failed: %v", err)
	}
	if dirty {
		t.Error("fresh database should not be dirty")
	}
	if version != 1 {
		t.Errorf("expected version 1, got %d", version)
	}

	if err := database.MigrateDown(migrationsFS); err != nil {
		t.Fatalf("MigrateDown failed: %v", err)
	}
	if tableExists(t, database, "tracks") {
		t.Error("expected tracks table dropped after rollback")
	}

	// Up again is idempotent from version 0.
	if err := database.MigrateUp(migrationsFS); err != nil {
		t.Fatalf("MigrateUp after rollback failed: %v", err)
	}
	if !tableExists(t, database, "tracks") {
		t.Error("expected tracks table restored")
	}
}

func TestEmbeddedMigrationsFS(t *testing.T) {
	origDevMode := DevMode
	DevMode = false
	defer func() { DevMode = origDevMode }()

	migFS, err := getMigrationsFS()
	if err != nil {
		t.Fatalf("getMigrationsFS failed: %v", err)
	}

	entries, err := fs.ReadDir(migFS, ".")
	if err != nil {
		t.Fatalf("failed to read migrations filesystem: %v", err)
	}

	found := make(map[string]bool)
	for _, entry := range entries {
		found[entry.Name()] = true
	}
	for _, want := range []string{"0001_init.up.sql", "0001_init.down.sql"} {
		if !found[want] {
			t.Errorf("embedded migrations missing %q, have %v", want, found)
		}
	}
}
