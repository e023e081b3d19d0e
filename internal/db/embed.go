package db

import (
	"embed"
	"io/fs"
	"os"
)

//go:embed migrations
var migrationsFS embed.FS

// DevMode switches migration loading from the embedded filesystem to the
// on-disk MigrationsDir, so new migrations can be iterated on without
// rebuilding the binary.
var DevMode bool

// MigrationsDir is the on-disk migrations location used when DevMode is set.
var MigrationsDir = "internal/db/migrations"

// getMigrationsFS returns the filesystem holding the migration files, with
// the SQL files at its root.
func getMigrationsFS() (fs.FS, error) {
	if DevMode {
		return os.DirFS(MigrationsDir), nil
	}
	return fs.Sub(migrationsFS, "migrations")
}
