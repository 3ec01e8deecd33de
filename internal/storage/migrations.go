package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/julianstephens/morrow/internal/logger"
	"github.com/julianstephens/morrow/internal/migration"
)

//go:embed migrations
var migrationsFS embed.FS

func runner(db *sql.DB, dialect migration.Dialect) (*migration.Runner, error) {
	dir := "migrations/sqlite"
	if dialect == migration.Postgres {
		dir = "migrations/postgres"
	}
	subFS, err := fs.Sub(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access migrations: %w", err)
	}
	return migration.NewRunner(db, subFS, dialect), nil
}

func runMigrations(db *sql.DB, dialect migration.Dialect) error {
	r, err := runner(db, dialect)
	if err != nil {
		return err
	}
	_, err = r.ApplyMigrations(func(msg string) {
		logger.Info(msg)
	})
	return err
}

func validateSchemaVersion(db *sql.DB, dialect migration.Dialect) error {
	r, err := runner(db, dialect)
	if err != nil {
		return err
	}
	return r.ValidateVersion()
}
