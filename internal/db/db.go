// Package db provides SQL persistence for taskdeck.
//
// A single table, blobs, holds whole serialized values under fixed keys.
// SQLite (modernc.org/sqlite) is the default; PostgreSQL is reached through
// pgx's database/sql adapter.
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/randalmurphal/taskdeck/internal/db/driver"
)

//go:embed schema/*.sql schema/postgres/*.sql
var schemaFS embed.FS

// SchemaBlobs is the migration set for the blobs table.
const SchemaBlobs = "blobs"

// DB wraps a database connection with driver abstraction.
type DB struct {
	driver driver.Driver
	path   string
}

// Open opens a SQLite database at the given path.
// Creates the parent directory if it doesn't exist.
func Open(path string) (*DB, error) {
	return OpenWithDialect(path, driver.DialectSQLite)
}

// OpenInMemory opens a private in-memory SQLite database with migrations applied.
// Each call creates a new isolated database.
func OpenInMemory() (*DB, error) {
	d, err := OpenWithDialect(driver.MemoryDSN, driver.DialectSQLite)
	if err != nil {
		return nil, err
	}
	if err := d.Migrate(context.Background(), SchemaBlobs); err != nil {
		_ = d.Close()
		return nil, err
	}
	return d, nil
}

// OpenWithDialect opens a database with a specific dialect.
// For SQLite, dsn is the file path. For PostgreSQL, dsn is the connection string.
func OpenWithDialect(dsn string, dialect driver.Dialect) (*DB, error) {
	if dialect == driver.DialectSQLite && dsn != driver.MemoryDSN {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	drv, err := driver.New(dialect)
	if err != nil {
		return nil, err
	}
	if err := drv.Open(dsn); err != nil {
		return nil, err
	}
	return &DB{driver: drv, path: dsn}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.driver.Close()
}

// Path returns the database DSN/path.
func (d *DB) Path() string {
	return d.path
}

// DB returns the underlying sql.DB for advanced operations.
func (d *DB) DB() *sql.DB {
	return d.driver.DB()
}

// Dialect returns the database dialect.
func (d *DB) Dialect() driver.Dialect {
	return d.driver.Dialect()
}

// Migrate runs all migrations for the given schema type.
// Schema files are named {type}_NNN.sql (e.g., blobs_001.sql).
func (d *DB) Migrate(ctx context.Context, schemaType string) error {
	if err := d.driver.Migrate(ctx, schemaFS, schemaType); err != nil {
		return fmt.Errorf("migrate %s: %w", schemaType, err)
	}
	return nil
}
