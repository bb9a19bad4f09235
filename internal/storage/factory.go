package storage

import (
	"context"
	"fmt"

	"github.com/randalmurphal/taskdeck/internal/config"
	"github.com/randalmurphal/taskdeck/internal/db"
	"github.com/randalmurphal/taskdeck/internal/db/driver"
)

// Open creates the Blob for the configured driver.
func Open(ctx context.Context, cfg config.StorageConfig) (Blob, error) {
	switch cfg.Driver {
	case config.DriverFile, "":
		return NewFileBlob(cfg.Dir)
	case config.DriverMemory:
		return NewMemoryBlob(), nil
	case config.DriverSQLite:
		return openSQL(ctx, cfg.SQLite.Path, driver.DialectSQLite)
	case config.DriverPostgres:
		return openSQL(ctx, cfg.Postgres.DSN, driver.DialectPostgres)
	case config.DriverS3:
		return NewS3Blob(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Driver)
	}
}

func openSQL(ctx context.Context, dsn string, dialect driver.Dialect) (Blob, error) {
	d, err := db.OpenWithDialect(dsn, dialect)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	b, err := NewSQLBlob(ctx, d)
	if err != nil {
		_ = d.Close()
		return nil, err
	}
	return b, nil
}
