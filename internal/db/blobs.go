package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/randalmurphal/taskdeck/internal/db/driver"
)

// ErrBlobNotFound is returned when no row exists for a key.
var ErrBlobNotFound = errors.New("blob not found")

// GetBlob returns the payload stored under key.
func (d *DB) GetBlob(ctx context.Context, key string) ([]byte, error) {
	q := "SELECT payload FROM blobs WHERE key = " + d.driver.Placeholder(1)

	var payload []byte
	if err := d.driver.QueryRow(ctx, q, key).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("get blob %s: %w", key, err)
	}
	return payload, nil
}

// PutBlob inserts or replaces the payload stored under key.
func (d *DB) PutBlob(ctx context.Context, key string, payload []byte) error {
	var q string
	switch d.Dialect() {
	case driver.DialectPostgres:
		q = `INSERT INTO blobs (key, payload, updated_at) VALUES ($1, $2, NOW())
			ON CONFLICT (key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`
	default:
		q = `INSERT INTO blobs (key, payload, updated_at) VALUES (?, ?, datetime('now'))
			ON CONFLICT (key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`
	}

	if _, err := d.driver.Exec(ctx, q, key, payload); err != nil {
		return fmt.Errorf("put blob %s: %w", key, err)
	}
	return nil
}

// DeleteBlob removes the row for key. Deleting a missing key is not an error.
func (d *DB) DeleteBlob(ctx context.Context, key string) error {
	q := "DELETE FROM blobs WHERE key = " + d.driver.Placeholder(1)
	if _, err := d.driver.Exec(ctx, q, key); err != nil {
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	return nil
}
