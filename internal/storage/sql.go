package storage

import (
	"context"
	"errors"

	"github.com/randalmurphal/taskdeck/internal/db"
)

// SQLBlob stores values in the blobs table of a SQLite or PostgreSQL database.
type SQLBlob struct {
	db *db.DB
}

// NewSQLBlob wraps an open database and applies the blobs migrations.
// The SQLBlob takes ownership of d and closes it on Close.
func NewSQLBlob(ctx context.Context, d *db.DB) (*SQLBlob, error) {
	if err := d.Migrate(ctx, db.SchemaBlobs); err != nil {
		return nil, err
	}
	return &SQLBlob{db: d}, nil
}

// Get returns the payload for key.
func (s *SQLBlob) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.db.GetBlob(ctx, key)
	if errors.Is(err, db.ErrBlobNotFound) {
		return nil, ErrNotFound
	}
	return data, err
}

// Put upserts the payload for key.
func (s *SQLBlob) Put(ctx context.Context, key string, data []byte) error {
	return s.db.PutBlob(ctx, key, data)
}

// Delete removes the row for key.
func (s *SQLBlob) Delete(ctx context.Context, key string) error {
	return s.db.DeleteBlob(ctx, key)
}

// Close closes the database.
func (s *SQLBlob) Close() error {
	return s.db.Close()
}
