// Package db provides test utilities for database operations.
//
// Tests that need SQL-backed persistence should use NewTestDB:
// - In-memory databases for speed
// - Proper cleanup via t.Cleanup()
// - Migrations already applied
package db

import (
	"testing"
)

// NewTestDB creates an in-memory database with the blobs schema applied.
// The database is automatically closed when the test completes.
//
// Usage:
//
//	func TestSomething(t *testing.T) {
//	    t.Parallel()
//	    d := db.NewTestDB(t)
//	    // use d...
//	}
func NewTestDB(t testing.TB) *DB {
	t.Helper()

	d, err := OpenInMemory()
	if err != nil {
		t.Fatalf("create test db: %v", err)
	}

	t.Cleanup(func() {
		_ = d.Close()
	})

	return d
}
