package storage

import (
	"testing"

	"github.com/randalmurphal/taskdeck/internal/db"
)

// NewTestSQLBlob creates a SQLBlob over an in-memory SQLite database.
// The blob is automatically closed when the test completes.
func NewTestSQLBlob(t testing.TB) *SQLBlob {
	t.Helper()

	d, err := db.OpenInMemory()
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	b := &SQLBlob{db: d}

	t.Cleanup(func() {
		_ = b.Close()
	})

	return b
}
