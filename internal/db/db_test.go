package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestOpen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	if db.Path() != dbPath {
		t.Errorf("Path() = %q, want %q", db.Path(), dbPath)
	}

	var journalMode string
	if err := db.DB().QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("journal_mode = %q, want wal", journalMode)
	}
}

func TestOpen_CreatesParentDir(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "nested", "test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	db.Close()
}

func TestMigrate_Idempotent(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx, SchemaBlobs); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if err := db.Migrate(ctx, SchemaBlobs); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}

	var count int
	if err := db.DB().QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='blobs'").Scan(&count); err != nil {
		t.Fatalf("query tables: %v", err)
	}
	if count != 1 {
		t.Errorf("blobs table missing after migrate")
	}
}

func TestBlobs_RoundTrip(t *testing.T) {
	t.Parallel()
	db := NewTestDB(t)
	ctx := context.Background()

	if _, err := db.GetBlob(ctx, "missing"); !errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("GetBlob(missing) err = %v, want ErrBlobNotFound", err)
	}

	if err := db.PutBlob(ctx, "state", []byte(`{"v":1}`)); err != nil {
		t.Fatalf("PutBlob failed: %v", err)
	}
	if err := db.PutBlob(ctx, "state", []byte(`{"v":2}`)); err != nil {
		t.Fatalf("PutBlob overwrite failed: %v", err)
	}

	got, err := db.GetBlob(ctx, "state")
	if err != nil {
		t.Fatalf("GetBlob failed: %v", err)
	}
	if string(got) != `{"v":2}` {
		t.Errorf("GetBlob = %s, want overwritten payload", got)
	}

	if err := db.DeleteBlob(ctx, "state"); err != nil {
		t.Fatalf("DeleteBlob failed: %v", err)
	}
	if err := db.DeleteBlob(ctx, "state"); err != nil {
		t.Fatalf("DeleteBlob of missing key failed: %v", err)
	}
	if _, err := db.GetBlob(ctx, "state"); !errors.Is(err, ErrBlobNotFound) {
		t.Errorf("GetBlob after delete err = %v, want ErrBlobNotFound", err)
	}
}

func TestBlobs_KeysIsolated(t *testing.T) {
	t.Parallel()
	db := NewTestDB(t)
	ctx := context.Background()

	if err := db.PutBlob(ctx, "a", []byte("one")); err != nil {
		t.Fatal(err)
	}
	if err := db.PutBlob(ctx, "b", []byte("two")); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetBlob(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "one" {
		t.Errorf("key a = %q, want one", got)
	}
}
