package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/randalmurphal/taskdeck/internal/config"
	deckerrors "github.com/randalmurphal/taskdeck/internal/errors"
	"github.com/randalmurphal/taskdeck/internal/lock"
)

// FileBlob stores each key as <dir>/<config.BlobName(key)>. Opening it takes the
// directory's writer guard; Close releases it.
type FileBlob struct {
	dir   string
	guard *lock.WriterGuard
}

// NewFileBlob opens dir, creating it if needed. It fails with STORE_LOCKED
// when another live process holds the directory.
func NewFileBlob(dir string) (*FileBlob, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	guard := lock.NewWriterGuard(dir)
	if err := guard.Lock(); err != nil {
		var held *lock.HeldError
		if errors.As(err, &held) {
			return nil, deckerrors.ErrStoreLocked(dir, held.PID)
		}
		return nil, err
	}

	return &FileBlob{dir: dir, guard: guard}, nil
}

// Dir returns the data directory.
func (f *FileBlob) Dir() string {
	return f.dir
}

func (f *FileBlob) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(f.dir, config.BlobName(key)), nil
}

// Get reads the file for key.
func (f *FileBlob) Get(_ context.Context, key string) ([]byte, error) {
	p, err := f.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	return data, nil
}

// Put writes data to a temp file in the same directory and renames it over
// the target, so readers never observe a partial file.
func (f *FileBlob) Put(_ context.Context, key string, data []byte) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, "."+key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("rename to %s: %w", p, err)
	}
	return nil
}

// Delete removes the file for key.
func (f *FileBlob) Delete(_ context.Context, key string) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", p, err)
	}
	return nil
}

// Close releases the writer guard.
func (f *FileBlob) Close() error {
	f.guard.Release()
	return nil
}
