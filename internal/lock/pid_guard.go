// Package lock keeps a data directory to a single writing process.
//
// The store assumes it is the only writer of its persisted blob. The guard
// records the owning PID in the data directory; a second process opening the
// same directory is refused until the owner exits. Stale PID files left by a
// crashed process are cleaned up on the next Check.
package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// PIDFileName is the name of the PID file in the data directory.
const PIDFileName = ".taskdeck.pid"

// WriterGuard prevents two processes from writing the same data directory.
type WriterGuard struct {
	dir string
}

// NewWriterGuard creates a guard for the given data directory.
func NewWriterGuard(dir string) *WriterGuard {
	return &WriterGuard{dir: dir}
}

// Dir returns the guarded directory.
func (g *WriterGuard) Dir() string {
	return g.dir
}

func (g *WriterGuard) pidFilePath() string {
	return filepath.Join(g.dir, PIDFileName)
}

// Check verifies no live process holds the guard.
// Stale or unparseable PID files are removed.
func (g *WriterGuard) Check() error {
	pidFile := g.pidFilePath()

	data, err := os.ReadFile(pidFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read pid file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		_ = os.Remove(pidFile)
		return nil
	}

	if processExists(pid) {
		return &HeldError{PID: pid, Dir: g.dir}
	}

	_ = os.Remove(pidFile)
	return nil
}

// Acquire writes the current process PID to the guard file.
// Call Check() before Acquire() to ensure no conflict.
func (g *WriterGuard) Acquire() error {
	if err := os.MkdirAll(g.dir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	if err := os.WriteFile(g.pidFilePath(), []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	return nil
}

// Lock runs Check followed by Acquire.
func (g *WriterGuard) Lock() error {
	if err := g.Check(); err != nil {
		return err
	}
	return g.Acquire()
}

// Release removes the PID file if this process owns it.
// Safe to call even if the file doesn't exist.
func (g *WriterGuard) Release() {
	data, err := os.ReadFile(g.pidFilePath())
	if err != nil {
		return
	}
	if strings.TrimSpace(string(data)) != strconv.Itoa(os.Getpid()) {
		return
	}
	_ = os.Remove(g.pidFilePath())
}

// HeldError indicates another live process owns the directory.
type HeldError struct {
	PID int
	Dir string
}

func (e *HeldError) Error() string {
	return fmt.Sprintf("data directory %s held by pid %d", e.Dir, e.PID)
}

// processExists checks if a process with the given PID exists.
func processExists(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	// On Unix, FindProcess always succeeds. Signal 0 probes for existence.
	err = process.Signal(syscall.Signal(0))
	return err == nil
}
