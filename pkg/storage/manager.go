package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Manager owns the covers directory. It scans existing files once at
// startup so existence checks stay O(1); the derived filename doubles as
// the cache key, which is what makes re-runs idempotent without loading
// any metadata.
type Manager struct {
	dir      string
	existing map[string]bool
	mu       sync.RWMutex
}

// NewManager creates the directory if needed and indexes its contents.
func NewManager(dir string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create covers directory: %w", err)
	}

	m := &Manager{
		dir:      dir,
		existing: make(map[string]bool),
	}

	if err := m.scanExistingFiles(); err != nil {
		return nil, fmt.Errorf("failed to scan covers directory: %w", err)
	}

	return m, nil
}

// scanExistingFiles indexes files already present in the directory.
func (m *Manager) scanExistingFiles() error {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			m.existing[entry.Name()] = true
		}
	}

	return nil
}

// Exists reports whether a file with the given name has been stored.
func (m *Manager) Exists(filename string) bool {
	m.mu.RLock()
	if m.existing[filename] {
		m.mu.RUnlock()
		return true
	}
	m.mu.RUnlock()

	// Double-check on disk in case the file appeared after the scan.
	if _, err := os.Stat(filepath.Join(m.dir, filename)); err == nil {
		m.mu.Lock()
		m.existing[filename] = true
		m.mu.Unlock()
		return true
	}

	return false
}

// Save writes the file atomically via a temporary file and rename, so an
// interrupted run never leaves a truncated cover behind.
func (m *Manager) Save(r io.Reader, filename string) error {
	path := filepath.Join(m.dir, filename)
	tempPath := path + ".tmp"

	out, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	_, err = io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to write file data: %w", err)
	}
	if closeErr != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	m.mu.Lock()
	m.existing[filename] = true
	m.mu.Unlock()

	return nil
}

// Dir returns the covers directory path.
func (m *Manager) Dir() string {
	return m.dir
}

// Count returns the number of stored files.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.existing)
}
