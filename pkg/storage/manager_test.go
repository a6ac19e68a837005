package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestManager(t *testing.T) {
	tempDir := t.TempDir()

	manager, err := NewManager(filepath.Join(tempDir, "covers"))
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	if manager.Count() != 0 {
		t.Error("expected empty directory on first run")
	}
	if manager.Exists("the_hunger_games.jpg") {
		t.Error("expected Exists to return false for a new name")
	}

	data := []byte("jpeg bytes")
	if err := manager.Save(bytes.NewReader(data), "the_hunger_games.jpg"); err != nil {
		t.Fatalf("failed to save file: %v", err)
	}

	path := filepath.Join(manager.Dir(), "the_hunger_games.jpg")
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read saved file: %v", err)
	}
	if !bytes.Equal(content, data) {
		t.Error("file content does not match")
	}

	if !manager.Exists("the_hunger_games.jpg") {
		t.Error("expected Exists to return true after save")
	}
	if manager.Count() != 1 {
		t.Errorf("expected count 1, got %d", manager.Count())
	}

	// No stray temporary files after a successful save.
	entries, err := os.ReadDir(manager.Dir())
	if err != nil {
		t.Fatalf("failed to list directory: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected exactly one file, found %d", len(entries))
	}
}

func TestManagerScansExistingFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "old_cover.jpg"), []byte("x"), 0644); err != nil {
		t.Fatalf("failed to seed directory: %v", err)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	if !manager.Exists("old_cover.jpg") {
		t.Error("expected pre-existing file to be indexed")
	}
	if manager.Count() != 1 {
		t.Errorf("expected count 1 after scan, got %d", manager.Count())
	}
}
