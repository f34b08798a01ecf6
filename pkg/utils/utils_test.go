package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileExists(t *testing.T) {
	// Test with existing file
	tempFile := filepath.Join(t.TempDir(), "test.txt")
	if err := os.WriteFile(tempFile, []byte("test"), 0644); err != nil {
		t.Fatal(err)
	}

	if !FileExists(tempFile) {
		t.Errorf("FileExists() = false, want true for existing file")
	}

	// Test with non-existing file
	nonExistentFile := filepath.Join(t.TempDir(), "nonexistent.txt")
	if FileExists(nonExistentFile) {
		t.Errorf("FileExists() = true, want false for non-existing file")
	}

	// A directory is not a file
	if FileExists(t.TempDir()) {
		t.Errorf("FileExists() = true, want false for a directory")
	}
}

func TestDirExists(t *testing.T) {
	// Test with existing directory
	tempDir := t.TempDir()
	if !DirExists(tempDir) {
		t.Errorf("DirExists() = false, want true for existing directory")
	}

	// Test with non-existing directory
	nonExistentDir := filepath.Join(tempDir, "nonexistent")
	if DirExists(nonExistentDir) {
		t.Errorf("DirExists() = true, want false for non-existing directory")
	}
}

func TestEnsureDir(t *testing.T) {
	tempDir := t.TempDir()
	newDir := filepath.Join(tempDir, "newdir")

	if err := EnsureDir(newDir); err != nil {
		t.Errorf("EnsureDir() error = %v", err)
	}

	if !DirExists(newDir) {
		t.Errorf("EnsureDir() did not create directory")
	}

	// Test with existing directory
	if err := EnsureDir(newDir); err != nil {
		t.Errorf("EnsureDir() error = %v for existing directory", err)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available")
	}

	expanded := ExpandHome("~/journal.db")
	if !strings.HasPrefix(expanded, home) {
		t.Errorf("ExpandHome() = %s, want prefix %s", expanded, home)
	}

	// Paths without ~ are untouched
	plain := "/tmp/journal.db"
	if ExpandHome(plain) != plain {
		t.Errorf("ExpandHome() modified plain path %s", plain)
	}
}

func TestContains(t *testing.T) {
	slice := []string{"a", "b", "c"}

	if !Contains(slice, "b") {
		t.Errorf("Contains() = false, want true for existing item")
	}

	if Contains(slice, "d") {
		t.Errorf("Contains() = true, want false for non-existing item")
	}
}
