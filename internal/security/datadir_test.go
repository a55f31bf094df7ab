package security

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		shouldErr bool
		errType   error
	}{
		// Valid names
		{"simple file", "hostlock.db", false, nil},
		{"file in subdirectory", "state/hostlock.db", false, nil},
		{"hidden file", ".hostlock.db", false, nil},
		{"dot slash", "./hostlock.db", false, nil},

		// Traversal attempts
		{"parent directory", "../hostlock.db", true, ErrPathEscapes},
		{"nested parent", "a/../../hostlock.db", true, ErrPathEscapes},
		{"absolute path unix", "/etc/passwd", true, ErrAbsolutePath},

		// Empty path
		{"empty path", "", true, ErrEmptyPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if runtime.GOOS == "windows" && tt.errType == ErrAbsolutePath {
				t.Skip("unix absolute path")
			}
			_, err := ValidateName(tt.input)
			if tt.shouldErr {
				if err == nil {
					t.Errorf("Expected error for %q", tt.input)
				} else if !errors.Is(err, tt.errType) {
					t.Errorf("Expected %v, got %v", tt.errType, err)
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error for %q: %v", tt.input, err)
			}
		})
	}
}

func TestOpenDataDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	path := filepath.Join(t.TempDir(), "data")
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}

	dir, err := OpenDataDir(path)
	if err != nil {
		t.Fatalf("Failed to open data dir: %v", err)
	}
	defer dir.Close()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Failed to stat: %v", err)
	}
	if info.Mode().Perm() != 0700 {
		t.Errorf("Expected 0700, got %o", info.Mode().Perm())
	}

	created, err := OpenDataDir(filepath.Join(t.TempDir(), "new", "nested"))
	if err != nil {
		t.Fatalf("Failed to create data dir: %v", err)
	}
	created.Close()
}

func TestResolve(t *testing.T) {
	base := t.TempDir()
	dir, err := OpenDataDir(base)
	if err != nil {
		t.Fatalf("Failed to open data dir: %v", err)
	}
	defer dir.Close()

	got, err := dir.Resolve("hostlock.db")
	if err != nil {
		t.Fatalf("Failed to resolve missing file: %v", err)
	}
	if got != filepath.Join(dir.Path(), "hostlock.db") {
		t.Errorf("Unexpected path %s", got)
	}

	if err := os.WriteFile(filepath.Join(base, "existing.db"), []byte("x"), 0600); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if _, err := dir.Resolve("existing.db"); err != nil {
		t.Errorf("Failed to resolve existing file: %v", err)
	}

	if err := os.Mkdir(filepath.Join(base, "adir"), 0700); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if _, err := dir.Resolve("adir"); !errors.Is(err, ErrNotRegular) {
		t.Errorf("Expected ErrNotRegular, got %v", err)
	}

	if _, err := dir.Resolve("../outside.db"); !errors.Is(err, ErrPathEscapes) {
		t.Errorf("Expected ErrPathEscapes, got %v", err)
	}
}

func TestResolveRejectsSymlinkOut(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	base := t.TempDir()
	outside := t.TempDir()
	if err := os.Symlink(outside, filepath.Join(base, "link")); err != nil {
		t.Fatalf("Failed to create symlink: %v", err)
	}

	dir, err := OpenDataDir(base)
	if err != nil {
		t.Fatalf("Failed to open data dir: %v", err)
	}
	defer dir.Close()

	if _, err := dir.Resolve("link/hostlock.db"); err == nil {
		t.Error("Expected error for path through an escaping symlink")
	}
}
