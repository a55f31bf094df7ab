// Package security keeps the daemon's files inside its data directory.
package security

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

var (
	ErrPathEscapes  = errors.New("path escapes data directory")
	ErrAbsolutePath = errors.New("absolute paths are not allowed")
	ErrEmptyPath    = errors.New("empty path not allowed")
	ErrNotRegular   = errors.New("not a regular file")
)

// ValidateName checks a file name relative to the data directory and
// returns it cleaned. It rejects empty, absolute and escaping paths and
// Windows reserved names.
func ValidateName(name string) (string, error) {
	if name == "" {
		return "", ErrEmptyPath
	}
	if !filepath.IsLocal(name) {
		if filepath.IsAbs(name) {
			return "", fmt.Errorf("%w: %s", ErrAbsolutePath, name)
		}
		return "", fmt.Errorf("%w: %s", ErrPathEscapes, name)
	}
	return filepath.Clean(name), nil
}

// DataDir is an opened data directory. Lookups go through os.Root, so a
// symlink cannot lead them outside it.
type DataDir struct {
	root *os.Root
	path string
}

// OpenDataDir creates the directory if needed with owner-only permissions
// and opens it
func OpenDataDir(path string) (*DataDir, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	if err := os.MkdirAll(absPath, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat data dir: %w", err)
	}
	if info.Mode().Perm()&0077 != 0 {
		if err := os.Chmod(absPath, 0700); err != nil {
			return nil, fmt.Errorf("failed to restrict data dir: %w", err)
		}
	}

	root, err := os.OpenRoot(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open data dir: %w", err)
	}
	return &DataDir{root: root, path: absPath}, nil
}

// Close releases the directory handle
func (d *DataDir) Close() error {
	return d.root.Close()
}

// Path returns the absolute directory path
func (d *DataDir) Path() string {
	return d.path
}

// Resolve returns the absolute path of name inside the directory. An
// existing entry must be a regular file reachable without leaving the root.
func (d *DataDir) Resolve(name string) (string, error) {
	clean, err := ValidateName(name)
	if err != nil {
		return "", err
	}

	info, err := d.root.Lstat(clean)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return "", fmt.Errorf("%w: %s", ErrPathEscapes, name)
	case !info.Mode().IsRegular():
		return "", fmt.Errorf("%w: %s", ErrNotRegular, name)
	}

	return filepath.Join(d.path, clean), nil
}
