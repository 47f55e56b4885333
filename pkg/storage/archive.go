package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Archive keeps rendered day-sheet exports on disk in a single flat
// directory, one file per day and format.
type Archive struct {
	dir string
}

// NewArchive ensures the directory exists and returns a handle.
func NewArchive(dir string) (*Archive, error) {
	if dir == "" {
		dir = "./exports"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}
	return &Archive{dir: dir}, nil
}

// Save writes a rendered export, replacing any earlier copy with the same
// name. Only the base name is used, so callers cannot escape the directory.
func (a *Archive) Save(filename string, data []byte) (string, error) {
	path := filepath.Join(a.dir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write archived export: %w", err)
	}
	return path, nil
}

// Prune removes archived exports older than the retention period and
// reports how many were removed.
func (a *Archive) Prune(retention time.Duration) (int, error) {
	cutoff := time.Now().Add(-retention)
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return 0, fmt.Errorf("read archive directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return removed, fmt.Errorf("stat archived export: %w", err)
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(a.dir, entry.Name())); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("remove archived export: %w", err)
		}
		removed++
	}
	return removed, nil
}
