package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveWritesFlatFile(t *testing.T) {
	dir := t.TempDir()
	archive, err := NewArchive(dir)
	require.NoError(t, err)

	path, err := archive.Save("attendance_2026-09-01.csv", []byte("Class,Name\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "attendance_2026-09-01.csv"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Class,Name\n", string(content))
}

func TestSaveStripsDirectoryComponents(t *testing.T) {
	dir := t.TempDir()
	archive, err := NewArchive(dir)
	require.NoError(t, err)

	path, err := archive.Save("../../etc/attendance.csv", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "attendance.csv"), path)
}

func TestPruneRemovesOnlyOldFiles(t *testing.T) {
	dir := t.TempDir()
	archive, err := NewArchive(dir)
	require.NoError(t, err)

	old, err := archive.Save("attendance_2026-08-01.csv", []byte("old"))
	require.NoError(t, err)
	stale := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(old, stale, stale))

	fresh, err := archive.Save("attendance_2026-09-01.csv", []byte("fresh"))
	require.NoError(t, err)

	removed, err := archive.Prune(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(old)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	assert.NoError(t, err)
}
