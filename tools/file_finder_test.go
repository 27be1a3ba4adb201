package tools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0777))
	require.NoError(t, os.WriteFile(path, nil, 0666))
}

func TestGetPointCloudFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.las"))
	touch(t, filepath.Join(dir, "a.laz"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "tile_0", "Source_0.las"))

	finder := NewStandardFileFinder()
	flat, err := finder.GetPointCloudFiles(dir, false)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.laz"), filepath.Join(dir, "b.las")}, flat)

	all, err := finder.GetPointCloudFiles(dir, true)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = finder.GetPointCloudFiles(filepath.Join(dir, "missing"), true)
	assert.Error(t, err)
}

func TestGetSubFolders(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "tile_1", "x.las"))
	touch(t, filepath.Join(dir, "tile_0", "x.las"))
	touch(t, filepath.Join(dir, "Source_2.las"))

	folders, err := NewStandardFileFinder().GetSubFolders(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "tile_0"), filepath.Join(dir, "tile_1")}, folders)
}

func TestFilenameHelpers(t *testing.T) {
	assert.Equal(t, "tile", GetFilenameWithoutExtension("/data/tile.las"))
	assert.Equal(t, "scratch", GetScratchFolder("scratch"))
	assert.Equal(t, os.TempDir(), GetScratchFolder(""))
	assert.False(t, FileExists(t.TempDir()))
}

func TestCreateDirectoryIfDoesNotExist(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, CreateDirectoryIfDoesNotExist(nested))
	assert.DirExists(t, nested)
	assert.NoError(t, CreateDirectoryIfDoesNotExist(nested))

	file := filepath.Join(dir, "file")
	touch(t, file)
	assert.Error(t, CreateDirectoryIfDoesNotExist(file))
}
