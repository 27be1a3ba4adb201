package retile

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopia-map/pointcloud_updater/tools"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte(n), 0666))
	}
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestRenameTiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir,
		"Source_0.las",
		"a_Source_0.las",
		"b_Updated_1.las",
		"c_Updated_0.las",
		"c_Updated_0.lasx",
		"notes.txt",
	)

	require.NoError(t, RenameTiles(dir, "Source", "Updated"))
	assert.Equal(t, []string{"Source_0.las", "Source_1.las", "Updated_0.las", "Updated_1.las", "notes.txt"}, listDir(t, dir))

	content, err := os.ReadFile(filepath.Join(dir, "Source_1.las"))
	require.NoError(t, err)
	assert.Equal(t, "a_Source_0.las", string(content))
	content, err = os.ReadFile(filepath.Join(dir, "Updated_0.las"))
	require.NoError(t, err)
	assert.Equal(t, "b_Updated_1.las", string(content))
}

func TestRenameTilesIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "x_Source_3.las", "y_Source_2.las", "z_Source_1_Updated_0.las")

	require.NoError(t, RenameTiles(dir, "Source", "Updated"))
	first := listDir(t, dir)
	require.NoError(t, RenameTiles(dir, "Source", "Updated"))

	assert.Equal(t, first, listDir(t, dir))
	assert.Equal(t, []string{"Source_0.las", "Source_1.las", "Updated_0.las"}, first)
}

func TestRenameAllVisitsEveryTileFolder(t *testing.T) {
	tiles := t.TempDir()
	for _, folder := range []string{"tile_0", "tile_7"} {
		require.NoError(t, os.MkdirAll(filepath.Join(tiles, folder), 0777))
		touch(t, filepath.Join(tiles, folder), "frag_Updated_3.las", "frag_Updated_1.las")
	}
	touch(t, tiles, "Source_4.las")

	require.NoError(t, RenameAll(tools.NewStandardFileFinder(), tiles))
	assert.Equal(t, []string{"Updated_0.las", "Updated_1.las"}, listDir(t, filepath.Join(tiles, "tile_7")))
	assert.True(t, tools.FileExists(filepath.Join(tiles, "Source_4.las")), "copied tiles are left alone")
}

func TestRenameExtension(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.las", "b.las", "c.laz")

	n, err := RenameExtension(dir, ".las", ".laz")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"a.laz", "b.laz", "c.laz"}, listDir(t, dir))

	_, err = RenameExtension(filepath.Join(dir, "missing"), ".las", ".laz")
	assert.Error(t, err)
}
