package lasio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopia-map/pointcloud_updater/internal/data"
)

func TestIsPointCloudFile(t *testing.T) {
	for path, want := range map[string]bool{
		"a.las":        true,
		"B.LAZ":        true,
		"dir/c.zlas":   true,
		"d.lasx":       false,
		"e.lasd.json":  false,
		"no_extension": false,
	} {
		assert.Equal(t, want, IsPointCloudFile(path), path)
	}
}

func TestCompressedFormatsAreNotReadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tile.laz")
	require.NoError(t, os.WriteFile(path, []byte("compressed"), 0666))

	_, err := Describe(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	err = ForEachPoint(path, func(p *data.Point) error { return nil })
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Extract(path, filepath.Join(t.TempDir(), "out.laz"), func(x, y float64) bool { return true })
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestCopyOverwrites(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "tile.laz")
	out := filepath.Join(dir, "Source_0.laz")
	require.NoError(t, os.WriteFile(in, []byte("points"), 0666))
	require.NoError(t, os.WriteFile(out, []byte("previous run, longer content"), 0666))

	require.NoError(t, Copy(in, out))
	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "points", string(content))

	assert.Error(t, Copy(filepath.Join(dir, "missing.las"), out))
}
