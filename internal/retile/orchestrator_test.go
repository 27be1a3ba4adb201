package retile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopia-map/pointcloud_updater/internal/converters"
	"github.com/ecopia-map/pointcloud_updater/internal/cutter"
	"github.com/ecopia-map/pointcloud_updater/internal/data"
	"github.com/ecopia-map/pointcloud_updater/internal/engine/enginetest"
	"github.com/ecopia-map/pointcloud_updater/internal/geometry"
	"github.com/ecopia-map/pointcloud_updater/tools"
)

type retileFixture struct {
	tiles    string
	scratch  string
	temp     string
	engine   *enginetest.Engine
	warnings *data.WarningCollector
	sources  []data.Tile
}

func newRetileFixture(t *testing.T) *retileFixture {
	t.Helper()
	root := t.TempDir()
	f := &retileFixture{
		tiles:    filepath.Join(root, "tiles"),
		temp:     filepath.Join(root, "temp"),
		engine:   enginetest.New(),
		warnings: data.NewWarningCollector(),
		sources: []data.Tile{
			{ID: 0, Path: "/data/a.las", Extent: geometry.BoundingBox{Xmin: 10, Xmax: 20, Ymax: 10}},
			{ID: 3, Path: "/data/b.las", Extent: geometry.BoundingBox{Xmax: 10, Ymax: 10}},
		},
	}
	require.NoError(t, os.MkdirAll(f.temp, 0777))
	f.scratch = cutter.ScratchFolder(f.tiles, 3)

	box := geometry.BoundingBox{Xmax: 10, Ymax: 10}
	require.NoError(t, enginetest.WritePoints(filepath.Join(f.scratch, "b_Source_0.las"), enginetest.Fill(box, 1, 1)))
	require.NoError(t, enginetest.WritePoints(filepath.Join(f.scratch, "u_Updated_0.las"), []enginetest.Point{{X: 5, Y: 5}, {X: 10, Y: 10}}))
	return f
}

func (f *retileFixture) orchestrator(numSplits int) *Orchestrator {
	return NewOrchestrator(f.engine, tools.NewStandardFileFinder(), f.sources, f.tiles, f.temp, numSplits,
		converters.SpatialReference{LinearUnit: converters.UnitMeter}, f.warnings)
}

func TestRetileSplitsModifiedTiles(t *testing.T) {
	f := newRetileFixture(t)
	o := f.orchestrator(1)

	cut := cutter.Result{ModifiedTiles: []int{3}, ScratchFolders: []string{f.scratch}}
	require.NoError(t, o.Retile(context.Background(), cut, 2))

	assert.Equal(t, PhaseCleanedUp, o.Phase())
	assert.NoDirExists(t, f.scratch)
	entries, err := os.ReadDir(f.temp)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary catalog removed")
	assert.Equal(t, 0, f.warnings.Len())

	tileFolder := cutter.TileFolder(f.tiles, 3)
	for _, name := range []string{
		"b_Source_0_Updated_0.las",
		"b_Source_0_Updated_1.las",
		"b_Source_0_Updated_2.las",
		"b_Source_0_Updated_3.las",
		"u_Updated_0_Updated_3.las",
	} {
		assert.True(t, tools.FileExists(filepath.Join(tileFolder, name)), name)
	}
	assert.False(t, tools.FileExists(filepath.Join(tileFolder, "u_Updated_0_Updated_0.las")))

	// every point lands in exactly one cell
	total := 0
	files, err := tools.NewStandardFileFinder().GetPointCloudFiles(tileFolder, false)
	require.NoError(t, err)
	for _, file := range files {
		points, err := enginetest.ReadPoints(file)
		require.NoError(t, err)
		total += len(points)
	}
	assert.Equal(t, 102, total)

	var suffixes []string
	for _, e := range f.engine.Extractions() {
		suffixes = append(suffixes, e.Suffix)
	}
	assert.Equal(t, []string{"Updated_3", "Updated_2", "Updated_1", "Updated_0"}, suffixes)
}

func TestRetileFailureIsAWarning(t *testing.T) {
	f := newRetileFixture(t)
	f.engine.FailExtract["Updated_3"] = true
	o := f.orchestrator(1)

	cut := cutter.Result{ModifiedTiles: []int{3}, ScratchFolders: []string{f.scratch}}
	require.NoError(t, o.Retile(context.Background(), cut, 1))

	require.Equal(t, 1, f.warnings.Len())
	assert.Equal(t, 3, f.warnings.List()[0].TileID)
	assert.Empty(t, f.engine.Extractions(), "remaining cells of the tile are skipped")
	assert.NoDirExists(t, f.scratch)
	assert.Equal(t, PhaseCleanedUp, o.Phase())
}

func TestRetileWithoutFragments(t *testing.T) {
	f := newRetileFixture(t)
	empty := filepath.Join(f.tiles, "tile_0_scratch")
	require.NoError(t, os.MkdirAll(empty, 0777))
	o := f.orchestrator(2)

	cut := cutter.Result{ModifiedTiles: []int{0}, ScratchFolders: []string{empty}}
	require.NoError(t, o.Retile(context.Background(), cut, 1))
	assert.Empty(t, f.engine.Extractions())
	assert.NoDirExists(t, empty)
}

func TestPlanSkipsUnknownTiles(t *testing.T) {
	f := newRetileFixture(t)
	units, err := f.orchestrator(1).Plan([]int{3, 9, 0})
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, 3, units[0].Tile.ID)
	assert.Len(t, units[0].Grid.Cells(), 4)
	assert.Equal(t, cutter.TileFolder(f.tiles, 0), units[1].BasePath)
}
