package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopia-map/pointcloud_updater/internal/converters"
	"github.com/ecopia-map/pointcloud_updater/internal/data"
	"github.com/ecopia-map/pointcloud_updater/internal/geometry"
)

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	extent := geometry.BoundingBox{Xmin: 1, Xmax: 2, Ymin: 3, Ymax: 4, Zmin: 5, Zmax: 6}
	ds := &Dataset{
		Name:             "lidar_2019",
		SpatialReference: converters.SpatialReference{WKID: 2277, LinearUnit: converters.UnitFoot},
		Files: []FileRecord{
			{Path: "tiles/a.las", Extent: &extent, PointCount: 12},
			{Path: filepath.Join(dir, "b.las")},
		},
	}

	path := filepath.Join(dir, "lidar_2019"+ManifestExtension)
	require.NoError(t, ds.Save(path))
	assert.Equal(t, path, ds.Path)

	loaded, err := Load(path)
	require.NoError(t, err)

	want := []FileRecord{
		{Path: filepath.Join(dir, "tiles", "a.las"), Extent: &extent, PointCount: 12},
		{Path: filepath.Join(dir, "b.las")},
	}
	if diff := cmp.Diff(want, loaded.Files); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, ds.SpatialReference, loaded.SpatialReference)
	assert.Equal(t, 12, loaded.PointCount())
	assert.Equal(t, extent, loaded.Extent(), "files without extent are ignored")
}

func TestSaveRejectsOtherExtensions(t *testing.T) {
	ds := &Dataset{Name: "x"}
	assert.Error(t, ds.Save(filepath.Join(t.TempDir(), "x.json")))
}

func TestLoadDefaultsNameToFileName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "update"+ManifestExtension)
	require.NoError(t, os.WriteFile(path, []byte(`{"files": []}`), 0666))

	ds, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "update", ds.Name)
	assert.Equal(t, path, ds.String())

	require.NoError(t, os.WriteFile(path, []byte(`{"files": `), 0666))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestSubsetKeepsCatalogOrder(t *testing.T) {
	ds := &Dataset{Name: "x", Files: []FileRecord{{Path: "a"}, {Path: "b"}, {Path: "c"}}}

	sub := ds.Subset("c", "a", "missing")
	assert.Equal(t, []string{"a", "c"}, sub.FilePaths())
	assert.Equal(t, "x", sub.Name)
	assert.Len(t, ds.Files, 3)
}

func TestCheckSingleFormat(t *testing.T) {
	assert.NoError(t, CheckSingleFormat("dir", []string{"a.las", "b.LAS"}))
	assert.NoError(t, CheckSingleFormat("dir", nil))

	err := CheckSingleFormat("dir", []string{"a.las", "b.laz", "c.las", "d.zlas"})
	var mixed *data.MixedFormatError
	require.ErrorAs(t, err, &mixed)
	assert.Equal(t, []string{".las", ".laz", ".zlas"}, mixed.Extensions)
	assert.True(t, IsManifestPath("A.LASD.JSON"))
}

type mapDescriber map[string]geometry.BoundingBox

func (m mapDescriber) DescribeExtent(path string) (geometry.BoundingBox, error) {
	box, ok := m[path]
	if !ok {
		return box, errors.New("cannot read " + path)
	}
	return box, nil
}

func TestBuildTileExtents(t *testing.T) {
	describer := mapDescriber{
		"a.las": {Xmax: 10, Ymax: 10},
		"b.las": {Xmin: 10, Xmax: 20, Ymax: 10},
		"c.las": {Xmin: 20, Xmax: 30, Ymax: 10},
	}
	ds := &Dataset{Name: "x", Files: []FileRecord{{Path: "a.las"}, {Path: "b.las"}, {Path: "c.las"}}}

	tiles, err := BuildTileExtents(context.Background(), ds, describer, 2, data.ProvenanceSource)
	require.NoError(t, err)
	require.Len(t, tiles, 3)
	for i, tile := range tiles {
		assert.Equal(t, i, tile.ID)
		assert.Equal(t, ds.Files[i].Path, tile.Path)
		assert.Equal(t, describer[tile.Path], tile.Extent)
		assert.Equal(t, data.ProvenanceSource, tile.Origin)
	}
	assert.Equal(t, 1, IndexOf(tiles, 1))
	assert.Equal(t, -1, IndexOf(tiles, 7))

	layer := ExtentsLayer("extents", tiles)
	require.Len(t, layer.Features, 3)
	assert.Equal(t, "b.las", layer.Features[1].Path)
}

func TestBuildTileExtentsFailures(t *testing.T) {
	ds := &Dataset{Name: "x", Files: []FileRecord{{Path: "a.las"}, {Path: "missing.las"}}}
	_, err := BuildTileExtents(context.Background(), ds, mapDescriber{"a.las": {}}, 1, data.ProvenanceSource)
	var engineErr *data.EngineExecutionError
	assert.ErrorAs(t, err, &engineErr)

	mixed := &Dataset{Name: "x", Files: []FileRecord{{Path: "a.las"}, {Path: "b.laz"}}}
	_, err = BuildTileExtents(context.Background(), mixed, mapDescriber{}, 1, data.ProvenanceSource)
	var mixedErr *data.MixedFormatError
	assert.ErrorAs(t, err, &mixedErr)
}
