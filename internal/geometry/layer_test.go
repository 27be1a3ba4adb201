package geometry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ctessum/geom/encoding/shp"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayerSaveKeepsLongPathsOutOfTheShapefile(t *testing.T) {
	dir := t.TempDir()
	longName := strings.Repeat("x", 60) + ".las"
	tilePath := filepath.Join(dir, "source", "tiles", longName)
	require.Greater(t, len(tilePath), dbfStringLength)

	layer := &Layer{
		Name: "source_tile_extents",
		Features: []Feature{
			{Geometry: Rectangle(0, 0, 10, 10), ID: 0, Status: "Updated", Dataset: "Source", Path: tilePath, Zmin: 1, Zmax: 2},
			{Geometry: Rectangle(10, 0, 20, 10), ID: 1, Path: filepath.Join(dir, "short.las")},
		},
	}
	out := filepath.Join(dir, "layers", "extents.shp")
	require.NoError(t, layer.Save(Disk(out)))

	decoder, err := shp.NewDecoder(out)
	require.NoError(t, err)
	defer decoder.Close()
	var names []string
	for {
		_, fields, more := decoder.DecodeRowFields("LAS", "STATUS")
		if !more {
			break
		}
		names = append(names, fields["LAS"])
	}
	require.NoError(t, decoder.Error())
	assert.Equal(t, []string{longName[:dbfStringLength], "short.las"}, names)

	content, err := os.ReadFile(filepath.Join(dir, "layers", "extents.geojson"))
	require.NoError(t, err)
	fc, err := geojson.UnmarshalFeatureCollection(content)
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, tilePath, fc.Features[0].Properties["LAS"])

	merged, err := ReadPolygons(out)
	require.NoError(t, err)
	assert.InDelta(t, 200, Area(merged), 1e-6)
}

func TestDbfString(t *testing.T) {
	assert.Equal(t, "Source", dbfString("Source"))
	assert.Len(t, dbfString(strings.Repeat("a", 80)), dbfStringLength)

	// a two byte character straddling the limit is dropped whole
	s := strings.Repeat("a", dbfStringLength-1) + "é"
	assert.Equal(t, strings.Repeat("a", dbfStringLength-1), dbfString(s))
}

func TestStorageString(t *testing.T) {
	assert.Equal(t, "IN_MEMORY", Memory().String())
	assert.Equal(t, "ON_DISK(a.shp)", Disk("a.shp").String())
	assert.NoError(t, (&Layer{Name: "noop"}).Save(Memory()))
}
