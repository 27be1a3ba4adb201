package consistency

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopia-map/pointcloud_updater/internal/catalog"
	"github.com/ecopia-map/pointcloud_updater/internal/converters"
	"github.com/ecopia-map/pointcloud_updater/internal/data"
)

type staticSource map[string]converters.SpatialReference

func (s staticSource) CoordinateSystemOf(ds *catalog.Dataset) (converters.SpatialReference, error) {
	sr, ok := s[ds.Name]
	if !ok {
		return sr, errors.New("unknown dataset " + ds.Name)
	}
	return sr, nil
}

var stateplane = converters.SpatialReference{
	Name:         "NAD83 / Texas Central (ftUS)",
	WKID:         2277,
	LinearUnit:   converters.UnitFoot,
	VerticalWKID: 6360,
}

func TestCheckReturnsSharedReference(t *testing.T) {
	src := staticSource{"source": stateplane, "update": stateplane}

	sr, err := Check(src, &catalog.Dataset{Name: "source"}, &catalog.Dataset{Name: "update"})
	require.NoError(t, err)
	assert.Equal(t, stateplane, sr)
}

func TestCheckPropagatesEngineErrors(t *testing.T) {
	src := staticSource{"source": stateplane}

	_, err := Check(src, &catalog.Dataset{Name: "source"}, &catalog.Dataset{Name: "update"})
	assert.Error(t, err)
}

func TestCompareReportsFirstMismatch(t *testing.T) {
	for _, tc := range []struct {
		name     string
		update   func(sr converters.SpatialReference) converters.SpatialReference
		property string
	}{
		{
			name: "everything differs",
			update: func(sr converters.SpatialReference) converters.SpatialReference {
				return converters.SpatialReference{WKID: 32614, LinearUnit: converters.UnitMeter, VerticalWKID: 5703}
			},
			property: "coordinate system",
		},
		{
			name: "unit and vertical differ",
			update: func(sr converters.SpatialReference) converters.SpatialReference {
				sr.LinearUnit = converters.UnitMeter
				sr.VerticalWKID = 5703
				return sr
			},
			property: "linear unit",
		},
		{
			name: "vertical differs",
			update: func(sr converters.SpatialReference) converters.SpatialReference {
				sr.VerticalWKID = 0
				return sr
			},
			property: "vertical coordinate system",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := Compare(stateplane, tc.update(stateplane))

			var mismatch *data.ReferenceMismatchError
			require.ErrorAs(t, err, &mismatch)
			assert.Equal(t, tc.property, mismatch.Property)
		})
	}
}

func TestCompareNormalizesProj4(t *testing.T) {
	a := converters.SpatialReference{Proj4: "+proj=utm +zone=14 +datum=NAD83 +units=m +no_defs", LinearUnit: converters.UnitMeter}
	b := converters.SpatialReference{Proj4: "+datum=NAD83 +proj=utm +units=m +zone=14", LinearUnit: converters.UnitMeter}

	assert.NoError(t, Compare(a, b))
}
