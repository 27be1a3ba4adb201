package raster

import (
	"testing"

	"github.com/ctessum/geom"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopia-map/pointcloud_updater/internal/geometry"
)

// Builds a raster from rows listed north to south, 'x' marks a covered cell
func fromPattern(t *testing.T, cellSize float64, pattern ...string) *Raster {
	t.Helper()
	rows, cols := len(pattern), len(pattern[0])
	extent := geometry.BoundingBox{Xmax: float64(cols) * cellSize, Ymax: float64(rows) * cellSize}
	r, err := New(extent, cellSize)
	require.NoError(t, err)
	for i, line := range pattern {
		row := rows - 1 - i
		for col, c := range line {
			if c == 'x' {
				r.Set(row, col, 1)
			}
		}
	}
	return r
}

func partsByGridcode(parts []Part, gridcode int) []Part {
	var out []Part
	for _, p := range parts {
		if p.Gridcode == gridcode {
			out = append(out, p)
		}
	}
	return out
}

func TestPolygonizeSolidBlock(t *testing.T) {
	r := fromPattern(t, 2,
		"xx",
		"xx",
	)

	parts := Polygonize(r, false, 0)
	require.Len(t, parts, 1)
	assert.Equal(t, GridcodeCovered, parts[0].Gridcode)
	require.Len(t, parts[0].Geometry, 1)

	ring := parts[0].Geometry[0]
	assert.Len(t, ring, 5, "only the corners are kept")
	assert.Equal(t, ring[0], ring[len(ring)-1])
	assert.InDelta(t, 16, ringArea(ring), 1e-9)
}

func TestPolygonizeHoleOrientation(t *testing.T) {
	r := fromPattern(t, 1,
		"xxx",
		"x.x",
		"xxx",
	)

	parts := Polygonize(r, false, 0)
	require.Len(t, parts, 2)

	covered := partsByGridcode(parts, GridcodeCovered)
	require.Len(t, covered, 1)
	require.Len(t, covered[0].Geometry, 2)
	assert.InDelta(t, 9, ringArea(covered[0].Geometry[0]), 1e-9, "outer ring is counter-clockwise")
	assert.InDelta(t, -1, ringArea(covered[0].Geometry[1]), 1e-9, "hole is clockwise")

	null := partsByGridcode(parts, GridcodeNull)
	require.Len(t, null, 1)
	require.Len(t, null[0].Geometry, 1)
	assert.InDelta(t, 1, ringArea(null[0].Geometry[0]), 1e-9)

	want := geom.Path{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 2, Y: 2}, {X: 1, Y: 2}, {X: 1, Y: 1}}
	got := null[0].Geometry[0]
	assert.ElementsMatch(t, want[:4], got[:4])
}

func TestPolygonizeDiagonalCellsAreSeparateParts(t *testing.T) {
	r := fromPattern(t, 1,
		"x.",
		".x",
	)

	parts := Polygonize(r, false, 0)
	assert.Len(t, partsByGridcode(parts, GridcodeCovered), 2)
	assert.Len(t, partsByGridcode(parts, GridcodeNull), 2)
	for _, p := range parts {
		require.Len(t, p.Geometry, 1)
		assert.InDelta(t, 1, ringArea(p.Geometry[0]), 1e-9)
	}
}

func TestPolygonizeHolesTouchingAtCorner(t *testing.T) {
	r := fromPattern(t, 1,
		"xxxx",
		"x.xx",
		"xx.x",
		"xxxx",
	)

	parts := Polygonize(r, false, 0)
	assert.Len(t, partsByGridcode(parts, GridcodeNull), 2)

	covered := partsByGridcode(parts, GridcodeCovered)
	require.Len(t, covered, 1)
	assert.InDelta(t, 16, ringArea(covered[0].Geometry[0]), 1e-9)

	var holeArea float64
	for _, ring := range covered[0].Geometry[1:] {
		assert.Less(t, ringArea(ring), 0.0)
		holeArea += ringArea(ring)
	}
	if diff := cmp.Diff(-2.0, holeArea); diff != "" {
		t.Errorf("hole area mismatch (-want +got):\n%s", diff)
	}
}

func TestPolygonizeSimplifyKeepsArea(t *testing.T) {
	r := fromPattern(t, 1,
		"xxxx",
		"xxxx",
		"xx..",
	)

	raw := partsByGridcode(Polygonize(r, false, 0), GridcodeCovered)
	simplified := partsByGridcode(Polygonize(r, true, 0), GridcodeCovered)
	require.Len(t, raw, 1)
	require.Len(t, simplified, 1)

	assert.InDelta(t, 10, ringArea(raw[0].Geometry[0]), 1e-9)
	assert.InDelta(t, ringArea(raw[0].Geometry[0]), ringArea(simplified[0].Geometry[0]), 1e-9)
	assert.Len(t, raw[0].Geometry[0], 7)
}
