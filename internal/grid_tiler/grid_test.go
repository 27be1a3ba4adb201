package grid_tiler

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopia-map/pointcloud_updater/internal/geometry"
)

func TestNewGridSingleSplit(t *testing.T) {
	grid, err := NewGrid(geometry.BoundingBox{Xmax: 10, Ymax: 10}, 1)
	require.NoError(t, err)

	want := []GridCell{
		{ID: 0, Row: 0, Col: 0, Bounds: geometry.BoundingBox{Xmin: 0, Xmax: 5, Ymin: 0, Ymax: 5}},
		{ID: 1, Row: 0, Col: 1, Bounds: geometry.BoundingBox{Xmin: 0, Xmax: 5, Ymin: 5, Ymax: 10}},
		{ID: 2, Row: 1, Col: 0, Bounds: geometry.BoundingBox{Xmin: 5, Xmax: 10, Ymin: 0, Ymax: 5}},
		{ID: 3, Row: 1, Col: 1, Bounds: geometry.BoundingBox{Xmin: 5, Xmax: 10, Ymin: 5, Ymax: 10}},
	}
	if diff := cmp.Diff(want, grid.Cells()); diff != "" {
		t.Errorf("cells mismatch (-want +got):\n%s", diff)
	}
}

func TestNewGridNoSplitIsTheWholeBox(t *testing.T) {
	box := geometry.BoundingBox{Xmin: 1, Xmax: 4, Ymin: 2, Ymax: 3, Zmin: -1, Zmax: 7}
	grid, err := NewGrid(box, 0)
	require.NoError(t, err)
	require.Len(t, grid.Cells(), 1)
	assert.Equal(t, box, grid.Cells()[0].Bounds)
}

func TestNewGridRejectsInvalidInput(t *testing.T) {
	_, err := NewGrid(geometry.BoundingBox{Xmax: 10, Ymax: 10}, -1)
	assert.Error(t, err)

	_, err = NewGrid(geometry.EmptyBoundingBox(), 2)
	assert.Error(t, err)
}

func TestCellsCoverTheBoxExactly(t *testing.T) {
	box := geometry.BoundingBox{Xmin: 0.1, Xmax: 1000.3, Ymin: -3.7, Ymax: 996.2}
	grid, err := NewGrid(box, 2)
	require.NoError(t, err)
	require.Len(t, grid.Cells(), 9)

	var area float64
	for _, c := range grid.Cells() {
		area += c.Bounds.Area2D()
	}
	assert.InDelta(t, box.Area2D(), area, 1e-6)

	last := grid.Cells()[8]
	assert.Equal(t, box.Xmax, last.Bounds.Xmax)
	assert.Equal(t, box.Ymax, last.Bounds.Ymax)
	assert.Equal(t, grid.Cells()[1].Bounds.Ymax, grid.Cells()[2].Bounds.Ymin, "neighbours share their edge exactly")
}

// id of the cell whose clip holds (x, y), -1 when none does
func cellOf(grid *Grid, x, y float64) int {
	for _, c := range grid.Cells() {
		if grid.Clip(c).Contains(x, y) {
			return c.ID
		}
	}
	return -1
}

func TestClipAssignsEveryPointOnce(t *testing.T) {
	grid, err := NewGrid(geometry.BoundingBox{Xmax: 10, Ymax: 10}, 1)
	require.NoError(t, err)

	for _, tc := range []struct {
		x, y float64
		id   int
	}{
		{0, 0, 0},
		{5, 5, 3},
		{5, 0, 2},
		{0, 5, 1},
		{10, 10, 3},
		{10, 0, 2},
		{4.999, 9.999, 1},
		{10.1, 5, -1},
	} {
		assert.Equal(t, tc.id, cellOf(grid, tc.x, tc.y), "(%v, %v)", tc.x, tc.y)
	}

	for x := 0.0; x <= 10; x += 0.5 {
		for y := 0.0; y <= 10; y += 0.5 {
			hits := 0
			for _, c := range grid.Cells() {
				if grid.Clip(c).Contains(x, y) {
					hits++
				}
			}
			assert.Equal(t, 1, hits, "(%v, %v)", x, y)
		}
	}
}

func TestCellsDescending(t *testing.T) {
	grid, err := NewGrid(geometry.BoundingBox{Xmax: 10, Ymax: 10}, 2)
	require.NoError(t, err)

	var ids []int
	for _, c := range grid.CellsDescending() {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []int{8, 7, 6, 5, 4, 3, 2, 1, 0}, ids)
}
