package grid_tiler

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ecopia-map/pointcloud_updater/internal/engine"
	"github.com/ecopia-map/pointcloud_updater/internal/geometry"
)

// A cell of a retiling grid. Row indexes the x intervals and Col the y intervals,
// ids run row by row starting from 0
type GridCell struct {
	ID     int
	Row    int
	Col    int
	Bounds geometry.BoundingBox
}

// Uniform (n+1)x(n+1) subdivision of a tile extent
type Grid struct {
	numSplits int
	cells     []GridCell
}

// Splits box with numSplits cuts along each axis. Interval bounds are computed in
// decimal arithmetic and the last interval always ends exactly on the box max
func NewGrid(box geometry.BoundingBox, numSplits int) (*Grid, error) {
	if numSplits < 0 {
		return nil, fmt.Errorf("number of splits cannot be negative, got %d", numSplits)
	}
	if box.IsEmpty() {
		return nil, fmt.Errorf("cannot split an empty extent")
	}

	xs := intervals(box.Xmin, box.Xmax, numSplits)
	ys := intervals(box.Ymin, box.Ymax, numSplits)

	grid := &Grid{
		numSplits: numSplits,
		cells:     make([]GridCell, 0, (numSplits+1)*(numSplits+1)),
	}
	id := 0
	for row := 0; row+1 < len(xs); row++ {
		for col := 0; col+1 < len(ys); col++ {
			grid.cells = append(grid.cells, GridCell{
				ID:  id,
				Row: row,
				Col: col,
				Bounds: geometry.BoundingBox{
					Xmin: xs[row],
					Xmax: xs[row+1],
					Ymin: ys[col],
					Ymax: ys[col+1],
					Zmin: box.Zmin,
					Zmax: box.Zmax,
				},
			})
			id++
		}
	}
	return grid, nil
}

func intervals(min, max float64, numSplits int) []float64 {
	dMin := decimal.NewFromFloat(min)
	step := decimal.NewFromFloat(max).Sub(dMin).Div(decimal.NewFromInt(int64(numSplits + 1)))

	bounds := make([]float64, 0, numSplits+2)
	bounds = append(bounds, min)
	for i := 1; i <= numSplits; i++ {
		bounds = append(bounds, dMin.Add(step.Mul(decimal.NewFromInt(int64(i)))).InexactFloat64())
	}
	return append(bounds, max)
}

func (g *Grid) Cells() []GridCell {
	return g.cells
}

// Cells in descending id order, the order retiling extracts them in
func (g *Grid) CellsDescending() []GridCell {
	out := make([]GridCell, len(g.cells))
	for i, c := range g.cells {
		out[len(g.cells)-1-i] = c
	}
	return out
}

// Clip selecting the points of cell. Cells are half-open on their max edges except
// on the max edges of the grid
func (g *Grid) Clip(cell GridCell) engine.Clip {
	return &engine.CellClip{
		Box:        cell.Bounds,
		ClosedMaxX: cell.Row == g.numSplits,
		ClosedMaxY: cell.Col == g.numSplits,
	}
}
