package raster

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"gonum.org/v1/gonum/mat"

	"github.com/ecopia-map/pointcloud_updater/internal/geometry"
)

// Gridcodes of a binary coverage raster
const (
	GridcodeCovered = 0
	GridcodeNull    = 1
)

// Statistic computed per cell when rasterizing point density
type Statistic string

const (
	IntensityRange Statistic = "INTENSITY_RANGE"
	PointCount     Statistic = "POINT_COUNT"
)

func ParseStatistic(value string) (Statistic, error) {
	switch Statistic(value) {
	case IntensityRange, PointCount:
		return Statistic(value), nil
	}
	return "", fmt.Errorf("unknown raster statistic %q", value)
}

// Largest number of cells a raster may hold. An accumulator keeps four float64
// matrices of this size
const MaxCells = 1 << 26

// Returned when an extent and cell size would need more than MaxCells cells
type TooLargeError struct {
	Rows     float64
	Cols     float64
	CellSize float64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("a %.0fx%.0f raster at cell size %g exceeds %d cells, use a larger analysis cell size",
		e.Rows, e.Cols, e.CellSize, MaxCells)
}

// Regular grid of float values. Row 0 is the southernmost row, column 0 the westernmost.
// Null cells hold NaN
type Raster struct {
	Origin   geom.Point
	CellSize float64
	Rows     int
	Cols     int
	Values   *mat.Dense
}

// Builds a raster covering extent with every cell set to null
func New(extent geometry.BoundingBox, cellSize float64) (*Raster, error) {
	if cellSize <= 0 {
		return nil, fmt.Errorf("cell size must be positive, got %f", cellSize)
	}
	if extent.IsEmpty() {
		return nil, fmt.Errorf("cannot build a raster over an empty extent")
	}

	cols := math.Max(1, math.Ceil(extent.Width()/cellSize))
	rows := math.Max(1, math.Ceil(extent.Height()/cellSize))
	if cols*rows > MaxCells {
		return nil, &TooLargeError{Rows: rows, Cols: cols, CellSize: cellSize}
	}

	r := &Raster{
		Origin:   geom.Point{X: extent.Xmin, Y: extent.Ymin},
		CellSize: cellSize,
		Rows:     int(rows),
		Cols:     int(cols),
	}
	r.Values = mat.NewDense(r.Rows, r.Cols, nil)
	for row := 0; row < r.Rows; row++ {
		for col := 0; col < r.Cols; col++ {
			r.Values.Set(row, col, math.NaN())
		}
	}
	return r, nil
}

func (r *Raster) At(row, col int) float64 {
	return r.Values.At(row, col)
}

func (r *Raster) Set(row, col int, v float64) {
	r.Values.Set(row, col, v)
}

func (r *Raster) IsNull(row, col int) bool {
	return math.IsNaN(r.Values.At(row, col))
}

// Returns the row and column holding (x, y). Points on the max edges of the raster
// fall in the last row or column
func (r *Raster) CellOf(x, y float64) (int, int, bool) {
	col := int(math.Floor((x - r.Origin.X) / r.CellSize))
	row := int(math.Floor((y - r.Origin.Y) / r.CellSize))
	if col == r.Cols && x <= r.Origin.X+float64(r.Cols)*r.CellSize {
		col--
	}
	if row == r.Rows && y <= r.Origin.Y+float64(r.Rows)*r.CellSize {
		row--
	}
	if row < 0 || col < 0 || row >= r.Rows || col >= r.Cols {
		return 0, 0, false
	}
	return row, col, true
}

func (r *Raster) CellBounds(row, col int) geometry.BoundingBox {
	xmin := r.Origin.X + float64(col)*r.CellSize
	ymin := r.Origin.Y + float64(row)*r.CellSize
	return geometry.BoundingBox{
		Xmin: xmin,
		Xmax: xmin + r.CellSize,
		Ymin: ymin,
		Ymax: ymin + r.CellSize,
	}
}

func (r *Raster) CellCenter(row, col int) (float64, float64) {
	return r.Origin.X + (float64(col)+0.5)*r.CellSize, r.Origin.Y + (float64(row)+0.5)*r.CellSize
}

func (r *Raster) Extent() geometry.BoundingBox {
	return geometry.BoundingBox{
		Xmin: r.Origin.X,
		Xmax: r.Origin.X + float64(r.Cols)*r.CellSize,
		Ymin: r.Origin.Y,
		Ymax: r.Origin.Y + float64(r.Rows)*r.CellSize,
	}
}

// Returns a copy of the raster where every cell whose center lies outside clip is null
func (r *Raster) Mask(clip geom.Polygonal) *Raster {
	out := &Raster{
		Origin:   r.Origin,
		CellSize: r.CellSize,
		Rows:     r.Rows,
		Cols:     r.Cols,
		Values:   mat.DenseCopyOf(r.Values),
	}
	if clip == nil {
		return out
	}
	for row := 0; row < r.Rows; row++ {
		for col := 0; col < r.Cols; col++ {
			x, y := r.CellCenter(row, col)
			if !geometry.Contains(clip, x, y) {
				out.Values.Set(row, col, math.NaN())
			}
		}
	}
	return out
}

// Classifies every cell as GridcodeCovered or GridcodeNull
func (r *Raster) Binary() [][]int {
	codes := make([][]int, r.Rows)
	for row := 0; row < r.Rows; row++ {
		codes[row] = make([]int, r.Cols)
		for col := 0; col < r.Cols; col++ {
			if r.IsNull(row, col) {
				codes[row][col] = GridcodeNull
			} else {
				codes[row][col] = GridcodeCovered
			}
		}
	}
	return codes
}

// Counts the non null cells
func (r *Raster) CoveredCells() int {
	n := 0
	for row := 0; row < r.Rows; row++ {
		for col := 0; col < r.Cols; col++ {
			if !r.IsNull(row, col) {
				n++
			}
		}
	}
	return n
}

// Accumulates per cell statistics while points are streamed in, then produces the raster
type Accumulator struct {
	raster    *Raster
	statistic Statistic
	min       *mat.Dense
	max       *mat.Dense
	count     *mat.Dense
}

func NewAccumulator(extent geometry.BoundingBox, cellSize float64, statistic Statistic) (*Accumulator, error) {
	r, err := New(extent, cellSize)
	if err != nil {
		return nil, err
	}
	a := &Accumulator{
		raster:    r,
		statistic: statistic,
		min:       mat.NewDense(r.Rows, r.Cols, nil),
		max:       mat.NewDense(r.Rows, r.Cols, nil),
		count:     mat.NewDense(r.Rows, r.Cols, nil),
	}
	return a, nil
}

// Adds a point to its cell. Points outside the raster extent are ignored
func (a *Accumulator) Add(x, y float64, intensity uint16) {
	row, col, ok := a.raster.CellOf(x, y)
	if !ok {
		return
	}
	v := float64(intensity)
	n := a.count.At(row, col)
	if n == 0 || v < a.min.At(row, col) {
		a.min.Set(row, col, v)
	}
	if n == 0 || v > a.max.At(row, col) {
		a.max.Set(row, col, v)
	}
	a.count.Set(row, col, n+1)
}

// Builds the raster: cells that received no point stay null
func (a *Accumulator) Raster() *Raster {
	r := a.raster
	for row := 0; row < r.Rows; row++ {
		for col := 0; col < r.Cols; col++ {
			n := a.count.At(row, col)
			if n == 0 {
				continue
			}
			switch a.statistic {
			case PointCount:
				r.Set(row, col, n)
			default:
				r.Set(row, col, a.max.At(row, col)-a.min.At(row, col))
			}
		}
	}
	return r
}
