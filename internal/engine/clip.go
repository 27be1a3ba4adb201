package engine

import (
	"github.com/ctessum/geom"

	"github.com/ecopia-map/pointcloud_updater/internal/geometry"
)

// 2D selection applied when extracting points
type Clip interface {
	Bounds() geometry.BoundingBox
	Contains(x, y float64) bool
}

// Selects the points inside a polygon or on its edge
type RegionClip struct {
	Geometry geom.Polygonal
	bounds   geometry.BoundingBox
}

func NewRegionClip(g geom.Polygonal) *RegionClip {
	return &RegionClip{Geometry: g, bounds: geometry.FromBounds(g.Bounds())}
}

func (c *RegionClip) Bounds() geometry.BoundingBox {
	return c.bounds
}

func (c *RegionClip) Contains(x, y float64) bool {
	return geometry.Contains(c.Geometry, x, y)
}

// Selects the points of a grid cell. Cells are half-open on their max edges unless
// the edge is also an edge of the whole grid, so a point belongs to exactly one cell
type CellClip struct {
	Box        geometry.BoundingBox
	ClosedMaxX bool
	ClosedMaxY bool
}

func (c *CellClip) Bounds() geometry.BoundingBox {
	return c.Box
}

func (c *CellClip) Contains(x, y float64) bool {
	if x < c.Box.Xmin || y < c.Box.Ymin {
		return false
	}
	if x > c.Box.Xmax || (x == c.Box.Xmax && !c.ClosedMaxX) {
		return false
	}
	if y > c.Box.Ymax || (y == c.Box.Ymax && !c.ClosedMaxY) {
		return false
	}
	return true
}
