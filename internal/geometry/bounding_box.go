package geometry

import (
	"math"

	"github.com/ctessum/geom"
)

// Axis aligned 3D box, as read from a las header
type BoundingBox struct {
	Xmin float64 `json:"xmin"`
	Xmax float64 `json:"xmax"`
	Ymin float64 `json:"ymin"`
	Ymax float64 `json:"ymax"`
	Zmin float64 `json:"zmin"`
	Zmax float64 `json:"zmax"`
}

// Builds a new BoundingBox. Arguments follow the xmin, xmax, ymin, ymax, zmin, zmax order
func NewBoundingBox(Xmin, Xmax, Ymin, Ymax, Zmin, Zmax float64) *BoundingBox {
	return &BoundingBox{
		Xmin: Xmin,
		Xmax: Xmax,
		Ymin: Ymin,
		Ymax: Ymax,
		Zmin: Zmin,
		Zmax: Zmax,
	}
}

// Returns an inverted box that any call to Extend will overwrite
func EmptyBoundingBox() BoundingBox {
	return BoundingBox{
		Xmin: math.Inf(1), Xmax: math.Inf(-1),
		Ymin: math.Inf(1), Ymax: math.Inf(-1),
		Zmin: math.Inf(1), Zmax: math.Inf(-1),
	}
}

func (b BoundingBox) IsEmpty() bool {
	return !(b.Xmax >= b.Xmin && b.Ymax >= b.Ymin)
}

func (b BoundingBox) Width() float64 {
	return b.Xmax - b.Xmin
}

func (b BoundingBox) Height() float64 {
	return b.Ymax - b.Ymin
}

func (b BoundingBox) Area2D() float64 {
	if b.IsEmpty() {
		return 0
	}
	return b.Width() * b.Height()
}

// Grows the box so it also covers other
func (b *BoundingBox) Extend(other BoundingBox) {
	b.Xmin = math.Min(b.Xmin, other.Xmin)
	b.Xmax = math.Max(b.Xmax, other.Xmax)
	b.Ymin = math.Min(b.Ymin, other.Ymin)
	b.Ymax = math.Max(b.Ymax, other.Ymax)
	b.Zmin = math.Min(b.Zmin, other.Zmin)
	b.Zmax = math.Max(b.Zmax, other.Zmax)
}

// Returns the 2D overlap of the two boxes and whether it has a positive area
func (b BoundingBox) Intersection2D(other BoundingBox) (BoundingBox, bool) {
	out := BoundingBox{
		Xmin: math.Max(b.Xmin, other.Xmin),
		Xmax: math.Min(b.Xmax, other.Xmax),
		Ymin: math.Max(b.Ymin, other.Ymin),
		Ymax: math.Min(b.Ymax, other.Ymax),
		Zmin: math.Max(b.Zmin, other.Zmin),
		Zmax: math.Min(b.Zmax, other.Zmax),
	}
	return out, out.Xmax > out.Xmin && out.Ymax > out.Ymin
}

func (b BoundingBox) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: b.Xmin, Y: b.Ymin},
		Max: geom.Point{X: b.Xmax, Y: b.Ymax},
	}
}

// Returns the rectangular footprint of the box as a closed counter-clockwise ring
func (b BoundingBox) Footprint() geom.Polygon {
	return Rectangle(b.Xmin, b.Ymin, b.Xmax, b.Ymax)
}

func FromBounds(bounds *geom.Bounds) BoundingBox {
	return BoundingBox{
		Xmin: bounds.Min.X,
		Xmax: bounds.Max.X,
		Ymin: bounds.Min.Y,
		Ymax: bounds.Max.Y,
	}
}

func Rectangle(xmin, ymin, xmax, ymax float64) geom.Polygon {
	return geom.Polygon{{
		{X: xmin, Y: ymin},
		{X: xmax, Y: ymin},
		{X: xmax, Y: ymax},
		{X: xmin, Y: ymax},
		{X: xmin, Y: ymin},
	}}
}
