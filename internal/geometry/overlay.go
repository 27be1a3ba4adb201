package geometry

import (
	"math"

	"github.com/ctessum/geom"
)

// Pieces smaller than this are overlay slivers and are treated as empty
const AreaEpsilon = 1e-9

type SetOperation string

const (
	Intersect  SetOperation = "INTERSECT"
	Union      SetOperation = "UNION"
	Dissolve   SetOperation = "DISSOLVE"
	Difference SetOperation = "DIFFERENCE"
)

func IsEmpty(p geom.Polygonal) bool {
	return Area(p) <= AreaEpsilon
}

func Area(p geom.Polygonal) float64 {
	if p == nil {
		return 0
	}
	return math.Abs(p.Area())
}

// Returns the parts of p as plain polygons, nil safe
func Polygons(p geom.Polygonal) []geom.Polygon {
	if p == nil {
		return nil
	}
	return p.Polygons()
}

// Applies op to the given polygons. Intersect and Difference fold left to right,
// Union and Dissolve merge every input into one multipart result.
// Returns nil when the result has no area
func Apply(op SetOperation, polygons ...geom.Polygonal) geom.Polygonal {
	var result geom.Polygonal
	for i, p := range polygons {
		if i == 0 {
			result = p
			continue
		}
		switch op {
		case Intersect:
			result = IntersectPair(result, p)
		case Difference:
			result = DifferencePair(result, p)
		case Union, Dissolve:
			result = UnionPair(result, p)
		}
	}
	if IsEmpty(result) {
		return nil
	}
	return result
}

func IntersectPair(a, b geom.Polygonal) geom.Polygonal {
	if IsEmpty(a) || IsEmpty(b) {
		return nil
	}
	if !a.Bounds().Overlaps(b.Bounds()) {
		return nil
	}
	out := a.Intersection(b)
	if IsEmpty(out) {
		return nil
	}
	return out
}

func DifferencePair(a, b geom.Polygonal) geom.Polygonal {
	if IsEmpty(a) {
		return nil
	}
	if IsEmpty(b) || !a.Bounds().Overlaps(b.Bounds()) {
		return a
	}
	out := a.Difference(b)
	if IsEmpty(out) {
		return nil
	}
	return out
}

func UnionPair(a, b geom.Polygonal) geom.Polygonal {
	if IsEmpty(a) {
		if IsEmpty(b) {
			return nil
		}
		return b
	}
	if IsEmpty(b) {
		return a
	}
	return a.Union(b)
}

// Reports whether (x, y) lies inside p or on its edge
func Contains(p geom.Polygonal, x, y float64) bool {
	if p == nil {
		return false
	}
	b := p.Bounds()
	if x < b.Min.X || x > b.Max.X || y < b.Min.Y || y > b.Max.Y {
		return false
	}
	return geom.Point{X: x, Y: y}.Within(p) != geom.Outside
}

// Drops degenerate rings (less than 3 distinct vertices or no area) and returns nil
// when nothing is left
func Repair(p geom.Polygonal) geom.Polygonal {
	if p == nil {
		return nil
	}
	var out geom.Polygon
	for _, poly := range p.Polygons() {
		for _, ring := range poly {
			if len(distinctVertices(ring)) < 3 {
				continue
			}
			if math.Abs(ringSignedArea(ring)) <= AreaEpsilon {
				continue
			}
			out = append(out, ring)
		}
	}
	if len(out) == 0 || IsEmpty(out) {
		return nil
	}
	return out
}

func distinctVertices(ring geom.Path) []geom.Point {
	seen := make(map[geom.Point]struct{}, len(ring))
	out := make([]geom.Point, 0, len(ring))
	for _, p := range ring {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Shoelace area, positive for counter-clockwise rings
func ringSignedArea(ring geom.Path) float64 {
	n := len(ring)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		a := ring[i]
		b := ring[(i+1)%n]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum / 2
}

// Shortest distance between point p and segment ab
func SegmentDistance(p, a, b geom.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	if dx == 0 && dy == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / (dx*dx + dy*dy)
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(p.X-(a.X+t*dx), p.Y-(a.Y+t*dy))
}

// Computes polygon set operations. Implemented by the processing engine
type Overlay interface {
	SetOp(op SetOperation, polygons ...geom.Polygonal) geom.Polygonal
}
