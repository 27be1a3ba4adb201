package geometry

import (
	"sort"

	"github.com/ctessum/geom"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

func ToOrbRing(path geom.Path) orb.Ring {
	ring := make(orb.Ring, 0, len(path)+1)
	for _, p := range path {
		ring = append(ring, orb.Point{p.X, p.Y})
	}
	if len(ring) > 0 && !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return ring
}

func FromOrbRing(ring orb.Ring) geom.Path {
	path := make(geom.Path, 0, len(ring))
	for _, p := range ring {
		path = append(path, geom.Point{X: p[0], Y: p[1]})
	}
	return path
}

func FromOrbPolygon(poly orb.Polygon) geom.Polygon {
	out := make(geom.Polygon, 0, len(poly))
	for _, ring := range poly {
		out = append(out, FromOrbRing(ring))
	}
	return out
}

// Regroups the rings of p, whose nesting is implicit, into orb polygons with an
// outer ring followed by its holes. Nesting depth decides the role of a ring:
// even depth rings are outer rings, odd depth rings are holes of their
// smallest enclosing outer ring
func ToOrbMultiPolygon(p geom.Polygonal) orb.MultiPolygon {
	var rings []orb.Ring
	for _, poly := range Polygons(p) {
		for _, path := range poly {
			if len(path) < 3 {
				continue
			}
			rings = append(rings, ToOrbRing(path))
		}
	}
	if len(rings) == 0 {
		return nil
	}

	areas := make([]float64, len(rings))
	for i, r := range rings {
		areas[i] = planar.Area(r)
	}

	// parents[i] lists the rings enclosing ring i
	parents := make([][]int, len(rings))
	for i := range rings {
		for j := range rings {
			if i == j || areas[j] <= areas[i] {
				continue
			}
			if ringWithin(rings[i], rings[j]) {
				parents[i] = append(parents[i], j)
			}
		}
	}

	outerIndex := make(map[int]int)
	var out orb.MultiPolygon
	order := make([]int, len(rings))
	for i := range order {
		order[i] = i
	}
	// larger rings first so outer rings exist before their holes are attached
	sort.SliceStable(order, func(a, b int) bool { return areas[order[a]] > areas[order[b]] })

	for _, i := range order {
		if len(parents[i])%2 == 0 {
			outer := rings[i]
			if outer.Orientation() != orb.CCW {
				outer = reversed(outer)
			}
			outerIndex[i] = len(out)
			out = append(out, orb.Polygon{outer})
			continue
		}
		// smallest enclosing outer ring owns the hole
		owner := -1
		for _, j := range parents[i] {
			if len(parents[j])%2 != 0 {
				continue
			}
			if owner == -1 || areas[j] < areas[owner] {
				owner = j
			}
		}
		if owner == -1 {
			continue
		}
		hole := rings[i]
		if hole.Orientation() != orb.CW {
			hole = reversed(hole)
		}
		out[outerIndex[owner]] = append(out[outerIndex[owner]], hole)
	}
	return out
}

// inner is within outer when none of its vertices lies strictly outside outer
func ringWithin(inner, outer orb.Ring) bool {
	b := outer.Bound()
	if !b.Contains(inner.Bound().Min) || !b.Contains(inner.Bound().Max) {
		return false
	}
	for _, p := range inner {
		if !planar.RingContains(outer, p) && !onRing(outer, p) {
			return false
		}
	}
	return true
}

func onRing(ring orb.Ring, p orb.Point) bool {
	for i := 0; i+1 < len(ring); i++ {
		a := geom.Point{X: ring[i][0], Y: ring[i][1]}
		b := geom.Point{X: ring[i+1][0], Y: ring[i+1][1]}
		if SegmentDistance(geom.Point{X: p[0], Y: p[1]}, a, b) <= 1e-12 {
			return true
		}
	}
	return false
}

func reversed(r orb.Ring) orb.Ring {
	out := r.Clone()
	out.Reverse()
	return out
}
