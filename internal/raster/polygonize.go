package raster

import (
	"github.com/ctessum/geom"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
)

// A polygon traced around one 4-connected component of equal gridcode cells.
// Outer rings are counter-clockwise, holes clockwise
type Part struct {
	Gridcode int
	Geometry geom.Polygon
}

type vertex struct {
	col, row int
}

type edge struct {
	from, to vertex
	used     bool
}

func (e *edge) direction() (int, int) {
	return e.to.col - e.from.col, e.to.row - e.from.row
}

// Polygonizes the binary classification of r, one part per 4-connected component.
// Rings only keep the corners of the cell outlines. When simplify is set the rings
// are further simplified with Douglas-Peucker at the given tolerance
func Polygonize(r *Raster, simplifyRings bool, tolerance float64) []Part {
	codes := r.Binary()
	labels, count := label(codes, r.Rows, r.Cols)

	componentEdges := make([][]*edge, count)
	for row := 0; row < r.Rows; row++ {
		for col := 0; col < r.Cols; col++ {
			id := labels[row][col]
			same := func(rr, cc int) bool {
				return rr >= 0 && cc >= 0 && rr < r.Rows && cc < r.Cols && labels[rr][cc] == id
			}
			// edges are oriented so the cell lies on their left
			if !same(row-1, col) {
				componentEdges[id] = append(componentEdges[id], &edge{from: vertex{col, row}, to: vertex{col + 1, row}})
			}
			if !same(row, col+1) {
				componentEdges[id] = append(componentEdges[id], &edge{from: vertex{col + 1, row}, to: vertex{col + 1, row + 1}})
			}
			if !same(row+1, col) {
				componentEdges[id] = append(componentEdges[id], &edge{from: vertex{col + 1, row + 1}, to: vertex{col, row + 1}})
			}
			if !same(row, col-1) {
				componentEdges[id] = append(componentEdges[id], &edge{from: vertex{col, row + 1}, to: vertex{col, row}})
			}
		}
	}

	gridcodes := make([]int, count)
	for row := 0; row < r.Rows; row++ {
		for col := 0; col < r.Cols; col++ {
			gridcodes[labels[row][col]] = codes[row][col]
		}
	}

	parts := make([]Part, 0, count)
	for id, edges := range componentEdges {
		var outers, holes geom.Polygon
		for _, ring := range traceRings(edges) {
			path := r.toWorld(ring)
			if simplifyRings {
				path = simplifyPath(path, tolerance)
			}
			if ringArea(path) > 0 {
				outers = append(outers, path)
			} else {
				holes = append(holes, path)
			}
		}
		parts = append(parts, Part{
			Gridcode: gridcodes[id],
			Geometry: append(outers, holes...),
		})
	}
	return parts
}

// 4-connected component labelling, flood fill over equal gridcodes
func label(codes [][]int, rows, cols int) ([][]int, int) {
	labels := make([][]int, rows)
	for row := range labels {
		labels[row] = make([]int, cols)
		for col := range labels[row] {
			labels[row][col] = -1
		}
	}

	count := 0
	stack := make([][2]int, 0, 64)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			if labels[row][col] != -1 {
				continue
			}
			code := codes[row][col]
			labels[row][col] = count
			stack = append(stack[:0], [2]int{row, col})
			for len(stack) > 0 {
				cell := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
					rr, cc := cell[0]+d[0], cell[1]+d[1]
					if rr < 0 || cc < 0 || rr >= rows || cc >= cols {
						continue
					}
					if labels[rr][cc] != -1 || codes[rr][cc] != code {
						continue
					}
					labels[rr][cc] = count
					stack = append(stack, [2]int{rr, cc})
				}
			}
			count++
		}
	}
	return labels, count
}

// Links the boundary edges of a component into closed rings. Where a vertex has more
// than one way out the walk prefers a left turn, then straight, then right, which
// splits rings touching at a single corner
func traceRings(edges []*edge) [][]vertex {
	outgoing := make(map[vertex][]*edge, len(edges))
	for _, e := range edges {
		outgoing[e.from] = append(outgoing[e.from], e)
	}

	var rings [][]vertex
	for _, start := range edges {
		if start.used {
			continue
		}
		ring := []vertex{start.from}
		current := start
		for {
			current.used = true
			next := nextEdge(current, outgoing[current.to], start)
			if next == nil || next == start {
				break
			}
			ring = append(ring, next.from)
			current = next
		}
		rings = append(rings, dropCollinear(ring))
	}
	return rings
}

func nextEdge(current *edge, candidates []*edge, start *edge) *edge {
	dx, dy := current.direction()
	var best *edge
	bestRank := 4
	for _, e := range candidates {
		if e.used && e != start {
			continue
		}
		ex, ey := e.direction()
		rank := 3
		switch {
		case ex == -dy && ey == dx:
			rank = 0
		case ex == dx && ey == dy:
			rank = 1
		case ex == dy && ey == -dx:
			rank = 2
		}
		if rank < bestRank {
			best, bestRank = e, rank
		}
	}
	return best
}

func dropCollinear(ring []vertex) []vertex {
	n := len(ring)
	if n < 4 {
		return ring
	}
	out := make([]vertex, 0, n)
	for i := 0; i < n; i++ {
		prev := ring[(i+n-1)%n]
		cur := ring[i]
		next := ring[(i+1)%n]
		cross := (cur.col-prev.col)*(next.row-cur.row) - (cur.row-prev.row)*(next.col-cur.col)
		if cross != 0 {
			out = append(out, cur)
		}
	}
	return out
}

// Converts lattice vertices into a closed ring in world coordinates
func (r *Raster) toWorld(ring []vertex) geom.Path {
	path := make(geom.Path, 0, len(ring)+1)
	for _, v := range ring {
		path = append(path, geom.Point{
			X: r.Origin.X + float64(v.col)*r.CellSize,
			Y: r.Origin.Y + float64(v.row)*r.CellSize,
		})
	}
	if len(path) > 0 {
		path = append(path, path[0])
	}
	return path
}

func simplifyPath(path geom.Path, tolerance float64) geom.Path {
	ls := make(orb.LineString, 0, len(path))
	for _, p := range path {
		ls = append(ls, orb.Point{p.X, p.Y})
	}
	simplified, ok := simplify.DouglasPeucker(tolerance).Simplify(ls.Clone()).(orb.LineString)
	if !ok || len(simplified) < 4 {
		return path
	}
	out := make(geom.Path, 0, len(simplified))
	for _, p := range simplified {
		out = append(out, geom.Point{X: p[0], Y: p[1]})
	}
	return out
}

// Signed shoelace area, positive for counter-clockwise rings
func ringArea(path geom.Path) float64 {
	var sum float64
	for i := 0; i+1 < len(path); i++ {
		sum += path[i].X*path[i+1].Y - path[i+1].X*path[i].Y
	}
	return sum / 2
}
