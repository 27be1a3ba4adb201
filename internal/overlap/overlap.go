package overlap

import (
	"sort"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"github.com/golang/glog"

	"github.com/ecopia-map/pointcloud_updater/internal/data"
	"github.com/ecopia-map/pointcloud_updater/internal/geometry"
)

// A source tile whose footprint overlaps the update coverage with a positive area
type Affected struct {
	SourceID    int
	SourcePath  string
	UpdatePaths []string
}

// (source tile id, update tile path) pairing with a positive area overlap
type Pair struct {
	SourceID   int
	UpdatePath string
}

type Classification struct {
	Affected []Affected
	Pairs    []Pair
}

func (c *Classification) AffectedIDs() map[int]bool {
	ids := make(map[int]bool, len(c.Affected))
	for _, a := range c.Affected {
		ids[a.SourceID] = true
	}
	return ids
}

type indexedTile struct {
	geom.Polygon
	tile *data.Tile
}

// Finds the source tiles overlapping the dissolved update footprints. Touching
// along an edge or at a corner is not an overlap
func Classify(overlay geometry.Overlay, sourceTiles []data.Tile, updateTiles []data.Tile) *Classification {
	footprints := make([]geom.Polygonal, 0, len(updateTiles))
	updateIndex := rtree.NewTree(25, 50)
	for i := range updateTiles {
		fp := updateTiles[i].Footprint()
		footprints = append(footprints, fp)
		updateIndex.Insert(&indexedTile{Polygon: fp, tile: &updateTiles[i]})
	}
	dissolved := overlay.SetOp(geometry.Dissolve, footprints...)

	result := &Classification{}
	if dissolved == nil {
		glog.Infoln("Detected 0 source tiles to be augmented with updated tiles")
		return result
	}

	for i := range sourceTiles {
		source := &sourceTiles[i]
		fp := source.Footprint()
		if geometry.IsEmpty(overlay.SetOp(geometry.Intersect, fp, dissolved)) {
			continue
		}

		affected := Affected{SourceID: source.ID, SourcePath: source.Path}
		for _, item := range updateIndex.SearchIntersect(fp.Bounds()) {
			update := item.(*indexedTile).tile
			if _, ok := source.Extent.Intersection2D(update.Extent); !ok {
				continue
			}
			affected.UpdatePaths = append(affected.UpdatePaths, update.Path)
		}
		sortByCatalogOrder(affected.UpdatePaths, updateTiles)
		for _, p := range affected.UpdatePaths {
			result.Pairs = append(result.Pairs, Pair{SourceID: source.ID, UpdatePath: p})
		}
		result.Affected = append(result.Affected, affected)
	}

	glog.Infof("Detected %d source tiles to be augmented with updated tiles", len(result.Affected))
	return result
}

// rtree results come in no particular order
func sortByCatalogOrder(paths []string, tiles []data.Tile) {
	order := make(map[string]int, len(tiles))
	for i, t := range tiles {
		order[t.Path] = i
	}
	sort.SliceStable(paths, func(i, j int) bool { return order[paths[i]] < order[paths[j]] })
}

// Reports whether the overall extents of two tile sets overlap with a positive area
func ExtentsIntersect(a []data.Tile, b []data.Tile) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	ea, eb := geometry.EmptyBoundingBox(), geometry.EmptyBoundingBox()
	for _, t := range a {
		ea.Extend(t.Extent)
	}
	for _, t := range b {
		eb.Extend(t.Extent)
	}
	_, ok := ea.Intersection2D(eb)
	return ok
}
