package cookie_cutter

import (
	"sort"

	"github.com/ctessum/geom"
	"github.com/golang/glog"

	"github.com/ecopia-map/pointcloud_updater/internal/boundary"
	"github.com/ecopia-map/pointcloud_updater/internal/data"
	"github.com/ecopia-map/pointcloud_updater/internal/geometry"
	"github.com/ecopia-map/pointcloud_updater/internal/overlap"
)

const LayerName = "tile_processing_template"

// tile id of boundary parts lying outside every updated footprint
const noTile = -1

// A piece of a source tile footprint and the dataset its points must be taken from
type Region struct {
	TileID   int
	Path     string
	Status   data.Provenance
	Dataset  data.Provenance
	Geometry geom.Polygonal
}

type Template struct {
	Regions     []Region
	SourceTiles []data.Tile
}

// Overlays the source tile footprints with the coverage boundary. Unaffected tiles
// enter the template whole, affected tiles are split along the boundary.
// Regions are sorted by tile id, descending
func Build(overlay geometry.Overlay, sourceTiles []data.Tile, classification *overlap.Classification, regions []boundary.Region) *Template {
	raw := union(overlay, sourceTiles, classification.AffectedIDs(), disjoint(overlay, regions))
	template := &Template{
		Regions:     sortByTileDescending(repair(normalize(raw))),
		SourceTiles: sourceTiles,
	}
	glog.Infof("Process will update %d of %d tiles", len(classification.Affected), len(sourceTiles))
	return template
}

// Updated regions take precedence where boundary regions overlap
func disjoint(overlay geometry.Overlay, regions []boundary.Region) []boundary.Region {
	var updated []geom.Polygonal
	for _, r := range regions {
		if r.Tag == data.ProvenanceUpdated {
			updated = append(updated, r.Geometry)
		}
	}
	covered := overlay.SetOp(geometry.Dissolve, updated...)

	out := make([]boundary.Region, 0, len(regions))
	for _, r := range regions {
		if r.Tag != data.ProvenanceUpdated {
			r.Geometry = overlay.SetOp(geometry.Difference, r.Geometry, covered)
			if r.Geometry == nil {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// Gap preserving union of the tagged footprints with the boundary regions
func union(overlay geometry.Overlay, sourceTiles []data.Tile, affected map[int]bool, regions []boundary.Region) []Region {
	var raw []Region
	var updatedFootprints []geom.Polygonal

	all := make([]geom.Polygonal, 0, len(regions))
	for _, r := range regions {
		all = append(all, r.Geometry)
	}
	dissolved := overlay.SetOp(geometry.Dissolve, all...)

	for i := range sourceTiles {
		tile := &sourceTiles[i]
		footprint := tile.Footprint()

		if !affected[tile.ID] {
			raw = append(raw, Region{
				TileID:   tile.ID,
				Path:     tile.Path,
				Status:   data.ProvenanceSource,
				Dataset:  data.ProvenanceSource,
				Geometry: footprint,
			})
			continue
		}

		updatedFootprints = append(updatedFootprints, footprint)
		for _, r := range regions {
			piece := overlay.SetOp(geometry.Intersect, footprint, r.Geometry)
			if piece == nil {
				continue
			}
			raw = append(raw, Region{
				TileID:   tile.ID,
				Path:     tile.Path,
				Status:   data.ProvenanceUpdated,
				Dataset:  r.Tag,
				Geometry: piece,
			})
		}
		if remainder := overlay.SetOp(geometry.Difference, footprint, dissolved); remainder != nil {
			raw = append(raw, Region{
				TileID:   tile.ID,
				Path:     tile.Path,
				Status:   data.ProvenanceUpdated,
				Dataset:  data.ProvenanceNone,
				Geometry: remainder,
			})
		}
	}

	// boundary parts no updated tile claims
	claimed := overlay.SetOp(geometry.Union, updatedFootprints...)
	for _, r := range regions {
		if outside := overlay.SetOp(geometry.Difference, r.Geometry, claimed); outside != nil {
			raw = append(raw, Region{
				TileID:   noTile,
				Status:   data.ProvenanceNone,
				Dataset:  r.Tag,
				Geometry: outside,
			})
		}
	}
	return raw
}

// Drops regions without a status and attributes regions without a dataset to the source
func normalize(raw []Region) []Region {
	out := make([]Region, 0, len(raw))
	for _, r := range raw {
		if r.Status.IsBlank() {
			continue
		}
		if r.Dataset.IsBlank() {
			glog.V(1).Infof("tile %d: region outside the coverage boundary attributed to %s", r.TileID, data.ProvenanceSource)
			r.Dataset = data.ProvenanceSource
		}
		out = append(out, r)
	}
	return out
}

func repair(regions []Region) []Region {
	out := make([]Region, 0, len(regions))
	for _, r := range regions {
		r.Geometry = geometry.Repair(r.Geometry)
		if r.Geometry == nil {
			continue
		}
		out = append(out, r)
	}
	return out
}

func sortByTileDescending(regions []Region) []Region {
	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].TileID > regions[j].TileID
	})
	return regions
}

// Builds the template layer, one feature per region
func (t *Template) Layer() *geometry.Layer {
	layer := &geometry.Layer{Name: LayerName}
	for _, r := range t.Regions {
		layer.Features = append(layer.Features, geometry.Feature{
			Geometry: r.Geometry,
			ID:       r.TileID,
			Status:   r.Status.String(),
			Dataset:  r.Dataset.String(),
			Path:     r.Path,
		})
	}
	return layer
}

// Groups the regions by tile, keeping the template order
func (t *Template) RegionsByTile() [][]Region {
	var groups [][]Region
	for _, r := range t.Regions {
		n := len(groups)
		if n > 0 && groups[n-1][0].TileID == r.TileID {
			groups[n-1] = append(groups[n-1], r)
			continue
		}
		groups = append(groups, []Region{r})
	}
	return groups
}
