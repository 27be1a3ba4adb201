package data

import (
	"strings"

	"github.com/ctessum/geom"

	"github.com/ecopia-map/pointcloud_updater/internal/geometry"
)

type Provenance string

const (
	ProvenanceNone    Provenance = ""
	ProvenanceSource  Provenance = "Source"
	ProvenanceUpdated Provenance = "Updated"
)

func (p Provenance) String() string {
	return string(p)
}

func (p Provenance) IsBlank() bool {
	return strings.TrimSpace(string(p)) == ""
}

// A physical point-cloud file of a dataset with the extent read from its header
type Tile struct {
	ID     int
	Path   string
	Extent geometry.BoundingBox
	Origin Provenance
}

// Returns the rectangular 2D footprint of the tile
func (t *Tile) Footprint() geom.Polygon {
	return t.Extent.Footprint()
}
