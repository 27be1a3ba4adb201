package io

import (
	"github.com/ecopia-map/pointcloud_updater/internal/cookie_cutter"
	"github.com/ecopia-map/pointcloud_updater/internal/data"
	"github.com/ecopia-map/pointcloud_updater/internal/grid_tiler"
)

// Contains the minimal data needed to process a single tile: the template regions
// to cut it along, or the grid cells to retile it into
type WorkUnit struct {
	Tile     data.Tile
	Regions  []cookie_cutter.Region
	Grid     *grid_tiler.Grid
	BasePath string
}
