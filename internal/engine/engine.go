package engine

import (
	"context"

	"github.com/ctessum/geom"

	"github.com/ecopia-map/pointcloud_updater/internal/catalog"
	"github.com/ecopia-map/pointcloud_updater/internal/converters"
	"github.com/ecopia-map/pointcloud_updater/internal/data"
	"github.com/ecopia-map/pointcloud_updater/internal/geometry"
	"github.com/ecopia-map/pointcloud_updater/internal/raster"
)

type Capability string

const (
	CapabilityRasterAnalysis  Capability = "RASTER_ANALYSIS"
	CapabilityGeometryOverlay Capability = "GEOMETRY_OVERLAY"
	CapabilityPointExtraction Capability = "POINT_EXTRACTION"
	CapabilityCatalog         Capability = "CATALOG"
)

// Geometric and point-cloud primitives the updater is built on
type Engine interface {
	// Rasterizes the points of ds falling inside extent, one statistic value per cell
	RasterizePointDensity(ctx context.Context, ds *catalog.Dataset, extent geometry.BoundingBox, cellSize float64, statistic raster.Statistic) (*raster.Raster, error)
	MaskRaster(r *raster.Raster, clip geom.Polygonal) *raster.Raster
	Polygonize(r *raster.Raster, simplify bool) ([]raster.Part, error)
	SetOp(op geometry.SetOperation, polygons ...geom.Polygonal) geom.Polygonal

	// Writes the points of ds accepted by clip into outputFolder, one file per input
	// file named <input stem>_<suffix><ext>. Returns the files written, empty results are not kept
	ExtractPoints(ctx context.Context, ds *catalog.Dataset, clip Clip, outputFolder string, suffix string) ([]string, error)
	DescribeExtent(path string) (geometry.BoundingBox, error)
	CoordinateSystemOf(ds *catalog.Dataset) (converters.SpatialReference, error)
	BuildCatalog(files []string, outputPath string, sr converters.SpatialReference) (*catalog.Dataset, error)
	Capabilities() []Capability
}

// Fails with a LicenseUnavailableError when e lacks any of the required capabilities
func Require(e Engine, required ...Capability) error {
	available := make(map[Capability]bool)
	for _, c := range e.Capabilities() {
		available[c] = true
	}
	for _, c := range required {
		if !available[c] {
			return &data.LicenseUnavailableError{Capability: string(c)}
		}
	}
	return nil
}
