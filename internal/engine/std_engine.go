package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"github.com/golang/glog"

	"github.com/ecopia-map/pointcloud_updater/internal/catalog"
	"github.com/ecopia-map/pointcloud_updater/internal/converters"
	"github.com/ecopia-map/pointcloud_updater/internal/data"
	"github.com/ecopia-map/pointcloud_updater/internal/geometry"
	"github.com/ecopia-map/pointcloud_updater/internal/lasio"
	"github.com/ecopia-map/pointcloud_updater/internal/raster"
)

// Engine backed by lidario for las IO, ctessum/geom for overlays and the in-process
// rasterizer and polygonizer
type StandardEngine struct {
	resolver          converters.SpatialReferenceResolver
	simplifyTolerance float64
}

func NewStandardEngine(resolver converters.SpatialReferenceResolver, simplifyTolerance float64) Engine {
	return &StandardEngine{
		resolver:          resolver,
		simplifyTolerance: simplifyTolerance,
	}
}

func (e *StandardEngine) Capabilities() []Capability {
	return []Capability{
		CapabilityRasterAnalysis,
		CapabilityGeometryOverlay,
		CapabilityPointExtraction,
		CapabilityCatalog,
	}
}

// rtree entry of a dataset file
type indexedFile struct {
	geom.Polygon
	path string
}

// Returns the files of ds whose extent intersects box, in catalog order.
// Files with an unknown extent are always returned
func filesIntersecting(ds *catalog.Dataset, box geometry.BoundingBox) []string {
	tree := rtree.NewTree(25, 50)
	selected := make(map[string]bool)
	for _, f := range ds.Files {
		if f.Extent == nil {
			selected[f.Path] = true
			continue
		}
		tree.Insert(&indexedFile{Polygon: f.Extent.Footprint(), path: f.Path})
	}
	for _, item := range tree.SearchIntersect(box.Bounds()) {
		selected[item.(*indexedFile).path] = true
	}

	files := make([]string, 0, len(selected))
	for _, f := range ds.Files {
		if selected[f.Path] {
			files = append(files, f.Path)
		}
	}
	return files
}

func (e *StandardEngine) RasterizePointDensity(ctx context.Context, ds *catalog.Dataset, extent geometry.BoundingBox, cellSize float64, statistic raster.Statistic) (*raster.Raster, error) {
	acc, err := raster.NewAccumulator(extent, cellSize, statistic)
	if err != nil {
		return nil, data.NewEngineExecutionError("rasterize point density", err)
	}

	for _, path := range filesIntersecting(ds, extent) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		err := lasio.ForEachPoint(path, func(p *data.Point) error {
			acc.Add(p.X, p.Y, p.Intensity)
			return nil
		})
		if err != nil {
			return nil, data.NewEngineExecutionError("rasterize point density", fmt.Errorf("%s: %w", path, err))
		}
	}

	r := acc.Raster()
	glog.V(1).Infof("rasterized %s: %dx%d cells, %d covered", ds, r.Rows, r.Cols, r.CoveredCells())
	return r, nil
}

func (e *StandardEngine) MaskRaster(r *raster.Raster, clip geom.Polygonal) *raster.Raster {
	return r.Mask(clip)
}

func (e *StandardEngine) Polygonize(r *raster.Raster, simplify bool) ([]raster.Part, error) {
	if r == nil {
		return nil, data.NewEngineExecutionError("polygonize", errors.New("nil raster"))
	}
	return raster.Polygonize(r, simplify, e.simplifyTolerance), nil
}

func (e *StandardEngine) SetOp(op geometry.SetOperation, polygons ...geom.Polygonal) geom.Polygonal {
	return geometry.Apply(op, polygons...)
}

func (e *StandardEngine) ExtractPoints(ctx context.Context, ds *catalog.Dataset, clip Clip, outputFolder string, suffix string) ([]string, error) {
	var written []string
	for _, path := range filesIntersecting(ds, clip.Bounds()) {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		ext := filepath.Ext(path)
		stem := strings.TrimSuffix(filepath.Base(path), ext)
		outputPath := filepath.Join(outputFolder, stem+"_"+suffix+ext)

		n, err := lasio.Extract(path, outputPath, clip.Contains)
		if err != nil {
			return written, data.NewEngineExecutionError("extract points", fmt.Errorf("%s: %w", path, err))
		}
		if n > 0 {
			glog.V(1).Infof("extracted %d points from %s into %s", n, path, outputPath)
			written = append(written, outputPath)
		}
	}
	return written, nil
}

func (e *StandardEngine) DescribeExtent(path string) (geometry.BoundingBox, error) {
	h, err := lasio.Describe(path)
	if err != nil {
		return geometry.BoundingBox{}, data.NewEngineExecutionError("describe", err)
	}
	return h.Extent, nil
}

func (e *StandardEngine) CoordinateSystemOf(ds *catalog.Dataset) (converters.SpatialReference, error) {
	sr, err := e.resolver.Resolve(ds.SpatialReference)
	if err != nil {
		return sr, data.NewEngineExecutionError("describe spatial reference of "+ds.String(), err)
	}
	return sr, nil
}

// Catalogs files with their header statistics. Files that cannot be read are
// registered without statistics. The manifest is written when outputPath is set
func (e *StandardEngine) BuildCatalog(files []string, outputPath string, sr converters.SpatialReference) (*catalog.Dataset, error) {
	if err := catalog.CheckSingleFormat(outputPath, files); err != nil {
		return nil, err
	}

	ds := &catalog.Dataset{
		Name:             strings.TrimSuffix(filepath.Base(outputPath), catalog.ManifestExtension),
		SpatialReference: sr,
		Files:            make([]catalog.FileRecord, 0, len(files)),
	}
	for _, path := range files {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, data.NewEngineExecutionError("build catalog", err)
		}
		record := catalog.FileRecord{Path: abs}
		h, err := lasio.Describe(abs)
		switch {
		case errors.Is(err, lasio.ErrUnsupportedFormat):
			glog.Warningf("no statistics for %s: %v", abs, err)
		case err != nil:
			return nil, data.NewEngineExecutionError("build catalog", err)
		default:
			extent := h.Extent
			record.Extent = &extent
			record.PointCount = h.NumberPoints
		}
		ds.Files = append(ds.Files, record)
	}

	if outputPath != "" {
		if err := ds.Save(outputPath); err != nil {
			return nil, data.NewEngineExecutionError("build catalog", err)
		}
	}
	return ds, nil
}
