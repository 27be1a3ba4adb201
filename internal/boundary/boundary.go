package boundary

import (
	"context"
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/golang/glog"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/ecopia-map/pointcloud_updater/internal/catalog"
	"github.com/ecopia-map/pointcloud_updater/internal/config"
	"github.com/ecopia-map/pointcloud_updater/internal/converters"
	"github.com/ecopia-map/pointcloud_updater/internal/data"
	"github.com/ecopia-map/pointcloud_updater/internal/engine"
	"github.com/ecopia-map/pointcloud_updater/internal/geometry"
	"github.com/ecopia-map/pointcloud_updater/internal/raster"
	"github.com/ecopia-map/pointcloud_updater/tools"
)

const LayerName = "lasd_boundary"

// A polygon of the coverage boundary and the dataset its points must come from
type Region struct {
	Geometry geom.Polygonal
	Tag      data.Provenance
	Gridcode int
}

// Parameters of a boundary extraction, every length and area in dataset units
type Options struct {
	CellSize      float64
	Statistic     raster.Statistic
	Simplify      bool
	HoleArea      float64
	MinPartArea   float64
	JoinTolerance float64
	Clip          geom.Polygonal
	Storage       geometry.Storage
}

// Converts the configured thresholds to the given linear unit. The minimum part
// area is the square of the hole area threshold re-expressed as a length
func NewOptions(cfg config.Config, linearUnit string) (Options, error) {
	statistic, err := raster.ParseStatistic(cfg.Statistic)
	if err != nil {
		return Options{}, err
	}
	holeArea, err := converters.AreaFromSquareMeters(cfg.HoleAreaThreshold, linearUnit)
	if err != nil {
		return Options{}, err
	}
	holeSide, err := converters.LengthFromMeters(cfg.HoleAreaThreshold, linearUnit)
	if err != nil {
		return Options{}, err
	}
	joinTolerance, err := converters.LengthFromMeters(cfg.JoinTolerance, linearUnit)
	if err != nil {
		return Options{}, err
	}
	return Options{
		CellSize:      cfg.AnalysisCellSize,
		Statistic:     statistic,
		Simplify:      true,
		HoleArea:      holeArea,
		MinPartArea:   holeSide * holeSide,
		JoinTolerance: joinTolerance,
		Storage:       geometry.Memory(),
	}, nil
}

type Extractor struct {
	engine engine.Engine
}

func NewExtractor(e engine.Engine) *Extractor {
	return &Extractor{engine: e}
}

// Derives the polygons where ds actually has points. Covered polygons are tagged
// Updated, gaps inside the coverage are tagged Source and gaps reaching the outline
// of the coverage are dropped
func (x *Extractor) Extract(ctx context.Context, ds *catalog.Dataset, opts Options) ([]Region, error) {
	extent := ds.Extent()
	if opts.Clip != nil {
		extent = geometry.FromBounds(opts.Clip.Bounds())
	}
	if extent.IsEmpty() {
		return nil, data.NewEngineExecutionError("boundary extraction", fmt.Errorf("%s has an empty extent", ds))
	}

	r, err := x.engine.RasterizePointDensity(ctx, ds, extent, opts.CellSize, opts.Statistic)
	if err != nil {
		return nil, err
	}
	if opts.Clip != nil {
		r = x.engine.MaskRaster(r, opts.Clip)
	}

	parts, err := x.engine.Polygonize(r, opts.Simplify)
	if err != nil {
		return nil, err
	}
	glog.V(1).Infof("polygonized %d parts from %s", len(parts), ds)

	regions := ResolveParts(parts, opts)
	if len(regions) == 0 {
		glog.Warningf("no coverage found for %s", ds)
	}

	if err := Layer(regions).Save(opts.Storage); err != nil {
		return nil, data.NewEngineExecutionError("save boundary", err)
	}
	return regions, nil
}

// Applies hole elimination, the minimum area filter and the outline join to
// polygonized parts
func ResolveParts(parts []raster.Part, opts Options) []Region {
	kept := make([]raster.Part, 0, len(parts))
	for _, p := range parts {
		g := EliminateHoles(p.Geometry, opts.HoleArea)
		if geometry.Area(g) <= opts.MinPartArea {
			continue
		}
		kept = append(kept, raster.Part{Gridcode: p.Gridcode, Geometry: g})
	}
	if len(kept) == 0 {
		return nil
	}

	outline := geometry.EmptyBoundingBox()
	for _, p := range kept {
		outline.Extend(geometry.FromBounds(p.Geometry.Bounds()))
	}

	regions := make([]Region, 0, len(kept))
	for _, p := range kept {
		joins := JoinsOutline(p.Geometry, outline, opts.JoinTolerance)
		var tag data.Provenance
		switch {
		case joins && p.Gridcode == raster.GridcodeNull:
			continue
		case p.Gridcode == raster.GridcodeCovered:
			tag = data.ProvenanceUpdated
		default:
			tag = data.ProvenanceSource
		}
		g := geometry.Repair(p.Geometry)
		if g == nil {
			continue
		}
		regions = append(regions, Region{Geometry: g, Tag: tag, Gridcode: p.Gridcode})
	}
	return regions
}

// Removes the holes of p whose area is below threshold
func EliminateHoles(p geom.Polygon, threshold float64) geom.Polygon {
	out := make(geom.Polygon, 0, len(p))
	for _, path := range p {
		ring := geometry.ToOrbRing(path)
		if ring.Orientation() == orb.CW && math.Abs(planar.Area(ring)) < threshold {
			continue
		}
		out = append(out, path)
	}
	return out
}

// Reports whether any vertex of p lies within tolerance of the outline of box
func JoinsOutline(p geom.Polygonal, box geometry.BoundingBox, tolerance float64) bool {
	for _, poly := range geometry.Polygons(p) {
		for _, path := range poly {
			for _, v := range path {
				d := math.Min(math.Min(v.X-box.Xmin, box.Xmax-v.X), math.Min(v.Y-box.Ymin, box.Ymax-v.Y))
				if math.Abs(d) <= tolerance || tools.IsFloatEqual(math.Abs(d), tolerance) {
					return true
				}
			}
		}
	}
	return false
}

// Builds the boundary layer, one feature per region with its DATASET tag
func Layer(regions []Region) *geometry.Layer {
	layer := &geometry.Layer{Name: LayerName}
	for i, r := range regions {
		layer.Features = append(layer.Features, geometry.Feature{
			Geometry: r.Geometry,
			ID:       i,
			Dataset:  r.Tag.String(),
		})
	}
	return layer
}
