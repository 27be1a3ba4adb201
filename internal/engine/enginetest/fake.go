// Package enginetest provides an in-process Engine for tests. Point files are
// JSON arrays of [x, y, intensity] triples, whatever their extension
package enginetest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ctessum/geom"

	"github.com/ecopia-map/pointcloud_updater/internal/catalog"
	"github.com/ecopia-map/pointcloud_updater/internal/converters"
	"github.com/ecopia-map/pointcloud_updater/internal/engine"
	"github.com/ecopia-map/pointcloud_updater/internal/geometry"
	"github.com/ecopia-map/pointcloud_updater/internal/raster"
)

type Point struct {
	X, Y      float64
	Intensity uint16
}

func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]float64{p.X, p.Y, float64(p.Intensity)})
}

func (p *Point) UnmarshalJSON(b []byte) error {
	var v [3]float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	p.X, p.Y, p.Intensity = v[0], v[1], uint16(v[2])
	return nil
}

func WritePoints(path string, points []Point) error {
	if err := os.MkdirAll(filepath.Dir(path), 0777); err != nil {
		return err
	}
	content, err := json.Marshal(points)
	if err != nil {
		return err
	}
	return os.WriteFile(path, content, 0666)
}

func ReadPoints(path string) ([]Point, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var points []Point
	if err := json.Unmarshal(content, &points); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return points, nil
}

// Points regularly spaced every step over box, max edges excluded
func Fill(box geometry.BoundingBox, step float64, intensity uint16) []Point {
	var points []Point
	for x := box.Xmin + step/2; x < box.Xmax; x += step {
		for y := box.Ymin + step/2; y < box.Ymax; y += step {
			points = append(points, Point{X: x, Y: y, Intensity: intensity})
		}
	}
	return points
}

// One call to ExtractPoints
type Extraction struct {
	Files  []string
	Folder string
	Suffix string
}

type Engine struct {
	// Spatial references by dataset name. Datasets not listed report their manifest reference
	References  map[string]converters.SpatialReference
	Missing     []engine.Capability
	FailExtract map[string]bool // suffixes whose extraction fails
	extractions []Extraction
	overlays    int
	sync.Mutex
}

func New() *Engine {
	return &Engine{
		References:  make(map[string]converters.SpatialReference),
		FailExtract: make(map[string]bool),
	}
}

func (e *Engine) Extractions() []Extraction {
	e.Lock()
	defer e.Unlock()
	out := make([]Extraction, len(e.extractions))
	copy(out, e.extractions)
	return out
}

func (e *Engine) Capabilities() []engine.Capability {
	missing := make(map[engine.Capability]bool)
	for _, c := range e.Missing {
		missing[c] = true
	}
	var out []engine.Capability
	for _, c := range []engine.Capability{
		engine.CapabilityRasterAnalysis,
		engine.CapabilityGeometryOverlay,
		engine.CapabilityPointExtraction,
		engine.CapabilityCatalog,
	} {
		if !missing[c] {
			out = append(out, c)
		}
	}
	return out
}

func (e *Engine) RasterizePointDensity(ctx context.Context, ds *catalog.Dataset, extent geometry.BoundingBox, cellSize float64, statistic raster.Statistic) (*raster.Raster, error) {
	acc, err := raster.NewAccumulator(extent, cellSize, statistic)
	if err != nil {
		return nil, err
	}
	for _, path := range ds.FilePaths() {
		points, err := ReadPoints(path)
		if err != nil {
			return nil, err
		}
		for _, p := range points {
			acc.Add(p.X, p.Y, p.Intensity)
		}
	}
	return acc.Raster(), nil
}

func (e *Engine) MaskRaster(r *raster.Raster, clip geom.Polygonal) *raster.Raster {
	return r.Mask(clip)
}

func (e *Engine) Polygonize(r *raster.Raster, simplify bool) ([]raster.Part, error) {
	return raster.Polygonize(r, simplify, 0), nil
}

func (e *Engine) SetOp(op geometry.SetOperation, polygons ...geom.Polygonal) geom.Polygonal {
	e.Lock()
	e.overlays++
	e.Unlock()
	return geometry.Apply(op, polygons...)
}

// Number of SetOp calls so far
func (e *Engine) Overlays() int {
	e.Lock()
	defer e.Unlock()
	return e.overlays
}

func (e *Engine) ExtractPoints(ctx context.Context, ds *catalog.Dataset, clip engine.Clip, outputFolder string, suffix string) ([]string, error) {
	if e.FailExtract[suffix] {
		return nil, errors.New("extraction failure for " + suffix)
	}

	var written []string
	for _, path := range ds.FilePaths() {
		points, err := ReadPoints(path)
		if err != nil {
			return written, err
		}
		var kept []Point
		for _, p := range points {
			if clip.Contains(p.X, p.Y) {
				kept = append(kept, p)
			}
		}
		if len(kept) == 0 {
			continue
		}
		ext := filepath.Ext(path)
		out := filepath.Join(outputFolder, strings.TrimSuffix(filepath.Base(path), ext)+"_"+suffix+ext)
		if err := WritePoints(out, kept); err != nil {
			return written, err
		}
		written = append(written, out)
	}

	e.Lock()
	e.extractions = append(e.extractions, Extraction{Files: ds.FilePaths(), Folder: outputFolder, Suffix: suffix})
	e.Unlock()
	return written, nil
}

func (e *Engine) DescribeExtent(path string) (geometry.BoundingBox, error) {
	points, err := ReadPoints(path)
	if err != nil {
		return geometry.BoundingBox{}, err
	}
	box := geometry.EmptyBoundingBox()
	for _, p := range points {
		box.Extend(geometry.BoundingBox{Xmin: p.X, Xmax: p.X, Ymin: p.Y, Ymax: p.Y})
	}
	box.Zmin, box.Zmax = 0, 0
	return box, nil
}

func (e *Engine) CoordinateSystemOf(ds *catalog.Dataset) (converters.SpatialReference, error) {
	if sr, ok := e.References[ds.Name]; ok {
		return sr, nil
	}
	return ds.SpatialReference, nil
}

func (e *Engine) BuildCatalog(files []string, outputPath string, sr converters.SpatialReference) (*catalog.Dataset, error) {
	ds := &catalog.Dataset{
		Name:             strings.TrimSuffix(filepath.Base(outputPath), catalog.ManifestExtension),
		SpatialReference: sr,
	}
	for _, path := range files {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		extent, err := e.DescribeExtent(abs)
		if err != nil {
			return nil, err
		}
		ds.Files = append(ds.Files, catalog.FileRecord{Path: abs, Extent: &extent})
	}
	if outputPath != "" {
		if err := ds.Save(outputPath); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// Writes a manifest listing the given point files with their extents
func WriteDataset(path string, name string, sr converters.SpatialReference, files ...string) (*catalog.Dataset, error) {
	ds, err := New().BuildCatalog(files, path, sr)
	if err != nil {
		return nil, err
	}
	ds.Name = name
	if err := ds.Save(path); err != nil {
		return nil, err
	}
	return ds, nil
}
