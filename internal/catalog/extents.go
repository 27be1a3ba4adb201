package catalog

import (
	"context"
	"runtime"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"github.com/ecopia-map/pointcloud_updater/internal/data"
	"github.com/ecopia-map/pointcloud_updater/internal/geometry"
)

type ExtentDescriber interface {
	DescribeExtent(path string) (geometry.BoundingBox, error)
}

// Describes the extent of every file of ds, at most workers at a time. Tiles are
// returned in catalog order with ids 0..n-1 and the given origin
func BuildTileExtents(ctx context.Context, ds *Dataset, describer ExtentDescriber, workers int, origin data.Provenance) ([]data.Tile, error) {
	if err := CheckSingleFormat(ds.String(), ds.FilePaths()); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	tiles := make([]data.Tile, len(ds.Files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range ds.Files {
		i, path := i, f.Path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			extent, err := describer.DescribeExtent(path)
			if err != nil {
				return data.NewEngineExecutionError("describe extent of "+path, err)
			}
			tiles[i] = data.Tile{ID: i, Path: path, Extent: extent, Origin: origin}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	glog.V(1).Infof("described %d tiles of %s", len(tiles), ds)
	return tiles, nil
}

// Builds the extents layer of the given tiles: one rectangular footprint per tile
// carrying its path and z range
func ExtentsLayer(name string, tiles []data.Tile) *geometry.Layer {
	layer := &geometry.Layer{Name: name}
	for _, t := range tiles {
		layer.Features = append(layer.Features, geometry.Feature{
			Geometry: t.Footprint(),
			ID:       t.ID,
			Path:     t.Path,
			Zmin:     t.Extent.Zmin,
			Zmax:     t.Extent.Zmax,
		})
	}
	return layer
}

// Returns the index of the tile with the given id, -1 if absent
func IndexOf(tiles []data.Tile, id int) int {
	for i := range tiles {
		if tiles[i].ID == id {
			return i
		}
	}
	return -1
}
