package pkg

import (
	"context"
	"errors"
	"fmt"

	"github.com/ctessum/geom"

	"github.com/ecopia-map/pointcloud_updater/internal/boundary"
	"github.com/ecopia-map/pointcloud_updater/internal/catalog"
	"github.com/ecopia-map/pointcloud_updater/internal/engine"
	"github.com/ecopia-map/pointcloud_updater/internal/geometry"
	"github.com/ecopia-map/pointcloud_updater/internal/updater"
	"github.com/ecopia-map/pointcloud_updater/pkg/algorithm_manager"
	"github.com/ecopia-map/pointcloud_updater/tools"
)

type UpdaterBoundary struct {
	algorithmManager algorithm_manager.AlgorithmManager
}

func NewUpdaterBoundary(algorithmManager algorithm_manager.AlgorithmManager) updater.IUpdater {
	return &UpdaterBoundary{
		algorithmManager: algorithmManager,
	}
}

// Writes the coverage boundary of a dataset as a polygon layer
func (u *UpdaterBoundary) RunUpdater(ctx context.Context, opts *updater.UpdaterOptions) error {
	defer u.algorithmManager.GetSpatialReferenceResolver().Cleanup()

	bo := opts.BoundaryOptions
	if bo == nil {
		return errors.New("missing boundary options")
	}
	if bo.Output == "" {
		return errors.New("output layer is required")
	}
	e := u.algorithmManager.GetEngine()
	if err := engine.Require(e, engine.CapabilityRasterAnalysis, engine.CapabilityGeometryOverlay); err != nil {
		return err
	}

	ds, err := catalog.Load(bo.Input)
	if err != nil {
		return err
	}
	sr, err := e.CoordinateSystemOf(ds)
	if err != nil {
		return err
	}

	var clip geom.Polygonal
	if bo.Clip != "" {
		if clip, err = geometry.ReadPolygons(bo.Clip); err != nil {
			return err
		}
	}

	boundaryOpts, err := boundary.NewOptions(opts.Config, sr.LinearUnit)
	if err != nil {
		return err
	}
	boundaryOpts.Simplify = bo.Simplify
	boundaryOpts.Clip = clip
	boundaryOpts.Storage = geometry.Disk(bo.Output)

	regions, err := boundary.NewExtractor(e).Extract(ctx, ds, boundaryOpts)
	if err != nil {
		return err
	}
	tools.LogOutput(fmt.Sprintf("Boundary of %s written to %s (%d regions)", ds, bo.Output, len(regions)))
	return nil
}
