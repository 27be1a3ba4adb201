package pkg

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ecopia-map/pointcloud_updater/internal/catalog"
	"github.com/ecopia-map/pointcloud_updater/internal/data"
	"github.com/ecopia-map/pointcloud_updater/internal/geometry"
	"github.com/ecopia-map/pointcloud_updater/internal/updater"
	"github.com/ecopia-map/pointcloud_updater/pkg/algorithm_manager"
	"github.com/ecopia-map/pointcloud_updater/tools"
)

type UpdaterExtents struct {
	algorithmManager algorithm_manager.AlgorithmManager
}

func NewUpdaterExtents(algorithmManager algorithm_manager.AlgorithmManager) updater.IUpdater {
	return &UpdaterExtents{
		algorithmManager: algorithmManager,
	}
}

// Writes one rectangle per file of a dataset
func (u *UpdaterExtents) RunUpdater(ctx context.Context, opts *updater.UpdaterOptions) error {
	defer u.algorithmManager.GetSpatialReferenceResolver().Cleanup()

	eo := opts.ExtentsOptions
	if eo == nil {
		return errors.New("missing extents options")
	}
	ds, err := catalog.Load(eo.Input)
	if err != nil {
		return err
	}
	tiles, err := catalog.BuildTileExtents(ctx, ds, u.algorithmManager.GetEngine(), opts.NumWorkers(), data.ProvenanceNone)
	if err != nil {
		return err
	}

	name := tools.GetFilenameWithoutExtension(eo.Output)
	layer := catalog.ExtentsLayer(name, tiles)
	switch strings.ToLower(filepath.Ext(eo.Output)) {
	case ".geojson", ".json":
		if err := tools.CreateDirectoryIfDoesNotExist(filepath.Dir(eo.Output)); err != nil {
			return err
		}
		err = layer.WriteGeoJSON(eo.Output)
	case ".shp":
		err = layer.Save(geometry.Disk(eo.Output))
	default:
		return fmt.Errorf("unsupported extents output %s, expected .shp or .geojson", eo.Output)
	}
	if err != nil {
		return err
	}
	tools.LogOutput(fmt.Sprintf("Extents of %d files written to %s", len(tiles), eo.Output))
	return nil
}
