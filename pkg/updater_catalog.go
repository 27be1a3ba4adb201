package pkg

import (
	"context"
	"errors"
	"fmt"

	"github.com/ecopia-map/pointcloud_updater/internal/catalog"
	"github.com/ecopia-map/pointcloud_updater/internal/converters"
	"github.com/ecopia-map/pointcloud_updater/internal/engine"
	"github.com/ecopia-map/pointcloud_updater/internal/updater"
	"github.com/ecopia-map/pointcloud_updater/pkg/algorithm_manager"
	"github.com/ecopia-map/pointcloud_updater/tools"
)

type UpdaterCatalog struct {
	fileFinder       tools.FileFinder
	algorithmManager algorithm_manager.AlgorithmManager
}

func NewUpdaterCatalog(fileFinder tools.FileFinder, algorithmManager algorithm_manager.AlgorithmManager) updater.IUpdater {
	return &UpdaterCatalog{
		fileFinder:       fileFinder,
		algorithmManager: algorithmManager,
	}
}

// Builds a dataset manifest from the point-cloud files of a folder
func (u *UpdaterCatalog) RunUpdater(ctx context.Context, opts *updater.UpdaterOptions) error {
	resolver := u.algorithmManager.GetSpatialReferenceResolver()
	defer resolver.Cleanup()

	co := opts.CatalogOptions
	if co == nil {
		return errors.New("missing catalog options")
	}
	if !catalog.IsManifestPath(co.Output) {
		return fmt.Errorf("output catalog %s must end with %s", co.Output, catalog.ManifestExtension)
	}
	if co.Proj4 == "" && co.WKID == 0 {
		return errors.New("a proj4 definition or an EPSG code is required")
	}
	e := u.algorithmManager.GetEngine()
	if err := engine.Require(e, engine.CapabilityCatalog); err != nil {
		return err
	}

	files, err := u.fileFinder.GetPointCloudFiles(co.Input, true)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no point-cloud file found in %s", co.Input)
	}
	if err := catalog.CheckSingleFormat(co.Input, files); err != nil {
		return err
	}

	sr, err := resolver.Resolve(converters.SpatialReference{
		Name:         co.Name,
		Proj4:        co.Proj4,
		WKID:         co.WKID,
		VerticalName: co.VerticalName,
		VerticalWKID: co.VerticalWKID,
	})
	if err != nil {
		return err
	}

	ds, err := e.BuildCatalog(files, co.Output, sr)
	if err != nil {
		return err
	}
	tools.LogOutput(fmt.Sprintf("Dataset %s with %d files written to %s", ds, len(ds.Files), co.Output))
	return nil
}
