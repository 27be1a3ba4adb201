package pkg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ctessum/geom"
	"github.com/golang/glog"

	"github.com/ecopia-map/pointcloud_updater/internal/boundary"
	"github.com/ecopia-map/pointcloud_updater/internal/catalog"
	"github.com/ecopia-map/pointcloud_updater/internal/consistency"
	"github.com/ecopia-map/pointcloud_updater/internal/cookie_cutter"
	"github.com/ecopia-map/pointcloud_updater/internal/cutter"
	"github.com/ecopia-map/pointcloud_updater/internal/data"
	"github.com/ecopia-map/pointcloud_updater/internal/engine"
	"github.com/ecopia-map/pointcloud_updater/internal/geometry"
	"github.com/ecopia-map/pointcloud_updater/internal/overlap"
	"github.com/ecopia-map/pointcloud_updater/internal/retile"
	"github.com/ecopia-map/pointcloud_updater/internal/updater"
	"github.com/ecopia-map/pointcloud_updater/pkg/algorithm_manager"
	"github.com/ecopia-map/pointcloud_updater/tools"
)

const sourceExtentsLayerName = "source_tile_extents"

// Outcome of an update run
type Summary struct {
	TouchedTiles   []int
	UntouchedTiles int
	Fragments      []string
	Warnings       []data.TileProcessingWarning
	Catalog        *catalog.Dataset
}

type Updater struct {
	fileFinder       tools.FileFinder
	algorithmManager algorithm_manager.AlgorithmManager
}

func NewUpdater(fileFinder tools.FileFinder, algorithmManager algorithm_manager.AlgorithmManager) updater.IUpdater {
	return &Updater{
		fileFinder:       fileFinder,
		algorithmManager: algorithmManager,
	}
}

// Starts the update process
func (u *Updater) RunUpdater(ctx context.Context, opts *updater.UpdaterOptions) error {
	summary, err := u.Run(ctx, opts)
	if summary != nil {
		logSummary(summary)
	}
	return err
}

// Reconciles the source dataset with the update dataset into the output folder
func (u *Updater) Run(ctx context.Context, opts *updater.UpdaterOptions) (*Summary, error) {
	defer u.algorithmManager.GetSpatialReferenceResolver().Cleanup()

	uo := opts.UpdateOptions
	if uo == nil {
		return nil, errors.New("missing update options")
	}
	e := u.algorithmManager.GetEngine()
	if err := engine.Require(e,
		engine.CapabilityRasterAnalysis,
		engine.CapabilityGeometryOverlay,
		engine.CapabilityPointExtraction,
		engine.CapabilityCatalog,
	); err != nil {
		return nil, err
	}

	tools.LogOutput("Loading las datasets...")
	source, err := catalog.Load(uo.Source)
	if err != nil {
		return nil, err
	}
	update, err := catalog.Load(uo.Update)
	if err != nil {
		return nil, err
	}

	sr, err := consistency.Check(e, source, update)
	if err != nil {
		return nil, err
	}

	sourceTiles, err := catalog.BuildTileExtents(ctx, source, e, opts.NumWorkers(), data.ProvenanceSource)
	if err != nil {
		return nil, err
	}
	updateTiles, err := catalog.BuildTileExtents(ctx, update, e, opts.NumWorkers(), data.ProvenanceUpdated)
	if err != nil {
		return nil, err
	}
	if !overlap.ExtentsIntersect(sourceTiles, updateTiles) {
		return nil, &data.NoOverlapError{Source: source.String(), Update: update.String()}
	}
	tools.LogOutput("Detected the two las datasets intersect... continuing process")

	var clip geom.Polygonal
	if uo.Clip != "" {
		if clip, err = geometry.ReadPolygons(uo.Clip); err != nil {
			return nil, err
		}
	}

	if err := tools.CreateDirectoryIfDoesNotExist(uo.Output); err != nil {
		return nil, err
	}
	intermediate := []string{
		filepath.Join(uo.Output, boundary.LayerName+".shp"),
		filepath.Join(uo.Output, sourceExtentsLayerName+".shp"),
		filepath.Join(uo.Output, cookie_cutter.LayerName+".shp"),
	}
	if !uo.KeepIntermediate {
		defer func() {
			for _, path := range intermediate {
				geometry.DeleteShapefile(path)
			}
		}()
	}

	// coverage boundary of the update dataset
	tools.LogOutput("Extracting the update coverage boundary...")
	boundaryOpts, err := boundary.NewOptions(opts.Config, sr.LinearUnit)
	if err != nil {
		return nil, err
	}
	boundaryOpts.Clip = clip
	boundaryOpts.Storage = geometry.Disk(intermediate[0])
	regions, err := boundary.NewExtractor(e).Extract(ctx, update, boundaryOpts)
	if err != nil {
		return nil, err
	}

	// tiles to update and cookie cutter template
	classification := overlap.Classify(e, sourceTiles, updateTiles)
	if err := catalog.ExtentsLayer(sourceExtentsLayerName, sourceTiles).Save(geometry.Disk(intermediate[1])); err != nil {
		return nil, data.NewEngineExecutionError("save source extents", err)
	}
	template := cookie_cutter.Build(e, sourceTiles, classification, regions)
	if err := template.Layer().Save(geometry.Disk(intermediate[2])); err != nil {
		return nil, data.NewEngineExecutionError("save template", err)
	}

	// cut tiles
	warnings := data.NewWarningCollector()
	tilesFolder := cutter.TilesFolder(uo.Output)
	c := cutter.NewCutter(e, source, update, classification, tilesFolder, uo.Retile, warnings)
	result, err := c.Run(ctx, c.Plan(template), opts.NumWorkers())
	if err != nil {
		return nil, err
	}

	if uo.Retile {
		o := retile.NewOrchestrator(e, u.fileFinder, sourceTiles, tilesFolder, opts.Config.ScratchDir, uo.NumSplits, sr, warnings)
		if err := o.Retile(ctx, result, opts.NumWorkers()); err != nil {
			return nil, err
		}
	}

	if err := retile.RenameAll(u.fileFinder, tilesFolder); err != nil {
		return nil, err
	}

	fragments, err := u.fileFinder.GetPointCloudFiles(tilesFolder, true)
	if err != nil {
		return nil, err
	}
	summary := &Summary{
		TouchedTiles:   result.ModifiedTiles,
		UntouchedTiles: len(result.CopiedTiles),
		Fragments:      fragments,
		Warnings:       warnings.List(),
	}

	if uo.Catalog != "" {
		tools.LogOutput("Generating LAS Dataset")
		ds, err := e.BuildCatalog(fragments, uo.Catalog, sr)
		if err != nil {
			return summary, err
		}
		summary.Catalog = ds
	}
	return summary, nil
}

func logSummary(s *Summary) {
	tools.LogOutput(fmt.Sprintf("Updated %d tiles, copied %d untouched tiles, %d output files",
		len(s.TouchedTiles), s.UntouchedTiles, len(s.Fragments)))
	for _, w := range s.Warnings {
		tools.LogOutput("warning: " + w.Error())
	}
	if s.Catalog != nil && s.Catalog.Path != "" {
		glog.Infof("dataset written to %s", s.Catalog.Path)
	}
}

// Validates the input options of the update command
func ValidateUpdateOptions(uo *updater.UpdateOptions) error {
	for _, path := range []string{uo.Source, uo.Update} {
		if !catalog.IsManifestPath(path) {
			return fmt.Errorf("%s is not a %s dataset manifest", path, catalog.ManifestExtension)
		}
		if _, err := os.Stat(path); err != nil {
			return err
		}
	}
	if uo.Output == "" {
		return errors.New("output folder is required")
	}
	if uo.Catalog != "" && !catalog.IsManifestPath(uo.Catalog) {
		return fmt.Errorf("output catalog %s must end with %s", uo.Catalog, catalog.ManifestExtension)
	}
	if uo.Retile && uo.NumSplits < 0 {
		return fmt.Errorf("splits cannot be negative, got %d", uo.NumSplits)
	}
	if uo.Clip != "" {
		if _, err := os.Stat(uo.Clip); err != nil {
			return err
		}
	}
	return nil
}
