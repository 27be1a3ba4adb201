package retile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/ecopia-map/pointcloud_updater/internal/catalog"
	"github.com/ecopia-map/pointcloud_updater/internal/converters"
	"github.com/ecopia-map/pointcloud_updater/internal/cutter"
	"github.com/ecopia-map/pointcloud_updater/internal/data"
	"github.com/ecopia-map/pointcloud_updater/internal/engine"
	"github.com/ecopia-map/pointcloud_updater/internal/grid_tiler"
	"github.com/ecopia-map/pointcloud_updater/internal/io"
	"github.com/ecopia-map/pointcloud_updater/tools"
)

// Lifecycle of a retiling pass
type Phase string

const (
	PhaseCollected Phase = "COLLECTED"
	PhaseCataloged Phase = "CATALOGED"
	PhaseRetiled   Phase = "RETILED"
	PhaseCleanedUp Phase = "CLEANED_UP"
)

// Re-extracts the fragments of cut tiles into a uniform grid of cells
type Orchestrator struct {
	engine      engine.Engine
	fileFinder  tools.FileFinder
	sourceTiles []data.Tile
	tilesFolder string
	scratchDir  string
	numSplits   int
	sr          converters.SpatialReference
	warnings    *data.WarningCollector

	merged *catalog.Dataset
	phase  Phase
}

func NewOrchestrator(
	e engine.Engine,
	fileFinder tools.FileFinder,
	sourceTiles []data.Tile,
	tilesFolder string,
	scratchDir string,
	numSplits int,
	sr converters.SpatialReference,
	warnings *data.WarningCollector,
) *Orchestrator {
	return &Orchestrator{
		engine:      e,
		fileFinder:  fileFinder,
		sourceTiles: sourceTiles,
		tilesFolder: tilesFolder,
		scratchDir:  scratchDir,
		numSplits:   numSplits,
		sr:          sr,
		warnings:    warnings,
	}
}

func (o *Orchestrator) Phase() Phase {
	return o.phase
}

// Retiles every modified tile of cut into tile_<id>, then removes every scratch
// folder and the temporary catalog
func (o *Orchestrator) Retile(ctx context.Context, cut cutter.Result, workers int) error {
	tools.LogOutput("Begin Re-tiling Processed Data")

	tempCatalog := filepath.Join(tools.GetScratchFolder(o.scratchDir), "temp_"+uuid.New().String()+catalog.ManifestExtension)
	defer o.cleanup(cut.ScratchFolders, tempCatalog)

	var files []string
	for _, folder := range cut.ScratchFolders {
		found, err := o.fileFinder.GetPointCloudFiles(folder, false)
		if err != nil {
			return data.NewEngineExecutionError("collect scratch fragments", err)
		}
		files = append(files, found...)
	}
	o.phase = PhaseCollected
	if len(files) == 0 {
		glog.Warningln("no fragment to retile")
		return nil
	}

	merged, err := o.engine.BuildCatalog(files, tempCatalog, o.sr)
	if err != nil {
		return err
	}
	o.merged = merged
	o.phase = PhaseCataloged

	units, err := o.Plan(cut.ModifiedTiles)
	if err != nil {
		return err
	}
	if err := io.Run(ctx, units, o, workers); err != nil {
		return err
	}
	o.phase = PhaseRetiled
	return nil
}

// One work unit per modified tile still present in the source extents, by descending id
func (o *Orchestrator) Plan(modified []int) ([]*io.WorkUnit, error) {
	var units []*io.WorkUnit
	for _, id := range modified {
		idx := catalog.IndexOf(o.sourceTiles, id)
		if idx < 0 {
			continue
		}
		tile := o.sourceTiles[idx]
		grid, err := grid_tiler.NewGrid(tile.Extent, o.numSplits)
		if err != nil {
			return nil, err
		}
		units = append(units, &io.WorkUnit{
			Tile:     tile,
			Grid:     grid,
			BasePath: cutter.TileFolder(o.tilesFolder, id),
		})
	}
	return units, nil
}

// Extracts each grid cell of the unit tile from its scratch fragments, by descending cell id
func (o *Orchestrator) DoWork(ctx context.Context, unit *io.WorkUnit) error {
	tools.LogOutput(fmt.Sprintf("Re-Tiling pointclouds for Tile: %d", unit.Tile.ID))
	fragments := o.fragmentsOf(unit.Tile.ID)

	for _, cell := range unit.Grid.CellsDescending() {
		if err := ctx.Err(); err != nil {
			return err
		}
		suffix := fmt.Sprintf("%s_%d", data.ProvenanceUpdated, cell.ID)
		if _, err := o.engine.ExtractPoints(ctx, fragments, unit.Grid.Clip(cell), unit.BasePath, suffix); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			o.warnings.Add(data.TileProcessingWarning{
				TileID:  unit.Tile.ID,
				Path:    unit.Tile.Path,
				Message: fmt.Sprintf("retiling cell %d: %v", cell.ID, err),
			})
			return nil
		}
	}
	return nil
}

// fragments of the merged catalog cut from the given tile
func (o *Orchestrator) fragmentsOf(id int) *catalog.Dataset {
	scratch, err := filepath.Abs(cutter.ScratchFolder(o.tilesFolder, id))
	if err != nil {
		scratch = filepath.Clean(cutter.ScratchFolder(o.tilesFolder, id))
	}
	var paths []string
	for _, f := range o.merged.Files {
		if filepath.Dir(f.Path) == scratch {
			paths = append(paths, f.Path)
		}
	}
	return o.merged.Subset(paths...)
}

func (o *Orchestrator) cleanup(scratchFolders []string, tempCatalog string) {
	for _, folder := range scratchFolders {
		if err := os.RemoveAll(folder); err != nil {
			glog.Warningf("cannot remove scratch folder %s: %v", folder, err)
		}
	}
	if err := os.Remove(tempCatalog); err != nil && !os.IsNotExist(err) {
		glog.Warningf("cannot remove temporary catalog %s: %v", tempCatalog, err)
	}
	o.phase = PhaseCleanedUp
}
