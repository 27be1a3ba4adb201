package cutter

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/golang/glog"

	"github.com/ecopia-map/pointcloud_updater/internal/catalog"
	"github.com/ecopia-map/pointcloud_updater/internal/cookie_cutter"
	"github.com/ecopia-map/pointcloud_updater/internal/data"
	"github.com/ecopia-map/pointcloud_updater/internal/engine"
	"github.com/ecopia-map/pointcloud_updater/internal/io"
	"github.com/ecopia-map/pointcloud_updater/internal/lasio"
	"github.com/ecopia-map/pointcloud_updater/internal/overlap"
	"github.com/ecopia-map/pointcloud_updater/tools"
)

const TilesFolderName = "tiles"

func TilesFolder(outputFolder string) string {
	return filepath.Join(outputFolder, TilesFolderName)
}

func TileFolder(tilesFolder string, id int) string {
	return filepath.Join(tilesFolder, fmt.Sprintf("tile_%d", id))
}

func ScratchFolder(tilesFolder string, id int) string {
	return TileFolder(tilesFolder, id) + "_scratch"
}

// Path an unmodified source tile is copied to
func CopiedTilePath(tilesFolder string, tile data.Tile) string {
	return filepath.Join(tilesFolder, fmt.Sprintf("Source_%d%s", tile.ID, filepath.Ext(tile.Path)))
}

// Outcome of a cutting pass
type Result struct {
	ModifiedTiles  []int
	CopiedTiles    []string
	ScratchFolders []string
	Fragments      []string
}

// Cuts source tiles along the template regions. Implements io.Worker, one work unit per tile
type Cutter struct {
	engine         engine.Engine
	source         *catalog.Dataset
	update         *catalog.Dataset
	classification *overlap.Classification
	tilesFolder    string
	retile         bool
	warnings       *data.WarningCollector

	result Result
	sync.Mutex
}

func NewCutter(
	e engine.Engine,
	source *catalog.Dataset,
	update *catalog.Dataset,
	classification *overlap.Classification,
	tilesFolder string,
	retile bool,
	warnings *data.WarningCollector,
) *Cutter {
	return &Cutter{
		engine:         e,
		source:         source,
		update:         update,
		classification: classification,
		tilesFolder:    tilesFolder,
		retile:         retile,
		warnings:       warnings,
	}
}

// Builds one work unit per tile of the template, in template order. Tiles to
// extract write into their tile folder, or its scratch sibling when retiling
func (c *Cutter) Plan(template *cookie_cutter.Template) []*io.WorkUnit {
	var units []*io.WorkUnit
	for _, regions := range template.RegionsByTile() {
		id := regions[0].TileID
		idx := catalog.IndexOf(template.SourceTiles, id)
		if idx < 0 {
			c.warnings.Add(data.TileProcessingWarning{TileID: id, Path: regions[0].Path, Message: "tile not found in the source extents"})
			continue
		}
		unit := &io.WorkUnit{
			Tile:    template.SourceTiles[idx],
			Regions: regions,
		}
		if needsExtraction(regions) {
			unit.BasePath = TileFolder(c.tilesFolder, id)
			if c.retile {
				unit.BasePath = ScratchFolder(c.tilesFolder, id)
			}
		}
		units = append(units, unit)
	}
	return units
}

func needsExtraction(regions []cookie_cutter.Region) bool {
	for _, r := range regions {
		if r.Status != data.ProvenanceSource {
			return true
		}
	}
	return false
}

// Runs every unit on a pool of workers and returns what was written
func (c *Cutter) Run(ctx context.Context, units []*io.WorkUnit, workers int) (Result, error) {
	if err := tools.CreateDirectoryIfDoesNotExist(c.tilesFolder); err != nil {
		return Result{}, err
	}
	err := io.Run(ctx, units, c, workers)
	return c.Result(), err
}

// Processes the regions of one tile in order. A failed extraction is reported as a
// warning and the remaining regions of the tile are skipped
func (c *Cutter) DoWork(ctx context.Context, unit *io.WorkUnit) error {
	tile := unit.Tile
	sourceCount, updatedCount := 0, 0

	for i, region := range unit.Regions {
		if err := ctx.Err(); err != nil {
			return err
		}
		tools.LogOutput(fmt.Sprintf("Processing PointCloud Tile: %d | shape %d of %d", tile.ID, i+1, len(unit.Regions)))

		var err error
		switch {
		case region.Dataset == data.ProvenanceSource && region.Status != data.ProvenanceSource:
			err = c.extract(ctx, unit, region, c.source.Subset(tile.Path), fmt.Sprintf("%s_%d", data.ProvenanceSource, sourceCount))
			sourceCount++
		case region.Dataset == data.ProvenanceUpdated && region.Status != data.ProvenanceSource:
			err = c.extract(ctx, unit, region, c.updateFor(tile.ID), fmt.Sprintf("%s_%d", data.ProvenanceUpdated, updatedCount))
			updatedCount++
		case region.Dataset == data.ProvenanceSource && region.Status == data.ProvenanceSource:
			err = c.copyTile(tile)
		default:
			c.warnings.Add(data.TileProcessingWarning{
				TileID:  tile.ID,
				Path:    tile.Path,
				Message: fmt.Sprintf("unknown issue processing region with STATUS=%q DATASET=%q", region.Status, region.Dataset),
			})
			continue
		}

		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.warnings.Add(data.TileProcessingWarning{TileID: tile.ID, Path: tile.Path, Message: err.Error()})
			glog.Warningf("skipping the %d remaining regions of tile %d", len(unit.Regions)-i-1, tile.ID)
			return nil
		}
	}
	return nil
}

// update files overlapping the tile, the whole update dataset when none is known
func (c *Cutter) updateFor(tileID int) *catalog.Dataset {
	var paths []string
	for _, p := range c.classification.Pairs {
		if p.SourceID == tileID {
			paths = append(paths, p.UpdatePath)
		}
	}
	if len(paths) == 0 {
		return c.update
	}
	return c.update.Subset(paths...)
}

func (c *Cutter) extract(ctx context.Context, unit *io.WorkUnit, region cookie_cutter.Region, ds *catalog.Dataset, suffix string) error {
	tileFolder := TileFolder(c.tilesFolder, unit.Tile.ID)
	if err := tools.CreateDirectoryIfDoesNotExist(tileFolder); err != nil {
		return err
	}
	c.markModified(unit.Tile.ID, unit.BasePath)

	written, err := c.engine.ExtractPoints(ctx, ds, engine.NewRegionClip(region.Geometry), unit.BasePath, suffix)
	c.addFragments(written)
	if err != nil {
		return err
	}
	glog.V(1).Infof("tile %d: clipped %s dataset into %d fragments", unit.Tile.ID, region.Dataset, len(written))
	return nil
}

func (c *Cutter) copyTile(tile data.Tile) error {
	target := CopiedTilePath(c.tilesFolder, tile)
	if err := lasio.Copy(tile.Path, target); err != nil {
		return err
	}
	c.Lock()
	c.result.CopiedTiles = append(c.result.CopiedTiles, tile.Path)
	c.Unlock()
	glog.V(1).Infof("copied source tile %s to %s", tile.Path, target)
	return nil
}

func (c *Cutter) markModified(id int, folder string) {
	c.Lock()
	defer c.Unlock()
	for _, m := range c.result.ModifiedTiles {
		if m == id {
			return
		}
	}
	c.result.ModifiedTiles = append(c.result.ModifiedTiles, id)
	if c.retile {
		c.result.ScratchFolders = append(c.result.ScratchFolders, folder)
	}
}

func (c *Cutter) addFragments(paths []string) {
	if len(paths) == 0 {
		return
	}
	c.Lock()
	c.result.Fragments = append(c.result.Fragments, paths...)
	c.Unlock()
}

// Returns a snapshot of the result. Tiles are listed by descending id
func (c *Cutter) Result() Result {
	c.Lock()
	defer c.Unlock()
	r := Result{
		ModifiedTiles:  append([]int(nil), c.result.ModifiedTiles...),
		CopiedTiles:    append([]string(nil), c.result.CopiedTiles...),
		ScratchFolders: append([]string(nil), c.result.ScratchFolders...),
		Fragments:      append([]string(nil), c.result.Fragments...),
	}
	sort.Sort(sort.Reverse(sort.IntSlice(r.ModifiedTiles)))
	sort.Strings(r.CopiedTiles)
	sort.Strings(r.ScratchFolders)
	sort.Strings(r.Fragments)
	return r
}
