package updater

import (
	"context"
	"strings"

	"github.com/ecopia-map/pointcloud_updater/internal/config"
)

type Command string

const (
	CommandUpdate    Command = "UPDATE"
	CommandBoundary  Command = "BOUNDARY"
	CommandExtents   Command = "EXTENTS"
	CommandCatalog   Command = "CATALOG"
	CommandRenameExt Command = "RENAME-EXT"
)

func (c Command) String() string {
	return strings.ToLower(string(c))
}

func ParseCommand(value string) Command {
	normalizedValue := strings.Trim(strings.ToUpper(value), " ")
	switch Command(normalizedValue) {
	case CommandUpdate, CommandBoundary, CommandExtents, CommandCatalog, CommandRenameExt:
		return Command(normalizedValue)
	}
	return ""
}

// Contains the options of an updater run
type UpdaterOptions struct {
	Command Command
	Config  config.Config // tuning values, thresholds in meters
	Workers int           // number of concurrent tile workers, 0 uses one per CPU
	Silent  bool

	UpdateOptions    *UpdateOptions
	BoundaryOptions  *BoundaryOptions
	ExtentsOptions   *ExtentsOptions
	CatalogOptions   *CatalogOptions
	RenameExtOptions *RenameExtOptions
}

type UpdateOptions struct {
	Source           string // source dataset manifest
	Update           string // update dataset manifest
	Output           string // output folder
	Catalog          string // optional output dataset manifest
	Retile           bool   // re-subdivide modified tiles into a uniform grid
	NumSplits        int    // cuts per axis when retiling
	Clip             string // optional clipping geometry (.shp or .geojson)
	KeepIntermediate bool   // keep the boundary and template layers
}

type BoundaryOptions struct {
	Input    string // dataset manifest
	Output   string // output .shp
	Clip     string
	Simplify bool
}

type ExtentsOptions struct {
	Input  string
	Output string
}

type CatalogOptions struct {
	Input        string // folder searched recursively
	Output       string // output .lasd.json manifest
	Name         string
	Proj4        string
	WKID         int
	VerticalName string
	VerticalWKID int
}

type RenameExtOptions struct {
	Input string
	From  string
	To    string
}

type IUpdater interface {
	RunUpdater(ctx context.Context, opts *UpdaterOptions) error
}

func (opt *UpdaterOptions) Copy() *UpdaterOptions {
	newOpt := &UpdaterOptions{
		Command: opt.Command,
		Config:  opt.Config,
		Workers: opt.Workers,
		Silent:  opt.Silent,
	}

	if opt.UpdateOptions != nil {
		updateOpt := *opt.UpdateOptions
		newOpt.UpdateOptions = &updateOpt
	}
	if opt.BoundaryOptions != nil {
		boundaryOpt := *opt.BoundaryOptions
		newOpt.BoundaryOptions = &boundaryOpt
	}
	if opt.ExtentsOptions != nil {
		extentsOpt := *opt.ExtentsOptions
		newOpt.ExtentsOptions = &extentsOpt
	}
	if opt.CatalogOptions != nil {
		catalogOpt := *opt.CatalogOptions
		newOpt.CatalogOptions = &catalogOpt
	}
	if opt.RenameExtOptions != nil {
		renameOpt := *opt.RenameExtOptions
		newOpt.RenameExtOptions = &renameOpt
	}

	return newOpt
}

// Number of workers to use, falling back on the configured value
func (opt *UpdaterOptions) NumWorkers() int {
	if opt.Workers > 0 {
		return opt.Workers
	}
	return opt.Config.Workers
}
