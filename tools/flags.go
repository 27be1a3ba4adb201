package tools

import (
	"flag"

	"github.com/golang/glog"
)

const (
	CommandUpdate    = "update"
	CommandBoundary  = "boundary"
	CommandExtents   = "extents"
	CommandCatalog   = "catalog"
	CommandRenameExt = "rename-ext"
)

type FlagsGlobal struct {
	Help    *bool `json:"help"`
	Version *bool `json:"version"`
}

// Flags shared by every subcommand
type CommonFlags struct {
	Config       *string `json:"config"`
	Workers      *int    `json:"workers"`
	Silent       *bool   `json:"silent"`
	LogTimestamp *bool   `json:"timestamp"`
	Help         *bool   `json:"help"`
}

type FlagsForCommandUpdate struct {
	CommonFlags
	Source           *string `json:"source"`
	Update           *string `json:"update"`
	Output           *string `json:"output"`
	Catalog          *string `json:"catalog"`
	Retile           *bool   `json:"retile"`
	NumSplits        *int    `json:"splits"`
	Clip             *string `json:"clip"`
	KeepIntermediate *bool   `json:"keep_intermediate"`
}

type FlagsForCommandBoundary struct {
	CommonFlags
	Input      *string `json:"input"`
	Output     *string `json:"output"`
	Clip       *string `json:"clip"`
	NoSimplify *bool   `json:"no_simplify"`
}

type FlagsForCommandExtents struct {
	CommonFlags
	Input  *string `json:"input"`
	Output *string `json:"output"`
}

type FlagsForCommandCatalog struct {
	CommonFlags
	Input        *string `json:"input"`
	Output       *string `json:"output"`
	Name         *string `json:"name"`
	Proj4        *string `json:"proj4"`
	WKID         *int    `json:"wkid"`
	VerticalName *string `json:"vertical_name"`
	VerticalWKID *int    `json:"vertical_wkid"`
}

type FlagsForCommandRenameExt struct {
	CommonFlags
	Input *string `json:"input"`
	From  *string `json:"from"`
	To    *string `json:"to"`
}

func ParseFlagsGlobal() FlagsGlobal {
	help := defineBoolFlag("help", "h", false, "Displays this help.")
	version := defineBoolFlag("version", "", false, "Displays the version of pointcloud_updater.")

	flag.Parse()

	return FlagsGlobal{
		Help:    help,
		Version: version,
	}
}

func defineCommonFlags(flagCommand *flag.FlagSet) CommonFlags {
	return CommonFlags{
		Config:       defineStringFlagCommand(flagCommand, "config", "c", "", "Optional .toml or .yaml file with the tuning values."),
		Workers:      defineIntFlagCommand(flagCommand, "workers", "w", 0, "Number of tiles processed concurrently. 0 uses the configured value or one worker per CPU."),
		Silent:       defineBoolFlagCommand(flagCommand, "silent", "s", false, "Use to suppress all the non-error messages."),
		LogTimestamp: defineBoolFlagCommand(flagCommand, "timestamp", "t", false, "Adds timestamp to log messages."),
		Help:         defineBoolFlagCommand(flagCommand, "help", "h", false, "Displays this help."),
	}
}

func ParseFlagsForCommandUpdate(args []string) FlagsForCommandUpdate {
	glog.V(1).Infoln(FmtJSONString(args))

	flagCommand := flag.NewFlagSet("command-update", flag.ExitOnError)

	common := defineCommonFlags(flagCommand)
	source := defineStringFlagCommand(flagCommand, "source", "i", "", "Source dataset manifest (.lasd.json).")
	update := defineStringFlagCommand(flagCommand, "update", "u", "", "Update dataset manifest (.lasd.json).")
	output := defineStringFlagCommand(flagCommand, "output", "o", "", "Output folder, tiles are written to its tiles subfolder.")
	catalog := defineStringFlagCommand(flagCommand, "catalog", "d", "", "Optional output dataset manifest referencing every output file.")
	retile := defineBoolFlagCommand(flagCommand, "retile", "r", false, "Re-subdivides every modified tile into a uniform grid.")
	numSplits := defineIntFlagCommand(flagCommand, "splits", "n", 1, "Number of cuts per axis when retiling, a tile becomes (splits+1)^2 cells.")
	clip := defineStringFlagCommand(flagCommand, "clip", "", "", "Optional polygon layer (.shp or .geojson) restricting the area taken from the update dataset.")
	keepIntermediate := defineBoolFlagCommand(flagCommand, "keep-intermediate", "k", false, "Keeps the boundary, extents and template layers in the output folder.")

	flagCommand.Parse(args)

	return FlagsForCommandUpdate{
		CommonFlags:      common,
		Source:           source,
		Update:           update,
		Output:           output,
		Catalog:          catalog,
		Retile:           retile,
		NumSplits:        numSplits,
		Clip:             clip,
		KeepIntermediate: keepIntermediate,
	}
}

func ParseFlagsForCommandBoundary(args []string) FlagsForCommandBoundary {
	glog.V(1).Infoln(FmtJSONString(args))

	flagCommand := flag.NewFlagSet("command-boundary", flag.ExitOnError)

	common := defineCommonFlags(flagCommand)
	input := defineStringFlagCommand(flagCommand, "input", "i", "", "Dataset manifest (.lasd.json).")
	output := defineStringFlagCommand(flagCommand, "output", "o", "", "Output boundary layer (.shp), a .geojson copy is written next to it.")
	clip := defineStringFlagCommand(flagCommand, "clip", "", "", "Optional polygon layer (.shp or .geojson) the boundary is restricted to.")
	noSimplify := defineBoolFlagCommand(flagCommand, "no-simplify", "", false, "Keeps the stair-stepped cell edges of the boundary.")

	flagCommand.Parse(args)

	return FlagsForCommandBoundary{
		CommonFlags: common,
		Input:       input,
		Output:      output,
		Clip:        clip,
		NoSimplify:  noSimplify,
	}
}

func ParseFlagsForCommandExtents(args []string) FlagsForCommandExtents {
	glog.V(1).Infoln(FmtJSONString(args))

	flagCommand := flag.NewFlagSet("command-extents", flag.ExitOnError)

	common := defineCommonFlags(flagCommand)
	input := defineStringFlagCommand(flagCommand, "input", "i", "", "Dataset manifest (.lasd.json).")
	output := defineStringFlagCommand(flagCommand, "output", "o", "", "Output extents layer (.shp or .geojson).")

	flagCommand.Parse(args)

	return FlagsForCommandExtents{
		CommonFlags: common,
		Input:       input,
		Output:      output,
	}
}

func ParseFlagsForCommandCatalog(args []string) FlagsForCommandCatalog {
	glog.V(1).Infoln(FmtJSONString(args))

	flagCommand := flag.NewFlagSet("command-catalog", flag.ExitOnError)

	common := defineCommonFlags(flagCommand)
	input := defineStringFlagCommand(flagCommand, "input", "i", "", "Folder searched recursively for point-cloud files.")
	output := defineStringFlagCommand(flagCommand, "output", "o", "", "Output dataset manifest (.lasd.json).")
	name := defineStringFlagCommand(flagCommand, "name", "", "", "Name of the coordinate system.")
	proj4 := defineStringFlagCommand(flagCommand, "proj4", "p", "", "Proj4 definition of the coordinate system.")
	wkid := defineIntFlagCommand(flagCommand, "wkid", "e", 0, "EPSG code of the coordinate system.")
	verticalName := defineStringFlagCommand(flagCommand, "vertical-name", "", "", "Name of the vertical datum.")
	verticalWKID := defineIntFlagCommand(flagCommand, "vertical-wkid", "", 0, "EPSG code of the vertical datum.")

	flagCommand.Parse(args)

	return FlagsForCommandCatalog{
		CommonFlags:  common,
		Input:        input,
		Output:       output,
		Name:         name,
		Proj4:        proj4,
		WKID:         wkid,
		VerticalName: verticalName,
		VerticalWKID: verticalWKID,
	}
}

func ParseFlagsForCommandRenameExt(args []string) FlagsForCommandRenameExt {
	glog.V(1).Infoln(FmtJSONString(args))

	flagCommand := flag.NewFlagSet("command-rename-ext", flag.ExitOnError)

	common := defineCommonFlags(flagCommand)
	input := defineStringFlagCommand(flagCommand, "input", "i", "", "Folder holding the files to rename.")
	from := defineStringFlagCommand(flagCommand, "from", "f", ".las", "Extension to replace, dot included.")
	to := defineStringFlagCommand(flagCommand, "to", "", ".laz", "New extension, dot included.")

	flagCommand.Parse(args)

	return FlagsForCommandRenameExt{
		CommonFlags: common,
		Input:       input,
		From:        from,
		To:          to,
	}
}

func defineBoolFlag(name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flag.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flag.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}

func defineStringFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue string, usage string) *string {
	var output string
	flagCommand.StringVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.StringVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineIntFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue int, usage string) *int {
	var output int
	flagCommand.IntVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.IntVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineBoolFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flagCommand.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}
