package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang/glog"

	"github.com/ecopia-map/pointcloud_updater/internal/config"
	"github.com/ecopia-map/pointcloud_updater/internal/updater"
	"github.com/ecopia-map/pointcloud_updater/pkg"
	"github.com/ecopia-map/pointcloud_updater/pkg/algorithm_manager/std_algorithm_manager"
	"github.com/ecopia-map/pointcloud_updater/tools"
)

const VERSION = "1.0.0"

const commands = "[update|boundary|extents|catalog|rename-ext]"

func main() {
	flagsGlobal := tools.ParseFlagsGlobal()
	defer glog.Flush()

	if *flagsGlobal.Version {
		printVersion()
		return
	}
	args := flag.Args()
	if *flagsGlobal.Help || len(args) == 0 {
		showHelp()
		if len(args) == 0 && !*flagsGlobal.Help {
			os.Exit(2)
		}
		return
	}
	cmd, args := args[0], args[1:]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd {
	case tools.CommandUpdate:
		err = mainCommandUpdate(ctx, args)
	case tools.CommandBoundary:
		err = mainCommandBoundary(ctx, args)
	case tools.CommandExtents:
		err = mainCommandExtents(ctx, args)
	case tools.CommandCatalog:
		err = mainCommandCatalog(ctx, args)
	case tools.CommandRenameExt:
		err = mainCommandRenameExt(ctx, args)
	default:
		glog.Exitf("Unrecognized command [%q]. Command must be one of %s", cmd, commands)
	}

	if err != nil {
		glog.Exitf("Error while running %s: %v", cmd, err)
	}
}

// Builds the options shared by every command: tuning values, workers and logging
func newOptions(command updater.Command, flags tools.CommonFlags) (*updater.UpdaterOptions, error) {
	if *flags.Silent {
		tools.DisableLogger()
	} else {
		tools.EnableLogger()
	}
	if *flags.LogTimestamp {
		tools.EnableLoggerTimestamp()
	} else {
		tools.DisableLoggerTimestamp()
	}

	cfg := config.Default()
	if *flags.Config != "" {
		var err error
		if cfg, err = config.Load(*flags.Config); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv()
	if *flags.Workers < 0 {
		return nil, fmt.Errorf("workers cannot be negative, got %d", *flags.Workers)
	}

	return &updater.UpdaterOptions{
		Command: command,
		Config:  cfg,
		Workers: *flags.Workers,
		Silent:  *flags.Silent,
	}, nil
}

func mainCommandUpdate(ctx context.Context, args []string) error {
	flags := tools.ParseFlagsForCommandUpdate(args)
	if *flags.Help {
		showHelp()
		return nil
	}

	opts, err := newOptions(updater.CommandUpdate, flags.CommonFlags)
	if err != nil {
		return err
	}
	opts.UpdateOptions = &updater.UpdateOptions{
		Source:           *flags.Source,
		Update:           *flags.Update,
		Output:           *flags.Output,
		Catalog:          *flags.Catalog,
		Retile:           *flags.Retile,
		NumSplits:        *flags.NumSplits,
		Clip:             *flags.Clip,
		KeepIntermediate: *flags.KeepIntermediate,
	}
	if err := pkg.ValidateUpdateOptions(opts.UpdateOptions); err != nil {
		return fmt.Errorf("error parsing input parameters: %w", err)
	}

	defer timeTrack(time.Now(), "update")
	err = pkg.NewUpdater(tools.NewStandardFileFinder(), std_algorithm_manager.NewAlgorithmManager(opts)).RunUpdater(ctx, opts)
	if err == nil {
		tools.LogOutput("Update Completed")
	}
	return err
}

func mainCommandBoundary(ctx context.Context, args []string) error {
	flags := tools.ParseFlagsForCommandBoundary(args)
	if *flags.Help {
		showHelp()
		return nil
	}

	opts, err := newOptions(updater.CommandBoundary, flags.CommonFlags)
	if err != nil {
		return err
	}
	opts.BoundaryOptions = &updater.BoundaryOptions{
		Input:    *flags.Input,
		Output:   *flags.Output,
		Clip:     *flags.Clip,
		Simplify: !*flags.NoSimplify,
	}
	if _, err := os.Stat(opts.BoundaryOptions.Input); os.IsNotExist(err) {
		return fmt.Errorf("input dataset %s not found", opts.BoundaryOptions.Input)
	}

	return pkg.NewUpdaterBoundary(std_algorithm_manager.NewAlgorithmManager(opts)).RunUpdater(ctx, opts)
}

func mainCommandExtents(ctx context.Context, args []string) error {
	flags := tools.ParseFlagsForCommandExtents(args)
	if *flags.Help {
		showHelp()
		return nil
	}

	opts, err := newOptions(updater.CommandExtents, flags.CommonFlags)
	if err != nil {
		return err
	}
	opts.ExtentsOptions = &updater.ExtentsOptions{
		Input:  *flags.Input,
		Output: *flags.Output,
	}
	if _, err := os.Stat(opts.ExtentsOptions.Input); os.IsNotExist(err) {
		return fmt.Errorf("input dataset %s not found", opts.ExtentsOptions.Input)
	}

	return pkg.NewUpdaterExtents(std_algorithm_manager.NewAlgorithmManager(opts)).RunUpdater(ctx, opts)
}

func mainCommandCatalog(ctx context.Context, args []string) error {
	flags := tools.ParseFlagsForCommandCatalog(args)
	if *flags.Help {
		showHelp()
		return nil
	}

	opts, err := newOptions(updater.CommandCatalog, flags.CommonFlags)
	if err != nil {
		return err
	}
	opts.CatalogOptions = &updater.CatalogOptions{
		Input:        *flags.Input,
		Output:       *flags.Output,
		Name:         *flags.Name,
		Proj4:        *flags.Proj4,
		WKID:         *flags.WKID,
		VerticalName: *flags.VerticalName,
		VerticalWKID: *flags.VerticalWKID,
	}
	if _, err := os.Stat(opts.CatalogOptions.Input); os.IsNotExist(err) {
		return fmt.Errorf("input folder %s not found", opts.CatalogOptions.Input)
	}

	return pkg.NewUpdaterCatalog(tools.NewStandardFileFinder(), std_algorithm_manager.NewAlgorithmManager(opts)).RunUpdater(ctx, opts)
}

func mainCommandRenameExt(ctx context.Context, args []string) error {
	flags := tools.ParseFlagsForCommandRenameExt(args)
	if *flags.Help {
		showHelp()
		return nil
	}

	opts, err := newOptions(updater.CommandRenameExt, flags.CommonFlags)
	if err != nil {
		return err
	}
	opts.RenameExtOptions = &updater.RenameExtOptions{
		Input: *flags.Input,
		From:  *flags.From,
		To:    *flags.To,
	}

	return pkg.NewUpdaterRenameExt().RunUpdater(ctx, opts)
}

func timeTrack(start time.Time, name string) {
	elapsed := time.Since(start)
	tools.LogOutput(fmt.Sprintf("%s took %s", name, elapsed))
}

func showHelp() {
	fmt.Println("***")
	fmt.Println("pointcloud_updater replaces the part of a tiled LiDAR dataset covered by a newer acquisition, tile by tile")
	printVersion()
	fmt.Println("***")
	fmt.Println("")
	fmt.Println("Usage: pointcloud_updater " + commands + " [flags]")
	fmt.Println("Run a command with -help to list its flags.")
	fmt.Println("")
	fmt.Println("Global flags: ")
	flag.CommandLine.SetOutput(os.Stdout)
	flag.PrintDefaults()
}

func printVersion() {
	fmt.Println("v." + VERSION)
}
