package pkg

import (
	"context"
	"errors"
	"fmt"

	"github.com/ecopia-map/pointcloud_updater/internal/retile"
	"github.com/ecopia-map/pointcloud_updater/internal/updater"
	"github.com/ecopia-map/pointcloud_updater/tools"
)

type UpdaterRenameExt struct{}

func NewUpdaterRenameExt() updater.IUpdater {
	return &UpdaterRenameExt{}
}

// Swaps the extension of the files of a folder
func (u *UpdaterRenameExt) RunUpdater(ctx context.Context, opts *updater.UpdaterOptions) error {
	ro := opts.RenameExtOptions
	if ro == nil {
		return errors.New("missing rename-ext options")
	}
	n, err := retile.RenameExtension(ro.Input, ro.From, ro.To)
	if err != nil {
		return err
	}
	tools.LogOutput(fmt.Sprintf("Renamed %d files from %s to %s", n, ro.From, ro.To))
	return nil
}
