package io

import (
	"context"
	"fmt"
	"sync"

	"github.com/golang/glog"

	"github.com/ecopia-map/pointcloud_updater/tools"
)

type StandardProducer struct {
	units []*WorkUnit
}

func NewStandardProducer(units []*WorkUnit) *StandardProducer {
	return &StandardProducer{
		units: units,
	}
}

// Submits the WorkUnits to the provided work channel in order, creating their
// folders beforehand. Stops submitting when ctx is cancelled or when a folder
// cannot be created, the latter being reported on errchan.
// Closes the channel when all work is submitted.
func (p *StandardProducer) Produce(ctx context.Context, work chan *WorkUnit, errchan chan error, wg *sync.WaitGroup) {
	defer wg.Done()
	defer close(work)

	for _, unit := range p.units {
		if unit.BasePath != "" {
			if err := tools.CreateDirectoryIfDoesNotExist(unit.BasePath); err != nil {
				errchan <- fmt.Errorf("creating the folder of tile %d: %w", unit.Tile.ID, err)
				return
			}
		}
		select {
		case work <- unit:
		case <-ctx.Done():
			glog.Warningf("dispatch stopped: %v", ctx.Err())
			return
		}
	}
}
