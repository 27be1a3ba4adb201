package io

import (
	"context"
	"sync"
)

type StandardConsumer struct {
	worker Worker
}

func NewStandardConsumer(worker Worker) *StandardConsumer {
	return &StandardConsumer{
		worker: worker,
	}
}

// Continually consumes WorkUnits submitted to a work channel until the channel is closed.
// The first error is submitted to the error channel, after which remaining units are
// drained without being processed
func (c *StandardConsumer) Consume(ctx context.Context, workchan chan *WorkUnit, errchan chan error, waitGroup *sync.WaitGroup) {
	defer waitGroup.Done()

	failed := false
	for work := range workchan {
		if failed || ctx.Err() != nil {
			continue
		}
		if err := c.worker.DoWork(ctx, work); err != nil {
			errchan <- err
			failed = true
		}
	}
}
