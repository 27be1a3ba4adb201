package io

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/golang/glog"
)

// Runs units through a producer and numConsumers consumers sharing worker
func Run(ctx context.Context, units []*WorkUnit, worker Worker, numConsumers int) error {
	if numConsumers <= 0 {
		numConsumers = runtime.NumCPU()
	}

	// init channel where to submit work with a buffer 5 times greater than the number of consumer
	workChannel := make(chan *WorkUnit, numConsumers*5)

	// the producer and every consumer submit at most one error each
	errorChannel := make(chan error, numConsumers+1)

	var waitGroup sync.WaitGroup

	waitGroup.Add(1)
	producer := NewStandardProducer(units)
	go producer.Produce(ctx, workChannel, errorChannel, &waitGroup)

	for i := 0; i < numConsumers; i++ {
		waitGroup.Add(1)
		consumer := NewStandardConsumer(worker)
		go consumer.Consume(ctx, workChannel, errorChannel, &waitGroup)
	}

	waitGroup.Wait()
	close(errorChannel)

	var errs []error
	for err := range errorChannel {
		glog.Errorln(err)
		errs = append(errs, err)
	}
	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
