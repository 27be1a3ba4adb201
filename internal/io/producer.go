package io

import (
	"context"
	"sync"
)

type Producer interface {
	Produce(ctx context.Context, work chan *WorkUnit, errchan chan error, wg *sync.WaitGroup)
}

type Consumer interface {
	Consume(ctx context.Context, work chan *WorkUnit, errchan chan error, wg *sync.WaitGroup)
}

// Does the actual work of a unit. Implementations report per tile failures as
// warnings and return an error only when the whole run must stop
type Worker interface {
	DoWork(ctx context.Context, unit *WorkUnit) error
}
