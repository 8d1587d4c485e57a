package app

import (
	"context"
	"errors"

	"go.uber.org/dig"

	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/service/dispatch"
	"courier-dispatch/internal/transport/kafka"
	"courier-dispatch/internal/transport/mqtt"
)

// WorkerRunner runs the dispatch loop and its triggers without the admin API.
type WorkerRunner struct {
	runFn func(*dig.Container) error
}

// NewWorkerRunner returns a new WorkerRunner
func NewWorkerRunner() *WorkerRunner {
	return &WorkerRunner{runFn: runWorker}
}

// MustRun runs the worker and panics on any error other than cancellation.
func (r *WorkerRunner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	panic(err)
}

func runWorker(container *dig.Container) error {
	return container.Invoke(workerRun)
}

func workerRun(
	ctx context.Context,
	logger logx.Logger,
	loop *dispatch.Loop,
	consumer *kafka.Consumer,
	listener *mqtt.Listener,
	closer storeCloser,
) error {
	if loop == nil {
		return errors.New("dispatch loop is nil: worker container misconfigured")
	}
	defer closeResources(logger, consumer, closer)

	logger.Info("dispatch worker started")
	return runComponents(ctx, loop, consumer, listener)
}
