package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"go.uber.org/dig"
	"golang.org/x/sync/errgroup"

	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/service/dispatch"
	"courier-dispatch/internal/transport/kafka"
	"courier-dispatch/internal/transport/mqtt"
)

const shutdownTimeout = 15 * time.Second

// Runner runs the admin HTTP server next to the dispatch loop and its triggers.
type Runner struct {
	runFn  func(*dig.Container) error
	exitFn func(int)
}

// NewRunner returns a new Runner
func NewRunner() *Runner {
	return &Runner{runFn: run, exitFn: os.Exit}
}

// MustRun runs the service until its context is canceled. Any other
// failure is logged and terminates the process.
func (r *Runner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil {
		return
	}
	logger := resolveLogger(container)
	switch {
	case errors.Is(err, context.Canceled):
		logger.Info("shutdown requested, exiting")
	case errors.Is(err, context.DeadlineExceeded):
		logger.Info("startup aborted: startup timeout exceeded")
	default:
		logger.Error("run error", logx.Err(err))
		if r.exitFn != nil {
			r.exitFn(1)
		}
	}
}

type runIn struct {
	dig.In

	Ctx      context.Context
	Logger   logx.Logger
	Server   *http.Server
	Loop     *dispatch.Loop
	Consumer *kafka.Consumer
	Listener *mqtt.Listener
	Closer   storeCloser
}

func run(container *dig.Container) error {
	return container.Invoke(func(in runIn) error {
		defer closeResources(in.Logger, in.Consumer, in.Closer)

		return runComponents(in.Ctx, in.Loop, in.Consumer, in.Listener,
			func(ctx context.Context) error {
				return serveHTTP(ctx, in.Server, in.Logger)
			},
		)
	})
}

// runComponents starts the loop and every trigger source and blocks until
// ctx is canceled or one of them fails. The loop drains its current pass
// before the function returns.
func runComponents(
	ctx context.Context,
	loop *dispatch.Loop,
	consumer *kafka.Consumer,
	listener *mqtt.Listener,
	extra ...func(context.Context) error,
) error {
	g, gctx := errgroup.WithContext(ctx)

	if err := loop.Start(gctx); err != nil {
		return err
	}

	g.Go(func() error {
		<-gctx.Done()
		loop.Stop()
		<-loop.Done()
		return gctx.Err()
	})
	if consumer != nil {
		g.Go(func() error { return consumer.Run(gctx) })
	}
	if listener != nil {
		g.Go(func() error { return listener.Run(gctx) })
	}
	for _, fn := range extra {
		g.Go(func() error { return fn(gctx) })
	}
	return g.Wait()
}

func serveHTTP(ctx context.Context, server *http.Server, logger logx.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("service-dispatch listening", logx.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down service-dispatch...")
		gracefulShutdown(server, logger, shutdownTimeout)
		return ctx.Err()
	}
}

func gracefulShutdown(srv *http.Server, logger logx.Logger, timeout time.Duration) {
	shCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logger.Error("graceful shutdown error", logx.Err(err))
	}
}

func closeResources(logger logx.Logger, consumer *kafka.Consumer, closer storeCloser) {
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			logger.Error("kafka close error", logx.Err(err))
		}
	}
	if closer != nil {
		closer()
	}
	_ = logger.Sync()
}

func resolveLogger(container *dig.Container) logx.Logger {
	var logger logx.Logger = logx.Nop()
	_ = container.Invoke(func(l logx.Logger) { logger = l })
	return logger
}
