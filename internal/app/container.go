// Package app assembles the dispatcher from configuration with dig.
package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"courier-dispatch/internal/config"
	"courier-dispatch/internal/docstore"
	"courier-dispatch/internal/http/handlers"
	"courier-dispatch/internal/http/router"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/metrics"
	"courier-dispatch/internal/repository"
	"courier-dispatch/internal/service/assignment"
	"courier-dispatch/internal/service/dispatch"
	"courier-dispatch/internal/service/orders"
	"courier-dispatch/internal/transport/kafka"
	"courier-dispatch/internal/transport/mqtt"
)

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	loadConfig func() (*config.Config, error)
	logOutput  io.Writer
	registerer prometheus.Registerer
	logFatalf  func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		loadConfig: config.Load,
		logOutput:  os.Stdout,
		registerer: prometheus.DefaultRegisterer,
		logFatalf:  log.Fatalf,
	}
}

// WithConfigLoader replaces config.Load.
func (b *ContainerBuilder) WithConfigLoader(fn func() (*config.Config, error)) *ContainerBuilder {
	if fn != nil {
		b.loadConfig = fn
	}
	return b
}

// WithLogOutput sets where the logger writes.
func (b *ContainerBuilder) WithLogOutput(w io.Writer) *ContainerBuilder {
	if w != nil {
		b.logOutput = w
	}
	return b
}

// WithRegisterer sets the Prometheus registerer for dispatch metrics.
func (b *ContainerBuilder) WithRegisterer(reg prometheus.Registerer) *ContainerBuilder {
	if reg != nil {
		b.registerer = reg
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds and returns a new dig container
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

func (b *ContainerBuilder) build(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := b.registerCore(container, ctx); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerStore(container); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	if err := registerService(container); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if err := registerTriggers(container); err != nil {
		return nil, fmt.Errorf("triggers: %w", err)
	}
	if err := registerHTTP(container); err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	return container, nil
}

// MustBuildContainer builds and returns a new dig container
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func (b *ContainerBuilder) registerCore(container *dig.Container, ctx context.Context) error {
	err := provideAll(container,
		func() context.Context { return ctx },
		b.loadConfig,
		func(cfg *config.Config) logx.Logger { return NewLogger(cfg.Log, b.logOutput) },
		func() prometheus.Registerer { return b.registerer },
		metrics.NewDispatch,
	)
	if err != nil {
		return err
	}
	return container.Provide(func(reg prometheus.Registerer) (prometheus.Counter, error) {
		c := metrics.NewStoreRetriesTotal()
		if err := reg.Register(c); err != nil {
			return nil, err
		}
		return c, nil
	}, dig.Name("docstore_retries_total"))
}

func registerStore(container *dig.Container) error {
	return provideAll(container, provideStore)
}

func registerService(container *dig.Container) error {
	return provideAll(container,
		repository.NewPartnerPool,
		repository.NewOrderQueue,
		func(cfg *config.Config) (assignment.Selector, error) {
			return assignment.NewSelector(cfg.Dispatch.Selection)
		},
		func(
			pool *repository.PartnerPool,
			queue *repository.OrderQueue,
			selector assignment.Selector,
			m *metrics.Dispatch,
			cfg *config.Config,
			logger logx.Logger,
		) *assignment.Engine {
			return assignment.NewEngine(pool, queue, selector, m, cfg.Dispatch.OperationTimeout, logger.With(logx.String("component", "engine")))
		},
		func(
			queue *repository.OrderQueue,
			engine *assignment.Engine,
			store docstore.Store,
			m *metrics.Dispatch,
			cfg *config.Config,
			logger logx.Logger,
		) *dispatch.Loop {
			return dispatch.NewLoop(queue, engine, store, m, dispatch.Config{
				Interval:         cfg.Dispatch.Interval,
				Workers:          cfg.Dispatch.Workers,
				OperationTimeout: cfg.Dispatch.OperationTimeout,
			}, logger.With(logx.String("component", "dispatch")))
		},
	)
}

func registerTriggers(container *dig.Container) error {
	return provideAll(container,
		func(loop *dispatch.Loop, m *metrics.Dispatch, logger logx.Logger) *orders.Processor {
			return orders.NewProcessor(loop, m, logger)
		},
		func(cfg *config.Config, logger logx.Logger, p *orders.Processor) (*kafka.Consumer, error) {
			k := cfg.Kafka
			return kafka.NewConsumer(logger, k.Brokers, k.GroupID, k.Topic, orderEvents(p))
		},
		func(cfg *config.Config, loop *dispatch.Loop, m *metrics.Dispatch, logger logx.Logger) (*mqtt.Listener, error) {
			q := cfg.MQTT
			return mqtt.NewListener(mqtt.Options{
				Broker:   q.Broker,
				ClientID: q.ClientID,
				Topic:    q.Topic,
				Username: q.Username,
				Password: q.Password,
			}, loop, m, logger)
		},
	)
}

func registerHTTP(container *dig.Container) error {
	serverProvider := func(cfg *config.Config, mux http.Handler) *http.Server {
		return &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      90 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}
	return provideAll(container,
		handlers.New,
		func(logger logx.Logger, loop *dispatch.Loop, engine *assignment.Engine, pool *repository.PartnerPool) *handlers.DispatchHandler {
			return handlers.NewDispatchHandler(logger, loop, engine, pool)
		},
		router.New,
		serverProvider,
	)
}
