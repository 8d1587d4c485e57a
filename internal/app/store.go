package app

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"courier-dispatch/internal/config"
	"courier-dispatch/internal/docstore"
	"courier-dispatch/internal/docstore/firebase"
	"courier-dispatch/internal/docstore/memstore"
	"courier-dispatch/internal/docstore/pgstore"
	"courier-dispatch/internal/docstore/redisstore"
	"courier-dispatch/internal/logx"
)

// storeCloser releases backend connections.
type storeCloser func()

type storeIn struct {
	dig.In

	Ctx     context.Context
	Cfg     *config.Config
	Logger  logx.Logger
	Retries prometheus.Counter `name:"docstore_retries_total"`
}

type storeOut struct {
	dig.Out

	Store  docstore.Store
	Closer storeCloser
}

func provideStore(in storeIn) (storeOut, error) {
	backend, closer, err := OpenStore(in.Ctx, in.Cfg, in.Logger)
	if err != nil {
		return storeOut{}, fmt.Errorf("open %s store: %w", in.Cfg.Store.Backend, err)
	}
	in.Logger.Info("document store ready", logx.String("backend", in.Cfg.Store.Backend))

	r := in.Cfg.Retry
	store := docstore.NewRetryingStore(backend, in.Logger, in.Retries, docstore.RetryConfig{
		MaxAttempts: r.MaxAttempts,
		BaseDelay:   r.BaseDelay,
		MaxDelay:    r.MaxDelay,
	})
	return storeOut{Store: store, Closer: storeCloser(closer)}, nil
}

// OpenStore opens the configured backend. The returned func releases its connections.
func OpenStore(ctx context.Context, cfg *config.Config, logger logx.Logger) (docstore.Store, func(), error) {
	noop := func() {}

	switch cfg.Store.Backend {
	case config.BackendMemory:
		logger.Warn("using in-memory document store; state is lost on exit")
		return memstore.New(), noop, nil

	case config.BackendFirebase:
		c, err := firebase.New(firebase.Config{
			URL:            cfg.Store.FirebaseURL,
			AuthToken:      cfg.Store.FirebaseAuth,
			RequestTimeout: cfg.Dispatch.OperationTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return c, noop, nil

	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return redisstore.New(rdb), func() {
			if err := rdb.Close(); err != nil {
				logger.Warn("redis close error", logx.Err(err))
			}
		}, nil

	case config.BackendPostgres:
		pool, err := connectDbWithRetry(ctx, logger, cfg.Store.DB.DSN(), 10, time.Second)
		if err != nil {
			return nil, nil, err
		}
		if err := pgstore.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return pgstore.New(pool), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
