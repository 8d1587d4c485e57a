package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"courier-dispatch/internal/app"
	"courier-dispatch/internal/config"
	"courier-dispatch/internal/docstore"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/repository"
	"courier-dispatch/internal/service/assignment"
)

// env holds what commands need from the outside world.
type env struct {
	loadConfig func() (*config.Config, error)
	openStore  func(context.Context, *config.Config, logx.Logger) (docstore.Store, func(), error)
	logOutput  io.Writer
}

func defaultEnv() env {
	return env{
		loadConfig: config.LoadEnv,
		openStore:  app.OpenStore,
		logOutput:  os.Stderr,
	}
}

type globalFlags struct {
	backend string
	timeout time.Duration
}

// session is an opened store with the components built on it.
type session struct {
	cfg    *config.Config
	logger logx.Logger
	pool   *repository.PartnerPool
	queue  *repository.OrderQueue
	engine *assignment.Engine
	close  func()
}

func newRootCmd(e env) *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:           "dispatchctl",
		Short:         "Operate the courier dispatcher",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.backend, "backend", "", "document store backend: memory|firebase|redis|postgres (default from STORE_BACKEND)")
	root.PersistentFlags().DurationVar(&flags.timeout, "timeout", 30*time.Second, "overall command timeout")

	root.AddCommand(
		newPassCmd(e, &flags),
		newAssignCmd(e, &flags),
		newPoolCmd(e, &flags),
	)
	return root
}

// commandContext bounds a command by --timeout and by SIGINT/SIGTERM.
func commandContext(flags *globalFlags) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if flags.timeout <= 0 {
		return ctx, stop
	}
	tctx, cancel := context.WithTimeout(ctx, flags.timeout)
	return tctx, func() {
		cancel()
		stop()
	}
}

func openSession(ctx context.Context, e env, flags *globalFlags) (*session, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if flags.backend != "" {
		cfg.Store.Backend = flags.backend
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger := app.NewLogger(cfg.Log, e.logOutput)
	store, closeStore, err := e.openStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}

	selector, err := assignment.NewSelector(cfg.Dispatch.Selection)
	if err != nil {
		closeStore()
		return nil, err
	}

	pool := repository.NewPartnerPool(store)
	queue := repository.NewOrderQueue(store, logger)
	return &session{
		cfg:    cfg,
		logger: logger,
		pool:   pool,
		queue:  queue,
		engine: assignment.NewEngine(pool, queue, selector, nil, cfg.Dispatch.OperationTimeout, logger),
		close:  closeStore,
	}, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
