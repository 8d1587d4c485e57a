// Package dispatch drives the assignment engine from a timer, store change
// notifications and external triggers.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"courier-dispatch/internal/docstore"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/repository"
)

// ErrStopped is returned by Start on a loop that was already stopped.
var ErrStopped = errors.New("dispatch loop stopped")

// Config tunes the loop.
type Config struct {
	Interval  time.Duration
	Workers   int
	WatchPath string
	// OperationTimeout bounds the pending-order read of each pass.
	OperationTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = 30 * time.Second
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.OperationTimeout <= 0 {
		c.OperationTimeout = 10 * time.Second
	}
	if c.WatchPath == "" {
		c.WatchPath = repository.OrdersPath
	}
	return c
}

// Loop runs dispatch passes. Passes started by the loop itself never
// overlap; triggers arriving during a pass collapse into one follow-up pass.
type Loop struct {
	orders   OrderSource
	assigner Assigner
	watcher  Watcher
	metrics  PassObserver
	logger   logx.Logger
	cfg      Config
	now      func() time.Time

	triggers chan string

	mu      sync.Mutex
	started bool
	stopped bool
	stop    chan struct{}
	done    chan struct{}

	reportMu sync.RWMutex
	last     *PassReport
}

// NewLoop - creates a new Loop. watcher and metrics may be nil.
func NewLoop(orders OrderSource, assigner Assigner, watcher Watcher, metrics PassObserver, cfg Config, logger logx.Logger) *Loop {
	return &Loop{
		orders:   orders,
		assigner: assigner,
		watcher:  watcher,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg.withDefaults(),
		now:      func() time.Time { return time.Now().UTC() },
		triggers: make(chan string, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start arms the timer and the change subscription and runs one pass
// right away. Starting a running loop is a no-op.
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return ErrStopped
	}
	if l.started {
		return nil
	}
	l.started = true
	go l.run(ctx)
	return nil
}

// Stop prevents new passes. A pass in progress runs to completion; wait on
// Done to observe it. Stop is safe to call more than once.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return
	}
	l.stopped = true
	close(l.stop)
	if !l.started {
		close(l.done)
	}
}

// Done is closed once the loop goroutine has exited.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Running reports whether the loop is started and not yet stopped.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.started || l.stopped {
		return false
	}
	select {
	case <-l.done:
		return false
	default:
		return true
	}
}

// Trigger asks for a pass from an external source. It never blocks and
// reports false when the request merged into one already queued.
func (l *Loop) Trigger(source string) bool {
	select {
	case l.triggers <- source:
		return true
	default:
		return false
	}
}

// LastReport returns the most recent finished pass.
func (l *Loop) LastReport() (PassReport, bool) {
	l.reportMu.RLock()
	defer l.reportMu.RUnlock()
	if l.last == nil {
		return PassReport{}, false
	}
	return *l.last, true
}

func (l *Loop) run(ctx context.Context) {
	defer close(l.done)

	subCtx, cancelSub := context.WithCancel(ctx)
	defer cancelSub()

	ticker := time.NewTicker(l.cfg.Interval)
	defer ticker.Stop()

	l.logger.Info("dispatch loop started",
		logx.Duration("interval", l.cfg.Interval),
		logx.Int("workers", l.cfg.Workers),
		logx.String("watch_path", l.cfg.WatchPath),
	)
	defer l.logger.Info("dispatch loop stopped")

	events := l.subscribe(subCtx)
	l.pass(ctx, TriggerStartup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.stop:
			return
		case <-ticker.C:
			if events == nil {
				events = l.subscribe(subCtx)
			}
			l.pass(ctx, TriggerTimer)
		case _, ok := <-events:
			if !ok {
				l.logger.Warn("order subscription closed", logx.String("path", l.cfg.WatchPath))
				events = nil
				continue
			}
			l.pass(ctx, TriggerChange)
		case src := <-l.triggers:
			l.pass(ctx, src)
		}
	}
}

func (l *Loop) subscribe(ctx context.Context) <-chan docstore.Event {
	if l.watcher == nil {
		return nil
	}
	ch, err := l.watcher.Subscribe(ctx, l.cfg.WatchPath)
	if err != nil {
		l.logger.Warn("order subscription failed",
			logx.String("path", l.cfg.WatchPath),
			logx.Err(err),
		)
		return nil
	}
	return ch
}

// pass runs one loop-initiated pass unless the loop is shutting down.
// The pass itself is detached from ctx so shutdown does not cut an
// assignment in half.
func (l *Loop) pass(ctx context.Context, trigger string) {
	select {
	case <-l.stop:
		return
	case <-ctx.Done():
		return
	default:
	}
	l.RunPass(context.WithoutCancel(ctx), trigger)
}

// RunPass lists pending orders and assigns each. It never fails: problems
// are logged and counted in the report.
func (l *Loop) RunPass(ctx context.Context, trigger string) (report PassReport) {
	report = PassReport{ID: uuid.NewString(), Trigger: trigger, StartedAt: l.now()}
	logger := l.logger.With(logx.String("pass_id", report.ID), logx.String("trigger", trigger))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("dispatch pass panicked", logx.Any("panic", r))
			report.Error = fmt.Sprintf("panic: %v", r)
		}
		report.Duration = l.now().Sub(report.StartedAt)
		report.DurationMS = report.Duration.Milliseconds()
		l.finish(report, logger)
	}()

	orders, err := l.listPending(ctx)
	if err != nil {
		logger.Error("list pending orders failed", logx.Err(err))
		report.Error = err.Error()
		return report
	}

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(l.cfg.Workers)
	for _, o := range orders {
		if !o.Pending() {
			continue
		}
		report.Pending++
		g.Go(func() error {
			res := l.safeAssign(ctx, o, logger)
			mu.Lock()
			report.add(res.Outcome)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return report
}

func (l *Loop) listPending(ctx context.Context) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, l.cfg.OperationTimeout)
	defer cancel()
	return l.orders.ListPending(ctx)
}

func (l *Loop) safeAssign(ctx context.Context, o domain.Order, logger logx.Logger) (res domain.AssignResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("assign panicked", logx.String("order_id", o.ID), logx.Any("panic", r))
			res = domain.AssignResult{OrderID: o.ID, Outcome: domain.OutcomeFailed, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return l.assigner.Assign(ctx, o)
}

func (l *Loop) finish(report PassReport, logger logx.Logger) {
	l.reportMu.Lock()
	l.last = &report
	l.reportMu.Unlock()

	if l.metrics != nil {
		l.metrics.ObservePass(report.Trigger, report.Duration)
	}
	logger.Info("dispatch pass finished",
		logx.Int("pending", report.Pending),
		logx.Int("assigned", report.Assigned),
		logx.Int("no_partner", report.NoPartner),
		logx.Int("skipped", report.Skipped),
		logx.Int("failed", report.Failed),
		logx.Duration("took", report.Duration),
	)
}
