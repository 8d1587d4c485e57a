package docstore

import (
	"context"
	"encoding/json"
	"time"

	"courier-dispatch/internal/logx"
)

type counter interface {
	Inc()
}

// RetryConfig controls RetryingStore backoff.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// RetryingStore retries idempotent operations on transient errors.
// Take and Subscribe are passed through: a retried Take could report a
// document as absent after the first attempt already removed it.
type RetryingStore struct {
	next    Store
	logger  logx.Logger
	retries counter
	cfg     RetryConfig
}

// NewRetryingStore wraps next. A nil next yields nil.
func NewRetryingStore(next Store, logger logx.Logger, retries counter, cfg RetryConfig) *RetryingStore {
	if next == nil {
		return nil
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return &RetryingStore{next: next, logger: logger, retries: retries, cfg: cfg}
}

func (s *RetryingStore) Get(ctx context.Context, path string) (json.RawMessage, error) {
	var out json.RawMessage
	err := s.do(ctx, "Get", path, func() error {
		var err error
		out, err = s.next.Get(ctx, path)
		return err
	})
	return out, err
}

func (s *RetryingStore) Set(ctx context.Context, path string, doc json.RawMessage) error {
	return s.do(ctx, "Set", path, func() error { return s.next.Set(ctx, path, doc) })
}

func (s *RetryingStore) Update(ctx context.Context, path string, fields map[string]any) error {
	return s.do(ctx, "Update", path, func() error { return s.next.Update(ctx, path, fields) })
}

func (s *RetryingStore) Delete(ctx context.Context, path string) error {
	return s.do(ctx, "Delete", path, func() error { return s.next.Delete(ctx, path) })
}

func (s *RetryingStore) Take(ctx context.Context, path string) (json.RawMessage, error) {
	return s.next.Take(ctx, path)
}

func (s *RetryingStore) Subscribe(ctx context.Context, path string) (<-chan Event, error) {
	return s.next.Subscribe(ctx, path)
}

func (s *RetryingStore) do(ctx context.Context, method, path string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if ctx.Err() != nil || attempt == s.cfg.MaxAttempts || !IsTransient(err) {
			break
		}
		delay := backoff(s.cfg.BaseDelay, s.cfg.MaxDelay, attempt)
		if s.retries != nil {
			s.retries.Inc()
		}
		s.logger.Warn("store retry",
			logx.String("method", method),
			logx.String("path", path),
			logx.Int("attempt", attempt),
			logx.Duration("delay", delay),
			logx.Err(err),
		)
		if !sleepWithContext(ctx, delay) {
			break
		}
	}
	return lastErr
}

func backoff(base, max time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	if max > 0 && d > max {
		return max
	}
	return d
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

var _ Store = (*RetryingStore)(nil)
