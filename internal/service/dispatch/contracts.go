//go:generate mockgen -source=contracts.go -destination=dispatch_mocks_test.go -package=dispatch_test

package dispatch

import (
	"context"
	"time"

	"courier-dispatch/internal/docstore"
	"courier-dispatch/internal/domain"
)

// Assigner hands one order to one partner.
type Assigner interface {
	Assign(ctx context.Context, order domain.Order) domain.AssignResult
}

// OrderSource lists orders waiting for a partner.
type OrderSource interface {
	ListPending(ctx context.Context) ([]domain.Order, error)
}

// Watcher delivers coarse change notifications for a store path.
type Watcher interface {
	Subscribe(ctx context.Context, path string) (<-chan docstore.Event, error)
}

// PassObserver records finished passes.
type PassObserver interface {
	ObservePass(trigger string, took time.Duration)
}
