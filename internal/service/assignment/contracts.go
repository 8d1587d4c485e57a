package assignment

import (
	"context"

	"courier-dispatch/internal/domain"
)

type partnerPool interface {
	ListWaiting(ctx context.Context) ([]domain.Partner, error)
	ClaimWaiting(ctx context.Context, partnerID string) (domain.Partner, bool, error)
	MoveToDelivering(ctx context.Context, partner domain.Partner) error
	RemoveFromDelivering(ctx context.Context, partnerID string) error
	ReturnToWaiting(ctx context.Context, partner domain.Partner) error
}

type orderQueue interface {
	Get(ctx context.Context, orderID string) (domain.Order, bool, error)
	Reserve(ctx context.Context, orderID, partnerID string) error
	RecordAssignment(ctx context.Context, orderID, partnerID string, order domain.Order) error
}

type outcomeCounter interface {
	IncAssignment(outcome domain.Outcome)
}

// Selector orders waiting partners by preference for one order. The engine
// claims candidates in the returned order until one claim succeeds.
type Selector interface {
	Rank(order domain.Order, waiting []domain.Partner) []domain.Partner
}
