package handlers

import (
	"context"

	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/service/dispatch"
)

type passRunner interface {
	RunPass(ctx context.Context, trigger string) dispatch.PassReport
	Running() bool
	LastReport() (dispatch.PassReport, bool)
}

type orderAssigner interface {
	Assign(ctx context.Context, order domain.Order) domain.AssignResult
}

type poolReader interface {
	ListWaiting(ctx context.Context) ([]domain.Partner, error)
	ListDelivering(ctx context.Context) ([]domain.Partner, error)
}
