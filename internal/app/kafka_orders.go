package app

import (
	"context"
	"errors"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/service/orders"
	"courier-dispatch/internal/transport/kafka"
)

type orderEventHandler interface {
	Handle(ctx context.Context, e orders.Event) error
}

// orderEvents adapts the order processor to the kafka consumer. Invalid
// events are skipped instead of redelivered.
func orderEvents(h orderEventHandler) kafka.HandleFunc {
	return func(ctx context.Context, e orders.Event) error {
		err := h.Handle(ctx, e)
		if errors.Is(err, apperr.ErrInvalid) {
			return kafka.Permanent(err)
		}
		return err
	}
}
