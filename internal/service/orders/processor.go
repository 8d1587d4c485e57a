// Package orders turns order-intake events into dispatch triggers.
package orders

import (
	"context"
	"fmt"
	"strings"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/logx"
)

// Source labels passes requested by order events.
const Source = "kafka"

// Processor processes order events
type Processor struct {
	trigger Trigger
	metrics TriggerCounter
	logger  logx.Logger
	factory *actionFactory
}

// NewProcessor creates a new orders.Processor. metrics may be nil.
func NewProcessor(trigger Trigger, metrics TriggerCounter, logger logx.Logger) *Processor {
	p := &Processor{
		trigger: trigger,
		metrics: metrics,
		logger:  logger,
	}
	p.factory = newActionFactory(p.onPlaced)
	return p
}

// Handle processes a single Event. Statuses other than a placed order are
// ignored; an event without a status is rejected with apperr.ErrInvalid.
func (p *Processor) Handle(ctx context.Context, e Event) error {
	if p.factory == nil {
		return nil
	}
	if strings.TrimSpace(e.Status) == "" {
		return fmt.Errorf("order %q: empty status: %w", e.OrderID, apperr.ErrInvalid)
	}
	fn, ok := p.factory.get(e.Status)
	if !ok {
		p.logger.Debug("order event ignored",
			logx.String("order_id", e.OrderID),
			logx.String("status", e.Status),
		)
		return nil
	}
	return fn(ctx, e)
}

func (p *Processor) onPlaced(_ context.Context, e Event) error {
	accepted := p.trigger.Trigger(Source)
	if p.metrics != nil {
		p.metrics.IncTrigger(Source, accepted)
	}
	p.logger.Debug("dispatch pass requested",
		logx.String("order_id", e.OrderID),
		logx.Any("accepted", accepted),
	)
	return nil
}
