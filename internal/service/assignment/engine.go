package assignment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
)

// ErrInFlight - the order is already being assigned by this process.
var ErrInFlight = errors.New("assignment already in flight")

const compensationTimeout = 5 * time.Second

// Engine binds one pending order to one waiting partner.
//
// The hand-off is a saga over separate store writes: claim the partner
// (conditional delete from waiting), write it to delivering, reserve the
// order with assignedPartnerId, copy the order to the partner's list and
// mark it shared. A reserved order that is still pending resumes at the
// last step with the reserved partner.
type Engine struct {
	pool             partnerPool
	orders           orderQueue
	selector         Selector
	metrics          outcomeCounter
	logger           logx.Logger
	operationTimeout time.Duration

	poolMu sync.Mutex

	flightMu sync.Mutex
	inFlight map[string]struct{}
}

// NewEngine - creates a new Engine. A nil selector means lexicographic.
func NewEngine(pool partnerPool, orders orderQueue, selector Selector, metrics outcomeCounter, timeout time.Duration, logger logx.Logger) *Engine {
	if selector == nil {
		selector = LexicographicSelector{}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Engine{
		pool:             pool,
		orders:           orders,
		selector:         selector,
		metrics:          metrics,
		logger:           logger,
		operationTimeout: timeout,
		inFlight:         map[string]struct{}{},
	}
}

func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.operationTimeout)
}

// Assign runs the hand-off for order. Only order.ID is trusted; the
// order is re-read before anything is written.
func (e *Engine) Assign(ctx context.Context, order domain.Order) domain.AssignResult {
	res := e.assign(ctx, strings.TrimSpace(order.ID))
	e.observe(res)
	return res
}

func (e *Engine) assign(ctx context.Context, orderID string) domain.AssignResult {
	res := domain.AssignResult{OrderID: orderID}
	if orderID == "" {
		return skipped(res, apperr.ErrInvalid)
	}
	if !e.acquire(orderID) {
		return skipped(res, ErrInFlight)
	}
	defer e.release(orderID)

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	fresh, ok, err := e.orders.Get(ctx, orderID)
	if err != nil {
		return failed(res, err)
	}
	if !ok {
		return skipped(res, apperr.ErrNotFound)
	}
	if !fresh.Pending() {
		res.PartnerID = fresh.AssignedPartnerID
		return skipped(res, apperr.ErrConflict)
	}

	if fresh.AssignedPartnerID != "" {
		res.PartnerID = fresh.AssignedPartnerID
		if err := e.settleReserved(ctx, fresh.AssignedPartnerID); err != nil {
			return failed(res, err)
		}
		return e.record(ctx, res, fresh)
	}

	partner, ok, err := e.claim(ctx, fresh)
	if err != nil {
		return failed(res, err)
	}
	if !ok {
		res.Outcome = domain.OutcomeNoPartner
		return res
	}
	res.PartnerID = partner.ID

	if err := e.pool.MoveToDelivering(ctx, partner); err != nil {
		// The write may have landed before the error surfaced.
		e.compensate(ctx, partner, true)
		return failed(res, err)
	}
	if err := e.orders.Reserve(ctx, orderID, partner.ID); err != nil {
		if !e.reservationLanded(ctx, orderID, partner.ID) {
			e.compensate(ctx, partner, true)
		}
		return failed(res, err)
	}
	return e.record(ctx, res, fresh)
}

// claim serializes list-select-remove on the waiting pool. A lost
// conditional delete moves on to the next ranked candidate.
func (e *Engine) claim(ctx context.Context, order domain.Order) (domain.Partner, bool, error) {
	e.poolMu.Lock()
	defer e.poolMu.Unlock()

	waiting, err := e.pool.ListWaiting(ctx)
	if err != nil {
		return domain.Partner{}, false, err
	}
	for _, candidate := range e.selector.Rank(order, waiting) {
		p, ok, err := e.pool.ClaimWaiting(ctx, candidate.ID)
		if err != nil {
			return domain.Partner{}, false, err
		}
		if ok {
			return p, true, nil
		}
		e.logger.Debug("partner already claimed",
			logx.String("order_id", order.ID),
			logx.String("partner_id", candidate.ID),
		)
	}
	return domain.Partner{}, false, nil
}

// settleReserved makes sure a reserved partner is not still offered in the
// waiting pool before the hand-off is resumed.
func (e *Engine) settleReserved(ctx context.Context, partnerID string) error {
	e.poolMu.Lock()
	defer e.poolMu.Unlock()

	p, ok, err := e.pool.ClaimWaiting(ctx, partnerID)
	if err != nil || !ok {
		return err
	}
	return e.pool.MoveToDelivering(ctx, p)
}

// reservationLanded re-reads the order after a failed Reserve. An unknown
// outcome counts as landed and the partner stays in delivering.
func (e *Engine) reservationLanded(ctx context.Context, orderID, partnerID string) bool {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	o, ok, err := e.orders.Get(ctx, orderID)
	if err != nil {
		e.logger.Error("partner left in delivering",
			logx.String("order_id", orderID),
			logx.String("partner_id", partnerID),
			logx.Err(err),
		)
		return true
	}
	return ok && o.AssignedPartnerID == partnerID
}

func (e *Engine) record(ctx context.Context, res domain.AssignResult, order domain.Order) domain.AssignResult {
	if err := e.orders.RecordAssignment(ctx, res.OrderID, res.PartnerID, order); err != nil {
		return failed(res, err)
	}
	res.Outcome = domain.OutcomeAssigned
	return res
}

// compensate returns a claimed partner to the waiting pool. It runs on its
// own deadline so an expired attempt can still undo its claim.
func (e *Engine) compensate(ctx context.Context, partner domain.Partner, delivering bool) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	if delivering {
		if err := e.pool.RemoveFromDelivering(ctx, partner.ID); err != nil {
			e.logger.Error("compensation failed",
				logx.String("step", "remove_from_delivering"),
				logx.String("partner_id", partner.ID),
				logx.Err(err),
			)
		}
	}
	if err := e.pool.ReturnToWaiting(ctx, partner); err != nil {
		e.logger.Error("compensation failed",
			logx.String("step", "return_to_waiting"),
			logx.String("partner_id", partner.ID),
			logx.Err(err),
		)
	}
}

func (e *Engine) acquire(orderID string) bool {
	e.flightMu.Lock()
	defer e.flightMu.Unlock()
	if _, busy := e.inFlight[orderID]; busy {
		return false
	}
	e.inFlight[orderID] = struct{}{}
	return true
}

func (e *Engine) release(orderID string) {
	e.flightMu.Lock()
	delete(e.inFlight, orderID)
	e.flightMu.Unlock()
}

func (e *Engine) observe(res domain.AssignResult) {
	if e.metrics != nil {
		e.metrics.IncAssignment(res.Outcome)
	}
	fields := []logx.Field{
		logx.String("order_id", res.OrderID),
		logx.String("outcome", string(res.Outcome)),
	}
	if res.PartnerID != "" {
		fields = append(fields, logx.String("partner_id", res.PartnerID))
	}
	switch res.Outcome {
	case domain.OutcomeAssigned:
		e.logger.Info("order assigned", append(fields, logx.String("event", "order_assigned"))...)
	case domain.OutcomeNoPartner:
		e.logger.Info("no partner available", fields...)
	case domain.OutcomeSkipped:
		e.logger.Debug("order skipped", append(fields, logx.Err(res.Err))...)
	default:
		e.logger.Error("assignment failed", append(fields, logx.Err(res.Err))...)
	}
}

func skipped(res domain.AssignResult, reason error) domain.AssignResult {
	res.Outcome = domain.OutcomeSkipped
	res.Err = reason
	return res
}

func failed(res domain.AssignResult, err error) domain.AssignResult {
	res.Outcome = domain.OutcomeFailed
	res.Err = fmt.Errorf("assign order %q: %w", res.OrderID, err)
	return res
}
