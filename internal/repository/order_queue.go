package repository

import (
	"context"
	"fmt"
	"sort"

	"courier-dispatch/internal/docstore"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
)

// OrderQueue reads the shared order queue and records assignments.
type OrderQueue struct {
	store  docstore.Store
	logger logx.Logger
}

// NewOrderQueue creates a new OrderQueue.
func NewOrderQueue(store docstore.Store, logger logx.Logger) *OrderQueue {
	return &OrderQueue{store: store, logger: logger}
}

// ListAll - every decodable order in the queue, sorted by id. Entries that
// are not JSON objects are logged and skipped.
func (q *OrderQueue) ListAll(ctx context.Context) ([]domain.Order, error) {
	raw, err := q.store.Get(ctx, OrdersPath)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	children, err := docstore.Children(raw)
	if err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	out := make([]domain.Order, 0, len(children))
	for id, doc := range children {
		o, err := domain.DecodeOrder(id, doc)
		if err != nil {
			q.logger.Warn("skip malformed order", logx.String("order_id", id), logx.Err(err))
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListPending - orders whose status is "order placed", sorted by id.
func (q *OrderQueue) ListPending(ctx context.Context) ([]domain.Order, error) {
	all, err := q.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, o := range all {
		if o.Pending() {
			out = append(out, o)
		}
	}
	return out, nil
}

// Get - fresh read of one order. The bool is false when it does not exist.
func (q *OrderQueue) Get(ctx context.Context, orderID string) (domain.Order, bool, error) {
	raw, err := q.store.Get(ctx, OrderPath(orderID))
	if err != nil {
		return domain.Order{}, false, fmt.Errorf("get order %q: %w", orderID, err)
	}
	if docstore.IsNull(raw) {
		return domain.Order{}, false, nil
	}
	o, err := domain.DecodeOrder(orderID, raw)
	if err != nil {
		return domain.Order{}, false, err
	}
	return o, true, nil
}

// Reserve - records the chosen partner on the shared order before the
// hand-off completes, so an interrupted attempt resumes with the same
// partner.
func (q *OrderQueue) Reserve(ctx context.Context, orderID, partnerID string) error {
	err := q.store.Update(ctx, OrderPath(orderID), map[string]any{
		domain.FieldAssignedPartnerID: partnerID,
	})
	if err != nil {
		return fmt.Errorf("reserve order %q for %q: %w", orderID, partnerID, err)
	}
	return nil
}

// RecordAssignment - copies the order verbatim (plus orderId) into the
// partner's personal list, then marks the shared order as shared. Both
// writes are idempotent.
func (q *OrderQueue) RecordAssignment(ctx context.Context, orderID, partnerID string, order domain.Order) error {
	order.ID = orderID
	order.AssignedPartnerID = partnerID
	doc, err := order.Document()
	if err != nil {
		return err
	}
	if err := q.store.Set(ctx, PartnerOrderPath(partnerID, orderID), doc); err != nil {
		return fmt.Errorf("write order %q to partner %q: %w", orderID, partnerID, err)
	}
	err = q.store.Update(ctx, OrderPath(orderID), map[string]any{
		domain.FieldStatus:            string(domain.StatusOrderShared),
		domain.FieldAssignedPartnerID: partnerID,
	})
	if err != nil {
		return fmt.Errorf("mark order %q shared: %w", orderID, err)
	}
	return nil
}
