package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"courier-dispatch/internal/docstore"
	"courier-dispatch/internal/domain"
)

// PartnerPool reads and mutates the waiting and delivering pools.
type PartnerPool struct {
	store docstore.Store
}

// NewPartnerPool creates a new PartnerPool.
func NewPartnerPool(store docstore.Store) *PartnerPool {
	return &PartnerPool{store: store}
}

// ListWaiting - snapshot of available partners, sorted by id. An absent
// pool is an empty result.
func (p *PartnerPool) ListWaiting(ctx context.Context) ([]domain.Partner, error) {
	return p.list(ctx, WaitingPath)
}

// ListDelivering - snapshot of busy partners, sorted by id.
func (p *PartnerPool) ListDelivering(ctx context.Context) ([]domain.Partner, error) {
	return p.list(ctx, DeliveringPath)
}

// MoveToDelivering - idempotent write of the partner record into the
// delivering pool.
func (p *PartnerPool) MoveToDelivering(ctx context.Context, partner domain.Partner) error {
	if err := p.store.Set(ctx, DeliveringPartnerPath(partner.ID), profile(partner)); err != nil {
		return fmt.Errorf("move partner %q to delivering: %w", partner.ID, err)
	}
	return nil
}

// RemoveFromWaiting - idempotent delete from the waiting pool.
func (p *PartnerPool) RemoveFromWaiting(ctx context.Context, partnerID string) error {
	if err := p.store.Delete(ctx, WaitingPartnerPath(partnerID)); err != nil {
		return fmt.Errorf("remove partner %q from waiting: %w", partnerID, err)
	}
	return nil
}

// RemoveFromDelivering - idempotent delete from the delivering pool.
func (p *PartnerPool) RemoveFromDelivering(ctx context.Context, partnerID string) error {
	if err := p.store.Delete(ctx, DeliveringPartnerPath(partnerID)); err != nil {
		return fmt.Errorf("remove partner %q from delivering: %w", partnerID, err)
	}
	return nil
}

// ClaimWaiting - conditional removal from the waiting pool. It reports
// false when the partner was already gone.
func (p *PartnerPool) ClaimWaiting(ctx context.Context, partnerID string) (domain.Partner, bool, error) {
	raw, err := p.store.Take(ctx, WaitingPartnerPath(partnerID))
	if err != nil {
		return domain.Partner{}, false, fmt.Errorf("claim partner %q: %w", partnerID, err)
	}
	if raw == nil {
		return domain.Partner{}, false, nil
	}
	return domain.Partner{ID: partnerID, Profile: raw}, true, nil
}

// ReturnToWaiting - puts a claimed partner back into the waiting pool.
func (p *PartnerPool) ReturnToWaiting(ctx context.Context, partner domain.Partner) error {
	if err := p.store.Set(ctx, WaitingPartnerPath(partner.ID), profile(partner)); err != nil {
		return fmt.Errorf("return partner %q to waiting: %w", partner.ID, err)
	}
	return nil
}

func (p *PartnerPool) list(ctx context.Context, path string) ([]domain.Partner, error) {
	raw, err := p.store.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", path, err)
	}
	children, err := docstore.Children(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	out := make([]domain.Partner, 0, len(children))
	for id, doc := range children {
		out = append(out, domain.Partner{ID: id, Profile: doc})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// profile - a presence marker is stored for partners without a record.
func profile(partner domain.Partner) json.RawMessage {
	if docstore.IsNull(partner.Profile) {
		return json.RawMessage(`true`)
	}
	return partner.Profile
}
