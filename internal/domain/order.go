package domain

import (
	"encoding/json"
	"fmt"
)

// Document field names shared with the admin console and courier app.
const (
	FieldStatus            = "status"
	FieldAssignedPartnerID = "assignedPartnerId"
	FieldOrderID           = "orderId"
)

// Order is one placed customer order. Fields other than status and
// assignedPartnerId are opaque and are written back verbatim.
type Order struct {
	ID                string
	Status            OrderStatus
	AssignedPartnerID string
	fields            map[string]json.RawMessage
}

// DecodeOrder parses a stored order document keyed by id.
func DecodeOrder(id string, raw json.RawMessage) (Order, error) {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Order{}, fmt.Errorf("decode order %q: %w", id, err)
	}
	o := Order{ID: id, fields: fields}
	if v, ok := fields[FieldStatus]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			o.Status = OrderStatus(s)
		}
	}
	if v, ok := fields[FieldAssignedPartnerID]; ok {
		var p string
		if err := json.Unmarshal(v, &p); err == nil {
			o.AssignedPartnerID = p
		}
	}
	return o, nil
}

// Pending reports whether the order still waits for a courier.
func (o Order) Pending() bool {
	return o.Status.IsPlaced()
}

// Document renders the order for storage: the opaque payload with
// orderId, status and assignedPartnerId overlaid.
func (o Order) Document() (json.RawMessage, error) {
	out := make(map[string]any, len(o.fields)+3)
	for k, v := range o.fields {
		out[k] = v
	}
	out[FieldOrderID] = o.ID
	if o.Status != "" {
		out[FieldStatus] = string(o.Status)
	}
	if o.AssignedPartnerID != "" {
		out[FieldAssignedPartnerID] = o.AssignedPartnerID
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode order %q: %w", o.ID, err)
	}
	return b, nil
}

// Field returns a raw payload field.
func (o Order) Field(name string) (json.RawMessage, bool) {
	v, ok := o.fields[name]
	return v, ok
}
