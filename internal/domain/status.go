package domain

import "strings"

// OrderStatus is the lifecycle label stored in an order's "status" field.
type OrderStatus string

// Order statuses relevant to dispatch. Later labels belong to delivery tracking.
const (
	StatusOrderPlaced OrderStatus = "order placed"
	StatusOrderShared OrderStatus = "order shared"
)

// IsPlaced reports whether the status marks a pending order.
// Intake writes the label with inconsistent casing, so the comparison ignores case.
func (s OrderStatus) IsPlaced() bool {
	return strings.EqualFold(string(s), string(StatusOrderPlaced))
}
