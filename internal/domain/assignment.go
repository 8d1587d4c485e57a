package domain

// Outcome is the result class of one assignment attempt.
type Outcome string

// Assignment outcomes.
const (
	OutcomeAssigned  Outcome = "assigned"
	OutcomeNoPartner Outcome = "no_partner_available"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// AssignResult describes what happened to one order.
type AssignResult struct {
	OrderID   string
	PartnerID string
	Outcome   Outcome
	Err       error
}
