package dispatch

import (
	"time"

	"courier-dispatch/internal/domain"
)

// Pass triggers.
const (
	TriggerStartup = "startup"
	TriggerTimer   = "timer"
	TriggerChange  = "change"
	TriggerManual  = "manual"
	TriggerKafka   = "kafka"
	TriggerMQTT    = "mqtt"
)

// PassReport summarizes one dispatch pass.
type PassReport struct {
	ID         string        `json:"id"`
	Trigger    string        `json:"trigger"`
	Pending    int           `json:"pending"`
	Assigned   int           `json:"assigned"`
	NoPartner  int           `json:"no_partner"`
	Skipped    int           `json:"skipped"`
	Failed     int           `json:"failed"`
	Error      string        `json:"error,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"-"`
	DurationMS int64         `json:"duration_ms"`
}

func (r *PassReport) add(outcome domain.Outcome) {
	switch outcome {
	case domain.OutcomeAssigned:
		r.Assigned++
	case domain.OutcomeNoPartner:
		r.NoPartner++
	case domain.OutcomeSkipped:
		r.Skipped++
	default:
		r.Failed++
	}
}
