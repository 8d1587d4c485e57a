package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"courier-dispatch/internal/domain"
)

// NewStoreRetriesTotal returns a Prometheus counter for the number of retry attempts performed against the document store
func NewStoreRetriesTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "docstore_retries_total",
		Help: "Total number of retry attempts performed against the document store",
	})
}

// Dispatch holds the dispatch loop and assignment engine collectors.
type Dispatch struct {
	passes       *prometheus.CounterVec
	passDuration *prometheus.HistogramVec
	assignments  *prometheus.CounterVec
	triggers     *prometheus.CounterVec
}

// NewDispatch creates the collectors and registers them with reg.
func NewDispatch(reg prometheus.Registerer) *Dispatch {
	m := &Dispatch{
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_passes_total",
			Help: "Total number of dispatch passes by trigger",
		}, []string{"trigger"}),
		passDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dispatch_pass_duration_seconds",
			Help:    "Duration of dispatch passes.",
			Buckets: prometheus.DefBuckets,
		}, []string{"trigger"}),
		assignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_assignments_total",
			Help: "Total number of assignment attempts by outcome",
		}, []string{"outcome"}),
		triggers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_trigger_events_total",
			Help: "Total number of external trigger events by source and whether they requested a pass",
		}, []string{"source", "accepted"}),
	}
	reg.MustRegister(m.passes, m.passDuration, m.assignments, m.triggers)
	return m
}

// ObservePass records one finished pass.
func (m *Dispatch) ObservePass(trigger string, took time.Duration) {
	m.passes.WithLabelValues(trigger).Inc()
	m.passDuration.WithLabelValues(trigger).Observe(took.Seconds())
}

// IncAssignment counts one assignment attempt.
func (m *Dispatch) IncAssignment(outcome domain.Outcome) {
	m.assignments.WithLabelValues(string(outcome)).Inc()
}

// IncTrigger counts one external event.
func (m *Dispatch) IncTrigger(source string, accepted bool) {
	label := "false"
	if accepted {
		label = "true"
	}
	m.triggers.WithLabelValues(source, label).Inc()
}
