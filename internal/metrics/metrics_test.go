package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"courier-dispatch/internal/domain"
)

func TestDispatch_Counters(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewDispatch(reg)

	m.ObservePass("timer", 20*time.Millisecond)
	m.ObservePass("timer", 10*time.Millisecond)
	m.IncAssignment(domain.OutcomeAssigned)
	m.IncAssignment(domain.OutcomeNoPartner)
	m.IncAssignment(domain.OutcomeAssigned)
	m.IncTrigger("kafka", true)
	m.IncTrigger("kafka", false)

	require.Equal(t, float64(2), testutil.ToFloat64(m.passes.WithLabelValues("timer")))
	require.Equal(t, float64(2), testutil.ToFloat64(m.assignments.WithLabelValues("assigned")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.assignments.WithLabelValues("no_partner_available")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.triggers.WithLabelValues("kafka", "false")))
	require.Equal(t, 1, testutil.CollectAndCount(m.passDuration))
}

func TestDispatch_DoubleRegistrationPanics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	NewDispatch(reg)
	require.Panics(t, func() { NewDispatch(reg) })
}

func TestNewStoreRetriesTotal(t *testing.T) {
	t.Parallel()

	c := NewStoreRetriesTotal()
	c.Inc()
	require.Equal(t, float64(1), testutil.ToFloat64(c))
}
