package dispatch_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"courier-dispatch/internal/docstore"
	"courier-dispatch/internal/docstore/memstore"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/repository"
	"courier-dispatch/internal/service/assignment"
	"courier-dispatch/internal/service/dispatch"
	testlog "courier-dispatch/internal/testutil"
)

type world struct {
	store  *memstore.Store
	pool   *repository.PartnerPool
	orders *repository.OrderQueue
	loop   *dispatch.Loop
}

func newWorld(t *testing.T, cfg dispatch.Config) *world {
	t.Helper()
	store := memstore.New()
	logger := testlog.New().Logger()
	pool := repository.NewPartnerPool(store)
	orders := repository.NewOrderQueue(store, logger)
	engine := assignment.NewEngine(pool, orders, assignment.LexicographicSelector{}, nil, time.Second, logger)
	return &world{
		store:  store,
		pool:   pool,
		orders: orders,
		loop:   dispatch.NewLoop(orders, engine, store, nil, cfg, logger),
	}
}

func (w *world) status(t *testing.T, orderID string) domain.OrderStatus {
	t.Helper()
	o, ok, err := w.orders.Get(context.Background(), orderID)
	require.NoError(t, err)
	require.True(t, ok)
	return o.Status
}

func (w *world) partnerOrders(t *testing.T, partnerID string) map[string]json.RawMessage {
	t.Helper()
	raw, err := w.store.Get(context.Background(), "Accounts/DeliveryPartner/"+partnerID+"/Orders/NewOrders")
	require.NoError(t, err)
	c, err := docstore.Children(raw)
	require.NoError(t, err)
	return c
}

func (w *world) poolIDs(t *testing.T) (waiting, delivering []string) {
	t.Helper()
	ctx := context.Background()
	ws, err := w.pool.ListWaiting(ctx)
	require.NoError(t, err)
	ds, err := w.pool.ListDelivering(ctx)
	require.NoError(t, err)
	for _, p := range ws {
		waiting = append(waiting, p.ID)
	}
	for _, p := range ds {
		delivering = append(delivering, p.ID)
	}
	return waiting, delivering
}

func (w *world) requireDisjointPools(t *testing.T) {
	t.Helper()
	waiting, delivering := w.poolIDs(t)
	seen := map[string]bool{}
	for _, id := range waiting {
		seen[id] = true
	}
	for _, id := range delivering {
		require.False(t, seen[id], "partner %s is both waiting and delivering", id)
	}
}

func TestDispatch_OnePartnerTwoOrders(t *testing.T) {
	t.Parallel()

	for _, workers := range []int{1, 2} {
		w := newWorld(t, dispatch.Config{Workers: workers})
		w.store.Seed(repository.WaitingPartnerPath("P1"), `{"name":"Asha","vehicle":"bike"}`)
		w.store.Seed(repository.OrderPath("O1"), `{"status":"order placed"}`)
		w.store.Seed(repository.OrderPath("O2"), `{"status":"order placed"}`)

		report := w.loop.RunPass(context.Background(), dispatch.TriggerManual)

		require.Equal(t, 2, report.Pending)
		require.Equal(t, 1, report.Assigned)
		require.Equal(t, 1, report.NoPartner)

		s1, s2 := w.status(t, "O1"), w.status(t, "O2")
		require.ElementsMatch(t, []domain.OrderStatus{domain.StatusOrderShared, domain.StatusOrderPlaced}, []domain.OrderStatus{s1, s2})

		list := w.partnerOrders(t, "P1")
		require.Len(t, list, 1)
		if s1 == domain.StatusOrderShared {
			require.Contains(t, list, "O1")
		} else {
			require.Contains(t, list, "O2")
		}

		waiting, delivering := w.poolIDs(t)
		require.Empty(t, waiting)
		require.Equal(t, []string{"P1"}, delivering)
	}
}

func TestDispatch_EmptyPoolChangesNothing(t *testing.T) {
	t.Parallel()

	w := newWorld(t, dispatch.Config{})
	w.store.Seed(repository.OrderPath("O1"), `{"status":"order placed","total":250}`)

	report := w.loop.RunPass(context.Background(), dispatch.TriggerTimer)

	require.Equal(t, 1, report.NoPartner)
	require.Empty(t, report.Error)
	raw, err := w.store.Get(context.Background(), repository.OrderPath("O1"))
	require.NoError(t, err)
	require.JSONEq(t, `{"status":"order placed","total":250}`, string(raw))
	accounts, err := w.store.Get(context.Background(), "Accounts")
	require.NoError(t, err)
	require.Nil(t, accounts)
}

func TestDispatch_SecondPassDoesNotTakeAnotherPartner(t *testing.T) {
	t.Parallel()

	w := newWorld(t, dispatch.Config{})
	w.store.Seed(repository.WaitingPartnerPath("P1"), `{"name":"Asha"}`)
	w.store.Seed(repository.WaitingPartnerPath("P2"), `{"name":"Ravi"}`)
	w.store.Seed(repository.OrderPath("O1"), `{"status":"order placed"}`)

	first := w.loop.RunPass(context.Background(), dispatch.TriggerTimer)
	second := w.loop.RunPass(context.Background(), dispatch.TriggerChange)

	require.Equal(t, 1, first.Assigned)
	require.Zero(t, second.Pending)
	require.Zero(t, second.Assigned)

	waiting, delivering := w.poolIDs(t)
	require.Equal(t, []string{"P2"}, waiting)
	require.Equal(t, []string{"P1"}, delivering)
	require.Len(t, w.partnerOrders(t, "P1"), 1)
}

func TestDispatch_RacingPassesNeverDoubleBook(t *testing.T) {
	t.Parallel()

	for i := 0; i < 25; i++ {
		w := newWorld(t, dispatch.Config{Workers: 2})
		w.store.Seed(repository.WaitingPartnerPath("P1"), `{"name":"Asha"}`)
		w.store.Seed(repository.OrderPath("O1"), `{"status":"order placed"}`)
		w.store.Seed(repository.OrderPath("O2"), `{"status":"order placed"}`)

		var wg sync.WaitGroup
		for _, trig := range []string{dispatch.TriggerTimer, dispatch.TriggerChange} {
			wg.Add(1)
			go func(trig string) {
				defer wg.Done()
				w.loop.RunPass(context.Background(), trig)
			}(trig)
		}
		wg.Wait()

		shared := 0
		for _, id := range []string{"O1", "O2"} {
			if w.status(t, id) == domain.StatusOrderShared {
				shared++
			}
		}
		require.Equal(t, 1, shared)
		require.Len(t, w.partnerOrders(t, "P1"), 1)
		w.requireDisjointPools(t)
	}
}

func TestDispatch_PoolsStayDisjointAcrossPasses(t *testing.T) {
	t.Parallel()

	w := newWorld(t, dispatch.Config{Workers: 3})
	for _, id := range []string{"P1", "P2", "P3"} {
		w.store.Seed(repository.WaitingPartnerPath(id), `{"name":"`+id+`"}`)
	}
	for _, id := range []string{"O1", "O2", "O3", "O4", "O5"} {
		w.store.Seed(repository.OrderPath(id), `{"status":"order placed"}`)
	}

	for i := 0; i < 3; i++ {
		w.loop.RunPass(context.Background(), dispatch.TriggerTimer)
		w.requireDisjointPools(t)
	}

	waiting, delivering := w.poolIDs(t)
	require.Empty(t, waiting)
	require.Equal(t, []string{"P1", "P2", "P3"}, delivering)

	pending, err := w.orders.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 2)
}

func TestDispatch_NewOrderPickedUpByChangeNotification(t *testing.T) {
	t.Parallel()

	w := newWorld(t, dispatch.Config{Interval: time.Hour})
	w.store.Seed(repository.WaitingPartnerPath("P1"), `{"name":"Asha"}`)

	require.NoError(t, w.loop.Start(context.Background()))
	t.Cleanup(func() {
		w.loop.Stop()
		<-w.loop.Done()
	})

	require.Eventually(t, func() bool {
		_, ok := w.loop.LastReport()
		return ok
	}, 2*time.Second, 5*time.Millisecond)

	w.store.Seed(repository.OrderPath("O7"), `{"status":"Order Placed"}`)

	require.Eventually(t, func() bool {
		o, ok, err := w.orders.Get(context.Background(), "O7")
		return err == nil && ok && o.Status == domain.StatusOrderShared
	}, 2*time.Second, 10*time.Millisecond)

	_, delivering := w.poolIDs(t)
	require.Equal(t, []string{"P1"}, delivering)
}
