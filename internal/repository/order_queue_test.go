package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"courier-dispatch/internal/docstore/memstore"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/repository"
	testlog "courier-dispatch/internal/testutil"
)

func TestOrderQueue_ListPending_FiltersCaseInsensitive(t *testing.T) {
	t.Parallel()

	store := memstore.New()
	store.Seed(repository.OrderPath("O3"), `{"status":"order shared"}`)
	store.Seed(repository.OrderPath("O2"), `{"status":"Order Placed"}`)
	store.Seed(repository.OrderPath("O1"), `{"status":"order placed","total":12}`)
	q := repository.NewOrderQueue(store, testlog.New().Logger())

	got, err := q.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "O1", got[0].ID)
	require.Equal(t, "O2", got[1].ID)

	all, err := q.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestOrderQueue_ListAll_SkipsMalformed(t *testing.T) {
	t.Parallel()

	store := memstore.New()
	store.Seed(repository.OrderPath("O1"), `{"status":"order placed"}`)
	store.Seed(repository.OrderPath("bad"), `"just a string"`)
	rec := testlog.New()
	q := repository.NewOrderQueue(store, rec.Logger())

	got, err := q.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, rec.Find("warn", "skip malformed order"), 1)
}

func TestOrderQueue_Get(t *testing.T) {
	t.Parallel()

	store := memstore.New()
	store.Seed(repository.OrderPath("O1"), `{"status":"order placed"}`)
	q := repository.NewOrderQueue(store, testlog.New().Logger())

	o, ok, err := q.Get(context.Background(), "O1")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, o.Pending())

	_, ok, err = q.Get(context.Background(), "missing")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestOrderQueue_ReserveThenRecordAssignment(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memstore.New()
	store.Seed(repository.OrderPath("O1"), `{"status":"order placed","address":{"city":"Pune"}}`)
	q := repository.NewOrderQueue(store, testlog.New().Logger())

	require.NoError(t, q.Reserve(ctx, "O1", "P1"))
	o, ok, err := q.Get(ctx, "O1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "P1", o.AssignedPartnerID)
	require.True(t, o.Pending())

	for i := 0; i < 2; i++ {
		require.NoError(t, q.RecordAssignment(ctx, "O1", "P1", o))
	}

	shared, err := store.Get(ctx, repository.OrderPath("O1"))
	require.NoError(t, err)
	require.JSONEq(t, `{"status":"order shared","assignedPartnerId":"P1","address":{"city":"Pune"}}`, string(shared))

	partnerCopy, err := store.Get(ctx, repository.PartnerOrderPath("P1", "O1"))
	require.NoError(t, err)
	require.JSONEq(t, `{"orderId":"O1","status":"order placed","assignedPartnerId":"P1","address":{"city":"Pune"}}`, string(partnerCopy))

	list, err := store.Get(ctx, "Accounts/DeliveryPartner/P1/Orders/NewOrders")
	require.NoError(t, err)
	require.JSONEq(t, `{"O1":{"orderId":"O1","status":"order placed","assignedPartnerId":"P1","address":{"city":"Pune"}}}`, string(list))

	after, _, err := q.Get(ctx, "O1")
	require.NoError(t, err)
	require.Equal(t, domain.StatusOrderShared, after.Status)
}
