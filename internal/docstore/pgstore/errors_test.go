package pgstore

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"courier-dispatch/internal/docstore"
)

func TestWrap_Classification(t *testing.T) {
	t.Parallel()

	require.NoError(t, wrap("get", "a/b", nil))
	require.ErrorIs(t, wrap("get", "a/b", context.Canceled), context.Canceled)

	serialization := &pgconn.PgError{Code: "40001"}
	require.True(t, docstore.IsTransient(wrap("set", "a/b", serialization)))

	adminShutdown := &pgconn.PgError{Code: "57P01"}
	require.True(t, docstore.IsTransient(wrap("set", "a/b", adminShutdown)))

	uniqueViolation := &pgconn.PgError{Code: "23505"}
	err := wrap("set", "a/b", uniqueViolation)
	require.False(t, docstore.IsTransient(err))
	require.ErrorAs(t, err, new(*pgconn.PgError))

	require.False(t, docstore.IsTransient(wrap("get", "a/b", errors.New("boom"))))
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	require.True(t, IsNotFound(pgx.ErrNoRows))
	require.False(t, IsNotFound(errors.New("x")))
}

func TestEscapeLike(t *testing.T) {
	t.Parallel()

	require.Equal(t, `Orders/New\_Orders\%`, escapeLike("Orders/New_Orders%"))
}

func TestSplit_NeedsParent(t *testing.T) {
	t.Parallel()

	_, _, err := split("Orders")
	require.Error(t, err)

	parent, key, err := split("Orders/NewOrders/O1")
	require.NoError(t, err)
	require.Equal(t, "Orders/NewOrders", parent)
	require.Equal(t, "O1", key)
}
