package pgstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"courier-dispatch/internal/docstore"
)

// IsNotFound - signals that the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// isRetryable - connection loss, timeouts, serialization failures and
// server shutdown.
func isRetryable(err error) bool {
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return true
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return strings.HasPrefix(pgerr.Code, "08") ||
			pgerr.Code == "40001" || pgerr.Code == "40P01" ||
			strings.HasPrefix(pgerr.Code, "57P")
	}
	return false
}

func wrap(op, path string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	wrapped := fmt.Errorf("pgstore: %s %q: %w", op, path, err)
	if isRetryable(err) {
		return docstore.Transient(wrapped)
	}
	return wrapped
}
