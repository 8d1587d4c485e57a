package pgstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"courier-dispatch/internal/docstore"
)

const notifyChannel = "docstore"

// Store keeps a document at P/k as the row (parent=P, key=k). A collection
// at P is every row whose parent is P.
type Store struct {
	db *pgxpool.Pool
}

// New wraps an already migrated pool.
func New(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// WithTx opens a transaction and executes fn within it.
func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback tx: %w (original error: %s)", rbErr, err.Error())
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, path string) (json.RawMessage, error) {
	if _, err := docstore.Split(path); err != nil {
		return nil, err
	}
	parent, key := docstore.Parent(path)

	var body []byte
	err := s.db.QueryRow(ctx, `
		SELECT body FROM documents WHERE parent = $1 AND key = $2
	`, parent, key).Scan(&body)
	switch {
	case err == nil:
		return json.RawMessage(body), nil
	case !IsNotFound(err):
		return nil, wrap("get", path, err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT key, body FROM documents WHERE parent = $1
	`, path)
	if err != nil {
		return nil, wrap("get", path, err)
	}
	defer rows.Close()

	children := map[string]json.RawMessage{}
	for rows.Next() {
		var k string
		var b []byte
		if err := rows.Scan(&k, &b); err != nil {
			return nil, wrap("get", path, err)
		}
		children[k] = json.RawMessage(b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("get", path, err)
	}
	if len(children) == 0 {
		return nil, nil
	}
	out, err := json.Marshal(children)
	if err != nil {
		return nil, fmt.Errorf("pgstore: encode %q: %w", path, err)
	}
	return out, nil
}

func (s *Store) Set(ctx context.Context, path string, doc json.RawMessage) error {
	if docstore.IsNull(doc) {
		return s.Delete(ctx, path)
	}
	parent, key, err := split(path)
	if err != nil {
		return err
	}
	if !json.Valid(doc) {
		return fmt.Errorf("pgstore: invalid document at %q", path)
	}
	err = s.WithTx(ctx, func(tx pgx.Tx) error {
		if err := deleteSubtree(ctx, tx, path); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO documents (parent, key, body)
			VALUES ($1, $2, $3::jsonb)
			ON CONFLICT (parent, key) DO UPDATE
			SET body = EXCLUDED.body, updated_at = now()
		`, parent, key, string(doc)); err != nil {
			return err
		}
		return notify(ctx, tx, path)
	})
	return wrap("set", path, err)
}

// Update merges fields with jsonb concatenation and drops the keys whose
// value is nil. A document left empty is removed.
func (s *Store) Update(ctx context.Context, path string, fields map[string]any) error {
	parent, key, err := split(path)
	if err != nil {
		return err
	}
	patch := map[string]any{}
	removed := []string{}
	for k, v := range fields {
		if v == nil {
			removed = append(removed, k)
			continue
		}
		patch[k] = v
	}
	b, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("pgstore: encode patch %q: %w", path, err)
	}

	err = s.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO documents (parent, key, body)
			VALUES ($1, $2, $3::jsonb)
			ON CONFLICT (parent, key) DO UPDATE
			SET body = (documents.body || EXCLUDED.body) - $4::text[], updated_at = now()
		`, parent, key, string(b), removed); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			DELETE FROM documents WHERE parent = $1 AND key = $2 AND body = '{}'::jsonb
		`, parent, key); err != nil {
			return err
		}
		return notify(ctx, tx, path)
	})
	return wrap("update", path, err)
}

func (s *Store) Delete(ctx context.Context, path string) error {
	parent, key, err := split(path)
	if err != nil {
		return err
	}
	err = s.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			DELETE FROM documents WHERE parent = $1 AND key = $2
		`, parent, key); err != nil {
			return err
		}
		if err := deleteSubtree(ctx, tx, path); err != nil {
			return err
		}
		return notify(ctx, tx, path)
	})
	return wrap("delete", path, err)
}

func (s *Store) Take(ctx context.Context, path string) (json.RawMessage, error) {
	parent, key, err := split(path)
	if err != nil {
		return nil, err
	}
	var body []byte
	err = s.WithTx(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
			DELETE FROM documents WHERE parent = $1 AND key = $2
			RETURNING body
		`, parent, key).Scan(&body); err != nil {
			return err
		}
		return notify(ctx, tx, path)
	})
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("take", path, err)
	}
	return json.RawMessage(body), nil
}

// Subscribe listens for pg_notify payloads on a dedicated pooled
// connection and forwards the ones related to path.
func (s *Store) Subscribe(ctx context.Context, path string) (<-chan docstore.Event, error) {
	if _, err := docstore.Split(path); err != nil {
		return nil, err
	}
	conn, err := s.db.Acquire(ctx)
	if err != nil {
		return nil, wrap("subscribe", path, err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		conn.Release()
		return nil, wrap("subscribe", path, err)
	}

	out := make(chan docstore.Event, 1)
	go func() {
		defer close(out)
		defer func() {
			// a connection still in LISTEN state must not return to the pool
			_ = conn.Conn().Close(context.Background())
			conn.Release()
		}()
		for {
			n, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				return
			}
			if docstore.Related(path, n.Payload) {
				docstore.Notify(out, docstore.Event{Path: n.Payload})
			}
		}
	}()
	return out, nil
}

func deleteSubtree(ctx context.Context, tx pgx.Tx, path string) error {
	_, err := tx.Exec(ctx, `
		DELETE FROM documents WHERE parent = $1 OR parent LIKE $2
	`, path, escapeLike(path)+"/%")
	return err
}

func notify(ctx context.Context, tx pgx.Tx, path string) error {
	_, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, path)
	return err
}

func split(path string) (parent, key string, err error) {
	parts, err := docstore.Split(path)
	if err != nil {
		return "", "", err
	}
	if len(parts) < 2 {
		return "", "", fmt.Errorf("pgstore: path %q needs a parent collection", path)
	}
	parent, key = docstore.Parent(path)
	return parent, key, nil
}

func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}

var _ docstore.Store = (*Store)(nil)
