// Package redisstore implements docstore.Store on Redis hashes.
//
// A document at P/k is field k of hash doc:P, so a collection at P is read
// with a single HGETALL. Every write publishes the written path on
// docstore:<prefix> for the path and each of its ancestors.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"courier-dispatch/internal/docstore"
)

const (
	keyPrefix     = "doc:"
	channelPrefix = "docstore:"

	maxWatchRetries = 5
)

// ErrMalformed reports a stored or supplied document that is not the
// expected JSON shape.
var ErrMalformed = errors.New("redisstore: malformed document")

var takeScript = redis.NewScript(`
local v = redis.call('HGET', KEYS[1], ARGV[1])
if not v then
	return false
end
redis.call('HDEL', KEYS[1], ARGV[1])
return v
`)

// Store is a docstore.Store backed by a go-redis client.
type Store struct {
	rdb redis.UniversalClient
}

// New wraps rdb.
func New(rdb redis.UniversalClient) *Store {
	return &Store{rdb: rdb}
}

func (s *Store) Get(ctx context.Context, path string) (json.RawMessage, error) {
	if _, err := docstore.Split(path); err != nil {
		return nil, err
	}
	parent, key := docstore.Parent(path)
	if parent != "" {
		v, err := s.rdb.HGet(ctx, keyPrefix+parent, key).Result()
		switch {
		case err == nil:
			return json.RawMessage(v), nil
		case !errors.Is(err, redis.Nil):
			return nil, classify("get", path, err)
		}
	}

	all, err := s.rdb.HGetAll(ctx, keyPrefix+path).Result()
	if err != nil {
		return nil, classify("get", path, err)
	}
	if len(all) == 0 {
		return nil, nil
	}
	doc := make(map[string]json.RawMessage, len(all))
	for k, v := range all {
		doc[k] = json.RawMessage(v)
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("redisstore: encode %q: %w", path, err)
	}
	return b, nil
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
		return fmt.Errorf("redisstore: invalid document at %q", path)
	}
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, keyPrefix+parent, key, string(doc))
		p.Del(ctx, keyPrefix+path)
		publish(ctx, p, path)
		return nil
	})
	return classify("set", path, err)
}

// Update merges fields into the document under WATCH, retrying when a
// concurrent writer touches the same hash.
func (s *Store) Update(ctx context.Context, path string, fields map[string]any) error {
	parent, key, err := split(path)
	if err != nil {
		return err
	}
	hash := keyPrefix + parent

	txf := func(tx *redis.Tx) error {
		cur := map[string]json.RawMessage{}
		raw, err := tx.HGet(ctx, hash, key).Result()
		switch {
		case err == nil:
			if err := json.Unmarshal([]byte(raw), &cur); err != nil {
				return fmt.Errorf("%w: %q is not an object: %v", ErrMalformed, path, err)
			}
		case !errors.Is(err, redis.Nil):
			return err
		}
		for k, v := range fields {
			if v == nil {
				delete(cur, k)
				continue
			}
			b, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("%w: encode field %q: %v", ErrMalformed, k, err)
			}
			cur[k] = b
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			if len(cur) == 0 {
				p.HDel(ctx, hash, key)
			} else {
				b, err := json.Marshal(cur)
				if err != nil {
					return err
				}
				p.HSet(ctx, hash, key, string(b))
			}
			publish(ctx, p, path)
			return nil
		})
		return err
	}

	for i := 0; i < maxWatchRetries; i++ {
		err = s.rdb.Watch(ctx, txf, hash)
		if !errors.Is(err, redis.TxFailedErr) {
			return classify("update", path, err)
		}
	}
	return docstore.Transient(fmt.Errorf("redisstore: update %q: %w", path, err))
}

func (s *Store) Delete(ctx context.Context, path string) error {
	parent, key, err := split(path)
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HDel(ctx, keyPrefix+parent, key)
		p.Del(ctx, keyPrefix+path)
		publish(ctx, p, path)
		return nil
	})
	return classify("delete", path, err)
}

func (s *Store) Take(ctx context.Context, path string) (json.RawMessage, error) {
	parent, key, err := split(path)
	if err != nil {
		return nil, err
	}
	v, err := takeScript.Run(ctx, s.rdb, []string{keyPrefix + parent}, key).Text()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("take", path, err)
	}
	// the claim already happened; a lost notification only delays subscribers
	_, _ = s.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		publish(ctx, p, path)
		return nil
	})
	return json.RawMessage(v), nil
}

// Subscribe listens on docstore:<path>. The channel closes when ctx ends or
// the pub/sub connection is closed.
func (s *Store) Subscribe(ctx context.Context, path string) (<-chan docstore.Event, error) {
	if _, err := docstore.Split(path); err != nil {
		return nil, err
	}
	sub := s.rdb.Subscribe(ctx, channelPrefix+path)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, classify("subscribe", path, err)
	}

	out := make(chan docstore.Event, 1)
	msgs := sub.Channel()
	go func() {
		defer close(out)
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					return
				}
				docstore.Notify(out, docstore.Event{Path: m.Payload})
			}
		}
	}()
	return out, nil
}

func publish(ctx context.Context, p redis.Pipeliner, path string) {
	parts := strings.Split(path, "/")
	for i := len(parts); i > 0; i-- {
		p.Publish(ctx, channelPrefix+strings.Join(parts[:i], "/"), path)
	}
}

func split(path string) (parent, key string, err error) {
	parts, err := docstore.Split(path)
	if err != nil {
		return "", "", err
	}
	if len(parts) < 2 {
		return "", "", fmt.Errorf("redisstore: path %q needs a parent collection", path)
	}
	parent, key = docstore.Parent(path)
	return parent, key, nil
}

// classify marks connection-level failures as transient. Replies from the
// server (WRONGTYPE, script errors) are not.
func classify(op, path string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	wrapped := fmt.Errorf("redisstore: %s %q: %w", op, path, err)
	var rerr redis.Error
	if errors.As(err, &rerr) || errors.Is(err, ErrMalformed) {
		return wrapped
	}
	return docstore.Transient(wrapped)
}

var _ docstore.Store = (*Store)(nil)
