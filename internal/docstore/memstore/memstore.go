// Package memstore is an in-process docstore.Store used by tests and by
// the "memory" backend for local runs.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"courier-dispatch/internal/docstore"
)

// Store keeps the document tree as decoded JSON. Empty objects are pruned
// so that an emptied collection reads as absent.
type Store struct {
	mu   sync.Mutex
	root map[string]any
	subs map[int]subscriber
	next int
}

type subscriber struct {
	path string
	ch   chan docstore.Event
}

// New returns an empty Store.
func New() *Store {
	return &Store{root: map[string]any{}, subs: map[int]subscriber{}}
}

// Seed decodes doc and stores it at path. It panics on invalid input and
// is meant for fixtures.
func (s *Store) Seed(path string, doc string) {
	if err := s.Set(context.Background(), path, json.RawMessage(doc)); err != nil {
		panic(err)
	}
}

func (s *Store) Get(ctx context.Context, path string) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	parts, err := docstore.Split(path)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := lookup(s.root, parts)
	if !ok {
		return nil, nil
	}
	return json.Marshal(v)
}

func (s *Store) Set(ctx context.Context, path string, doc json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	parts, err := docstore.Split(path)
	if err != nil {
		return err
	}
	var v any
	if !docstore.IsNull(doc) {
		if err := json.Unmarshal(doc, &v); err != nil {
			return fmt.Errorf("memstore: decode %q: %w", path, err)
		}
	}
	s.mu.Lock()
	s.put(parts, v)
	s.mu.Unlock()
	s.notify(path)
	return nil
}

func (s *Store) Update(ctx context.Context, path string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	parts, err := docstore.Split(path)
	if err != nil {
		return err
	}
	// round-trip through JSON so stored values never alias caller data
	decoded := map[string]any{}
	b, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("memstore: encode patch %q: %w", path, err)
	}
	if err := json.Unmarshal(b, &decoded); err != nil {
		return fmt.Errorf("memstore: decode patch %q: %w", path, err)
	}
	s.mu.Lock()
	for k, v := range decoded {
		s.put(append(append([]string(nil), parts...), k), v)
	}
	s.mu.Unlock()
	s.notify(path)
	return nil
}

func (s *Store) Delete(ctx context.Context, path string) error {
	return s.Set(ctx, path, nil)
}

func (s *Store) Take(ctx context.Context, path string) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	parts, err := docstore.Split(path)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	v, ok := lookup(s.root, parts)
	if !ok {
		s.mu.Unlock()
		return nil, nil
	}
	s.put(parts, nil)
	s.mu.Unlock()
	s.notify(path)
	return json.Marshal(v)
}

// Subscribe delivers an event for every write related to path until ctx ends.
func (s *Store) Subscribe(ctx context.Context, path string) (<-chan docstore.Event, error) {
	if _, err := docstore.Split(path); err != nil {
		return nil, err
	}
	ch := make(chan docstore.Event, 1)
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = subscriber{path: path, ch: ch}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()
	return ch, nil
}

func (s *Store) notify(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		if docstore.Related(sub.path, path) {
			docstore.Notify(sub.ch, docstore.Event{Path: path})
		}
	}
}

// put writes v at parts (nil removes) and prunes emptied ancestors.
func (s *Store) put(parts []string, v any) {
	if m, ok := v.(map[string]any); ok && len(m) == 0 {
		v = nil
	}
	putAt(s.root, parts, v)
}

func putAt(node map[string]any, parts []string, v any) {
	key := parts[0]
	if len(parts) == 1 {
		if v == nil {
			delete(node, key)
			return
		}
		node[key] = v
		return
	}
	child, ok := node[key].(map[string]any)
	if !ok {
		if v == nil {
			return
		}
		child = map[string]any{}
		node[key] = child
	}
	putAt(child, parts[1:], v)
	if len(child) == 0 {
		delete(node, key)
	}
}

func lookup(node map[string]any, parts []string) (any, bool) {
	var cur any = node
	for _, p := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

var _ docstore.Store = (*Store)(nil)
