// Package docstore defines the hierarchical JSON document store the
// dispatcher reads and writes, plus helpers shared by its backends.
package docstore

import (
	"context"
	"encoding/json"
)

// Store is a key-path addressed JSON document tree.
//
// Get returns nil (and no error) for an absent path. Set replaces the
// subtree at path; a null document removes it. Update merges top-level
// fields into the document at path; a nil value removes that field.
// Delete is idempotent. Take atomically reads and removes the document,
// returning nil if it was already absent.
type Store interface {
	Get(ctx context.Context, path string) (json.RawMessage, error)
	Set(ctx context.Context, path string, doc json.RawMessage) error
	Update(ctx context.Context, path string, fields map[string]any) error
	Delete(ctx context.Context, path string) error
	Take(ctx context.Context, path string) (json.RawMessage, error)
	Subscribe(ctx context.Context, path string) (<-chan Event, error)
}

// Event signals that something under the subscribed path changed.
// It carries no payload; subscribers re-read state.
type Event struct {
	Path string
}

// IsNull reports whether raw encodes an absent document. An empty object
// counts as absent, matching how the Realtime Database prunes it, so `{}`
// must not be used as a presence marker.
func IsNull(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return true
	}
	s := string(raw)
	return s == "null" || s == "{}"
}

// Children decodes a collection document into its child documents.
// An absent collection yields an empty map. Stores never hold a `{}`
// child, since writing one deletes it.
func Children(raw json.RawMessage) (map[string]json.RawMessage, error) {
	out := map[string]json.RawMessage{}
	if IsNull(raw) {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Notify performs a coalescing, non-blocking send.
func Notify(ch chan Event, ev Event) {
	select {
	case ch <- ev:
	default:
	}
}
