package assignment_test

import (
	"encoding/json"

	"courier-dispatch/internal/docstore"
)

func childrenCount(raw json.RawMessage) (int, error) {
	c, err := docstore.Children(raw)
	return len(c), err
}
