package domain

import "encoding/json"

// Partner is a courier's availability record. The profile is copied
// verbatim between the waiting and delivering pools.
type Partner struct {
	ID      string
	Profile json.RawMessage
}
