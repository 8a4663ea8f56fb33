package model

import "github.com/oklog/ulid/v2"

// NewID generates a new ULID string for use as an expiry-event identifier.
// ULIDs sort lexicographically by creation time, which keeps the events
// table naturally ordered.
func NewID() string {
	return ulid.Make().String()
}
