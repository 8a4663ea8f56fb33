package model

import "time"

// Registry health constants.
const (
	HealthOK      = "healthy"
	HealthExpired = "expired"
)

// NodeStatus is a point-in-time snapshot of one registered watchdog node,
// as reported by the /v1/nodes endpoint.
type NodeStatus struct {
	ID        uint32 `json:"id"`
	TimeoutMS uint32 `json:"timeout_ms"`
	LastFedMS uint32 `json:"last_fed_ms"`
	ElapsedMS uint32 `json:"elapsed_ms"`
	Expired   bool   `json:"expired"`
}

// ExpiryEvent records one watchdog node found over threshold by a detecting
// check. All nodes reported by the same check share a DetectedAtMS value,
// the frozen snapshot timestamp the enumeration was evaluated against.
type ExpiryEvent struct {
	ID           string    `json:"id"`
	NodeID       uint32    `json:"node_id"`
	DetectedAtMS uint32    `json:"detected_at_ms"`
	CreatedAt    time.Time `json:"created_at"`
}
