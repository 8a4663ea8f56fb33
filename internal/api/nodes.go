package api

import (
	"net/http"

	"github.com/croftbw/watchmux/internal/model"
)

// listNodesResponse is the JSON response for GET /v1/nodes.
type listNodesResponse struct {
	Nodes []model.NodeStatus `json:"nodes"`
	Total int                `json:"total"`
}

// statusResponse is the JSON response for GET /v1/status.
type statusResponse struct {
	Status       string   `json:"status"`
	ExpiredAtMS  uint32   `json:"expired_at_ms,omitempty"`
	ExpiredNodes []uint32 `json:"expired_nodes,omitempty"`
}

// handleListNodes reports a live snapshot of every registered node,
// evaluated against the current clock.
func (s *Server) handleListNodes(w http.ResponseWriter, r *http.Request) {
	nodes := s.mux.Snapshot()
	if nodes == nil {
		nodes = []model.NodeStatus{}
	}
	s.writeJSON(w, http.StatusOK, listNodesResponse{
		Nodes: nodes,
		Total: len(nodes),
	})
}

// handleGetStatus reports the latch state. Once latched, the response also
// carries the frozen detection timestamp and the ids of the nodes that were
// over threshold at that instant.
func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	if !s.mux.Expired() {
		s.writeJSON(w, http.StatusOK, statusResponse{Status: model.HealthOK})
		return
	}

	s.writeJSON(w, http.StatusOK, statusResponse{
		Status:       model.HealthExpired,
		ExpiredAtMS:  s.mux.ExpiredAtMS(),
		ExpiredNodes: s.mux.ExpiredIDs(),
	})
}

// handleReset re-initializes the registry to the empty, unlatched state.
// Every task must re-register its node afterward.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.sup.Reset()
	s.writeJSON(w, http.StatusOK, healthResponse{Status: model.HealthOK})
}
