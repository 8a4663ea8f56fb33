package api

import (
	"net/http"

	"github.com/croftbw/watchmux/internal/model"
)

type healthResponse struct {
	Status string `json:"status"`
}

// handleHealthz reports the latch state: 200 while every registered node is
// healthy, 503 once the registry has latched. This lets an external
// orchestrator treat a tripped watchdog the same way it treats a dead
// process.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.mux.Expired() {
		s.writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: model.HealthExpired})
		return
	}
	s.writeJSON(w, http.StatusOK, healthResponse{Status: model.HealthOK})
}
