package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/croftbw/watchmux/internal/model"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// listExpiriesResponse wraps the paginated expiry history.
type listExpiriesResponse struct {
	Expiries []*model.ExpiryEvent `json:"expiries"`
	Total    int                  `json:"total"`
	Limit    int                  `json:"limit"`
	Offset   int                  `json:"offset"`
}

func (s *Server) handleListExpiries(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", defaultListLimit)
	if limit < 1 || limit > maxListLimit {
		limit = defaultListLimit
	}
	offset := parseIntQuery(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	events, total, err := s.store.ListExpiries(r.Context(), limit, offset)
	if err != nil {
		s.logger.Error("list expiries", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list expiries")
		return
	}
	if events == nil {
		events = []*model.ExpiryEvent{}
	}

	s.writeJSON(w, http.StatusOK, listExpiriesResponse{
		Expiries: events,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	})
}

// handleStreamExpiries streams expiry events to the client as SSE. The
// stream stays open until the client disconnects; each detecting check
// produces one event per violating node.
func (s *Server) handleStreamExpiries(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Disable write timeout for long-lived SSE connections.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		s.logger.Error("set write deadline for SSE", "error", err)
	}

	ch, unsub := s.sup.Broker().Subscribe()
	defer unsub()

	w.WriteHeader(http.StatusOK)
	flusher, canFlush := w.(http.Flusher)
	if canFlush {
		flusher.Flush()
	}

	for {
		select {
		case event, ok := <-ch:
			if !ok {
				_ = writeSSEEvent(w, "done", "stream complete")
				if canFlush {
					flusher.Flush()
				}
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				s.logger.Error("marshal expiry event", "error", err)
				continue
			}
			if err := writeSSEEvent(w, "expiry", string(payload)); err != nil {
				return // Write failed (e.g. client gone).
			}
			if canFlush {
				flusher.Flush()
			}
		case <-r.Context().Done():
			return // Client disconnected.
		}
	}
}

// writeSSEEvent writes a named SSE event (event: <type>\ndata: <data>\n\n).
func writeSSEEvent(w http.ResponseWriter, eventType, data string) error {
	if _, err := fmt.Fprintf(w, "event: %s\n", eventType); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	return nil
}
