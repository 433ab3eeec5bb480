package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// heartbeatInterval keeps idle SSE connections alive through proxies.
const heartbeatInterval = 25 * time.Second

// handleEvents bridges a board's Redis event channel onto a Server-Sent
// Events stream. The caller's token and board membership are verified
// before the Redis subscription is opened, so an unauthenticated or
// non-member connection never joins the channel.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	boardID := chi.URLParam(r, "boardID")
	member := s.requireMember(w, r, boardID)
	if member == nil {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "streaming unsupported")
		return
	}

	sub, err := s.feed.Subscribe(r.Context(), boardID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "failed to subscribe to board events")
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case ev, open := <-sub.Events():
			if !open {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				log.Printf("[Server] Failed to marshal %s event for SSE: %v", ev.Kind, err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind, data)
			flusher.Flush()

		case err, open := <-sub.Errors():
			if !open {
				return
			}
			// Malformed channel messages are logged and skipped; the
			// stream itself stays up.
			log.Printf("[Server] Event feed error for board %s: %v", boardID, err)

		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}
