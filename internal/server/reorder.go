package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/corkboard/corkd/pkg/board"
)

// Batch reorder endpoints. These trust the caller's ordering wholesale: the
// store applies it atomically and the broadcast carries the complete
// position assignment, so applying the event is idempotent. Used for bulk
// operations; interactive drags use the single-item move endpoints.

// handleReorderColumns applies a full column ordering for a board.
func (s *Server) handleReorderColumns(w http.ResponseWriter, r *http.Request) {
	boardID := chi.URLParam(r, "boardID")
	member := s.requireMember(w, r, boardID)
	if member == nil {
		return
	}

	var req struct {
		Columns []board.ColumnOrder `json:"columns"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if len(req.Columns) == 0 {
		writeBadRequest(w, "columns must not be empty")
		return
	}

	if err := s.store.ReorderColumns(r.Context(), boardID, req.Columns); err != nil {
		writeStoreError(w, err)
		return
	}

	payload := board.ColumnsReordered{Columns: req.Columns}
	s.publish(r.Context(), board.EventColumnsReordered, boardID, member.UserID, payload)
	writeData(w, http.StatusOK, map[string]int{"updated": len(req.Columns)})
}

// handleReorderCards applies a full card ordering for a board. Cards may
// change owning column in the same batch.
func (s *Server) handleReorderCards(w http.ResponseWriter, r *http.Request) {
	boardID := chi.URLParam(r, "boardID")
	member := s.requireMember(w, r, boardID)
	if member == nil {
		return
	}

	var req struct {
		Cards []board.CardOrder `json:"cards"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if len(req.Cards) == 0 {
		writeBadRequest(w, "cards must not be empty")
		return
	}

	if err := s.store.ReorderCards(r.Context(), boardID, req.Cards); err != nil {
		writeStoreError(w, err)
		return
	}

	payload := board.CardsReordered{Cards: req.Cards}
	s.publish(r.Context(), board.EventCardsReordered, boardID, member.UserID, payload)
	writeData(w, http.StatusOK, map[string]int{"updated": len(req.Cards)})
}
