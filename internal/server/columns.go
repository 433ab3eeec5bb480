package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/corkboard/corkd/pkg/board"
)

// handleCreateColumn appends a column at the end of the board.
func (s *Server) handleCreateColumn(w http.ResponseWriter, r *http.Request) {
	boardID := chi.URLParam(r, "boardID")
	member := s.requireMember(w, r, boardID)
	if member == nil {
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if req.Title == "" {
		writeBadRequest(w, "column title is required")
		return
	}

	col, err := s.store.CreateColumn(r.Context(), boardID, req.Title)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	s.publish(r.Context(), board.EventColumnCreated, boardID, member.UserID, col)
	writeData(w, http.StatusCreated, col)
}

// handleRenameColumn updates a column's title.
func (s *Server) handleRenameColumn(w http.ResponseWriter, r *http.Request) {
	columnID := chi.URLParam(r, "columnID")
	boardID, err := s.store.BoardIDForColumn(r.Context(), columnID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	member := s.requireMember(w, r, boardID)
	if member == nil {
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if req.Title == "" {
		writeBadRequest(w, "column title is required")
		return
	}

	col, err := s.store.RenameColumn(r.Context(), columnID, req.Title)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	s.publish(r.Context(), board.EventColumnUpdated, boardID, member.UserID, col)
	writeData(w, http.StatusOK, col)
}

// handleDeleteColumn deletes a column (cards cascade) and renumbers the
// surviving columns.
func (s *Server) handleDeleteColumn(w http.ResponseWriter, r *http.Request) {
	columnID := chi.URLParam(r, "columnID")
	boardID, err := s.store.BoardIDForColumn(r.Context(), columnID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	member := s.requireMember(w, r, boardID)
	if member == nil {
		return
	}

	col, err := s.store.DeleteColumn(r.Context(), columnID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	s.publish(r.Context(), board.EventColumnDeleted, boardID, member.UserID, board.ColumnDeleted{ColumnID: col.ID})
	writeData(w, http.StatusOK, map[string]string{"id": col.ID})
}

// handleMoveColumn moves a column to a new position. The shift of the
// siblings is computed server-side inside the move transaction; the response
// and the broadcast event carry the committed (clamped) position.
func (s *Server) handleMoveColumn(w http.ResponseWriter, r *http.Request) {
	columnID := chi.URLParam(r, "columnID")
	boardID, err := s.store.BoardIDForColumn(r.Context(), columnID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	member := s.requireMember(w, r, boardID)
	if member == nil {
		return
	}

	var req struct {
		NewPosition *int `json:"newPosition"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if req.NewPosition == nil {
		writeBadRequest(w, "newPosition is required")
		return
	}

	res, err := s.store.MoveColumn(r.Context(), columnID, *req.NewPosition)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	moved := board.ColumnMoved{ColumnID: res.ColumnID, Position: res.Position}
	s.publish(r.Context(), board.EventColumnMoved, res.BoardID, member.UserID, moved)
	writeData(w, http.StatusOK, map[string]any{"id": res.ColumnID, "position": res.Position})
}
