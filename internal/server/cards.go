package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/corkboard/corkd/internal/store"
	"github.com/corkboard/corkd/pkg/board"
)

// handleCreateCard appends a card at the end of a column. The caller becomes
// the card's creator.
func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
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
		writeBadRequest(w, "card title is required")
		return
	}

	card, err := s.store.CreateCard(r.Context(), columnID, req.Title, member.UserID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	s.publish(r.Context(), board.EventCardCreated, boardID, member.UserID, card)
	writeData(w, http.StatusCreated, card)
}

// handleUpdateCard applies a partial update to a card's content fields.
// Position and column are never touched here; moves go through
// handleMoveCard.
func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardID")
	boardID, err := s.store.BoardIDForCard(r.Context(), cardID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	member := s.requireMember(w, r, boardID)
	if member == nil {
		return
	}

	var req struct {
		Title       *string       `json:"title"`
		Description *string       `json:"description"`
		DueDate     *time.Time    `json:"due_date"`
		AssigneeID  *string       `json:"assignee_id"`
		Labels      []board.Label `json:"labels"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if req.Title != nil && *req.Title == "" {
		writeBadRequest(w, "card title cannot be empty")
		return
	}

	card, err := s.store.UpdateCard(r.Context(), cardID, store.CardUpdate{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		AssigneeID:  req.AssigneeID,
		Labels:      req.Labels,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}

	s.publish(r.Context(), board.EventCardUpdated, boardID, member.UserID, card)
	writeData(w, http.StatusOK, card)
}

// handleDeleteCard deletes a card and renumbers its column.
func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardID")
	boardID, err := s.store.BoardIDForCard(r.Context(), cardID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	member := s.requireMember(w, r, boardID)
	if member == nil {
		return
	}

	card, err := s.store.DeleteCard(r.Context(), cardID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	deleted := board.CardDeleted{CardID: card.ID, ColumnID: card.ColumnID}
	s.publish(r.Context(), board.EventCardDeleted, boardID, member.UserID, deleted)
	writeData(w, http.StatusOK, map[string]string{"id": card.ID})
}

// handleMoveCard moves a card within its column or to another column on the
// same board. The sibling shifts in both columns are computed server-side
// inside the move transaction.
func (s *Server) handleMoveCard(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardID")
	boardID, err := s.store.BoardIDForCard(r.Context(), cardID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	member := s.requireMember(w, r, boardID)
	if member == nil {
		return
	}

	var req struct {
		NewColumnID string `json:"newColumnId"`
		NewPosition *int   `json:"newPosition"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if req.NewPosition == nil {
		writeBadRequest(w, "newPosition is required")
		return
	}

	res, err := s.store.MoveCard(r.Context(), cardID, req.NewColumnID, *req.NewPosition)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	moved := board.CardMoved{
		CardID:      res.CardID,
		OldColumnID: res.OldColumnID,
		ColumnID:    res.ColumnID,
		Position:    res.Position,
	}
	s.publish(r.Context(), board.EventCardMoved, res.BoardID, member.UserID, moved)
	writeData(w, http.StatusOK, map[string]any{
		"id":       res.CardID,
		"columnId": res.ColumnID,
		"position": res.Position,
	})
}
