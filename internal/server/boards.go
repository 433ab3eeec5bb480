package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/corkboard/corkd/pkg/board"
)

// handleListBoards returns every board the caller belongs to.
func (s *Server) handleListBoards(w http.ResponseWriter, r *http.Request) {
	id := IdentityFrom(r.Context())
	boards, err := s.store.ListBoards(r.Context(), id.UserID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeData(w, http.StatusOK, boards)
}

// handleCreateBoard creates a board with the caller as owner.
func (s *Server) handleCreateBoard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if req.Title == "" {
		writeBadRequest(w, "board title is required")
		return
	}

	id := IdentityFrom(r.Context())
	b, err := s.store.CreateBoard(r.Context(), id.UserID, req.Title, req.Description)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeData(w, http.StatusCreated, b)
}

// handleGetBoard returns the full board snapshot: members, columns and
// cards in position order. Clients use this to seed or resynchronize a
// replica.
func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	boardID := chi.URLParam(r, "boardID")
	if s.requireMember(w, r, boardID) == nil {
		return
	}

	full, err := s.store.GetFullBoard(r.Context(), boardID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeData(w, http.StatusOK, full)
}

// handleDeleteBoard deletes a board and everything on it. Owner only.
func (s *Server) handleDeleteBoard(w http.ResponseWriter, r *http.Request) {
	boardID := chi.URLParam(r, "boardID")
	if s.requireOwner(w, r, boardID) == nil {
		return
	}

	if err := s.store.DeleteBoard(r.Context(), boardID); err != nil {
		writeStoreError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"id": boardID})
}

// handleAddMember invites a user onto the board. Owner only.
func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	boardID := chi.URLParam(r, "boardID")
	owner := s.requireOwner(w, r, boardID)
	if owner == nil {
		return
	}

	var req struct {
		UserID string     `json:"user_id"`
		Role   board.Role `json:"role"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if req.Role == "" {
		req.Role = board.RoleMember
	}
	if req.Role == board.RoleOwner {
		writeBadRequest(w, "a board has exactly one owner")
		return
	}

	member, err := s.store.AddMember(r.Context(), boardID, req.UserID, req.Role)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	s.publish(r.Context(), board.EventMemberAdded, boardID, owner.UserID, member)
	writeData(w, http.StatusCreated, member)
}

// handleRemoveMember removes a member from the board. Owner only; the owner
// itself cannot be removed.
func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	boardID := chi.URLParam(r, "boardID")
	userID := chi.URLParam(r, "userID")
	owner := s.requireOwner(w, r, boardID)
	if owner == nil {
		return
	}
	if userID == owner.UserID {
		writeBadRequest(w, "the board owner cannot be removed")
		return
	}

	if err := s.store.RemoveMember(r.Context(), boardID, userID); err != nil {
		writeStoreError(w, err)
		return
	}

	s.publish(r.Context(), board.EventMemberRemoved, boardID, owner.UserID, board.MemberRemoved{UserID: userID})
	writeData(w, http.StatusOK, map[string]string{"user_id": userID})
}
