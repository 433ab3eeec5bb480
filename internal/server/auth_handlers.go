package server

import (
	"net/http"

	"github.com/corkboard/corkd/internal/auth"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

type authResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// handleRegister creates a user account and returns a signed token.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if req.Username == "" || req.Password == "" {
		writeBadRequest(w, "username and password are required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	user, err := s.store.CreateUser(r.Context(), req.Username, req.Email, hash)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	token, err := s.auth.IssueToken(user.ID, user.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "failed to issue token")
		return
	}
	writeData(w, http.StatusCreated, authResponse{Token: token, UserID: user.ID, Username: user.Username})
}

// handleLogin verifies credentials and returns a signed token. Unknown
// usernames and wrong passwords get the same 401 response.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	user, err := s.store.GetUserByUsername(r.Context(), req.Username)
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		writeUnauthorized(w, "invalid username or password")
		return
	}

	token, err := s.auth.IssueToken(user.ID, user.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "failed to issue token")
		return
	}
	writeData(w, http.StatusOK, authResponse{Token: token, UserID: user.ID, Username: user.Username})
}

// handleMe returns the account behind the caller's token. 404 if the
// account was deleted after the token was issued.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	id := IdentityFrom(r.Context())
	user, err := s.store.GetUser(r.Context(), id.UserID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeData(w, http.StatusOK, user)
}

// handleSearchUsers finds accounts by username or email fragment so an
// owner can look up who to invite. The caller is excluded from the
// results; an empty query returns an empty list rather than everyone.
func (s *Server) handleSearchUsers(w http.ResponseWriter, r *http.Request) {
	id := IdentityFrom(r.Context())
	users, err := s.store.SearchUsers(r.Context(), r.URL.Query().Get("query"), id.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	writeData(w, http.StatusOK, users)
}
