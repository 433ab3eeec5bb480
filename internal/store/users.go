package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is an account row. PasswordHash is never serialized.
type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// CreateUser inserts a new account. Returns ErrExists when the username or
// email is already taken.
func (s *Store) CreateUser(ctx context.Context, username, email, passwordHash string) (*User, error) {
	u := &User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO users (id, username, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`),
		u.ID, u.Username, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("user %q: %w", username, ErrExists)
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return u, nil
}

// GetUserByUsername looks up an account for login.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u,
		s.rebind(`SELECT id, username, email, password_hash, created_at FROM users WHERE username = ?`),
		username)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	return &u, nil
}

// GetUser looks up an account by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u,
		s.rebind(`SELECT id, username, email, password_hash, created_at FROM users WHERE id = ?`),
		id)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	return &u, nil
}

// SearchUsers finds accounts whose username or email contains query,
// excluding the searching user, capped at five results. Used by the
// member-invite flow to turn a typed name into a user ID.
func (s *Store) SearchUsers(ctx context.Context, query, excludeUserID string) ([]User, error) {
	users := []User{}
	if query == "" {
		return users, nil
	}

	pattern := "%" + query + "%"
	err := s.db.SelectContext(ctx, &users, s.rebind(
		`SELECT id, username, email, password_hash, created_at FROM users
		 WHERE (username LIKE ? OR email LIKE ?) AND id <> ?
		 ORDER BY username
		 LIMIT 5`),
		pattern, pattern, excludeUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}

// isUniqueViolation detects a unique-constraint failure for either driver.
// lib/pq reports SQLSTATE 23505, go-sqlite3 reports "UNIQUE constraint
// failed"; matching the message avoids driver-specific error types here.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
