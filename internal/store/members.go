package store

import (
	"context"
	"fmt"

	"github.com/corkboard/corkd/pkg/board"
)

// GetMember returns one user's membership on a board, or ErrNotFound.
func (s *Store) GetMember(ctx context.Context, boardID, userID string) (*board.Member, error) {
	var m board.Member
	err := s.db.GetContext(ctx, &m, s.rebind(
		`SELECT m.board_id, m.user_id, u.username, m.role
		 FROM board_members m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.board_id = ? AND m.user_id = ?`),
		boardID, userID)
	if err != nil {
		return nil, notFoundOr(err, "membership")
	}
	return &m, nil
}

// ListMembers returns a board's members, owner first.
func (s *Store) ListMembers(ctx context.Context, boardID string) ([]board.Member, error) {
	members := []board.Member{}
	err := s.db.SelectContext(ctx, &members, s.rebind(
		`SELECT m.board_id, m.user_id, u.username, m.role
		 FROM board_members m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.board_id = ?
		 ORDER BY CASE m.role WHEN 'owner' THEN 0 ELSE 1 END, u.username`),
		boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// AddMember adds a user to a board. Returns ErrNotFound if the user does
// not exist, ErrExists if they are already a member.
func (s *Store) AddMember(ctx context.Context, boardID, userID string, role board.Role) (*board.Member, error) {
	if err := role.Validate(); err != nil {
		return nil, err
	}

	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO board_members (board_id, user_id, role) VALUES (?, ?, ?)`),
		boardID, userID, role)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("membership: %w", ErrExists)
		}
		return nil, fmt.Errorf("failed to insert membership: %w", err)
	}

	return &board.Member{BoardID: boardID, UserID: userID, Username: u.Username, Role: role}, nil
}

// RemoveMember removes a user from a board. The owner cannot be removed
// while owner; callers enforce who may call this, the store enforces the
// owner invariant.
func (s *Store) RemoveMember(ctx context.Context, boardID, userID string) error {
	res, err := s.db.ExecContext(ctx,
		s.rebind(`DELETE FROM board_members WHERE board_id = ? AND user_id = ? AND role <> ?`),
		boardID, userID, board.RoleOwner)
	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("removable membership: %w", ErrNotFound)
	}
	return nil
}
