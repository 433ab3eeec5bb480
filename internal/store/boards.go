package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/corkboard/corkd/pkg/board"
)

// CreateBoard inserts a board and its owner membership atomically: a board
// never exists without exactly one owner member.
func (s *Store) CreateBoard(ctx context.Context, ownerID, title, description string) (*board.Board, error) {
	b := &board.Board{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		OwnerID:     ownerID,
		CreatedAt:   time.Now().UTC(),
	}

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			s.rebind(`INSERT INTO boards (id, title, description, owner_id, created_at) VALUES (?, ?, ?, ?, ?)`),
			b.ID, b.Title, b.Description, b.OwnerID, b.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert board: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			s.rebind(`INSERT INTO board_members (board_id, user_id, role) VALUES (?, ?, ?)`),
			b.ID, b.OwnerID, board.RoleOwner)
		if err != nil {
			return fmt.Errorf("failed to insert owner membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// GetBoard returns the board header.
func (s *Store) GetBoard(ctx context.Context, boardID string) (*board.Board, error) {
	var b board.Board
	err := s.db.GetContext(ctx, &b,
		s.rebind(`SELECT id, title, description, owner_id, created_at FROM boards WHERE id = ?`),
		boardID)
	if err != nil {
		return nil, notFoundOr(err, "board")
	}
	return &b, nil
}

// ListBoards returns every board the user is a member of.
func (s *Store) ListBoards(ctx context.Context, userID string) ([]board.Board, error) {
	boards := []board.Board{}
	err := s.db.SelectContext(ctx, &boards, s.rebind(
		`SELECT b.id, b.title, b.description, b.owner_id, b.created_at
		 FROM boards b
		 JOIN board_members m ON m.board_id = b.id
		 WHERE m.user_id = ?
		 ORDER BY b.created_at`),
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list boards: %w", err)
	}
	return boards, nil
}

// DeleteBoard removes a board; members, columns and cards go with it via
// foreign key cascade.
func (s *Store) DeleteBoard(ctx context.Context, boardID string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM boards WHERE id = ?`), boardID)
	if err != nil {
		return fmt.Errorf("failed to delete board: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("board: %w", ErrNotFound)
	}
	return nil
}

// FullBoard is a complete board snapshot: the header, members, and every
// column and card ordered by position. Clients use it to seed or
// resynchronize a replica.
type FullBoard struct {
	Board   board.Board    `json:"board"`
	Members []board.Member `json:"members"`
	Columns []board.Column `json:"columns"`
	Cards   []board.Card   `json:"cards"`
}

// GetFullBoard loads a complete snapshot of one board.
func (s *Store) GetFullBoard(ctx context.Context, boardID string) (*FullBoard, error) {
	b, err := s.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}

	members, err := s.ListMembers(ctx, boardID)
	if err != nil {
		return nil, err
	}

	columns := []board.Column{}
	err = s.db.SelectContext(ctx, &columns, s.rebind(
		`SELECT id, board_id, title, position FROM columns WHERE board_id = ? ORDER BY position`),
		boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns: %w", err)
	}

	rows := []cardRow{}
	err = s.db.SelectContext(ctx, &rows, s.rebind(
		`SELECT c.id, c.column_id, c.title, c.description, c.due_date, c.labels, c.assignee_id, c.creator_id, c.position
		 FROM cards c
		 JOIN columns col ON col.id = c.column_id
		 WHERE col.board_id = ?
		 ORDER BY c.column_id, c.position`),
		boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}

	cards := make([]board.Card, 0, len(rows))
	for _, r := range rows {
		card, err := r.toCard()
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	sort.SliceStable(cards, func(i, j int) bool {
		if cards[i].ColumnID != cards[j].ColumnID {
			return cards[i].ColumnID < cards[j].ColumnID
		}
		return cards[i].Position < cards[j].Position
	})

	return &FullBoard{Board: *b, Members: members, Columns: columns, Cards: cards}, nil
}
