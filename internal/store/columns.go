package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/corkboard/corkd/pkg/board"
)

// GetColumn returns one column.
func (s *Store) GetColumn(ctx context.Context, columnID string) (*board.Column, error) {
	var c board.Column
	err := s.db.GetContext(ctx, &c,
		s.rebind(`SELECT id, board_id, title, position FROM columns WHERE id = ?`),
		columnID)
	if err != nil {
		return nil, notFoundOr(err, "column")
	}
	return &c, nil
}

// CreateColumn appends a column to a board: position = current column
// count, so no sibling needs renumbering.
func (s *Store) CreateColumn(ctx context.Context, boardID, title string) (*board.Column, error) {
	c := &board.Column{ID: uuid.New().String(), BoardID: boardID, Title: title}

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &c.Position,
			s.rebind(`SELECT COUNT(*) FROM columns WHERE board_id = ?`),
			boardID)
		if err != nil {
			return fmt.Errorf("failed to count columns: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			s.rebind(`INSERT INTO columns (id, board_id, title, position) VALUES (?, ?, ?, ?)`),
			c.ID, c.BoardID, c.Title, c.Position)
		if err != nil {
			return fmt.Errorf("failed to insert column: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// RenameColumn updates a column's title.
func (s *Store) RenameColumn(ctx context.Context, columnID, title string) (*board.Column, error) {
	res, err := s.db.ExecContext(ctx,
		s.rebind(`UPDATE columns SET title = ? WHERE id = ?`),
		title, columnID)
	if err != nil {
		return nil, fmt.Errorf("failed to rename column: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("column: %w", ErrNotFound)
	}
	return s.GetColumn(ctx, columnID)
}

// DeleteColumn removes a column (cards cascade) and renumbers the
// surviving siblings down so board positions stay dense. Returns the
// deleted column for event publication.
func (s *Store) DeleteColumn(ctx context.Context, columnID string) (*board.Column, error) {
	var c board.Column
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &c,
			s.rebind(`SELECT id, board_id, title, position FROM columns WHERE id = ?`+s.forUpdate()),
			columnID)
		if err != nil {
			return notFoundOr(err, "column")
		}

		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM columns WHERE id = ?`), columnID); err != nil {
			return fmt.Errorf("failed to delete column: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			s.rebind(`UPDATE columns SET position = position - 1 WHERE board_id = ? AND position > ?`),
			c.BoardID, c.Position)
		if err != nil {
			return fmt.Errorf("failed to renumber columns: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}
