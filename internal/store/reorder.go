package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/corkboard/corkd/pkg/board"
)

// Batch reorder: the bulk-write path.
//
// The caller supplies the complete position assignment for the affected
// siblings and is trusted to have computed a dense, valid ordering (the
// optimistic client replica uses the same shift algorithm as the move
// coordinator, so in practice it has). The store only verifies identity
// and board scope; every row updates in one transaction or none do, and a
// row that matches nothing (deleted concurrently) aborts the whole batch
// with ErrConflict.

// ReorderColumns applies a caller-supplied position assignment to a
// board's columns.
func (s *Store) ReorderColumns(ctx context.Context, boardID string, orders []board.ColumnOrder) error {
	if len(orders) == 0 {
		return nil
	}
	for _, o := range orders {
		if o.Position < 0 {
			return fmt.Errorf("negative position for column %s: %w", o.ID, ErrConflict)
		}
	}

	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		for _, o := range orders {
			res, err := tx.ExecContext(ctx,
				s.rebind(`UPDATE columns SET position = ? WHERE id = ? AND board_id = ?`),
				o.Position, o.ID, boardID)
			if err != nil {
				return fmt.Errorf("failed to update column %s: %w", o.ID, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to verify column update: %w", err)
			}
			if n != 1 {
				return fmt.Errorf("column %s not on board: %w", o.ID, ErrConflict)
			}
		}
		return nil
	})
}

// ReorderCards applies a caller-supplied position (and owning column)
// assignment to a board's cards. Cards may change columns as part of the
// batch; every named card and every target column must belong to the
// board.
func (s *Store) ReorderCards(ctx context.Context, boardID string, orders []board.CardOrder) error {
	if len(orders) == 0 {
		return nil
	}

	columnIDs := make([]string, 0, len(orders))
	seen := make(map[string]bool)
	for _, o := range orders {
		if o.Position < 0 {
			return fmt.Errorf("negative position for card %s: %w", o.ID, ErrConflict)
		}
		if o.ColumnID == "" {
			return fmt.Errorf("card %s missing column: %w", o.ID, ErrConflict)
		}
		if !seen[o.ColumnID] {
			seen[o.ColumnID] = true
			columnIDs = append(columnIDs, o.ColumnID)
		}
	}

	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		// every target column must be on this board
		query, args, err := sqlx.In(`SELECT COUNT(*) FROM columns WHERE board_id = ? AND id IN (?)`, boardID, columnIDs)
		if err != nil {
			return fmt.Errorf("failed to build column check: %w", err)
		}
		var n int
		if err := tx.GetContext(ctx, &n, s.rebind(query), args...); err != nil {
			return fmt.Errorf("failed to verify target columns: %w", err)
		}
		if n != len(columnIDs) {
			return fmt.Errorf("target column not on board: %w", ErrConflict)
		}

		for _, o := range orders {
			res, err := tx.ExecContext(ctx, s.rebind(
				`UPDATE cards SET position = ?, column_id = ?
				 WHERE id = ? AND (SELECT board_id FROM columns WHERE id = cards.column_id) = ?`),
				o.Position, o.ColumnID, o.ID, boardID)
			if err != nil {
				return fmt.Errorf("failed to update card %s: %w", o.ID, err)
			}
			rows, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to verify card update: %w", err)
			}
			if rows != 1 {
				return fmt.Errorf("card %s not on board: %w", o.ID, ErrConflict)
			}
		}
		return nil
	})
}
