package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/corkboard/corkd/pkg/board"
)

// Single-item move coordinator.
//
// Unlike the batch reorder (reorder.go), these operations do not trust a
// caller-supplied ordering: the shift ranges are computed server-side from
// the item's current position inside the same transaction that writes
// them. The whole move - locking read, source shift, destination shift,
// mover write - commits or rolls back as one unit, so siblings are never
// observable partially renumbered.

// MoveColumnResult describes a committed column move.
type MoveColumnResult struct {
	ColumnID string
	BoardID  string
	Position int
}

// MoveColumn moves a column to newPos among its board's columns, shifting
// the siblings between the old and new position by one. newPos is clamped
// into [0, n-1]; a no-op move (same position, or the only column) commits
// nothing and still succeeds.
func (s *Store) MoveColumn(ctx context.Context, columnID string, newPos int) (*MoveColumnResult, error) {
	if newPos < 0 {
		newPos = 0
	}

	res := &MoveColumnResult{ColumnID: columnID}
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var cur board.Column
		err := tx.GetContext(ctx, &cur,
			s.rebind(`SELECT id, board_id, title, position FROM columns WHERE id = ?`+s.forUpdate()),
			columnID)
		if err != nil {
			return notFoundOr(err, "column")
		}
		res.BoardID = cur.BoardID

		var count int
		if err := tx.GetContext(ctx, &count, s.rebind(`SELECT COUNT(*) FROM columns WHERE board_id = ?`), cur.BoardID); err != nil {
			return fmt.Errorf("failed to count columns: %w", err)
		}

		target := board.ClampIndex(newPos, count)
		res.Position = target
		if target == cur.Position {
			return nil
		}

		if cur.Position < target {
			// forward: siblings in (old, new] shift left
			_, err = tx.ExecContext(ctx, s.rebind(
				`UPDATE columns SET position = position - 1 WHERE board_id = ? AND position > ? AND position <= ?`),
				cur.BoardID, cur.Position, target)
		} else {
			// backward: siblings in [new, old) shift right
			_, err = tx.ExecContext(ctx, s.rebind(
				`UPDATE columns SET position = position + 1 WHERE board_id = ? AND position >= ? AND position < ?`),
				cur.BoardID, target, cur.Position)
		}
		if err != nil {
			return fmt.Errorf("failed to shift columns: %w", err)
		}

		if _, err := tx.ExecContext(ctx, s.rebind(`UPDATE columns SET position = ? WHERE id = ?`), target, columnID); err != nil {
			return fmt.Errorf("failed to write moved column: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// MoveCardResult describes a committed card move.
type MoveCardResult struct {
	CardID      string
	BoardID     string
	OldColumnID string
	ColumnID    string
	Position    int
}

// MoveCard moves a card to newPos in newColumnID (empty = stay in its
// current column). A same-column move shifts the siblings between the old
// and new position; a cross-column move closes the gap in the source
// column and opens a slot in the destination, all in one transaction.
// The destination must belong to the card's board.
func (s *Store) MoveCard(ctx context.Context, cardID, newColumnID string, newPos int) (*MoveCardResult, error) {
	if newPos < 0 {
		newPos = 0
	}

	res := &MoveCardResult{CardID: cardID}
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var cur struct {
			ColumnID string `db:"column_id"`
			Position int    `db:"position"`
			BoardID  string `db:"board_id"`
		}
		err := tx.GetContext(ctx, &cur, s.rebind(
			`SELECT c.column_id, c.position, col.board_id
			 FROM cards c JOIN columns col ON col.id = c.column_id
			 WHERE c.id = ?`+s.forUpdate()),
			cardID)
		if err != nil {
			return notFoundOr(err, "card")
		}
		res.BoardID = cur.BoardID
		res.OldColumnID = cur.ColumnID

		if newColumnID == "" || newColumnID == cur.ColumnID {
			return s.moveCardWithinColumn(ctx, tx, res, cur.ColumnID, cur.Position, newPos)
		}
		return s.moveCardAcrossColumns(ctx, tx, res, cur.ColumnID, cur.Position, newColumnID, newPos)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Store) moveCardWithinColumn(ctx context.Context, tx *sqlx.Tx, res *MoveCardResult, columnID string, oldPos, newPos int) error {
	res.ColumnID = columnID

	var count int
	if err := tx.GetContext(ctx, &count, s.rebind(`SELECT COUNT(*) FROM cards WHERE column_id = ?`), columnID); err != nil {
		return fmt.Errorf("failed to count cards: %w", err)
	}

	target := board.ClampIndex(newPos, count)
	res.Position = target
	if target == oldPos {
		return nil
	}

	var err error
	if oldPos < target {
		_, err = tx.ExecContext(ctx, s.rebind(
			`UPDATE cards SET position = position - 1 WHERE column_id = ? AND position > ? AND position <= ?`),
			columnID, oldPos, target)
	} else {
		_, err = tx.ExecContext(ctx, s.rebind(
			`UPDATE cards SET position = position + 1 WHERE column_id = ? AND position >= ? AND position < ?`),
			columnID, target, oldPos)
	}
	if err != nil {
		return fmt.Errorf("failed to shift cards: %w", err)
	}

	if _, err := tx.ExecContext(ctx, s.rebind(`UPDATE cards SET position = ? WHERE id = ?`), target, res.CardID); err != nil {
		return fmt.Errorf("failed to write moved card: %w", err)
	}
	return nil
}

func (s *Store) moveCardAcrossColumns(ctx context.Context, tx *sqlx.Tx, res *MoveCardResult, oldColumnID string, oldPos int, newColumnID string, newPos int) error {
	// destination must exist on the same board
	var destBoardID string
	err := tx.GetContext(ctx, &destBoardID,
		s.rebind(`SELECT board_id FROM columns WHERE id = ?`+s.forUpdate()),
		newColumnID)
	if err != nil {
		return notFoundOr(err, "destination column")
	}
	if destBoardID != res.BoardID {
		return fmt.Errorf("destination column is on a different board: %w", ErrConflict)
	}
	res.ColumnID = newColumnID

	var destCount int
	if err := tx.GetContext(ctx, &destCount, s.rebind(`SELECT COUNT(*) FROM cards WHERE column_id = ?`), newColumnID); err != nil {
		return fmt.Errorf("failed to count destination cards: %w", err)
	}
	target := board.ClampInsertIndex(newPos, destCount)
	res.Position = target

	// close the gap in the source column
	_, err = tx.ExecContext(ctx,
		s.rebind(`UPDATE cards SET position = position - 1 WHERE column_id = ? AND position > ?`),
		oldColumnID, oldPos)
	if err != nil {
		return fmt.Errorf("failed to shift source cards: %w", err)
	}

	// open a slot in the destination column
	_, err = tx.ExecContext(ctx,
		s.rebind(`UPDATE cards SET position = position + 1 WHERE column_id = ? AND position >= ?`),
		newColumnID, target)
	if err != nil {
		return fmt.Errorf("failed to shift destination cards: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		s.rebind(`UPDATE cards SET column_id = ?, position = ? WHERE id = ?`),
		newColumnID, target, res.CardID)
	if err != nil {
		return fmt.Errorf("failed to write moved card: %w", err)
	}
	return nil
}
