package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/corkboard/corkd/pkg/board"
)

// cardRow is the raw card record; labels live in a JSON text column.
type cardRow struct {
	ID          string     `db:"id"`
	ColumnID    string     `db:"column_id"`
	Title       string     `db:"title"`
	Description *string    `db:"description"`
	DueDate     *time.Time `db:"due_date"`
	Labels      string     `db:"labels"`
	AssigneeID  *string    `db:"assignee_id"`
	CreatorID   string     `db:"creator_id"`
	Position    int        `db:"position"`
}

func (r cardRow) toCard() (board.Card, error) {
	c := board.Card{
		ID:          r.ID,
		ColumnID:    r.ColumnID,
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate,
		AssigneeID:  r.AssigneeID,
		CreatorID:   r.CreatorID,
		Position:    r.Position,
	}
	if r.Labels == "" {
		c.Labels = []board.Label{}
		return c, nil
	}
	if err := json.Unmarshal([]byte(r.Labels), &c.Labels); err != nil {
		return board.Card{}, fmt.Errorf("failed to decode labels of card %s: %w", r.ID, err)
	}
	return c, nil
}

func marshalLabels(labels []board.Label) (string, error) {
	if labels == nil {
		labels = []board.Label{}
	}
	raw, err := json.Marshal(labels)
	if err != nil {
		return "", fmt.Errorf("failed to encode labels: %w", err)
	}
	return string(raw), nil
}

// GetCard returns one card.
func (s *Store) GetCard(ctx context.Context, cardID string) (*board.Card, error) {
	var r cardRow
	err := s.db.GetContext(ctx, &r, s.rebind(
		`SELECT id, column_id, title, description, due_date, labels, assignee_id, creator_id, position
		 FROM cards WHERE id = ?`),
		cardID)
	if err != nil {
		return nil, notFoundOr(err, "card")
	}
	c, err := r.toCard()
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCard appends a card to a column: position = current card count of
// that column.
func (s *Store) CreateCard(ctx context.Context, columnID, title, creatorID string) (*board.Card, error) {
	c := &board.Card{
		ID:        uuid.New().String(),
		ColumnID:  columnID,
		Title:     title,
		CreatorID: creatorID,
		Labels:    []board.Label{},
	}

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		// the column must exist; this also anchors the count
		var boardID string
		err := tx.GetContext(ctx, &boardID,
			s.rebind(`SELECT board_id FROM columns WHERE id = ?`+s.forUpdate()),
			columnID)
		if err != nil {
			return notFoundOr(err, "column")
		}

		err = tx.GetContext(ctx, &c.Position,
			s.rebind(`SELECT COUNT(*) FROM cards WHERE column_id = ?`),
			columnID)
		if err != nil {
			return fmt.Errorf("failed to count cards: %w", err)
		}

		_, err = tx.ExecContext(ctx, s.rebind(
			`INSERT INTO cards (id, column_id, title, labels, creator_id, position) VALUES (?, ?, ?, '[]', ?, ?)`),
			c.ID, c.ColumnID, c.Title, c.CreatorID, c.Position)
		if err != nil {
			return fmt.Errorf("failed to insert card: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CardUpdate holds the optional fields of an UpdateCard call. A nil field
// is left unchanged.
type CardUpdate struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	AssigneeID  *string
	Labels      []board.Label // nil = unchanged
}

// UpdateCard applies a partial update to a card's content fields. Ordering
// fields (column, position) are owned by the move and reorder operations
// and cannot be changed here.
func (s *Store) UpdateCard(ctx context.Context, cardID string, upd CardUpdate) (*board.Card, error) {
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var r cardRow
		err := tx.GetContext(ctx, &r, s.rebind(
			`SELECT id, column_id, title, description, due_date, labels, assignee_id, creator_id, position
			 FROM cards WHERE id = ?`+s.forUpdate()),
			cardID)
		if err != nil {
			return notFoundOr(err, "card")
		}

		if upd.Title != nil {
			r.Title = *upd.Title
		}
		if upd.Description != nil {
			r.Description = upd.Description
		}
		if upd.DueDate != nil {
			r.DueDate = upd.DueDate
		}
		if upd.AssigneeID != nil {
			r.AssigneeID = upd.AssigneeID
		}
		if upd.Labels != nil {
			encoded, err := marshalLabels(upd.Labels)
			if err != nil {
				return err
			}
			r.Labels = encoded
		}

		_, err = tx.ExecContext(ctx, s.rebind(
			`UPDATE cards SET title = ?, description = ?, due_date = ?, labels = ?, assignee_id = ? WHERE id = ?`),
			r.Title, r.Description, r.DueDate, r.Labels, r.AssigneeID, cardID)
		if err != nil {
			return fmt.Errorf("failed to update card: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetCard(ctx, cardID)
}

// DeleteCard removes a card and renumbers the surviving cards of its
// column down so positions stay dense. Returns the deleted card for event
// publication.
func (s *Store) DeleteCard(ctx context.Context, cardID string) (*board.Card, error) {
	var deleted board.Card
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var r cardRow
		err := tx.GetContext(ctx, &r, s.rebind(
			`SELECT id, column_id, title, description, due_date, labels, assignee_id, creator_id, position
			 FROM cards WHERE id = ?`+s.forUpdate()),
			cardID)
		if err != nil {
			return notFoundOr(err, "card")
		}

		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM cards WHERE id = ?`), cardID); err != nil {
			return fmt.Errorf("failed to delete card: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			s.rebind(`UPDATE cards SET position = position - 1 WHERE column_id = ? AND position > ?`),
			r.ColumnID, r.Position)
		if err != nil {
			return fmt.Errorf("failed to renumber cards: %w", err)
		}

		deleted, err = r.toCard()
		return err
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

// BoardIDForColumn resolves the owning board of a column.
func (s *Store) BoardIDForColumn(ctx context.Context, columnID string) (string, error) {
	var boardID string
	err := s.db.GetContext(ctx, &boardID,
		s.rebind(`SELECT board_id FROM columns WHERE id = ?`), columnID)
	if err != nil {
		return "", notFoundOr(err, "column")
	}
	return boardID, nil
}

// BoardIDForCard resolves the owning board of a card.
func (s *Store) BoardIDForCard(ctx context.Context, cardID string) (string, error) {
	var boardID string
	err := s.db.GetContext(ctx, &boardID, s.rebind(
		`SELECT col.board_id FROM cards c JOIN columns col ON col.id = c.column_id WHERE c.id = ?`),
		cardID)
	if err != nil {
		return "", notFoundOr(err, "card")
	}
	return boardID, nil
}
