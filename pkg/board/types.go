package board

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role is a member's access level on a board.
type Role string

const (
	// RoleOwner is the board creator. Exactly one per board, assigned
	// atomically at creation. The owner cannot be removed.
	RoleOwner Role = "owner"

	// RoleAdmin may manage columns, cards and ordering.
	RoleAdmin Role = "admin"

	// RoleMember may view the board and edit columns and cards.
	RoleMember Role = "member"
)

// Validate checks if the Role is a valid enum value.
func (r Role) Validate() error {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return nil
	default:
		return fmt.Errorf("unknown role: %q", r)
	}
}

// Board is the top-level workspace containing columns and cards.
type Board struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	OwnerID     string    `json:"owner_id" db:"owner_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Member is one user's membership on a board.
type Member struct {
	BoardID  string `json:"board_id" db:"board_id"`
	UserID   string `json:"user_id" db:"user_id"`
	Username string `json:"username" db:"username"`
	Role     Role   `json:"role" db:"role"`
}

// Column is an ordered container of cards within a board.
//
// Position is a dense zero-based index: for a board with n columns the
// committed positions are exactly {0..n-1}. The store renumbers siblings
// on every insert, delete and move to preserve this.
type Column struct {
	ID       string `json:"id" db:"id"`
	BoardID  string `json:"board_id" db:"board_id"`
	Title    string `json:"title" db:"title"`
	Position int    `json:"position" db:"position"`
}

// Label is a small colored tag on a card. Labels are stored as an opaque
// JSON blob on the card row, ordered as given.
type Label struct {
	Color string `json:"color"`
	Text  string `json:"text"`
}

// Card is a single unit of work within a column.
//
// ColumnID is mutable (cards move between columns); CreatorID is not.
// Position follows the same dense zero-based invariant as Column,
// scoped to the owning column.
type Card struct {
	ID          string     `json:"id" db:"id"`
	ColumnID    string     `json:"column_id" db:"column_id"`
	Title       string     `json:"title" db:"title"`
	Description *string    `json:"description,omitempty" db:"description"`
	DueDate     *time.Time `json:"due_date,omitempty" db:"due_date"`
	Labels      []Label    `json:"labels"`
	AssigneeID  *string    `json:"assignee_id,omitempty" db:"assignee_id"`
	CreatorID   string     `json:"creator_id" db:"creator_id"`
	Position    int        `json:"position" db:"position"`
}

// Validate checks if the Column has valid field values.
func (c *Column) Validate() error {
	if !isValidUUID(c.ID) {
		return fmt.Errorf("invalid column ID: not a valid UUID")
	}
	if !isValidUUID(c.BoardID) {
		return fmt.Errorf("invalid board ID: not a valid UUID")
	}
	if c.Title == "" {
		return fmt.Errorf("column title cannot be empty")
	}
	if c.Position < 0 {
		return fmt.Errorf("invalid position: must be >= 0, got %d", c.Position)
	}
	return nil
}

// Validate checks if the Card has valid field values.
func (c *Card) Validate() error {
	if !isValidUUID(c.ID) {
		return fmt.Errorf("invalid card ID: not a valid UUID")
	}
	if !isValidUUID(c.ColumnID) {
		return fmt.Errorf("invalid column ID: not a valid UUID")
	}
	if c.Title == "" {
		return fmt.Errorf("card title cannot be empty")
	}
	if c.Position < 0 {
		return fmt.Errorf("invalid position: must be >= 0, got %d", c.Position)
	}
	return nil
}

// isValidUUID checks if a string is a valid UUID format.
func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
