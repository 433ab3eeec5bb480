package board

import (
	"encoding/json"
	"fmt"
)

// EventKind identifies the mutation a broadcast event describes.
type EventKind string

const (
	// EventColumnCreated carries the full new Column.
	EventColumnCreated EventKind = "column:created"

	// EventColumnUpdated carries the full updated Column.
	EventColumnUpdated EventKind = "column:updated"

	// EventColumnDeleted carries a ColumnDeleted payload.
	EventColumnDeleted EventKind = "column:deleted"

	// EventColumnMoved carries a ColumnMoved payload. The event's ActorID
	// lets the acting client suppress its own echo.
	EventColumnMoved EventKind = "column:moved"

	// EventCardCreated carries the full new Card.
	EventCardCreated EventKind = "card:created"

	// EventCardUpdated carries the full updated Card.
	EventCardUpdated EventKind = "card:updated"

	// EventCardDeleted carries a CardDeleted payload.
	EventCardDeleted EventKind = "card:deleted"

	// EventCardMoved carries a CardMoved payload. Echo-suppressed via ActorID.
	EventCardMoved EventKind = "card:moved"

	// EventColumnsReordered carries the complete new position assignment for
	// every column on the board (full-replace payload; applying it twice is
	// a no-op).
	EventColumnsReordered EventKind = "columns:reordered"

	// EventCardsReordered carries the complete new position and column
	// assignment for the reordered cards (full-replace payload).
	EventCardsReordered EventKind = "cards:reordered"

	// EventMemberAdded carries the full new Member.
	EventMemberAdded EventKind = "member:added"

	// EventMemberRemoved carries a MemberRemoved payload.
	EventMemberRemoved EventKind = "member:removed"
)

// Validate checks if the EventKind is a valid enum value.
func (k EventKind) Validate() error {
	switch k {
	case EventColumnCreated, EventColumnUpdated, EventColumnDeleted, EventColumnMoved,
		EventCardCreated, EventCardUpdated, EventCardDeleted, EventCardMoved,
		EventColumnsReordered, EventCardsReordered,
		EventMemberAdded, EventMemberRemoved:
		return nil
	default:
		return fmt.Errorf("unknown event kind: %q", k)
	}
}

// Event is one broadcast message on a board's channel.
//
// ActorID is the user who performed the mutation. Per-item move events are
// reconciled with echo suppression (the actor skips its own event); the
// full-replace reorder payloads are idempotent and safe to apply even to
// one's own echo.
type Event struct {
	Kind    EventKind       `json:"kind"`
	BoardID string          `json:"board_id"`
	ActorID string          `json:"actor_id"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ColumnDeleted is the payload of EventColumnDeleted.
type ColumnDeleted struct {
	ColumnID string `json:"column_id"`
}

// ColumnMoved is the payload of EventColumnMoved.
type ColumnMoved struct {
	ColumnID string `json:"column_id"`
	Position int    `json:"position"`
}

// CardDeleted is the payload of EventCardDeleted.
type CardDeleted struct {
	CardID   string `json:"card_id"`
	ColumnID string `json:"column_id"`
}

// CardMoved is the payload of EventCardMoved.
type CardMoved struct {
	CardID      string `json:"card_id"`
	OldColumnID string `json:"old_column_id"`
	ColumnID    string `json:"column_id"`
	Position    int    `json:"position"`
}

// ColumnOrder is one entry of a full-replace column reordering.
type ColumnOrder struct {
	ID       string `json:"id"`
	Position int    `json:"order"`
}

// CardOrder is one entry of a full-replace card reordering. ColumnID names
// the card's (possibly new) owning column.
type CardOrder struct {
	ID       string `json:"id"`
	Position int    `json:"order"`
	ColumnID string `json:"column_id"`
}

// ColumnsReordered is the payload of EventColumnsReordered.
type ColumnsReordered struct {
	Columns []ColumnOrder `json:"columns"`
}

// CardsReordered is the payload of EventCardsReordered.
type CardsReordered struct {
	Cards []CardOrder `json:"cards"`
}

// MemberRemoved is the payload of EventMemberRemoved.
type MemberRemoved struct {
	UserID string `json:"user_id"`
}

// NewEvent builds an Event with the given payload marshaled to JSON.
func NewEvent(kind EventKind, boardID, actorID string, payload any) (Event, error) {
	ev := Event{Kind: kind, BoardID: boardID, ActorID: actorID}
	if err := ev.Kind.Validate(); err != nil {
		return Event{}, err
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Event{}, fmt.Errorf("failed to marshal event payload: %w", err)
		}
		ev.Payload = raw
	}
	return ev, nil
}

// DecodePayload unmarshals an event's payload into T.
func DecodePayload[T any](ev Event) (T, error) {
	var v T
	if err := json.Unmarshal(ev.Payload, &v); err != nil {
		return v, fmt.Errorf("failed to decode %s payload: %w", ev.Kind, err)
	}
	return v, nil
}

// Validate checks if the Event has valid field values.
func (e *Event) Validate() error {
	if err := e.Kind.Validate(); err != nil {
		return err
	}
	if !isValidUUID(e.BoardID) {
		return fmt.Errorf("invalid board ID: not a valid UUID")
	}
	return nil
}
