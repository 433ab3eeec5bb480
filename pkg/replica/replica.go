// Package replica maintains a client-side in-memory copy of one board.
//
// A Replica is mutated two ways: optimistic local operations applied
// synchronously on drag-end (before the server confirms), and Apply, which
// reconciles broadcast events from the board's feed. Both use the dense
// position model from pkg/board, so an optimistic move and the
// server-confirmed result agree exactly in the common case.
//
// If a fired network request ultimately fails the replica is left as-is;
// the caller resynchronizes with Reset from a full board fetch.
package replica

import (
	"sort"
	"sync"

	"github.com/corkboard/corkd/pkg/board"
)

// Replica is an in-memory copy of one board: its ordered columns, the
// ordered cards of each column, and the member list. Safe for concurrent
// use (the feed subscription delivers events from its own goroutine).
type Replica struct {
	mu      sync.Mutex
	userID  string
	board   board.Board
	columns []board.Column
	cards   map[string][]board.Card // column ID -> cards ordered by position
	members []board.Member
}

// New creates an empty replica for the given local user. The user ID is
// used for echo suppression when reconciling per-item move events.
func New(userID string) *Replica {
	return &Replica{
		userID: userID,
		cards:  make(map[string][]board.Card),
	}
}

// Reset replaces the replica's entire state from a full board fetch.
// Columns and cards are ordered by their position fields and renumbered
// densely.
func (r *Replica) Reset(b board.Board, columns []board.Column, cards []board.Card, members []board.Member) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.board = b

	r.columns = make([]board.Column, len(columns))
	copy(r.columns, columns)
	sort.SliceStable(r.columns, func(i, j int) bool { return r.columns[i].Position < r.columns[j].Position })
	board.RenumberColumns(r.columns)

	r.cards = make(map[string][]board.Card)
	for _, c := range cards {
		r.cards[c.ColumnID] = append(r.cards[c.ColumnID], c)
	}
	for id := range r.cards {
		list := r.cards[id]
		sort.SliceStable(list, func(i, j int) bool { return list[i].Position < list[j].Position })
		board.RenumberCards(list)
		r.cards[id] = list
	}

	r.members = make([]board.Member, len(members))
	copy(r.members, members)
}

// Board returns the board header.
func (r *Replica) Board() board.Board {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.board
}

// Columns returns the columns in display order.
func (r *Replica) Columns() []board.Column {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]board.Column, len(r.columns))
	copy(out, r.columns)
	return out
}

// Cards returns the cards of one column in display order.
func (r *Replica) Cards(columnID string) []board.Card {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.cards[columnID]
	out := make([]board.Card, len(list))
	copy(out, list)
	return out
}

// Members returns the board's member list.
func (r *Replica) Members() []board.Member {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]board.Member, len(r.members))
	copy(out, r.members)
	return out
}

// MoveColumn applies the optimistic local result of dragging a column to
// newPos. Returns the clamped position the caller should send to the
// server, and false if the column is not known locally.
func (r *Replica) MoveColumn(columnID string, newPos int) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	from := r.columnIndex(columnID)
	if from < 0 {
		return 0, false
	}
	newPos = board.ClampIndex(newPos, len(r.columns))
	r.columns = board.MoveIndex(r.columns, from, newPos)
	board.RenumberColumns(r.columns)
	return newPos, true
}

// MoveCard applies the optimistic local result of dragging a card into
// newColumnID at newPos. Same-column moves use array-move semantics;
// cross-column moves close the gap in the source column and open a slot
// in the destination. Returns the clamped position the caller should send
// to the server, and false if the card or destination column is unknown.
func (r *Replica) MoveCard(cardID, newColumnID string, newPos int) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.moveCardLocked(cardID, newColumnID, newPos)
}

func (r *Replica) moveCardLocked(cardID, newColumnID string, newPos int) (int, bool) {
	oldColumnID, idx := r.findCard(cardID)
	if idx < 0 {
		return 0, false
	}
	if r.columnIndex(newColumnID) < 0 {
		return 0, false
	}

	if oldColumnID == newColumnID {
		list := r.cards[oldColumnID]
		newPos = board.ClampIndex(newPos, len(list))
		list = board.MoveIndex(list, idx, newPos)
		board.RenumberCards(list)
		r.cards[oldColumnID] = list
		return newPos, true
	}

	moved := r.cards[oldColumnID][idx]
	src := board.RemoveAt(r.cards[oldColumnID], idx)
	board.RenumberCards(src)
	r.cards[oldColumnID] = src

	moved.ColumnID = newColumnID
	dst := r.cards[newColumnID]
	newPos = board.ClampInsertIndex(newPos, len(dst))
	dst = board.InsertAt(dst, newPos, moved)
	board.RenumberCards(dst)
	r.cards[newColumnID] = dst
	return newPos, true
}

// columnIndex returns the display index of a column, or -1.
func (r *Replica) columnIndex(columnID string) int {
	for i, c := range r.columns {
		if c.ID == columnID {
			return i
		}
	}
	return -1
}

// findCard returns the owning column ID and index of a card, or ("", -1).
func (r *Replica) findCard(cardID string) (string, int) {
	for columnID, list := range r.cards {
		for i, c := range list {
			if c.ID == cardID {
				return columnID, i
			}
		}
	}
	return "", -1
}
