package replica

import (
	"sort"

	"github.com/corkboard/corkd/pkg/board"
)

// Apply reconciles one broadcast event into the replica.
//
// Apply is idempotent: applying the same event twice yields the same state
// as applying it once. Per-item move events carry the acting user's ID and
// are skipped when it matches the local user (the optimistic state already
// reflects the move); the full-replace reorder payloads are applied
// unconditionally since reapplying the same assignment is a no-op.
//
// Events naming items not known locally are ignored rather than treated as
// errors; only a payload that fails to decode returns one. Apply never
// touches items the payload does not name, so a reconciliation arriving
// mid-drag cannot clobber unrelated in-flight optimistic state.
func (r *Replica) Apply(ev board.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch ev.Kind {
	case board.EventColumnCreated, board.EventColumnUpdated:
		col, err := board.DecodePayload[board.Column](ev)
		if err != nil {
			return err
		}
		r.upsertColumn(col)

	case board.EventColumnDeleted:
		p, err := board.DecodePayload[board.ColumnDeleted](ev)
		if err != nil {
			return err
		}
		r.deleteColumn(p.ColumnID)

	case board.EventColumnMoved:
		p, err := board.DecodePayload[board.ColumnMoved](ev)
		if err != nil {
			return err
		}
		if ev.ActorID == r.userID {
			return nil // echo of our own optimistic move
		}
		if from := r.columnIndex(p.ColumnID); from >= 0 {
			r.columns = board.MoveIndex(r.columns, from, p.Position)
			board.RenumberColumns(r.columns)
		}

	case board.EventCardCreated, board.EventCardUpdated:
		card, err := board.DecodePayload[board.Card](ev)
		if err != nil {
			return err
		}
		r.upsertCard(card)

	case board.EventCardDeleted:
		p, err := board.DecodePayload[board.CardDeleted](ev)
		if err != nil {
			return err
		}
		r.deleteCard(p.CardID)

	case board.EventCardMoved:
		p, err := board.DecodePayload[board.CardMoved](ev)
		if err != nil {
			return err
		}
		if ev.ActorID == r.userID {
			return nil
		}
		r.moveCardLocked(p.CardID, p.ColumnID, p.Position)

	case board.EventColumnsReordered:
		p, err := board.DecodePayload[board.ColumnsReordered](ev)
		if err != nil {
			return err
		}
		assigned := make(map[string]int, len(p.Columns))
		for _, co := range p.Columns {
			assigned[co.ID] = co.Position
		}
		for i := range r.columns {
			if pos, ok := assigned[r.columns[i].ID]; ok {
				r.columns[i].Position = pos
			}
		}
		sort.SliceStable(r.columns, func(i, j int) bool { return r.columns[i].Position < r.columns[j].Position })
		board.RenumberColumns(r.columns)

	case board.EventCardsReordered:
		p, err := board.DecodePayload[board.CardsReordered](ev)
		if err != nil {
			return err
		}
		r.applyCardOrders(p.Cards)

	case board.EventMemberAdded:
		m, err := board.DecodePayload[board.Member](ev)
		if err != nil {
			return err
		}
		for _, existing := range r.members {
			if existing.UserID == m.UserID {
				return nil
			}
		}
		r.members = append(r.members, m)

	case board.EventMemberRemoved:
		p, err := board.DecodePayload[board.MemberRemoved](ev)
		if err != nil {
			return err
		}
		kept := r.members[:0]
		for _, m := range r.members {
			if m.UserID != p.UserID {
				kept = append(kept, m)
			}
		}
		r.members = kept
	}

	return nil
}

// applyCardOrders overwrites card positions (and owning columns) wholesale
// from a full-replace payload, then re-sorts the affected columns.
func (r *Replica) applyCardOrders(orders []board.CardOrder) {
	touched := make(map[string]bool)
	for _, o := range orders {
		oldColumnID, idx := r.findCard(o.ID)
		if idx < 0 {
			continue // unknown card, ignore
		}
		card := r.cards[oldColumnID][idx]
		card.Position = o.Position
		if o.ColumnID != "" && o.ColumnID != oldColumnID {
			r.cards[oldColumnID] = board.RemoveAt(r.cards[oldColumnID], idx)
			card.ColumnID = o.ColumnID
			r.cards[o.ColumnID] = append(r.cards[o.ColumnID], card)
			touched[o.ColumnID] = true
		} else {
			r.cards[oldColumnID][idx] = card
		}
		touched[oldColumnID] = true
	}

	for columnID := range touched {
		list := r.cards[columnID]
		sort.SliceStable(list, func(i, j int) bool { return list[i].Position < list[j].Position })
		board.RenumberCards(list)
		r.cards[columnID] = list
	}
}

func (r *Replica) upsertColumn(col board.Column) {
	if i := r.columnIndex(col.ID); i >= 0 {
		// keep the local display slot, update the fields
		col.Position = i
		r.columns[i] = col
		return
	}
	col.Position = len(r.columns)
	r.columns = append(r.columns, col)
	if _, ok := r.cards[col.ID]; !ok {
		r.cards[col.ID] = nil
	}
}

func (r *Replica) deleteColumn(columnID string) {
	if i := r.columnIndex(columnID); i >= 0 {
		r.columns = board.RemoveAt(r.columns, i)
		board.RenumberColumns(r.columns)
	}
	delete(r.cards, columnID)
}

func (r *Replica) upsertCard(card board.Card) {
	oldColumnID, idx := r.findCard(card.ID)

	if r.columnIndex(card.ColumnID) < 0 {
		// named column unknown locally: update the card in place if we
		// have it, never drop it
		if idx >= 0 {
			card.ColumnID = oldColumnID
			card.Position = idx
			r.cards[oldColumnID][idx] = card
		}
		return
	}

	if idx >= 0 {
		if oldColumnID == card.ColumnID {
			card.Position = idx
			r.cards[oldColumnID][idx] = card
			return
		}
		// owning column changed via an update event: treat as a move
		r.cards[oldColumnID] = board.RemoveAt(r.cards[oldColumnID], idx)
		board.RenumberCards(r.cards[oldColumnID])
	}
	list := r.cards[card.ColumnID]
	pos := board.ClampInsertIndex(card.Position, len(list))
	list = board.InsertAt(list, pos, card)
	board.RenumberCards(list)
	r.cards[card.ColumnID] = list
}

func (r *Replica) deleteCard(cardID string) {
	columnID, idx := r.findCard(cardID)
	if idx < 0 {
		return
	}
	list := board.RemoveAt(r.cards[columnID], idx)
	board.RenumberCards(list)
	r.cards[columnID] = list
}
