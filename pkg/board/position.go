package board

// Dense position model.
//
// Sibling order (columns within a board, cards within a column) is stored
// as a zero-based dense integer position: after any committed operation the
// positions of n siblings are exactly {0..n-1}. These helpers implement the
// single shift algorithm shared by the server-side move coordinator and the
// client-side optimistic replica, so both compute identical orderings.

// AppendPosition returns the position a newly created sibling receives when
// appended to a container that currently holds n items.
func AppendPosition(n int) int {
	return n
}

// ClampIndex clamps a target index into [0, n-1] for a container of n
// items. A target beyond the end means "append"; negative means "front".
// For n == 0 it returns 0.
func ClampIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// ClampInsertIndex clamps a target index into [0, n] for inserting into a
// container that currently holds n items (n itself means append).
func ClampInsertIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

// MoveIndex returns a new slice with the element at index from moved to
// index to, using classic array-move semantics: elements strictly between
// the two indexes shift by one toward the vacated slot. from==to (after
// clamping) returns a copy unchanged. Out-of-range from returns a copy
// unchanged; to is clamped into range.
func MoveIndex[T any](list []T, from, to int) []T {
	out := make([]T, len(list))
	copy(out, list)
	n := len(out)
	if from < 0 || from >= n {
		return out
	}
	to = ClampIndex(to, n)
	if from == to {
		return out
	}
	moved := out[from]
	if from < to {
		copy(out[from:to], out[from+1:to+1])
	} else {
		copy(out[to+1:from+1], out[to:from])
	}
	out[to] = moved
	return out
}

// RemoveAt returns a new slice with the element at index i removed.
// Out-of-range i returns a copy unchanged.
func RemoveAt[T any](list []T, i int) []T {
	if i < 0 || i >= len(list) {
		out := make([]T, len(list))
		copy(out, list)
		return out
	}
	out := make([]T, 0, len(list)-1)
	out = append(out, list[:i]...)
	out = append(out, list[i+1:]...)
	return out
}

// InsertAt returns a new slice with v inserted at index i (clamped to
// [0, len], so an oversized index appends).
func InsertAt[T any](list []T, i int, v T) []T {
	i = ClampInsertIndex(i, len(list))
	out := make([]T, 0, len(list)+1)
	out = append(out, list[:i]...)
	out = append(out, v)
	out = append(out, list[i:]...)
	return out
}

// RenumberColumns rewrites each column's Position to its index.
func RenumberColumns(cols []Column) {
	for i := range cols {
		cols[i].Position = i
	}
}

// RenumberCards rewrites each card's Position to its index.
func RenumberCards(cards []Card) {
	for i := range cards {
		cards[i].Position = i
	}
}
