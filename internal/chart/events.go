package chart

// SelectEvent is emitted when a row click changes the selection. Index is
// the row's position in the unsorted input, or -1.
type SelectEvent struct {
	Index int
}

// SortEvent is emitted when a header click changes the sort state.
// Column is -1 when sorting was switched off.
type SortEvent struct {
	Column int
	Order  Order
}
