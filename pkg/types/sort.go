package types

// Order is a sort direction.
type Order string

// Sort directions.
const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// Flip returns the opposite direction.
func (o Order) Flip() Order {
	if o == OrderAsc {
		return OrderDesc
	}
	return OrderAsc
}

// SortState is the active sort of a listing. Field is a field slug or
// RecordIDKey; Class is the type hint that selects the comparison.
type SortState struct {
	Field string
	Order Order
	Class Class
}

// Active reports whether a sort field has been chosen.
func (s SortState) Active() bool {
	return s.Field != ""
}
