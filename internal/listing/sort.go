// Package listing orders, pages and searches the entity listing, and
// coordinates debounced fetches so stale responses never replace newer ones.
package listing

import (
	"sort"
	"strings"
	"time"

	"github.com/mesh-intelligence/clientdesk/internal/codec"
	"github.com/mesh-intelligence/clientdesk/internal/schema"
	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

// Toggle returns the sort state after the user picks field. Picking the
// active field flips the order; any other field starts ascending.
func Toggle(cur types.SortState, field string, class types.Class) types.SortState {
	if cur.Field == field && cur.Order != "" {
		return types.SortState{Field: field, Order: cur.Order.Flip(), Class: class}
	}
	return types.SortState{Field: field, Order: types.OrderAsc, Class: class}
}

// Sort orders rows in place by state. The sort is stable, so sorting
// already-ordered rows again is a no-op.
func Sort(rows []types.EditableRecord, state types.SortState, reg *schema.Registry) {
	if !state.Active() {
		return
	}
	keys := make([]sortKey, len(rows))
	for i, r := range rows {
		keys[i] = keyFor(r, state, reg)
	}
	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := keys[idx[a]], keys[idx[b]]
		if state.Order == types.OrderDesc {
			return kb.less(ka, state.Class)
		}
		return ka.less(kb, state.Class)
	})
	sorted := make([]types.EditableRecord, len(rows))
	for i, j := range idx {
		sorted[i] = rows[j]
	}
	copy(rows, sorted)
}

// SortBy toggles the sort for field and returns a sorted copy of rows.
func SortBy(cur types.SortState, field string, rows []types.EditableRecord, reg *schema.Registry) (types.SortState, []types.EditableRecord) {
	next := Toggle(cur, field, reg.Class(field))
	out := append([]types.EditableRecord(nil), rows...)
	Sort(out, next, reg)
	return next, out
}

type sortKey struct {
	num  float64
	when time.Time
	text string
}

func (a sortKey) less(b sortKey, class types.Class) bool {
	switch class {
	case types.ClassNumeric:
		return a.num < b.num
	case types.ClassDate:
		return a.when.Before(b.when)
	default:
		return a.text < b.text
	}
}

func keyFor(r types.EditableRecord, state types.SortState, reg *schema.Registry) sortKey {
	raw := r.Value(state.Field)
	switch state.Class {
	case types.ClassNumeric:
		// Unparsable values sort as zero.
		if n, err := codec.Number(raw); err == nil && n != nil {
			return sortKey{num: *n}
		}
		return sortKey{}
	case types.ClassDate:
		t, _ := codec.ParseDate(raw)
		return sortKey{when: t}
	}
	f, ok := reg.Field(state.Field)
	if !ok {
		return sortKey{text: strings.ToLower(displayText(raw))}
	}
	d, err := codec.ToDisplay(f, raw)
	if err != nil {
		return sortKey{text: strings.ToLower(displayText(raw))}
	}
	return sortKey{text: strings.ToLower(d.String())}
}

func displayText(raw any) string {
	d, _ := codec.ToDisplay(types.FieldDescriptor{DataType: types.DataTypeText}, raw)
	return d.Text
}
