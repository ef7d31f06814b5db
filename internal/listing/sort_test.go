package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/clientdesk/internal/schema"
	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

func testRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	reg, err := schema.FromFields("en", []types.FieldDescriptor{
		{Slug: "name", DisplayName: "Name", DataType: types.DataTypeText},
		{Slug: "age", DisplayName: "Age", DataType: types.DataTypeNumber},
		{Slug: "joined", DisplayName: "Joined", DataType: types.DataTypeDate},
		{Slug: "status", DisplayName: "Status", DataType: types.DataTypeSelect, EnumChoices: []types.EnumChoice{
			{ID: "1", Label: "Open", Value: "open"},
			{ID: "2", Label: "Closed", Value: "closed"},
		}},
	})
	require.NoError(t, err)
	return reg
}

func ids(rows []types.EditableRecord) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func sampleRows() []types.EditableRecord {
	return []types.EditableRecord{
		types.NewRecord("1", map[string]any{"name": "bob", "age": "10", "joined": "2024-03-01", "status": "2"}),
		types.NewRecord("2", map[string]any{"name": "Alice", "age": 9.0, "joined": "2023-12-31", "status": "1"}),
		types.NewRecord("3", map[string]any{"name": "carol", "age": "n/a", "joined": "2024-01-15", "status": "1"}),
	}
}

func TestToggle(t *testing.T) {
	s := Toggle(types.SortState{}, "name", types.ClassText)
	assert.Equal(t, types.SortState{Field: "name", Order: types.OrderAsc, Class: types.ClassText}, s)

	s = Toggle(s, "name", types.ClassText)
	assert.Equal(t, types.OrderDesc, s.Order)

	s = Toggle(s, "name", types.ClassText)
	assert.Equal(t, types.OrderAsc, s.Order)

	s = Toggle(Toggle(s, "name", types.ClassText), "age", types.ClassNumeric)
	assert.Equal(t, types.SortState{Field: "age", Order: types.OrderAsc, Class: types.ClassNumeric}, s)
}

func TestSort(t *testing.T) {
	reg := testRegistry(t)
	tests := []struct {
		name  string
		state types.SortState
		want  []string
	}{
		{"text ignores case", types.SortState{Field: "name", Order: types.OrderAsc, Class: types.ClassText}, []string{"2", "1", "3"}},
		{"text descending", types.SortState{Field: "name", Order: types.OrderDesc, Class: types.ClassText}, []string{"3", "1", "2"}},
		{"numeric with unparsable as zero", types.SortState{Field: "age", Order: types.OrderAsc, Class: types.ClassNumeric}, []string{"3", "2", "1"}},
		{"date by instant", types.SortState{Field: "joined", Order: types.OrderAsc, Class: types.ClassDate}, []string{"2", "3", "1"}},
		{"select by label", types.SortState{Field: "status", Order: types.OrderAsc, Class: types.ClassSelect}, []string{"1", "2", "3"}},
		{"id numerically", types.SortState{Field: types.RecordIDKey, Order: types.OrderDesc, Class: types.ClassNumeric}, []string{"3", "2", "1"}},
		{"inactive leaves order", types.SortState{}, []string{"1", "2", "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := sampleRows()
			Sort(rows, tt.state, reg)
			assert.Equal(t, tt.want, ids(rows))
		})
	}
}

func TestSort_Idempotent(t *testing.T) {
	reg := testRegistry(t)
	state := types.SortState{Field: "status", Order: types.OrderDesc, Class: types.ClassSelect}
	rows := sampleRows()
	Sort(rows, state, reg)
	once := ids(rows)
	Sort(rows, state, reg)
	assert.Equal(t, once, ids(rows))
}

func TestSort_StableForTies(t *testing.T) {
	reg := testRegistry(t)
	rows := []types.EditableRecord{
		types.NewRecord("a", map[string]any{"name": "Same"}),
		types.NewRecord("b", map[string]any{"name": "same"}),
		types.NewRecord("c", map[string]any{"name": "SAME"}),
	}
	Sort(rows, types.SortState{Field: "name", Order: types.OrderDesc, Class: types.ClassText}, reg)
	assert.Equal(t, []string{"a", "b", "c"}, ids(rows))
}

func TestSortBy(t *testing.T) {
	reg := testRegistry(t)
	rows := sampleRows()

	state, sorted := SortBy(types.SortState{}, "age", rows, reg)
	assert.Equal(t, types.SortState{Field: "age", Order: types.OrderAsc, Class: types.ClassNumeric}, state)
	assert.Equal(t, []string{"3", "2", "1"}, ids(sorted))
	assert.Equal(t, []string{"1", "2", "3"}, ids(rows), "input is not modified")

	state, sorted = SortBy(state, "age", rows, reg)
	assert.Equal(t, types.OrderDesc, state.Order)
	assert.Equal(t, []string{"1", "2", "3"}, ids(sorted))
}
