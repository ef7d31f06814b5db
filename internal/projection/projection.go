// Package projection turns the schema and a page of records into table
// columns and rendered cells, and persists column visibility.
package projection

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/clientdesk/internal/codec"
	"github.com/mesh-intelligence/clientdesk/internal/schema"
	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

// idLabels holds the header of the synthetic id column per locale.
var idLabels = map[string]string{
	types.LocaleEnglish: "ID",
	types.LocaleHebrew:  "מזהה",
}

// Column is one table column.
type Column struct {
	Slug  string
	Label string
	Field types.FieldDescriptor
}

// Class returns the semantic class used for sorting the column.
func (c Column) Class() types.Class {
	cl, _ := c.Field.DataType.Class()
	return cl
}

// Columns returns the visible columns: the synthetic id column, then every
// field with Display set, in schema order.
func Columns(reg *schema.Registry) []Column {
	label, ok := idLabels[reg.Locale()]
	if !ok {
		label = idLabels[types.LocaleEnglish]
	}
	cols := []Column{{
		Slug:  types.RecordIDKey,
		Label: label,
		Field: types.FieldDescriptor{Slug: types.RecordIDKey, DisplayName: label, DataType: types.DataTypeNumber},
	}}
	for _, f := range reg.Displayed() {
		cols = append(cols, Column{Slug: f.Slug, Label: f.Label(reg.Locale()), Field: f})
	}
	return cols
}

// DisplaySaver persists a field's column visibility.
type DisplaySaver interface {
	SaveFieldDisplay(ctx context.Context, fieldID string, display bool) error
}

// Toggle flips the visibility of slug. The registry only changes after the
// saver succeeds. It returns the new flag.
func Toggle(ctx context.Context, reg *schema.Registry, slug string, saver DisplaySaver) (bool, error) {
	f, ok := reg.Field(slug)
	if !ok {
		return false, fmt.Errorf("%w: %q", types.ErrUnknownField, slug)
	}
	if err := SetVisible(ctx, reg, slug, !f.Display, saver); err != nil {
		return f.Display, err
	}
	return !f.Display, nil
}

// SetVisible sets the visibility of slug, saving first. Setting the current
// value is a no-op.
func SetVisible(ctx context.Context, reg *schema.Registry, slug string, display bool, saver DisplaySaver) error {
	f, ok := reg.Field(slug)
	if !ok {
		return fmt.Errorf("%w: %q", types.ErrUnknownField, slug)
	}
	if f.Display == display {
		return nil
	}
	if err := saver.SaveFieldDisplay(ctx, f.ID, display); err != nil {
		return fmt.Errorf("saving display of %q: %w", slug, err)
	}
	return reg.SetDisplay(slug, display)
}

// Table is a rendered page: headers plus one row of cell text per record.
type Table struct {
	Columns []Column
	Rows    [][]string
}

// Headers returns the column labels.
func (t Table) Headers() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Label
	}
	return out
}

// Render formats rows through the codec.
func Render(rows []types.EditableRecord, cols []Column) (Table, error) {
	t := Table{Columns: cols, Rows: make([][]string, 0, len(rows))}
	for _, r := range rows {
		cells := make([]string, len(cols))
		for i, c := range cols {
			if c.Slug == types.RecordIDKey {
				cells[i] = r.ID
				continue
			}
			d, err := codec.ToDisplay(c.Field, r.Value(c.Slug))
			if err != nil {
				return Table{}, fmt.Errorf("rendering %q of record %s: %w", c.Slug, r.ID, err)
			}
			cells[i] = d.String()
		}
		t.Rows = append(t.Rows, cells)
	}
	return t, nil
}
