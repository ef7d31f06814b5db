package codec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

func field(dt types.DataType) types.FieldDescriptor {
	return types.FieldDescriptor{Slug: "f", DataType: dt}
}

var statusField = types.FieldDescriptor{
	Slug:     "status",
	DataType: types.DataTypeSelect,
	EnumChoices: []types.EnumChoice{
		{ID: "1", Label: "Open", Value: "open"},
		{ID: "2", Label: "Closed", Value: "closed"},
	},
}

func TestToDisplay_Checkbox(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want bool
	}{
		{"bool true", true, true},
		{"string true", "true", true},
		{"bool false", false, false},
		{"string false", "false", false},
		{"zero", 0.0, false},
		{"int one", 1, false},
		{"nil", nil, false},
		{"string zero", "0", false},
		{"string TRUE", "TRUE", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ToDisplay(field(types.DataTypeCheckbox), tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Checked)
			assert.False(t, d.Blank(), "checkboxes are never blank")
		})
	}
}

func TestToDisplay(t *testing.T) {
	tests := []struct {
		name     string
		field    types.FieldDescriptor
		raw      any
		wantText string
		wantHref string
	}{
		{"text passthrough", field(types.DataTypeText), "Joe", "Joe", ""},
		{"text nil is blank", field(types.DataTypeText), nil, "", ""},
		{"text empty is blank", field(types.DataTypeText), "", "", ""},
		{"number from string", field(types.DataTypeNumber), "5", "5", ""},
		{"number from float", field(types.DataTypeCurrency), 12.5, "12.5", ""},
		{"number trims zeros", field(types.DataTypeNumber), "7.50", "7.5", ""},
		{"number unparsable is blank", field(types.DataTypeNumber), "abc", "", ""},
		{"email link", field(types.DataTypeEmail), "a@b.io", "a@b.io", "mailto:a@b.io"},
		{"url link", field(types.DataTypeURL), "https://x.io", "https://x.io", "https://x.io"},
		{"phone link is inert", field(types.DataTypePhone), "+972500000", "+972500000", "#"},
		{"empty link has no href", field(types.DataTypeEmail), "", "", ""},
		{"date backend layout", field(types.DataTypeDate), "2026-03-04T00:00:00.000Z", "04/03/2026", ""},
		{"date plain", field(types.DataTypeDatetime), "2026-12-31", "31/12/2026", ""},
		{"date invalid is blank", field(types.DataTypeDate), "not a date", "", ""},
		{"date nil is blank", field(types.DataTypeDate), nil, "", ""},
		{"select by id", statusField, "2", "Closed", ""},
		{"select by value", statusField, "open", "Open", ""},
		{"select by numeric id", statusField, 1.0, "Open", ""},
		{"select object", statusField, map[string]any{"id": 2.0, "value": "closed"}, "Closed", ""},
		{"select object value only", statusField, map[string]any{"value": "open"}, "Open", ""},
		{"select no match is blank", statusField, "9", "", ""},
		{"file strips upload prefix", field(types.DataTypeFile), "media/upload/contract.pdf", "contract.pdf", ""},
		{"file without prefix", field(types.DataTypeFile), "contract.pdf", "contract.pdf", ""},
		{"file object name", field(types.DataTypeFile), map[string]any{"name": "a.png"}, "a.png", ""},
		{"file object file_name", field(types.DataTypeFile), map[string]any{"file_name": "x/upload/b.png"}, "b.png", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ToDisplay(tt.field, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, d.Text)
			assert.Equal(t, tt.wantHref, d.Href)
			assert.Equal(t, tt.wantText == "", d.Blank())
		})
	}
}

func TestUnsupportedFieldType(t *testing.T) {
	f := field("binary")

	_, err := ToDisplay(f, "x")
	assert.ErrorIs(t, err, types.ErrUnsupportedFieldType)

	_, err = ToSubmission(f, "x")
	assert.ErrorIs(t, err, types.ErrUnsupportedFieldType)
}

func TestToSubmission(t *testing.T) {
	tests := []struct {
		name    string
		field   types.FieldDescriptor
		raw     any
		want    any
		wantErr error
	}{
		{"text", field(types.DataTypeText), "Joe", "Joe", nil},
		{"text nil", field(types.DataTypeText), nil, nil, nil},
		{"number string", field(types.DataTypeNumber), " 42 ", 42.0, nil},
		{"number empty", field(types.DataTypeNumber), "", nil, nil},
		{"number invalid", field(types.DataTypeNumber), "4x", nil, types.ErrInvalidNumber},
		{"checkbox string", field(types.DataTypeCheckbox), "true", true, nil},
		{"checkbox other", field(types.DataTypeCheckbox), "yes", false, nil},
		{"date display layout", field(types.DataTypeDate), "04/03/2026", "2026-03-04T00:00:00.000Z", nil},
		{"date time value", field(types.DataTypeDate), time.Date(2026, 3, 4, 9, 5, 0, 0, time.UTC), "2026-03-04T09:05:00.000Z", nil},
		{"date invalid", field(types.DataTypeDate), "yesterday", nil, types.ErrInvalidDate},
		{"select value to id", statusField, "closed", "2", nil},
		{"select empty", statusField, "", nil, nil},
		{"select unknown", statusField, "archived", nil, types.ErrInvalidChoice},
		{"file handle unchanged", field(types.DataTypeFile), map[string]any{"name": "a.png"}, map[string]any{"name": "a.png"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToSubmission(tt.field, tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		field types.FieldDescriptor
		raw   any
	}{
		{"text", field(types.DataTypeText), "Ada Lovelace"},
		{"email", field(types.DataTypeEmail), "ada@example.com"},
		{"number", field(types.DataTypeNumber), 5.0},
		{"currency fraction", field(types.DataTypeCurrency), 1234.56},
		{"select id", statusField, "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ToDisplay(tt.field, tt.raw)
			require.NoError(t, err)
			got, err := ToSubmission(tt.field, d)
			require.NoError(t, err)
			assert.Equal(t, tt.raw, got)
		})
	}
}

func TestAcceptNumericKey(t *testing.T) {
	for _, k := range []string{"0", "5", "9", "Backspace", "Tab", "ArrowLeft", "Delete"} {
		assert.True(t, AcceptNumericKey(k), k)
	}
	for _, k := range []string{"a", "Z", "e", "-", "+", " ", "F5"} {
		assert.False(t, AcceptNumericKey(k), k)
	}
}

func TestDisplayString(t *testing.T) {
	assert.Equal(t, "[x]", Display{Class: types.ClassCheckbox, Checked: true}.String())
	assert.Equal(t, "[ ]", Display{Class: types.ClassCheckbox}.String())
	assert.Equal(t, "Joe", Display{Class: types.ClassText, Text: "Joe"}.String())
}
