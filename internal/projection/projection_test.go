package projection

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/clientdesk/internal/schema"
	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

func testRegistry(t *testing.T, locale string) *schema.Registry {
	t.Helper()
	reg, err := schema.FromFields(locale, []types.FieldDescriptor{
		{ID: "11", Slug: "name", DisplayName: "Name", DisplayNameByLocale: map[string]string{"he": "שם"}, DataType: types.DataTypeText, Display: true},
		{ID: "12", Slug: "notes", DisplayName: "Notes", DataType: types.DataTypeText},
		{ID: "13", Slug: "vip", DisplayName: "VIP", DataType: types.DataTypeCheckbox, Display: true},
		{ID: "14", Slug: "joined", DisplayName: "Joined", DataType: types.DataTypeDate, Display: true},
	})
	require.NoError(t, err)
	return reg
}

type stubSaver struct {
	err   error
	calls []string
}

func (s *stubSaver) SaveFieldDisplay(_ context.Context, id string, display bool) error {
	s.calls = append(s.calls, id)
	return s.err
}

func slugs(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Slug
	}
	return out
}

func TestColumns(t *testing.T) {
	cols := Columns(testRegistry(t, "en"))
	assert.Equal(t, []string{"id", "name", "vip", "joined"}, slugs(cols))
	assert.Equal(t, "ID", cols[0].Label)
	assert.Equal(t, types.ClassNumeric, cols[0].Class())

	he := Columns(testRegistry(t, "he"))
	assert.Equal(t, "מזהה", he[0].Label)
	assert.Equal(t, "שם", he[1].Label)
}

func TestToggle(t *testing.T) {
	reg := testRegistry(t, "en")
	saver := &stubSaver{}

	shown, err := Toggle(context.Background(), reg, "notes", saver)
	require.NoError(t, err)
	assert.True(t, shown)
	assert.Equal(t, []string{"12"}, saver.calls)
	assert.Contains(t, slugs(Columns(reg)), "notes")

	shown, err = Toggle(context.Background(), reg, "notes", saver)
	require.NoError(t, err)
	assert.False(t, shown)
	assert.NotContains(t, slugs(Columns(reg)), "notes")
}

func TestToggle_FailureLeavesStateUnchanged(t *testing.T) {
	reg := testRegistry(t, "en")
	saver := &stubSaver{err: types.ErrNetwork}

	shown, err := Toggle(context.Background(), reg, "name", saver)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrNetwork))
	assert.True(t, shown)
	assert.Contains(t, slugs(Columns(reg)), "name")
}

func TestToggle_UnknownField(t *testing.T) {
	_, err := Toggle(context.Background(), testRegistry(t, "en"), "missing", &stubSaver{})
	assert.True(t, errors.Is(err, types.ErrUnknownField))
}

func TestSetVisible_NoOp(t *testing.T) {
	saver := &stubSaver{}
	require.NoError(t, SetVisible(context.Background(), testRegistry(t, "en"), "name", true, saver))
	assert.Empty(t, saver.calls)
}

func TestRender(t *testing.T) {
	reg := testRegistry(t, "en")
	rows := []types.EditableRecord{
		types.NewRecord("7", map[string]any{"name": "Dana", "vip": "true", "joined": "2024-03-05T00:00:00.000Z"}),
		types.NewRecord("8", map[string]any{"joined": "garbage"}),
	}
	tbl, err := Render(rows, Columns(reg))
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "Name", "VIP", "Joined"}, tbl.Headers())
	assert.Equal(t, [][]string{
		{"7", "Dana", "[x]", "05/03/2024"},
		{"8", "", "[ ]", ""},
	}, tbl.Rows)
}

func TestRender_UnsupportedType(t *testing.T) {
	cols := []Column{{Slug: "x", Label: "X", Field: types.FieldDescriptor{Slug: "x", DataType: "hologram"}}}
	_, err := Render([]types.EditableRecord{types.NewRecord("1", nil)}, cols)
	assert.True(t, errors.Is(err, types.ErrUnsupportedFieldType))
}

func TestWrite(t *testing.T) {
	tbl := Table{
		Columns: []Column{{Label: "ID"}, {Label: "Name"}},
		Rows:    [][]string{{"1", "Dana"}, {"22", "Bo"}},
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, tbl, 0))
	assert.Equal(t, "ID  Name\n--  ----\n1   Dana\n22  Bo\n", buf.String())
}

func TestWrite_TruncatesToWidth(t *testing.T) {
	tbl := Table{
		Columns: []Column{{Label: "ID"}, {Label: "Notes"}},
		Rows:    [][]string{{"1", strings.Repeat("x", 40)}},
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, tbl, 20))
	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), 20)
	}
	assert.Contains(t, buf.String(), "…")
}

func TestDisplayWidth(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{in: "Dana", want: 4},
		{in: "שלום", want: 4},
		{in: "東京", want: 4},
		{in: "ｶﾀｶﾅ", want: 4},
		{in: "Ｄａｎａ", want: 8},
		{in: "e\u0301", want: 1},
		{in: "", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, displayWidth(tt.in))
		})
	}
}

func TestWrite_AlignsWideRunes(t *testing.T) {
	tbl := Table{
		Columns: []Column{{Label: "Name"}, {Label: "City"}},
		Rows:    [][]string{{"東京太郎", "Tokyo"}, {"Dana", "Haifa"}},
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, tbl, 0))
	assert.Equal(t, "Name      City\n--------  -----\n東京太郎  Tokyo\nDana      Haifa\n", buf.String())
}

func TestWrite_TruncatesWideRunesToWidth(t *testing.T) {
	tbl := Table{
		Columns: []Column{{Label: "ID"}, {Label: "Notes"}},
		Rows:    [][]string{{"1", strings.Repeat("東京", 5)}},
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, tbl, 10))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	for _, line := range lines {
		assert.LessOrEqual(t, displayWidth(line), 10, line)
	}
	assert.Equal(t, "1   東京…", lines[2])
}
