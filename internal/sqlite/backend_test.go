package sqlite

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

func attach(t *testing.T) (*Backend, string) {
	t.Helper()
	dir := t.TempDir()
	b := NewBackend()
	require.NoError(t, b.Attach(types.StoreConfig{Backend: types.BackendSQLite, DataDir: dir}))
	t.Cleanup(func() { b.Detach() })
	return b, dir
}

func table(t *testing.T, b *Backend, name string) types.Table {
	t.Helper()
	tbl, err := b.GetTable(name)
	require.NoError(t, err)
	return tbl
}

func TestBackend_Attach(t *testing.T) {
	b, dir := attach(t)

	_, err := os.Stat(filepath.Join(dir, DatabaseFile))
	require.NoError(t, err, "database file should exist")

	err = b.Attach(types.StoreConfig{Backend: types.BackendSQLite, DataDir: dir})
	assert.ErrorIs(t, err, types.ErrAlreadyAttached)
}

func TestBackend_AttachInvalidConfig(t *testing.T) {
	b := NewBackend()
	assert.ErrorIs(t, b.Attach(types.StoreConfig{}), types.ErrBackendEmpty)
	assert.ErrorIs(t, b.Attach(types.StoreConfig{Backend: "bolt"}), types.ErrBackendUnknown)
}

func TestBackend_Detach(t *testing.T) {
	b, _ := attach(t)

	require.NoError(t, b.Detach())
	require.NoError(t, b.Detach(), "detach is idempotent")

	_, err := b.GetTable(types.TableSettings)
	assert.ErrorIs(t, err, types.ErrStoreDetached)
}

func TestBackend_GetTable(t *testing.T) {
	b, _ := attach(t)

	for _, name := range types.StandardTableNames {
		t.Run(name, func(t *testing.T) {
			tbl, err := b.GetTable(name)
			require.NoError(t, err)
			assert.NotNil(t, tbl)
		})
	}

	_, err := b.GetTable("crumbs")
	assert.ErrorIs(t, err, types.ErrTableNotFound)
}

func TestBackend_SurvivesReattach(t *testing.T) {
	b, dir := attach(t)
	_, err := table(t, b, types.TableSettings).Set(types.SettingLocale, &types.Setting{Value: types.LocaleHebrew})
	require.NoError(t, err)
	require.NoError(t, b.Detach())

	require.NoError(t, b.Attach(types.StoreConfig{Backend: types.BackendSQLite, DataDir: dir}))
	got, err := table(t, b, types.TableSettings).Get(types.SettingLocale)
	require.NoError(t, err)
	assert.Equal(t, types.LocaleHebrew, got.(*types.Setting).Value)
}

func TestSettingsTable(t *testing.T) {
	b, _ := attach(t)
	b.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	tbl := table(t, b, types.TableSettings)

	_, err := tbl.Get(types.SettingLocale)
	assert.ErrorIs(t, err, types.ErrNotFound)

	key, err := tbl.Set("", &types.Setting{Key: types.SettingLocale, Value: "en"})
	require.NoError(t, err)
	assert.Equal(t, types.SettingLocale, key)

	_, err = tbl.Set(types.SettingLocale, &types.Setting{Value: "he"})
	require.NoError(t, err)

	got, err := tbl.Get(types.SettingLocale)
	require.NoError(t, err)
	s := got.(*types.Setting)
	assert.Equal(t, "he", s.Value)
	assert.True(t, s.UpdatedAt.Equal(b.now()))

	_, err = tbl.Set("theme", &types.Setting{Value: "dark"})
	require.NoError(t, err)

	all, err := tbl.Fetch(nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, types.SettingLocale, all[0].(*types.Setting).Key)

	one, err := tbl.Fetch(map[string]any{"key": "theme"})
	require.NoError(t, err)
	require.Len(t, one, 1)

	_, err = tbl.Fetch(map[string]any{"key": 7})
	assert.ErrorIs(t, err, types.ErrInvalidFilter)

	require.NoError(t, tbl.Delete("theme"))
	assert.ErrorIs(t, tbl.Delete("theme"), types.ErrNotFound)
}

func TestSettingsTable_InvalidInput(t *testing.T) {
	b, _ := attach(t)
	tbl := table(t, b, types.TableSettings)

	tests := []struct {
		name string
		key  string
		data any
		want error
	}{
		{"wrong type", "k", types.SchemaSnapshot{}, types.ErrInvalidData},
		{"nil setting", "k", (*types.Setting)(nil), types.ErrInvalidData},
		{"no key", "", &types.Setting{Value: "v"}, types.ErrInvalidKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tbl.Set(tt.key, tt.data)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := tbl.Get("")
	assert.ErrorIs(t, err, types.ErrInvalidKey)
}

func TestSnapshotsTable(t *testing.T) {
	b, _ := attach(t)
	tbl := table(t, b, types.TableSchemaSnapshots)

	blocks := []types.Block{{
		ID:   "1",
		Name: "Main",
		Fields: []types.FieldDescriptor{
			{Slug: "name", DisplayName: "Name", DataType: types.DataTypeText, Required: true, Display: true},
		},
	}}
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	id, err := tbl.Set("", &types.SchemaSnapshot{Locale: "en", Blocks: blocks, FetchedAt: older})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	got, err := tbl.Get(id)
	require.NoError(t, err)
	snap := got.(*types.SchemaSnapshot)
	assert.Equal(t, "en", snap.Locale)
	assert.Equal(t, blocks, snap.Blocks)
	assert.True(t, snap.FetchedAt.Equal(older))

	// A second snapshot for the same locale replaces the first.
	newer := older.Add(time.Hour)
	id2, err := tbl.Set("", &types.SchemaSnapshot{Locale: "en", Blocks: blocks, FetchedAt: newer})
	require.NoError(t, err)
	_, err = tbl.Get(id)
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = tbl.Set("", &types.SchemaSnapshot{Locale: "he", FetchedAt: older})
	require.NoError(t, err)

	all, err := tbl.Fetch(nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, id2, all[0].(*types.SchemaSnapshot).SnapshotID, "newest first")

	en, err := tbl.Fetch(map[string]any{"locale": "en"})
	require.NoError(t, err)
	require.Len(t, en, 1)

	_, err = tbl.Set("", &types.SchemaSnapshot{})
	assert.ErrorIs(t, err, types.ErrInvalidData)

	require.NoError(t, tbl.Delete(id2))
	assert.ErrorIs(t, tbl.Delete(id2), types.ErrNotFound)
}
