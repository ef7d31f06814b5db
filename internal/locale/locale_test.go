package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/clientdesk/internal/sqlite"
	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

func settingsTable(t *testing.T) types.Table {
	t.Helper()
	b := sqlite.NewBackend()
	require.NoError(t, b.Attach(types.StoreConfig{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { b.Detach() })
	tbl, err := b.GetTable(types.TableSettings)
	require.NoError(t, err)
	return tbl
}

func TestInit(t *testing.T) {
	tests := []struct {
		name     string
		stored   string
		fallback string
		want     string
	}{
		{name: "nothing stored keeps fallback", fallback: "he", want: "he"},
		{name: "stored value wins", stored: "he", fallback: "en", want: "he"},
		{name: "unsupported stored value ignored", stored: "fr", fallback: "en", want: "en"},
		{name: "unsupported fallback becomes english", fallback: "xx", want: "en"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := settingsTable(t)
			if tt.stored != "" {
				_, err := tbl.Set(types.SettingLocale, &types.Setting{Value: tt.stored})
				require.NoError(t, err)
			}
			s := New(tbl, tt.fallback)
			got, err := s.Init()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, s.Current())
		})
	}
}

func TestSetPersistsAndNotifies(t *testing.T) {
	tbl := settingsTable(t)
	s := New(tbl, "en")

	var seen []string
	unsubscribe := s.Subscribe(func(code string) { seen = append(seen, "a:"+code) })
	s.Subscribe(func(code string) { seen = append(seen, "b:"+code) })

	require.NoError(t, s.Set("he"))
	assert.Equal(t, []string{"a:he", "b:he"}, seen)
	assert.Equal(t, "he", s.Current())

	stored, err := tbl.Get(types.SettingLocale)
	require.NoError(t, err)
	assert.Equal(t, "he", stored.(*types.Setting).Value)

	require.NoError(t, s.Set("he"), "same locale is a no-op")
	assert.Len(t, seen, 2)

	unsubscribe()
	require.NoError(t, s.Set("en"))
	assert.Equal(t, []string{"a:he", "b:he", "b:en"}, seen)
}

func TestSetRejectsUnknownLocale(t *testing.T) {
	s := New(settingsTable(t), "en")
	err := s.Set("fr")
	assert.ErrorIs(t, err, types.ErrUnknownLocale)
	assert.Equal(t, "en", s.Current())
}
