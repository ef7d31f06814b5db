package filter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

type recordingUpdater struct {
	calls  []types.FilterGroup
	failOn map[int]error // call index (0-based) -> error
}

func (u *recordingUpdater) UpdateFilterGroup(_ context.Context, g types.FilterGroup) (types.FilterGroup, error) {
	idx := len(u.calls)
	u.calls = append(u.calls, g)
	if err := u.failOn[idx]; err != nil {
		return types.FilterGroup{}, err
	}
	return g, nil
}

func groups() []types.FilterGroup {
	return []types.FilterGroup{
		{ID: "1", Name: "Adults", IsDefault: true},
		{ID: "2", Name: "VIPs"},
		{ID: "3", Name: "Closed"},
	}
}

func defaults(c *Collection) []string {
	var ids []string
	for _, g := range c.Groups() {
		if g.IsDefault {
			ids = append(ids, g.ID)
		}
	}
	return ids
}

func TestNewCollection_KeepsFirstDefault(t *testing.T) {
	gs := groups()
	gs[2].IsDefault = true
	c := NewCollection(gs, &recordingUpdater{})
	assert.Equal(t, []string{"1"}, defaults(c))
}

func TestSetDefault_SingleDefault(t *testing.T) {
	u := &recordingUpdater{}
	c := NewCollection(groups(), u)

	require.NoError(t, c.SetDefault(context.Background(), "2"))
	assert.Equal(t, []string{"2"}, defaults(c))

	require.Len(t, u.calls, 2, "new default saved, then previous unset")
	assert.Equal(t, "2", u.calls[0].ID)
	assert.True(t, u.calls[0].IsDefault)
	assert.Equal(t, "1", u.calls[1].ID)
	assert.False(t, u.calls[1].IsDefault)

	require.NoError(t, c.SetDefault(context.Background(), "3"))
	assert.Equal(t, []string{"3"}, defaults(c))

	require.NoError(t, c.SetDefault(context.Background(), "3"))
	assert.Len(t, u.calls, 4, "already default is a no-op")
}

func TestSetDefault_NoPreviousDefault(t *testing.T) {
	gs := groups()
	gs[0].IsDefault = false
	u := &recordingUpdater{}
	c := NewCollection(gs, u)

	require.NoError(t, c.SetDefault(context.Background(), "3"))
	assert.Len(t, u.calls, 1)
	assert.Equal(t, []string{"3"}, defaults(c))
}

func TestSetDefault_FirstCallFailsLeavesStateIntact(t *testing.T) {
	boom := errors.New("502")
	c := NewCollection(groups(), &recordingUpdater{failOn: map[int]error{0: boom}})

	err := c.SetDefault(context.Background(), "2")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"1"}, defaults(c))
}

func TestSetDefault_SecondCallFailsStillSingleDefault(t *testing.T) {
	boom := errors.New("timeout")
	c := NewCollection(groups(), &recordingUpdater{failOn: map[int]error{1: boom}})

	err := c.SetDefault(context.Background(), "2")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"2"}, defaults(c))
}

func TestSetDefault_UnknownGroup(t *testing.T) {
	c := NewCollection(groups(), &recordingUpdater{})
	assert.ErrorIs(t, c.SetDefault(context.Background(), "9"), types.ErrFilterNotFound)
}

func TestClearDefault(t *testing.T) {
	u := &recordingUpdater{}
	c := NewCollection(groups(), u)

	require.NoError(t, c.ClearDefault(context.Background()))
	assert.Empty(t, defaults(c))
	require.Len(t, u.calls, 1)
	assert.False(t, u.calls[0].IsDefault)

	require.NoError(t, c.ClearDefault(context.Background()))
	assert.Len(t, u.calls, 1)
}

func TestApplied(t *testing.T) {
	c := NewCollection(groups(), &recordingUpdater{})

	g, ok := c.Applied()
	require.True(t, ok)
	assert.Equal(t, "1", g.ID, "default applies when nothing chosen")

	require.NoError(t, c.Apply("3"))
	g, _ = c.Applied()
	assert.Equal(t, "3", g.ID)

	assert.ErrorIs(t, c.Apply("9"), types.ErrFilterNotFound)

	require.NoError(t, c.Remove("3"))
	g, _ = c.Applied()
	assert.Equal(t, "1", g.ID, "removing the applied group reverts to default")

	require.NoError(t, c.Apply(""))
	require.NoError(t, c.Remove("1"))
	_, ok = c.Applied()
	assert.False(t, ok)
}

func TestReplace(t *testing.T) {
	c := NewCollection(groups(), &recordingUpdater{})

	c.Replace(types.FilterGroup{ID: "4", Name: "New", IsDefault: true})
	assert.Equal(t, []string{"4"}, defaults(c))
	assert.Len(t, c.Groups(), 4)

	c.Replace(types.FilterGroup{ID: "2", Name: "VIP clients"})
	g, ok := c.Get("2")
	require.True(t, ok)
	assert.Equal(t, "VIP clients", g.Name)
	assert.Len(t, c.Groups(), 4)

	assert.ErrorIs(t, c.Remove("9"), types.ErrFilterNotFound)
}
