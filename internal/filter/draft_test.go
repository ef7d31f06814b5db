package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/clientdesk/internal/validate"
	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

func TestDraft_AddConditionDefaultsToFirstFilterableField(t *testing.T) {
	d := NewDraft(testRegistry(t), DefaultCatalog())

	c, err := d.AddCondition(types.BucketAnd)
	require.NoError(t, err)
	assert.Equal(t, "name", c.AttrName, "file field is skipped")
	assert.Empty(t, c.Condition)
	assert.Equal(t, 1, c.ID)

	c2, err := d.AddCondition(types.BucketOr)
	require.NoError(t, err)
	assert.Equal(t, 2, c2.ID)

	_, err = d.AddCondition("XOR")
	assert.ErrorIs(t, err, types.ErrInvalidBucket)
}

func TestDraft_SetAttrResetsIncompatibleOperator(t *testing.T) {
	d := NewDraft(testRegistry(t), DefaultCatalog())
	c, _ := d.AddCondition(types.BucketAnd)

	require.NoError(t, d.SetAttr(c.ID, "age"))
	require.NoError(t, d.SetOperator(c.ID, types.OpGreater))

	require.NoError(t, d.SetAttr(c.ID, "name"))
	assert.Empty(t, d.Conditions()[0].Condition, "gt is not a text operator")

	require.NoError(t, d.SetOperator(c.ID, types.OpEquals))
	require.NoError(t, d.SetAttr(c.ID, "email"))
	assert.Equal(t, types.OpEquals, d.Conditions()[0].Condition, "compatible operator kept")

	assert.ErrorIs(t, d.SetAttr(c.ID, "contract"), types.ErrFieldNotFilterable)
	assert.ErrorIs(t, d.SetAttr(c.ID, "ghost"), types.ErrUnknownField)
	assert.ErrorIs(t, d.SetAttr(99, "age"), types.ErrConditionNotFound)
}

func TestDraft_SetOperator(t *testing.T) {
	d := NewDraft(testRegistry(t), DefaultCatalog())
	c, _ := d.AddCondition(types.BucketAnd)

	assert.ErrorIs(t, d.SetOperator(c.ID, types.OpGreater), types.ErrOperatorNotApplicable)
	require.NoError(t, d.SetOperator(c.ID, types.OpContains))
	assert.ErrorIs(t, d.SetOperator(42, types.OpContains), types.ErrConditionNotFound)
}

func TestDraft_BuildAndRemove(t *testing.T) {
	d := NewDraft(testRegistry(t), DefaultCatalog())
	d.SetName("Adults")

	c, _ := d.AddCondition(types.BucketAnd)
	require.NoError(t, d.SetAttr(c.ID, "age"))
	require.NoError(t, d.SetOperator(c.ID, types.OpGreater))
	require.NoError(t, d.SetValue(c.ID, "18"))

	g, err := d.Build()
	require.NoError(t, err)
	assert.Equal(t, "Adults", g.Name)
	require.Len(t, g.Conditions, 1)
	assert.Equal(t, types.FilterCondition{ID: 1, AttrName: "age", Condition: types.OpGreater, Value: "18", Bucket: types.BucketAnd}, g.Conditions[0])

	require.NoError(t, d.Remove(c.ID))
	res := d.Validate()
	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors, "filters")

	_, err = d.Build()
	assert.ErrorIs(t, err, types.ErrEmptyFilterGroup)
	assert.ErrorIs(t, err, types.ErrValidation)
	d.SetName("Adults again")
	assert.Empty(t, d.Conditions(), "the draft is kept, not deleted")

	assert.ErrorIs(t, d.Remove(c.ID), types.ErrConditionNotFound)
}

func TestDraft_BuildBlocksMissingOperator(t *testing.T) {
	d := NewDraft(testRegistry(t), DefaultCatalog())
	d.SetName("Incomplete")
	_, _ = d.AddCondition(types.BucketOr)

	_, err := d.Build()
	assert.ErrorIs(t, err, types.ErrValidation)
	assert.NotErrorIs(t, err, types.ErrEmptyFilterGroup)
}

func TestDraft_ValidateFlagsSavedIncompatibleOperator(t *testing.T) {
	saved := types.FilterGroup{ID: "7", Name: "Legacy", Conditions: []types.FilterCondition{
		cond("name", types.OpGreater, "3", types.BucketAnd),
	}}
	d := EditDraft(testRegistry(t), DefaultCatalog(), saved, validate.WithLocale("he"))

	res := d.Validate()
	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors, "filters[0].condition")
}

func TestEditDraft(t *testing.T) {
	saved := types.FilterGroup{ID: "7", Name: "VIPs", IsDefault: true, Conditions: []types.FilterCondition{
		cond("vip", types.OpIsTrue, "", types.BucketAnd),
		cond("status", types.OpEquals, "open", types.BucketOr),
	}}
	d := EditDraft(testRegistry(t), DefaultCatalog(), saved)

	conds := d.Conditions()
	require.Len(t, conds, 2)
	assert.Equal(t, 1, conds[0].ID)
	assert.Equal(t, 2, conds[1].ID)

	require.NoError(t, d.SetValue(2, "closed"))
	g, err := d.Build()
	require.NoError(t, err)
	assert.Equal(t, "7", g.ID)
	assert.True(t, g.IsDefault)
	assert.Equal(t, "closed", g.Conditions[1].Value)
	assert.Equal(t, "open", saved.Conditions[1].Value, "saved group untouched")
}
