package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterGroupJSON(t *testing.T) {
	data := []byte(`{"id": 3, "name": "Adults", "fg_default": true, "filters": [
		{"attr_name": "age", "condition": "gt", "value": "18", "operator": "AND"},
		{"attr_name": "city", "condition": "equals", "value": "Haifa", "operator": "OR"}
	]}`)

	var g FilterGroup
	require.NoError(t, json.Unmarshal(data, &g))
	assert.Equal(t, "3", g.ID)
	assert.True(t, g.IsDefault)
	require.Len(t, g.Conditions, 2)
	assert.Equal(t, OpGreater, g.Conditions[0].Condition)
	assert.Equal(t, BucketOr, g.Conditions[1].Bucket)

	out, err := json.Marshal(g.Conditions[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"attr_name": "age", "condition": "gt", "value": "18", "operator": "AND"}`, string(out),
		"local condition id is never serialized")
}

func TestFilterGroupBuckets(t *testing.T) {
	g := FilterGroup{Conditions: []FilterCondition{
		{AttrName: "a", Bucket: BucketAnd},
		{AttrName: "b", Bucket: BucketOr},
		{AttrName: "c", Bucket: BucketAnd},
	}}
	and, or := g.Buckets()
	require.Len(t, and, 2)
	require.Len(t, or, 1)
	assert.Equal(t, "a", and[0].AttrName)
	assert.Equal(t, "c", and[1].AttrName)
	assert.Equal(t, "b", or[0].AttrName)
}

func TestOperatorUnary(t *testing.T) {
	for _, op := range []Operator{OpIsEmpty, OpIsNotEmpty, OpIsTrue, OpIsFalse} {
		assert.True(t, op.Unary(), string(op))
	}
	for _, op := range []Operator{OpEquals, OpGreater, OpContains, OpBefore} {
		assert.False(t, op.Unary(), string(op))
	}
}

func TestOrderFlip(t *testing.T) {
	assert.Equal(t, OrderDesc, OrderAsc.Flip())
	assert.Equal(t, OrderAsc, OrderDesc.Flip())
}
