package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordValueMissingKeyIsEmpty(t *testing.T) {
	r := NewRecord("7", map[string]any{"name": "Joe"})

	assert.Equal(t, "Joe", r.Value("name"))
	assert.Nil(t, r.Value("age"))
	assert.Equal(t, "7", r.Value(RecordIDKey))

	var zero EditableRecord
	assert.Nil(t, zero.Value("anything"))
}

func TestRecordSetTracksDirtySlugs(t *testing.T) {
	r := NewRecord("1", map[string]any{"name": "Joe", "age": 5.0})
	assert.Empty(t, r.Dirty())

	r.Set("name", "Joseph")
	r.Set("city", "Haifa")
	r.Set("name", "Jo")

	assert.Equal(t, []string{"city", "name"}, r.Dirty())
	assert.Equal(t, "Jo", r.Value("name"))
	assert.Equal(t, 5.0, r.Value("age"), "untouched slug keeps its value")

	r.MarkClean()
	assert.Empty(t, r.Dirty())
}

func TestNewRecordCopiesValues(t *testing.T) {
	src := map[string]any{"name": "Joe"}
	r := NewRecord("1", src)
	r.Set("name", "Ann")
	assert.Equal(t, "Joe", src["name"])
}

func TestRecordJSON(t *testing.T) {
	var r EditableRecord
	require.NoError(t, json.Unmarshal([]byte(`{"id": 42, "name": "Joe", "status": {"id": 1, "value": "open"}}`), &r))

	assert.Equal(t, "42", r.ID)
	assert.Equal(t, "Joe", r.Value("name"))
	assert.Equal(t, map[string]any{"id": 1.0, "value": "open"}, r.Value("status"))
	assert.NotContains(t, r.Values, RecordIDKey)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": "42", "name": "Joe", "status": {"id": 1, "value": "open"}}`, string(data))
}

func TestPageUnmarshal(t *testing.T) {
	var p Page
	require.NoError(t, json.Unmarshal([]byte(`{"count": 2, "data": [{"id": 1}, {"id": 2, "age": 20}]}`), &p))
	assert.Equal(t, 2, p.Count)
	require.Len(t, p.Data, 2)
	assert.Equal(t, 20.0, p.Data[1].Value("age"))
}

func TestRecordJSONKeepsProfileRelation(t *testing.T) {
	var r EditableRecord
	require.NoError(t, json.Unmarshal([]byte(`{"id": 3, "netfree_profile": 2, "name": "Joe"}`), &r))

	assert.Equal(t, "2", r.Profile)
	assert.NotContains(t, r.Values, ProfileKey, "the profile is not a field value")

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": "3", "netfree_profile": "2", "name": "Joe"}`, string(data))

	var none EditableRecord
	require.NoError(t, json.Unmarshal([]byte(`{"id": 4, "netfree_profile": null}`), &none))
	assert.Empty(t, none.Profile)
}

func TestPayloadOmitsEmptyProfile(t *testing.T) {
	data, err := json.Marshal(Payload{Fields: []map[string]any{{"name": "Joe"}}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"fields": [{"name": "Joe"}]}`, string(data))

	data, err = json.Marshal(Payload{Fields: []map[string]any{}, NetfreeProfile: "2"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"fields": [], "netfree_profile": "2"}`, string(data))
}
