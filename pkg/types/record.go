package types

import (
	"encoding/json"
	"fmt"
	"sort"
)

// RecordIDKey is the synthetic key under which listings carry the entity id.
const RecordIDKey = "id"

// ProfileKey carries the id of the client's netfree profile. It is a
// relation, not a schema field.
const ProfileKey = "netfree_profile"

// EditableRecord is one entity instance addressed by field slugs.
// A slug missing from Values reads as the empty value, never as an error.
type EditableRecord struct {
	ID      string
	Profile string
	Values  map[string]any

	dirty map[string]struct{}
}

// NewRecord creates a record with the given id and values. The values map is
// copied.
func NewRecord(id string, values map[string]any) EditableRecord {
	r := EditableRecord{ID: id, Values: make(map[string]any, len(values))}
	for k, v := range values {
		r.Values[k] = v
	}
	return r
}

// Value returns the stored value for slug, or nil when absent.
func (r EditableRecord) Value(slug string) any {
	if slug == RecordIDKey {
		return r.ID
	}
	if r.Values == nil {
		return nil
	}
	return r.Values[slug]
}

// Set changes exactly one slug and marks it dirty for partial updates.
func (r *EditableRecord) Set(slug string, value any) {
	if r.Values == nil {
		r.Values = make(map[string]any)
	}
	if r.dirty == nil {
		r.dirty = make(map[string]struct{})
	}
	r.Values[slug] = value
	r.dirty[slug] = struct{}{}
}

// Dirty returns the slugs changed since the record was loaded, sorted.
func (r EditableRecord) Dirty() []string {
	out := make([]string, 0, len(r.dirty))
	for s := range r.dirty {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// MarkClean forgets pending edits, typically after a successful save.
func (r *EditableRecord) MarkClean() {
	r.dirty = nil
}

// UnmarshalJSON decodes a flat backend row: {"id": 7, "<slug>": value, ...}.
func (r *EditableRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, err := decodeID(raw[RecordIDKey])
	if err != nil {
		return fmt.Errorf("decoding record id: %w", err)
	}
	profile, err := decodeID(raw[ProfileKey])
	if err != nil {
		return fmt.Errorf("decoding record profile: %w", err)
	}
	values := make(map[string]any, len(raw))
	for k, v := range raw {
		if k == RecordIDKey || k == ProfileKey {
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return fmt.Errorf("decoding record value %q: %w", k, err)
		}
		values[k] = val
	}
	*r = EditableRecord{ID: id, Profile: profile, Values: values}
	return nil
}

// MarshalJSON encodes the record as a flat row.
func (r EditableRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Values)+1)
	for k, v := range r.Values {
		out[k] = v
	}
	out[RecordIDKey] = r.ID
	if r.Profile != "" {
		out[ProfileKey] = r.Profile
	}
	return json.Marshal(out)
}

// Payload is the create/update body:
// {"fields": [{"<slug>": value}, ...], "netfree_profile": id}.
// Creates require the profile; updates send it only to change it.
type Payload struct {
	Fields         []map[string]any `json:"fields"`
	NetfreeProfile string           `json:"netfree_profile,omitempty"`
}

// Page is one listing response.
type Page struct {
	Count int              `json:"count"`
	Data  []EditableRecord `json:"data"`
}
