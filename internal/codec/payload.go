package codec

import (
	"fmt"

	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

// FullPayload builds the create body: one entry per field in schema order,
// plus the record's profile.
func FullPayload(fields []types.FieldDescriptor, rec types.EditableRecord) (types.Payload, error) {
	p := types.Payload{Fields: make([]map[string]any, 0, len(fields)), NetfreeProfile: rec.Profile}
	for _, f := range fields {
		entry, err := payloadEntry(f, rec.Value(f.Slug))
		if err != nil {
			return types.Payload{}, err
		}
		p.Fields = append(p.Fields, entry)
	}
	return p, nil
}

// PartialPayload builds the update body from the record's dirty slugs only.
// A dirty slug missing from fields is ErrUnknownField. The record's profile
// rides along so the relation survives the update.
func PartialPayload(fields []types.FieldDescriptor, rec types.EditableRecord) (types.Payload, error) {
	bySlug := make(map[string]types.FieldDescriptor, len(fields))
	for _, f := range fields {
		bySlug[f.Slug] = f
	}
	dirty := rec.Dirty()
	p := types.Payload{Fields: make([]map[string]any, 0, len(dirty)), NetfreeProfile: rec.Profile}
	for _, slug := range dirty {
		f, ok := bySlug[slug]
		if !ok {
			return types.Payload{}, fmt.Errorf("%w: %q", types.ErrUnknownField, slug)
		}
		entry, err := payloadEntry(f, rec.Value(slug))
		if err != nil {
			return types.Payload{}, err
		}
		p.Fields = append(p.Fields, entry)
	}
	return p, nil
}

// payloadEntry normalizes one value. Empty values of optional fields are
// sent as null so the backend clears them.
func payloadEntry(f types.FieldDescriptor, raw any) (map[string]any, error) {
	v, err := ToSubmission(f, raw)
	if err != nil {
		return nil, err
	}
	if !f.Required && IsEmpty(v) {
		v = nil
	}
	return map[string]any{f.Slug: v}, nil
}
