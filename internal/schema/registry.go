// Package schema holds the field descriptors of one schema snapshot and
// loads them from the backend.
package schema

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

// Registry is the field schema for one locale. Only the Display flag of a
// field changes after construction. Safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	locale string
	blocks []types.Block
	fields []types.FieldDescriptor
	index  map[string]int
}

// NewRegistry builds a registry from schema blocks. Fields keep block order,
// then field order within each block. Duplicate slugs and unsupported data
// types are rejected.
func NewRegistry(locale string, blocks []types.Block) (*Registry, error) {
	ordered := append([]types.Block(nil), blocks...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].DisplayOrder < ordered[j].DisplayOrder
	})

	r := &Registry{locale: locale, blocks: ordered, index: make(map[string]int)}
	for _, b := range ordered {
		for _, f := range b.Fields {
			if err := r.add(f); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

// FromFields builds a registry from a flat field list.
func FromFields(locale string, fields []types.FieldDescriptor) (*Registry, error) {
	return NewRegistry(locale, []types.Block{{Fields: fields}})
}

func (r *Registry) add(f types.FieldDescriptor) error {
	if f.Slug == "" {
		return fmt.Errorf("%w: empty slug", types.ErrInvalidData)
	}
	if _, err := f.DataType.Class(); err != nil {
		return fmt.Errorf("field %q: %w", f.Slug, err)
	}
	if _, dup := r.index[f.Slug]; dup {
		return fmt.Errorf("%w: %q", types.ErrDuplicateSlug, f.Slug)
	}
	r.index[f.Slug] = len(r.fields)
	r.fields = append(r.fields, f)
	return nil
}

// Locale returns the locale the snapshot was fetched for.
func (r *Registry) Locale() string { return r.locale }

// Field returns the descriptor for slug.
func (r *Registry) Field(slug string) (types.FieldDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[slug]
	if !ok {
		return types.FieldDescriptor{}, false
	}
	return r.fields[i], true
}

// Class returns the semantic class for slug. The synthetic id key is
// numeric; unknown slugs are text.
func (r *Registry) Class(slug string) types.Class {
	if slug == types.RecordIDKey {
		return types.ClassNumeric
	}
	f, ok := r.Field(slug)
	if !ok {
		return types.ClassText
	}
	c, _ := f.DataType.Class()
	return c
}

// Fields returns a copy of every descriptor in schema order.
func (r *Registry) Fields() []types.FieldDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]types.FieldDescriptor(nil), r.fields...)
}

// Blocks returns the blocks with their fields' current Display flags.
func (r *Registry) Blocks() []types.Block {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.Block, len(r.blocks))
	for i, b := range r.blocks {
		out[i] = b
		out[i].Fields = make([]types.FieldDescriptor, len(b.Fields))
		for j, f := range b.Fields {
			out[i].Fields[j] = r.fields[r.index[f.Slug]]
		}
	}
	return out
}

// Displayed returns the fields whose Display flag is set, in schema order.
func (r *Registry) Displayed() []types.FieldDescriptor {
	return r.filter(func(f types.FieldDescriptor) bool { return f.Display })
}

// Filterable returns the fields a filter condition may reference.
func (r *Registry) Filterable() []types.FieldDescriptor {
	return r.filter(types.FieldDescriptor.Filterable)
}

func (r *Registry) filter(keep func(types.FieldDescriptor) bool) []types.FieldDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []types.FieldDescriptor
	for _, f := range r.fields {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}

// SetDisplay changes the Display flag of slug.
func (r *Registry) SetDisplay(slug string, display bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[slug]
	if !ok {
		return fmt.Errorf("%w: %q", types.ErrUnknownField, slug)
	}
	r.fields[i].Display = display
	return nil
}

// Resolve finds a field by slug or by its label in the registry's locale
// or the default label. Used to match CSV headers and CLI input.
func (r *Registry) Resolve(name string) (types.FieldDescriptor, bool) {
	if f, ok := r.Field(name); ok {
		return f, true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.fields {
		if f.Label(r.locale) == name || f.DisplayName == name {
			return f, true
		}
	}
	return types.FieldDescriptor{}, false
}
