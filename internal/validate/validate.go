// Package validate builds validation rules from field descriptors at
// runtime and checks entity and filter forms against them.
package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

// Result is the outcome of a validation pass. Errors block submission;
// Warnings do not. Both are keyed by field path.
type Result struct {
	Valid    bool
	Errors   map[string]string
	Warnings map[string]string
}

func newResult() Result {
	return Result{Valid: true, Errors: map[string]string{}, Warnings: map[string]string{}}
}

func (r *Result) fail(key, msg string) {
	if _, exists := r.Errors[key]; !exists {
		r.Errors[key] = msg
	}
	r.Valid = false
}

// Err returns nil for a valid result, otherwise an error wrapping
// types.ErrValidation that lists every failing key.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	keys := make([]string, 0, len(r.Errors))
	for k := range r.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + r.Errors[k]
	}
	return fmt.Errorf("%w: %s", types.ErrValidation, strings.Join(parts, "; "))
}

type options struct {
	locale    string
	catalog   Catalog
	minLength map[string]int
}

// Option configures Build and ValidateFilterForm.
type Option func(*options)

// WithMinLength attaches a minimum length rule to slug.
func WithMinLength(slug string, n int) Option {
	return func(o *options) { o.minLength[slug] = n }
}

// WithLocale selects the message locale and the label language.
func WithLocale(code string) Option {
	return func(o *options) { o.locale = code }
}

// WithCatalog replaces the built-in message catalog.
func WithCatalog(c Catalog) Option {
	return func(o *options) { o.catalog = c }
}

func buildOptions(opts []Option) options {
	o := options{locale: types.LocaleEnglish, catalog: DefaultCatalog(), minLength: map[string]int{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Schema is the compiled rule set for an entity form.
type Schema struct {
	order    []string
	rules    map[string][]Rule
	messages Messages
}

// Build compiles the rules for fields.
func Build(fields []types.FieldDescriptor, opts ...Option) *Schema {
	o := buildOptions(opts)
	s := &Schema{rules: make(map[string][]Rule, len(fields)), messages: o.catalog.For(o.locale)}
	for _, f := range fields {
		s.order = append(s.order, f.Slug)
		s.rules[f.Slug] = RulesFor(f, o.locale, o.minLength[f.Slug])
	}
	return s
}

// Validate checks every field. A missing key is validated as empty.
func (s *Schema) Validate(values map[string]any) Result {
	res := newResult()
	for _, slug := range s.order {
		if msg, ok := s.check(slug, values[slug]); !ok {
			res.fail(slug, msg)
		}
	}
	return res
}

// ValidateField checks one field, as on blur. Unknown slugs pass.
func (s *Schema) ValidateField(slug string, values map[string]any) (string, bool) {
	return s.check(slug, values[slug])
}

func (s *Schema) check(slug string, v any) (string, bool) {
	for _, r := range s.rules[slug] {
		if msg, ok := r.Check(v, s.messages); !ok {
			return msg, false
		}
	}
	return "", true
}

// FilterNameMinLength is the shortest accepted filter group name.
const FilterNameMinLength = 3

// FilterForm is the filter-authoring form as submitted.
type FilterForm struct {
	Name       string
	Conditions []types.FilterCondition
}

// ValidateFilterForm checks a filter form. Missing values on non-unary
// operators are reported as warnings only.
func ValidateFilterForm(form FilterForm, opts ...Option) Result {
	m := buildOptions(opts)
	msgs := m.catalog.For(m.locale)
	res := newResult()

	name := strings.TrimSpace(form.Name)
	switch {
	case name == "":
		res.fail("filter_name", msgs.FilterName)
	case len([]rune(name)) < FilterNameMinLength:
		res.fail("filter_name", fmt.Sprintf(msgs.FilterNameLength, FilterNameMinLength))
	}
	if len(form.Conditions) == 0 {
		res.fail("filters", msgs.FilterConditions)
	}
	for i, c := range form.Conditions {
		prefix := fmt.Sprintf("filters[%d].", i)
		if c.AttrName == "" {
			res.fail(prefix+"attr_name", msgs.AttrRequired)
		}
		if c.Condition == "" {
			res.fail(prefix+"condition", msgs.ConditionRequired)
		}
		if c.Condition != "" && !c.Condition.Unary() && strings.TrimSpace(c.Value) == "" {
			res.Warnings[prefix+"value"] = msgs.ValueMissing
		}
	}
	return res
}
