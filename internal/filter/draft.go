package filter

import (
	"fmt"

	"github.com/mesh-intelligence/clientdesk/internal/schema"
	"github.com/mesh-intelligence/clientdesk/internal/validate"
	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

// Draft is a filter group being authored. Conditions are addressed by a
// per-draft counter that is never persisted.
type Draft struct {
	reg     *schema.Registry
	catalog *Catalog
	opts    []validate.Option

	groupID    string
	name       string
	isDefault  bool
	conditions []types.FilterCondition
	nextID     int
}

// NewDraft starts an empty draft. opts select validation messages.
func NewDraft(reg *schema.Registry, catalog *Catalog, opts ...validate.Option) *Draft {
	return &Draft{reg: reg, catalog: catalog, opts: opts, nextID: 1}
}

// EditDraft starts a draft from a saved group. Conditions get fresh ids.
func EditDraft(reg *schema.Registry, catalog *Catalog, g types.FilterGroup, opts ...validate.Option) *Draft {
	d := NewDraft(reg, catalog, opts...)
	d.groupID, d.name, d.isDefault = g.ID, g.Name, g.IsDefault
	for _, c := range g.Conditions {
		c.ID = d.nextID
		d.nextID++
		d.conditions = append(d.conditions, c)
	}
	return d
}

// SetName sets the group name.
func (d *Draft) SetName(name string) { d.name = name }

// SetDefault marks the draft as the default group when saved.
func (d *Draft) SetDefault(v bool) { d.isDefault = v }

// Conditions returns a copy of the conditions in insertion order.
func (d *Draft) Conditions() []types.FilterCondition {
	return append([]types.FilterCondition(nil), d.conditions...)
}

// AddCondition appends an empty condition to bucket. Its field defaults to
// the first filterable field; the operator must still be chosen.
func (d *Draft) AddCondition(bucket types.Bucket) (types.FilterCondition, error) {
	if !bucket.Valid() {
		return types.FilterCondition{}, fmt.Errorf("%w: %q", types.ErrInvalidBucket, bucket)
	}
	c := types.FilterCondition{ID: d.nextID, Bucket: bucket}
	if fields := d.reg.Filterable(); len(fields) > 0 {
		c.AttrName = fields[0].Slug
	}
	d.nextID++
	d.conditions = append(d.conditions, c)
	return c, nil
}

func (d *Draft) find(id int) (int, error) {
	for i, c := range d.conditions {
		if c.ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %d", types.ErrConditionNotFound, id)
}

// SetAttr points condition id at slug. An operator that is not valid for
// the new field's data type is cleared.
func (d *Draft) SetAttr(id int, slug string) error {
	i, err := d.find(id)
	if err != nil {
		return err
	}
	f, ok := d.reg.Field(slug)
	if !ok {
		return fmt.Errorf("%w: %q", types.ErrUnknownField, slug)
	}
	if !f.Filterable() {
		return fmt.Errorf("%w: %q", types.ErrFieldNotFilterable, slug)
	}
	c := &d.conditions[i]
	c.AttrName = slug
	if c.Condition != "" && !d.catalog.Allows(f.DataType, c.Condition) {
		c.Condition = ""
	}
	return nil
}

// SetOperator sets the operator of condition id. It must be valid for the
// condition's field.
func (d *Draft) SetOperator(id int, op types.Operator) error {
	i, err := d.find(id)
	if err != nil {
		return err
	}
	c := &d.conditions[i]
	f, ok := d.reg.Field(c.AttrName)
	if !ok {
		return fmt.Errorf("%w: %q", types.ErrUnknownField, c.AttrName)
	}
	if !d.catalog.Allows(f.DataType, op) {
		return fmt.Errorf("%w: %q on %s field %q", types.ErrOperatorNotApplicable, op, f.DataType, f.Slug)
	}
	c.Condition = op
	return nil
}

// SetValue sets the comparison value of condition id.
func (d *Draft) SetValue(id int, value string) error {
	i, err := d.find(id)
	if err != nil {
		return err
	}
	d.conditions[i].Value = value
	return nil
}

// Remove deletes condition id from whichever bucket holds it. Removing the
// last condition leaves an invalid draft, not a deleted group.
func (d *Draft) Remove(id int) error {
	i, err := d.find(id)
	if err != nil {
		return err
	}
	d.conditions = append(d.conditions[:i], d.conditions[i+1:]...)
	return nil
}

// Validate checks the form rules and operator applicability.
func (d *Draft) Validate() validate.Result {
	res := validate.ValidateFilterForm(validate.FilterForm{Name: d.name, Conditions: d.conditions}, d.opts...)
	for i, c := range d.conditions {
		if c.AttrName == "" {
			continue
		}
		key := fmt.Sprintf("filters[%d].", i)
		f, ok := d.reg.Field(c.AttrName)
		switch {
		case !ok:
			addError(&res, key+"attr_name", types.ErrUnknownField.Error())
		case !f.Filterable():
			addError(&res, key+"attr_name", types.ErrFieldNotFilterable.Error())
		case c.Condition != "" && !d.catalog.Allows(f.DataType, c.Condition):
			addError(&res, key+"condition", types.ErrOperatorNotApplicable.Error())
		}
	}
	return res
}

func addError(res *validate.Result, key, msg string) {
	if _, exists := res.Errors[key]; !exists {
		res.Errors[key] = msg
	}
	res.Valid = false
}

// Build returns the group to persist. An invalid draft is not built; a
// draft without conditions also matches ErrEmptyFilterGroup.
func (d *Draft) Build() (types.FilterGroup, error) {
	res := d.Validate()
	if !res.Valid {
		err := res.Err()
		if len(d.conditions) == 0 {
			err = fmt.Errorf("%w: %w", types.ErrEmptyFilterGroup, err)
		}
		return types.FilterGroup{}, err
	}
	return types.FilterGroup{
		ID:         d.groupID,
		Name:       d.name,
		IsDefault:  d.isDefault,
		Conditions: d.Conditions(),
	}, nil
}
