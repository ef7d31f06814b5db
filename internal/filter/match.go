package filter

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/clientdesk/internal/codec"
	"github.com/mesh-intelligence/clientdesk/internal/schema"
	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

// Match reports whether rec satisfies group: every AND condition holds, or
// any OR condition holds. When one bucket is empty the other decides alone.
// A group without conditions is ErrEmptyFilterGroup.
func Match(group types.FilterGroup, rec types.EditableRecord, reg *schema.Registry) (bool, error) {
	and, or := group.Buckets()
	if len(and) == 0 && len(or) == 0 {
		return false, types.ErrEmptyFilterGroup
	}

	var allAnd, anyOr bool
	if len(and) > 0 {
		allAnd = true
		for _, c := range and {
			ok, err := Eval(c, rec, reg)
			if err != nil {
				return false, err
			}
			if !ok {
				allAnd = false
				break
			}
		}
	}
	for _, c := range or {
		ok, err := Eval(c, rec, reg)
		if err != nil {
			return false, err
		}
		if ok {
			anyOr = true
			break
		}
	}
	return allAnd || anyOr, nil
}

// Select returns the records matching group, preserving order.
func Select(group types.FilterGroup, recs []types.EditableRecord, reg *schema.Registry) ([]types.EditableRecord, error) {
	var out []types.EditableRecord
	for _, r := range recs {
		ok, err := Match(group, r, reg)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// Eval evaluates one condition against rec.
func Eval(c types.FilterCondition, rec types.EditableRecord, reg *schema.Registry) (bool, error) {
	f, ok := reg.Field(c.AttrName)
	if !ok {
		return false, fmt.Errorf("%w: %q", types.ErrUnknownField, c.AttrName)
	}
	if !f.Filterable() {
		return false, fmt.Errorf("%w: %q", types.ErrFieldNotFilterable, c.AttrName)
	}
	class, err := f.DataType.Class()
	if err != nil {
		return false, err
	}
	raw := rec.Value(c.AttrName)

	switch c.Condition {
	case types.OpIsEmpty:
		return isBlank(f, raw), nil
	case types.OpIsNotEmpty:
		return !isBlank(f, raw), nil
	}

	if !classAllows(class, c.Condition) {
		return false, notApplicable(c, f)
	}

	switch class {
	case types.ClassText, types.ClassLink:
		return evalText(c, codec.IsEmpty(raw), textOf(f, raw))
	case types.ClassNumeric:
		return evalNumber(c, raw)
	case types.ClassDate:
		return evalDate(c, raw)
	case types.ClassCheckbox:
		return evalCheckbox(c, f, raw)
	case types.ClassSelect:
		return evalSelect(c, f, raw)
	}
	return false, notApplicable(c, f)
}

// classOps lists the operators the local engine evaluates per class.
var classOps = map[types.Class][]types.OperatorOption{
	types.ClassText:     textOps,
	types.ClassLink:     textOps,
	types.ClassNumeric:  numberOps,
	types.ClassDate:     dateOps,
	types.ClassCheckbox: checkboxOps,
	types.ClassSelect:   selectOps,
}

func classAllows(class types.Class, op types.Operator) bool {
	for _, o := range classOps[class] {
		if o.Condition == op {
			return true
		}
	}
	return false
}

func notApplicable(c types.FilterCondition, f types.FieldDescriptor) error {
	return fmt.Errorf("%w: %q on %s field %q", types.ErrOperatorNotApplicable, c.Condition, f.DataType, f.Slug)
}

func isBlank(f types.FieldDescriptor, raw any) bool {
	if codec.IsEmpty(raw) {
		return true
	}
	d, err := codec.ToDisplay(f, raw)
	if err != nil {
		return true
	}
	return d.Blank()
}

func textOf(f types.FieldDescriptor, raw any) string {
	d, err := codec.ToDisplay(f, raw)
	if err != nil {
		return ""
	}
	return d.Text
}

func evalText(c types.FilterCondition, empty bool, value string) (bool, error) {
	v := strings.ToLower(value)
	want := strings.ToLower(strings.TrimSpace(c.Value))
	switch c.Condition {
	case types.OpEquals:
		return v == want, nil
	case types.OpNotEquals:
		return v != want, nil
	case types.OpContains:
		return !empty && strings.Contains(v, want), nil
	case types.OpNotContain:
		return !strings.Contains(v, want), nil
	case types.OpStartsWith:
		return !empty && strings.HasPrefix(v, want), nil
	case types.OpEndsWith:
		return !empty && strings.HasSuffix(v, want), nil
	}
	return false, fmt.Errorf("%w: %q on text", types.ErrOperatorNotApplicable, c.Condition)
}

func evalNumber(c types.FilterCondition, raw any) (bool, error) {
	want, err := codec.Number(c.Value)
	if err != nil {
		return false, err
	}
	got, err := codec.Number(raw)
	if err != nil || got == nil || want == nil {
		// Missing or unparsable values only satisfy "not equals".
		return c.Condition == types.OpNotEquals, nil
	}
	switch c.Condition {
	case types.OpEquals:
		return *got == *want, nil
	case types.OpNotEquals:
		return *got != *want, nil
	case types.OpGreater:
		return *got > *want, nil
	case types.OpGreaterEq:
		return *got >= *want, nil
	case types.OpLess:
		return *got < *want, nil
	case types.OpLessEq:
		return *got <= *want, nil
	}
	return false, fmt.Errorf("%w: %q on number", types.ErrOperatorNotApplicable, c.Condition)
}

func evalDate(c types.FilterCondition, raw any) (bool, error) {
	want, err := codec.ParseDate(c.Value)
	if err != nil {
		return false, err
	}
	got, err := codec.ParseDate(raw)
	if err != nil || got.IsZero() || want.IsZero() {
		return false, nil
	}
	gy, gm, gd := got.UTC().Date()
	wy, wm, wd := want.UTC().Date()
	switch c.Condition {
	case types.OpEquals:
		return gy == wy && gm == wm && gd == wd, nil
	case types.OpBefore:
		return got.Before(want), nil
	case types.OpAfter:
		return got.After(want), nil
	}
	return false, fmt.Errorf("%w: %q on date", types.ErrOperatorNotApplicable, c.Condition)
}

func evalCheckbox(c types.FilterCondition, f types.FieldDescriptor, raw any) (bool, error) {
	d, err := codec.ToDisplay(f, raw)
	if err != nil {
		return false, err
	}
	switch c.Condition {
	case types.OpIsTrue:
		return d.Checked, nil
	case types.OpIsFalse:
		return !d.Checked, nil
	}
	return false, notApplicable(c, f)
}

func evalSelect(c types.FilterCondition, f types.FieldDescriptor, raw any) (bool, error) {
	d, err := codec.ToDisplay(f, raw)
	if err != nil {
		return false, err
	}
	same := d.ChoiceID != "" && choiceMatches(f, d.ChoiceID, c.Value)
	switch c.Condition {
	case types.OpEquals:
		return same, nil
	case types.OpNotEquals:
		return !same, nil
	}
	return false, notApplicable(c, f)
}

// choiceMatches reports whether want names the choice id by id, value or
// label.
func choiceMatches(f types.FieldDescriptor, id, want string) bool {
	want = strings.TrimSpace(want)
	if c, ok := f.Choice(want); ok {
		return c.ID == id
	}
	for _, c := range f.EnumChoices {
		if c.ID == id && strings.EqualFold(c.Label, want) {
			return true
		}
	}
	return false
}
