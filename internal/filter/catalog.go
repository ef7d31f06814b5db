// Package filter composes, validates and evaluates saved AND/OR filter
// groups over dynamic fields.
package filter

import (
	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

// Catalog lists the operators valid for each data type.
type Catalog struct {
	sets map[types.DataType][]types.OperatorOption
}

// NewCatalog builds a catalog from the backend's operator sets. Later sets
// for the same data type are appended.
func NewCatalog(sets []types.OperatorSet) *Catalog {
	c := &Catalog{sets: make(map[types.DataType][]types.OperatorOption)}
	for _, s := range sets {
		c.sets[s.DataType] = append(c.sets[s.DataType], s.Conditions...)
	}
	return c
}

var (
	textOps = []types.OperatorOption{
		{Condition: types.OpEquals, Label: "equals"},
		{Condition: types.OpNotEquals, Label: "does not equal"},
		{Condition: types.OpContains, Label: "contains"},
		{Condition: types.OpNotContain, Label: "does not contain"},
		{Condition: types.OpStartsWith, Label: "starts with"},
		{Condition: types.OpEndsWith, Label: "ends with"},
		{Condition: types.OpIsEmpty, Label: "is empty"},
		{Condition: types.OpIsNotEmpty, Label: "is not empty"},
	}
	numberOps = []types.OperatorOption{
		{Condition: types.OpEquals, Label: "="},
		{Condition: types.OpNotEquals, Label: "≠"},
		{Condition: types.OpGreater, Label: ">"},
		{Condition: types.OpGreaterEq, Label: "≥"},
		{Condition: types.OpLess, Label: "<"},
		{Condition: types.OpLessEq, Label: "≤"},
		{Condition: types.OpIsEmpty, Label: "is empty"},
		{Condition: types.OpIsNotEmpty, Label: "is not empty"},
	}
	dateOps = []types.OperatorOption{
		{Condition: types.OpEquals, Label: "on"},
		{Condition: types.OpBefore, Label: "before"},
		{Condition: types.OpAfter, Label: "after"},
		{Condition: types.OpIsEmpty, Label: "is empty"},
		{Condition: types.OpIsNotEmpty, Label: "is not empty"},
	}
	selectOps = []types.OperatorOption{
		{Condition: types.OpEquals, Label: "is"},
		{Condition: types.OpNotEquals, Label: "is not"},
		{Condition: types.OpIsEmpty, Label: "is empty"},
		{Condition: types.OpIsNotEmpty, Label: "is not empty"},
	}
	checkboxOps = []types.OperatorOption{
		{Condition: types.OpIsTrue, Label: "is checked"},
		{Condition: types.OpIsFalse, Label: "is not checked"},
	}
)

// DefaultCatalog returns the operators the local engine can evaluate. It is
// used when the backend catalog is unavailable.
func DefaultCatalog() *Catalog {
	sets := []types.OperatorSet{
		{DataType: types.DataTypeNumber, Conditions: numberOps},
		{DataType: types.DataTypeCurrency, Conditions: numberOps},
		{DataType: types.DataTypeDate, Conditions: dateOps},
		{DataType: types.DataTypeDatetime, Conditions: dateOps},
		{DataType: types.DataTypeSelect, Conditions: selectOps},
		{DataType: types.DataTypeCheckbox, Conditions: checkboxOps},
	}
	for _, dt := range []types.DataType{types.DataTypeText, types.DataTypeEmail, types.DataTypeURL, types.DataTypePhone} {
		sets = append(sets, types.OperatorSet{DataType: dt, Conditions: textOps})
	}
	return NewCatalog(sets)
}

// ValidOperators returns the operators declared for dataType, in catalog
// order. File fields never have operators.
func (c *Catalog) ValidOperators(dataType types.DataType) []types.OperatorOption {
	if dataType == types.DataTypeFile {
		return nil
	}
	return append([]types.OperatorOption(nil), c.sets[dataType]...)
}

// Allows reports whether op is declared for dataType.
func (c *Catalog) Allows(dataType types.DataType, op types.Operator) bool {
	for _, o := range c.ValidOperators(dataType) {
		if o.Condition == op {
			return true
		}
	}
	return false
}

// Label returns the catalog label for op under dataType, or the operator
// name when the catalog has none.
func (c *Catalog) Label(dataType types.DataType, op types.Operator) string {
	for _, o := range c.sets[dataType] {
		if o.Condition == op && o.Label != "" {
			return o.Label
		}
	}
	return string(op)
}
