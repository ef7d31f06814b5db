package types

import (
	"encoding/json"
	"fmt"
)

// Bucket tags a condition as part of the AND group or the OR group.
type Bucket string

// Condition buckets.
const (
	BucketAnd Bucket = "AND"
	BucketOr  Bucket = "OR"
)

// Valid reports whether b is a known bucket.
func (b Bucket) Valid() bool {
	return b == BucketAnd || b == BucketOr
}

// Operator names a filter comparison.
type Operator string

// Operators understood by the local predicate engine. The backend catalog may
// expose a subset or use the same names with its own labels.
const (
	OpEquals     Operator = "equals"
	OpNotEquals  Operator = "not_equals"
	OpContains   Operator = "contains"
	OpNotContain Operator = "not_contains"
	OpStartsWith Operator = "starts_with"
	OpEndsWith   Operator = "ends_with"
	OpGreater    Operator = "gt"
	OpGreaterEq  Operator = "gte"
	OpLess       Operator = "lt"
	OpLessEq     Operator = "lte"
	OpBefore     Operator = "before"
	OpAfter      Operator = "after"
	OpIsEmpty    Operator = "is_empty"
	OpIsNotEmpty Operator = "is_not_empty"
	OpIsTrue     Operator = "is_true"
	OpIsFalse    Operator = "is_false"
)

// Unary reports whether the operator ignores the condition value.
func (o Operator) Unary() bool {
	switch o {
	case OpIsEmpty, OpIsNotEmpty, OpIsTrue, OpIsFalse:
		return true
	}
	return false
}

// FilterCondition is one attribute/operator/value triple.
// ID is a draft-local counter used to address the condition while editing; it
// is never sent to or read from the backend.
type FilterCondition struct {
	ID        int      `json:"-"`
	AttrName  string   `json:"attr_name"`
	Condition Operator `json:"condition"`
	Value     string   `json:"value"`
	Bucket    Bucket   `json:"operator"`
}

// FilterGroup is a named, savable set of conditions.
type FilterGroup struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	IsDefault  bool              `json:"fg_default"`
	Conditions []FilterCondition `json:"filters"`
}

// UnmarshalJSON accepts numeric or string group ids.
func (g *FilterGroup) UnmarshalJSON(data []byte) error {
	type alias FilterGroup
	var raw struct {
		alias
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, err := decodeID(raw.ID)
	if err != nil {
		return fmt.Errorf("decoding filter group id: %w", err)
	}
	*g = FilterGroup(raw.alias)
	g.ID = id
	return nil
}

// Buckets splits the conditions into the AND and OR buckets, preserving order.
func (g FilterGroup) Buckets() (and, or []FilterCondition) {
	for _, c := range g.Conditions {
		switch c.Bucket {
		case BucketOr:
			or = append(or, c)
		default:
			and = append(and, c)
		}
	}
	return and, or
}

// OperatorOption is one entry of the backend operator catalog.
type OperatorOption struct {
	Condition Operator `json:"condition"`
	Label     string   `json:"label"`
}

// OperatorSet lists the operators available for one data type.
type OperatorSet struct {
	DataType   DataType         `json:"datatype"`
	Conditions []OperatorOption `json:"conditions"`
}
