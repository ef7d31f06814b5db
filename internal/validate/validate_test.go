package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

var personFields = []types.FieldDescriptor{
	{Slug: "name", DisplayName: "Name", DataType: types.DataTypeText, Required: true},
	{Slug: "age", DisplayName: "Age", DataType: types.DataTypeNumber},
}

func TestValidate_NameAgeScenario(t *testing.T) {
	plain := Build(personFields)
	withMin := Build(personFields, WithMinLength("name", 3))

	res := plain.Validate(map[string]any{"name": "", "age": "5"})
	assert.False(t, res.Valid)
	assert.Equal(t, map[string]string{"name": "Name is required"}, res.Errors)

	res = withMin.Validate(map[string]any{"name": "Jo", "age": "5"})
	assert.False(t, res.Valid)
	assert.Equal(t, "Name must be at least 3 characters", res.Errors["name"])
	assert.NotContains(t, res.Errors, "age")

	res = withMin.Validate(map[string]any{"name": "Joe", "age": "5"})
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
	assert.NoError(t, res.Err())
}

func TestValidate_TypeRules(t *testing.T) {
	fields := []types.FieldDescriptor{
		{Slug: "age", DisplayName: "Age", DataType: types.DataTypeNumber},
		{Slug: "price", DisplayName: "Price", DataType: types.DataTypeCurrency},
		{Slug: "email", DisplayName: "Email", DataType: types.DataTypeEmail},
		{Slug: "status", DisplayName: "Status", DataType: types.DataTypeSelect, EnumChoices: []types.EnumChoice{
			{ID: "1", Label: "Lead", Value: "lead"},
		}},
		{Slug: "dob", DisplayName: "Birthday", DataType: types.DataTypeDate},
	}
	s := Build(fields)

	tests := []struct {
		name   string
		values map[string]any
		want   map[string]string
	}{
		{"all empty is fine", map[string]any{}, map[string]string{}},
		{"valid values", map[string]any{"age": 3.0, "price": "10.5", "email": "a@b.io"}, map[string]string{}},
		{"not a number", map[string]any{"age": "three"}, map[string]string{"age": "must be a number"}},
		{"negative", map[string]any{"price": "-1"}, map[string]string{"price": "must be 0 or greater"}},
		{"bad email", map[string]any{"email": "a@b"}, map[string]string{"email": "must be a valid email address"}},
		{"known choice by id or value", map[string]any{"status": "1", "dob": "03/02/2024"}, map[string]string{}},
		{"choice by value", map[string]any{"status": "lead", "dob": "2024-02-03"}, map[string]string{}},
		{"unknown choice", map[string]any{"status": "bogus"}, map[string]string{"status": "must be one of the listed options"}},
		{"unparsable date", map[string]any{"dob": "31/31/2020"}, map[string]string{"dob": "must be a valid date (DD/MM/YYYY)"}},
		{"both rejected before payload", map[string]any{"status": "bogus", "dob": "31/31/2020"}, map[string]string{
			"status": "must be one of the listed options",
			"dob":    "must be a valid date (DD/MM/YYYY)",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.Validate(tt.values)
			assert.Equal(t, tt.want, res.Errors)
			assert.Equal(t, len(tt.want) == 0, res.Valid)
		})
	}
}

func TestValidate_RequiredKinds(t *testing.T) {
	fields := []types.FieldDescriptor{
		{Slug: "status", DisplayName: "Status", DataType: types.DataTypeSelect, Required: true,
			EnumChoices: []types.EnumChoice{{ID: "1", Label: "Open", Value: "open"}}},
		{Slug: "joined", DisplayName: "Joined", DataType: types.DataTypeDate, Required: true},
	}
	res := Build(fields).Validate(map[string]any{"status": "  ", "joined": nil})
	assert.Len(t, res.Errors, 2)

	res = Build(fields).Validate(map[string]any{"status": "1", "joined": "2026-01-01"})
	assert.True(t, res.Valid)
}

func TestValidate_HebrewMessages(t *testing.T) {
	fields := []types.FieldDescriptor{
		{Slug: "name", DisplayName: "Name", DisplayNameByLocale: map[string]string{"he": "שם"},
			DataType: types.DataTypeText, Required: true},
	}
	res := Build(fields, WithLocale("he")).Validate(nil)
	assert.Equal(t, "שם הוא שדה חובה", res.Errors["name"])

	res = Build(fields, WithLocale("fr")).Validate(nil)
	assert.Equal(t, "Name is required", res.Errors["name"], "unknown locale falls back to English")
}

func TestValidateField(t *testing.T) {
	s := Build(personFields, WithMinLength("name", 3))

	msg, ok := s.ValidateField("name", map[string]any{"name": "Al"})
	assert.False(t, ok)
	assert.NotEmpty(t, msg)

	_, ok = s.ValidateField("age", map[string]any{"name": "", "age": "4"})
	assert.True(t, ok, "blur checks only the named field")

	_, ok = s.ValidateField("unknown", nil)
	assert.True(t, ok)
}

func TestResultErr(t *testing.T) {
	res := Build(personFields).Validate(map[string]any{"age": "x"})
	err := res.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrValidation)
	assert.Contains(t, err.Error(), "age: must be a number; name: Name is required")
}

func TestRulesFor(t *testing.T) {
	f := types.FieldDescriptor{Slug: "n", DisplayName: "N", DataType: types.DataTypeNumber, Required: true}
	rules := RulesFor(f, "en", 2)
	require.Len(t, rules, 3)
	assert.IsType(t, requiredRule{}, rules[0])
	assert.IsType(t, minLengthRule{}, rules[1])
	assert.IsType(t, numberRule{}, rules[2])

	assert.Empty(t, RulesFor(types.FieldDescriptor{DataType: types.DataTypeDate}, "en", 0))
}

func TestValidateFilterForm(t *testing.T) {
	good := []types.FilterCondition{{AttrName: "age", Condition: types.OpGreater, Value: "18", Bucket: types.BucketAnd}}

	tests := []struct {
		name         string
		form         FilterForm
		wantErrors   []string
		wantWarnings []string
	}{
		{name: "valid", form: FilterForm{Name: "Adults", Conditions: good}},
		{name: "missing name", form: FilterForm{Conditions: good}, wantErrors: []string{"filter_name"}},
		{name: "short name", form: FilterForm{Name: "Ad", Conditions: good}, wantErrors: []string{"filter_name"}},
		{name: "no conditions", form: FilterForm{Name: "Adults"}, wantErrors: []string{"filters"}},
		{
			name: "condition without attr and operator",
			form: FilterForm{Name: "Adults", Conditions: []types.FilterCondition{good[0], {Bucket: types.BucketOr}}},
			wantErrors: []string{"filters[1].attr_name", "filters[1].condition"},
		},
		{
			name: "empty value is a warning",
			form: FilterForm{Name: "Adults", Conditions: []types.FilterCondition{
				{AttrName: "age", Condition: types.OpEquals, Bucket: types.BucketAnd},
			}},
			wantWarnings: []string{"filters[0].value"},
		},
		{
			name: "unary operator needs no value",
			form: FilterForm{Name: "No email", Conditions: []types.FilterCondition{
				{AttrName: "email", Condition: types.OpIsEmpty, Bucket: types.BucketOr},
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateFilterForm(tt.form)
			assert.Equal(t, len(tt.wantErrors) == 0, res.Valid)
			assert.Len(t, res.Errors, len(tt.wantErrors))
			for _, k := range tt.wantErrors {
				assert.Contains(t, res.Errors, k)
			}
			assert.Len(t, res.Warnings, len(tt.wantWarnings))
			for _, k := range tt.wantWarnings {
				assert.Contains(t, res.Warnings, k)
			}
		})
	}
}
