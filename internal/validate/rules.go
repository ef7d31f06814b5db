package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mesh-intelligence/clientdesk/internal/codec"
	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Rule checks one field value. It returns the error message and false when
// the value is rejected.
type Rule interface {
	Check(value any, m Messages) (string, bool)
}

type requiredRule struct{ label string }

func (r requiredRule) Check(v any, m Messages) (string, bool) {
	if codec.IsEmpty(v) {
		return m.required(r.label), false
	}
	return "", true
}

type minLengthRule struct {
	label string
	n     int
}

func (r minLengthRule) Check(v any, m Messages) (string, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return "", true
	}
	if utf8.RuneCountInString(strings.TrimSpace(s)) < r.n {
		return m.minLength(r.label, r.n), false
	}
	return "", true
}

type numberRule struct{}

func (numberRule) Check(v any, m Messages) (string, bool) {
	n, err := codec.Number(v)
	if err != nil {
		return m.Number, false
	}
	if n != nil && *n < 0 {
		return m.NonNegative, false
	}
	return "", true
}

type emailRule struct{}

func (emailRule) Check(v any, m Messages) (string, bool) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", true
	}
	if !emailPattern.MatchString(strings.TrimSpace(s)) {
		return m.Email, false
	}
	return "", true
}

type choiceRule struct{ field types.FieldDescriptor }

func (r choiceRule) Check(v any, m Messages) (string, bool) {
	if codec.IsEmpty(v) {
		return "", true
	}
	if _, err := codec.ToSubmission(r.field, v); err != nil {
		return m.Choice, false
	}
	return "", true
}

type dateRule struct{}

func (dateRule) Check(v any, m Messages) (string, bool) {
	if _, err := codec.ParseDate(v); err != nil {
		return m.Date, false
	}
	return "", true
}

// RulesFor maps a field to its ordered rules. It has no side effects.
// minLength is zero when no length rule applies.
func RulesFor(f types.FieldDescriptor, locale string, minLength int) []Rule {
	label := f.Label(locale)
	var rules []Rule
	if f.Required {
		rules = append(rules, requiredRule{label: label})
	}
	if minLength > 0 {
		rules = append(rules, minLengthRule{label: label, n: minLength})
	}
	switch f.DataType {
	case types.DataTypeNumber, types.DataTypeCurrency:
		rules = append(rules, numberRule{})
	case types.DataTypeEmail:
		rules = append(rules, emailRule{})
	case types.DataTypeSelect:
		rules = append(rules, choiceRule{field: f})
	case types.DataTypeDate, types.DataTypeDatetime:
		rules = append(rules, dateRule{})
	case types.DataTypeText, types.DataTypeURL, types.DataTypePhone, types.DataTypeFile,
		types.DataTypeCheckbox:
	}
	return rules
}
