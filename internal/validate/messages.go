package validate

import (
	"fmt"

	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

// Messages holds the validation message templates for one locale.
type Messages struct {
	Required          string // %s: field label
	MinLength         string // %s: field label, %d: length
	Number            string
	NonNegative       string
	Email             string
	Choice            string
	Date              string
	FilterName        string
	FilterNameLength  string // %d: length
	FilterConditions  string
	AttrRequired      string
	ConditionRequired string
	ValueMissing      string
}

// Catalog maps locale codes to messages.
type Catalog map[string]Messages

// DefaultCatalog returns the built-in English and Hebrew messages.
func DefaultCatalog() Catalog {
	return Catalog{
		types.LocaleEnglish: {
			Required:          "%s is required",
			MinLength:         "%s must be at least %d characters",
			Number:            "must be a number",
			NonNegative:       "must be 0 or greater",
			Email:             "must be a valid email address",
			Choice:            "must be one of the listed options",
			Date:              "must be a valid date (DD/MM/YYYY)",
			FilterName:        "filter name is required",
			FilterNameLength:  "filter name must be at least %d characters",
			FilterConditions:  "add at least one condition",
			AttrRequired:      "choose a field",
			ConditionRequired: "choose an operator",
			ValueMissing:      "no value given; the condition compares against an empty value",
		},
		types.LocaleHebrew: {
			Required:          "%s הוא שדה חובה",
			MinLength:         "%s חייב להכיל לפחות %d תווים",
			Number:            "יש להזין מספר",
			NonNegative:       "יש להזין 0 או יותר",
			Email:             "יש להזין כתובת אימייל תקינה",
			Choice:            "יש לבחור אחת מהאפשרויות",
			Date:              "יש להזין תאריך תקין (DD/MM/YYYY)",
			FilterName:        "יש להזין שם למסנן",
			FilterNameLength:  "שם המסנן חייב להכיל לפחות %d תווים",
			FilterConditions:  "יש להוסיף לפחות תנאי אחד",
			AttrRequired:      "יש לבחור שדה",
			ConditionRequired: "יש לבחור אופרטור",
			ValueMissing:      "לא הוזן ערך; התנאי ישווה לערך ריק",
		},
	}
}

// For returns the messages for locale, falling back to English.
func (c Catalog) For(locale string) Messages {
	if m, ok := c[locale]; ok {
		return m
	}
	return c[types.LocaleEnglish]
}

func (m Messages) required(label string) string { return fmt.Sprintf(m.Required, label) }

func (m Messages) minLength(label string, n int) string { return fmt.Sprintf(m.MinLength, label, n) }
