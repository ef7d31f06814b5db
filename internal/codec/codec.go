// Package codec converts stored field values to their rendered form and
// normalizes user input for submission, per field data type.
package codec

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

// Date layouts.
const (
	DisplayDateLayout    = "02/01/2006"
	SubmissionDateLayout = "2006-01-02T15:04:05.000Z"
	ImportDateLayout     = "2006-01-02"
)

// uploadPrefix marks the storage path segment stripped from file names.
const uploadPrefix = "upload/"

// dateLayouts are tried in order when parsing a stored or typed date.
var dateLayouts = []string{
	time.RFC3339Nano,
	SubmissionDateLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	ImportDateLayout,
	DisplayDateLayout,
}

// Display is the renderable form of one value.
type Display struct {
	Class    types.Class
	Text     string // Rendered text. Empty means no value.
	Href     string // Link target; set for non-blank LINK values.
	Checked  bool   // Checkbox state.
	ChoiceID string // Resolved choice id for SELECT values.
}

// Blank reports whether the value renders as an empty cell.
func (d Display) Blank() bool {
	return d.Text == "" && d.Class != types.ClassCheckbox
}

// String returns the cell text. Checkboxes render as [x] or [ ].
func (d Display) String() string {
	if d.Class == types.ClassCheckbox {
		if d.Checked {
			return "[x]"
		}
		return "[ ]"
	}
	return d.Text
}

// ToDisplay renders raw for field. Only an unsupported data type is an
// error; unparsable dates and numbers degrade to blank or raw text.
func ToDisplay(field types.FieldDescriptor, raw any) (Display, error) {
	class, err := field.DataType.Class()
	if err != nil {
		return Display{}, err
	}
	if d, ok := raw.(Display); ok {
		d.Class = class
		return d, nil
	}

	d := Display{Class: class}
	switch class {
	case types.ClassText:
		d.Text = text(raw)
	case types.ClassNumeric:
		if n, err := number(raw); err == nil && n != nil {
			d.Text = strconv.FormatFloat(*n, 'f', -1, 64)
		}
	case types.ClassLink:
		d.Text = text(raw)
		if d.Text != "" {
			d.Href = href(field.DataType, d.Text)
		}
	case types.ClassDate:
		if t, err := parseDate(raw); err == nil && !t.IsZero() {
			d.Text = t.Format(DisplayDateLayout)
		}
	case types.ClassCheckbox:
		d.Checked = checked(raw)
	case types.ClassSelect:
		if c, ok := resolveChoice(field, raw); ok {
			d.Text, d.ChoiceID = c.Label, c.ID
		}
	case types.ClassFile:
		d.Text = fileName(raw)
	}
	return d, nil
}

// ToSubmission normalizes raw (a stored value, typed text or a Display) into
// the value sent to the backend. Empty input submits as nil.
func ToSubmission(field types.FieldDescriptor, raw any) (any, error) {
	class, err := field.DataType.Class()
	if err != nil {
		return nil, err
	}
	d, isDisplay := raw.(Display)

	switch class {
	case types.ClassText, types.ClassLink:
		if isDisplay {
			return d.Text, nil
		}
		if raw == nil {
			return nil, nil
		}
		return text(raw), nil
	case types.ClassNumeric:
		if isDisplay {
			raw = d.Text
		}
		n, err := number(raw)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", field.Slug, err)
		}
		if n == nil {
			return nil, nil
		}
		return *n, nil
	case types.ClassDate:
		if isDisplay {
			raw = d.Text
		}
		t, err := parseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", field.Slug, err)
		}
		if t.IsZero() {
			return nil, nil
		}
		return t.UTC().Format(SubmissionDateLayout), nil
	case types.ClassCheckbox:
		if isDisplay {
			return d.Checked, nil
		}
		return checked(raw), nil
	case types.ClassSelect:
		if isDisplay {
			if d.ChoiceID == "" {
				return nil, nil
			}
			return d.ChoiceID, nil
		}
		if isEmpty(raw) {
			return nil, nil
		}
		c, ok := resolveChoice(field, raw)
		if !ok {
			return nil, fmt.Errorf("field %q: %w: %v", field.Slug, types.ErrInvalidChoice, raw)
		}
		return c.ID, nil
	case types.ClassFile:
		if isDisplay {
			return d.Text, nil
		}
		return raw, nil
	}
	return nil, fmt.Errorf("%w: %q", types.ErrUnsupportedFieldType, string(field.DataType))
}

// AcceptNumericKey reports whether a keystroke may be typed into a numeric
// input: digits and editing or navigation keys.
func AcceptNumericKey(key string) bool {
	if len(key) == 1 {
		return key[0] >= '0' && key[0] <= '9'
	}
	switch key {
	case "Backspace", "Delete", "Tab", "Enter", "Escape",
		"ArrowLeft", "ArrowRight", "ArrowUp", "ArrowDown", "Home", "End":
		return true
	}
	return false
}

// IsEmpty reports whether raw counts as no value: nil, a blank string or an
// empty Display.
func IsEmpty(raw any) bool {
	if d, ok := raw.(Display); ok {
		return d.Blank() && d.ChoiceID == ""
	}
	return isEmpty(raw)
}

// Number parses raw as a float. Empty input yields nil.
func Number(raw any) (*float64, error) {
	return number(raw)
}

// ParseDate parses raw in any accepted layout. Empty input yields the zero
// time.
func ParseDate(raw any) (time.Time, error) {
	return parseDate(raw)
}

func isEmpty(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	}
	return false
}

func text(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case map[string]any:
		if s, ok := v["value"].(string); ok {
			return s
		}
	}
	return fmt.Sprint(raw)
}

func number(raw any) (*float64, error) {
	var f float64
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: %q", types.ErrInvalidNumber, v.String())
		}
		f = n
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, nil
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", types.ErrInvalidNumber, v)
		}
		f = n
	default:
		return nil, fmt.Errorf("%w: %T", types.ErrInvalidNumber, raw)
	}
	return &f, nil
}

func parseDate(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return v, nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, nil
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("%w: %q", types.ErrInvalidDate, v)
	}
	return time.Time{}, fmt.Errorf("%w: %T", types.ErrInvalidDate, raw)
}

func checked(raw any) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}

func href(dt types.DataType, value string) string {
	switch dt {
	case types.DataTypeEmail:
		return "mailto:" + value
	case types.DataTypeURL:
		return value
	default:
		return "#"
	}
}

// resolveChoice matches a stored id, value or {"id","value"} object
// against the field's choices.
func resolveChoice(field types.FieldDescriptor, raw any) (types.EnumChoice, bool) {
	if obj, ok := raw.(map[string]any); ok {
		if id, ok := obj["id"]; ok && id != nil {
			if c, ok := field.Choice(text(id)); ok {
				return c, true
			}
		}
		if v, ok := obj["value"]; ok && v != nil {
			return field.Choice(text(v))
		}
		return types.EnumChoice{}, false
	}
	if isEmpty(raw) {
		return types.EnumChoice{}, false
	}
	return field.Choice(text(raw))
}

func fileName(raw any) string {
	var name string
	switch v := raw.(type) {
	case map[string]any:
		for _, key := range []string{"name", "file_name"} {
			if s, ok := v[key].(string); ok && s != "" {
				name = s
				break
			}
		}
	default:
		name = text(raw)
	}
	if _, after, found := strings.Cut(name, uploadPrefix); found {
		return after
	}
	return name
}
