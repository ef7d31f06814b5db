package types

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// DataType is the declared type of a dynamic field as sent by the backend.
type DataType string

// Field data types recognized by the console.
const (
	DataTypeText     DataType = "text"
	DataTypeEmail    DataType = "email"
	DataTypeURL      DataType = "url"
	DataTypeNumber   DataType = "number"
	DataTypeCurrency DataType = "currency"
	DataTypePhone    DataType = "phone"
	DataTypeFile     DataType = "file"
	DataTypeSelect   DataType = "select"
	DataTypeCheckbox DataType = "checkbox"
	DataTypeDate     DataType = "date"
	DataTypeDatetime DataType = "datetime"
)

// Class groups data types that share rendering, comparison and operator rules.
type Class int

// Semantic classes. ClassUnknown is never returned alongside a nil error.
const (
	ClassUnknown Class = iota
	ClassText
	ClassNumeric
	ClassLink
	ClassDate
	ClassCheckbox
	ClassSelect
	ClassFile
)

var classNames = map[Class]string{
	ClassUnknown:  "unknown",
	ClassText:     "text",
	ClassNumeric:  "numeric",
	ClassLink:     "link",
	ClassDate:     "date",
	ClassCheckbox: "checkbox",
	ClassSelect:   "select",
	ClassFile:     "file",
}

func (c Class) String() string {
	if n, ok := classNames[c]; ok {
		return n
	}
	return "unknown"
}

// Class returns the semantic class of the data type.
// Returns ErrUnsupportedFieldType for types the console does not know.
func (d DataType) Class() (Class, error) {
	switch d {
	case DataTypeText:
		return ClassText, nil
	case DataTypeNumber, DataTypeCurrency:
		return ClassNumeric, nil
	case DataTypeEmail, DataTypeURL, DataTypePhone:
		return ClassLink, nil
	case DataTypeDate, DataTypeDatetime:
		return ClassDate, nil
	case DataTypeCheckbox:
		return ClassCheckbox, nil
	case DataTypeSelect:
		return ClassSelect, nil
	case DataTypeFile:
		return ClassFile, nil
	default:
		return ClassUnknown, fmt.Errorf("%w: %q", ErrUnsupportedFieldType, string(d))
	}
}

// UnmarshalJSON accepts both a bare string and the backend's {"value": "..."} object.
func (d *DataType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*d = DataType(s)
		return nil
	}
	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("decoding data_type: %w", err)
	}
	*d = DataType(obj.Value)
	return nil
}

// EnumChoice is one option of a select field.
type EnumChoice struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// UnmarshalJSON accepts numeric or string ids.
func (c *EnumChoice) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID    json.RawMessage `json:"id"`
		Label string          `json:"label"`
		Value string          `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, err := decodeID(raw.ID)
	if err != nil {
		return fmt.Errorf("decoding choice id: %w", err)
	}
	c.ID, c.Label, c.Value = id, raw.Label, raw.Value
	if c.Label == "" {
		c.Label = c.Value
	}
	return nil
}

// enumValues mirrors the backend's {"choices": [...]} wrapper.
type enumValues struct {
	Choices []EnumChoice `json:"choices"`
}

// FieldDescriptor is backend-declared metadata for one dynamic field.
type FieldDescriptor struct {
	ID                  string            // Backend field id, used when saving field flags.
	Slug                string            // Stable key into records, search and sort params.
	DisplayName         string            // Default label.
	DisplayNameByLocale map[string]string // Alternate labels keyed by locale code.
	DataType            DataType          // Declared type.
	Required            bool              // Value must be non-empty on submit.
	Unique              bool              // Backend enforces uniqueness.
	EnumChoices         []EnumChoice      // Ordered choices; select fields only.
	DefaultValue        string            // Placeholder or default.
	Display             bool              // Column visibility, toggled by the user.
	DisplayOrder        int               // Backend ordering hint.
}

type fieldJSON struct {
	ID                  json.RawMessage   `json:"id,omitempty"`
	Slug                string            `json:"field_slug"`
	DisplayName         string            `json:"field_name"`
	DisplayNameByLocale map[string]string `json:"field_name_language,omitempty"`
	DataType            DataType          `json:"data_type"`
	Required            bool              `json:"required"`
	Unique              bool              `json:"unique"`
	EnumValues          *enumValues       `json:"enum_values,omitempty"`
	DefaultValue        *string           `json:"defaultvalue,omitempty"`
	Display             bool              `json:"display"`
	DisplayOrder        int               `json:"display_order"`
}

// UnmarshalJSON decodes the backend's field representation.
func (f *FieldDescriptor) UnmarshalJSON(data []byte) error {
	var raw fieldJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, err := decodeID(raw.ID)
	if err != nil {
		return fmt.Errorf("decoding field id: %w", err)
	}
	*f = FieldDescriptor{
		ID:                  id,
		Slug:                raw.Slug,
		DisplayName:         raw.DisplayName,
		DisplayNameByLocale: raw.DisplayNameByLocale,
		DataType:            raw.DataType,
		Required:            raw.Required,
		Unique:              raw.Unique,
		Display:             raw.Display,
		DisplayOrder:        raw.DisplayOrder,
	}
	if raw.EnumValues != nil {
		f.EnumChoices = raw.EnumValues.Choices
	}
	if raw.DefaultValue != nil {
		f.DefaultValue = *raw.DefaultValue
	}
	return nil
}

// MarshalJSON encodes the field in the backend's representation so schema
// snapshots round-trip through local storage.
func (f FieldDescriptor) MarshalJSON() ([]byte, error) {
	raw := fieldJSON{
		Slug:                f.Slug,
		DisplayName:         f.DisplayName,
		DisplayNameByLocale: f.DisplayNameByLocale,
		DataType:            f.DataType,
		Required:            f.Required,
		Unique:              f.Unique,
		Display:             f.Display,
		DisplayOrder:        f.DisplayOrder,
	}
	if f.ID != "" {
		raw.ID = json.RawMessage(strconv.Quote(f.ID))
	}
	if len(f.EnumChoices) > 0 {
		raw.EnumValues = &enumValues{Choices: f.EnumChoices}
	}
	if f.DefaultValue != "" {
		dv := f.DefaultValue
		raw.DefaultValue = &dv
	}
	return json.Marshal(raw)
}

// Label returns the label for the locale, falling back to DisplayName.
func (f FieldDescriptor) Label(locale string) string {
	if l, ok := f.DisplayNameByLocale[locale]; ok && l != "" {
		return l
	}
	return f.DisplayName
}

// Filterable reports whether filter conditions may reference this field.
// File fields never are.
func (f FieldDescriptor) Filterable() bool {
	return f.DataType != DataTypeFile
}

// Choice returns the enum choice whose id or value equals key.
func (f FieldDescriptor) Choice(key string) (EnumChoice, bool) {
	for _, c := range f.EnumChoices {
		if c.ID == key || c.Value == key {
			return c, true
		}
	}
	return EnumChoice{}, false
}

// Block is a titled group of fields as returned by the schema endpoint.
type Block struct {
	ID                  string            `json:"block_id"`
	Name                string            `json:"block"`
	DisplayNameByLocale map[string]string `json:"field_name_language,omitempty"`
	DisplayOrder        int               `json:"display_order"`
	Fields              []FieldDescriptor `json:"field"`
}

// UnmarshalJSON accepts numeric or string block ids.
func (b *Block) UnmarshalJSON(data []byte) error {
	type alias Block
	var raw struct {
		alias
		ID json.RawMessage `json:"block_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, err := decodeID(raw.ID)
	if err != nil {
		return fmt.Errorf("decoding block id: %w", err)
	}
	*b = Block(raw.alias)
	b.ID = id
	return nil
}

// Title returns the block title for the locale.
func (b Block) Title(locale string) string {
	if l, ok := b.DisplayNameByLocale[locale]; ok && l != "" {
		return l
	}
	return b.Name
}

// decodeID turns a JSON number or string into a string id. Absent ids decode to "".
func decodeID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}
