package csvio

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mesh-intelligence/clientdesk/internal/codec"
	"github.com/mesh-intelligence/clientdesk/internal/schema"
	"github.com/mesh-intelligence/clientdesk/internal/validate"
	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

// Import errors.
var (
	ErrEmptyFile       = errors.New("import file has no header row")
	ErrDuplicateColumn = errors.New("column maps to a field twice")
)

// RowError is a problem with one data row. Line is 1-based and counts the
// header.
type RowError struct {
	Line  int
	Field string
	Err   error
}

func (e RowError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: %s: %v", e.Line, e.Field, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// Result holds the rows ready to send and the rows that were rejected.
type Result struct {
	Columns []string // Field slug per CSV column.
	Rows    []map[string]any
	Errors  []RowError
}

// Err joins the row errors, or returns nil.
func (r Result) Err() error {
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// Parse reads an import CSV. Header cells are matched to fields by slug or
// label. Values are normalized for the backend: select labels become choice
// ids, dates become YYYY-MM-DD, numbers become floats. A row that misses a
// required field or has a bad value is reported and left out.
func Parse(r io.Reader, reg *schema.Registry, opts ...validate.Option) (Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("reading import: %w", err)
	}
	cr := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, BOM)))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return Result{}, ErrEmptyFile
	}
	if err != nil {
		return Result{}, fmt.Errorf("reading header: %w", err)
	}
	fields, err := mapHeader(header, reg)
	if err != nil {
		return Result{}, err
	}

	res := Result{Columns: make([]string, len(fields))}
	for i, f := range fields {
		res.Columns[i] = f.Slug
	}
	checker := validate.Build(reg.Fields(), append([]validate.Option{validate.WithLocale(reg.Locale())}, opts...)...)

	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			res.Errors = append(res.Errors, RowError{Line: line, Err: err})
			continue
		}
		if blankRow(rec) {
			continue
		}
		row, errs := parseRow(line, rec, fields, reg, checker)
		if len(errs) > 0 {
			res.Errors = append(res.Errors, errs...)
			continue
		}
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}

func mapHeader(header []string, reg *schema.Registry) ([]types.FieldDescriptor, error) {
	if len(header) == 0 {
		return nil, ErrEmptyFile
	}
	out := make([]types.FieldDescriptor, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		f, ok := reg.Resolve(name)
		if !ok {
			return nil, fmt.Errorf("column %d %q: %w", i+1, name, types.ErrUnknownField)
		}
		if seen[f.Slug] {
			return nil, fmt.Errorf("column %d %q: %w", i+1, name, ErrDuplicateColumn)
		}
		seen[f.Slug] = true
		out[i] = f
	}
	return out, nil
}

func blankRow(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseRow(line int, rec []string, cols []types.FieldDescriptor, reg *schema.Registry, checker *validate.Schema) (map[string]any, []RowError) {
	raw := make(map[string]any, len(cols))
	for i, f := range cols {
		if i >= len(rec) {
			break
		}
		if v := strings.TrimSpace(rec[i]); v != "" {
			raw[f.Slug] = choiceID(f, v)
		}
	}
	for _, f := range reg.Fields() {
		if _, ok := raw[f.Slug]; !ok && f.Required && f.DefaultValue != "" {
			raw[f.Slug] = f.DefaultValue
		}
	}

	var errs []RowError
	if v := checker.Validate(raw); !v.Valid {
		slugs := make([]string, 0, len(v.Errors))
		for s := range v.Errors {
			slugs = append(slugs, s)
		}
		sort.Strings(slugs)
		for _, s := range slugs {
			errs = append(errs, RowError{Line: line, Field: s, Err: fmt.Errorf("%w: %s", types.ErrValidation, v.Errors[s])})
		}
		return nil, errs
	}

	row := make(map[string]any, len(raw))
	for slug, v := range raw {
		f, _ := reg.Field(slug)
		norm, err := normalize(f, v.(string))
		if err != nil {
			errs = append(errs, RowError{Line: line, Field: slug, Err: err})
			continue
		}
		row[slug] = norm
	}
	sort.Slice(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })
	return row, errs
}

// normalize converts one cell into the value the import endpoint expects.
func normalize(f types.FieldDescriptor, v string) (any, error) {
	class, err := f.DataType.Class()
	if err != nil {
		return nil, err
	}
	switch class {
	case types.ClassSelect:
		return codec.ToSubmission(f, choiceID(f, v))
	case types.ClassDate:
		t, err := codec.ParseDate(v)
		if err != nil {
			return nil, err
		}
		return t.Format(codec.ImportDateLayout), nil
	case types.ClassNumeric, types.ClassCheckbox:
		return codec.ToSubmission(f, v)
	case types.ClassText, types.ClassLink, types.ClassFile:
		return v, nil
	}
	return nil, fmt.Errorf("%w: %q", types.ErrUnsupportedFieldType, string(f.DataType))
}

// choiceID maps a select label to its choice id so validation and
// submission see the id. Other values pass through.
func choiceID(f types.FieldDescriptor, v string) string {
	if f.DataType != types.DataTypeSelect {
		return v
	}
	for _, c := range f.EnumChoices {
		if strings.EqualFold(c.Label, v) {
			return c.ID
		}
	}
	return v
}
