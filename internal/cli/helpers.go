package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/mesh-intelligence/clientdesk/internal/projection"
	"github.com/mesh-intelligence/clientdesk/internal/schema"
	"github.com/mesh-intelligence/clientdesk/internal/validate"
	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

// resolveField finds a field by slug or label.
func resolveField(reg *schema.Registry, name string) (types.FieldDescriptor, error) {
	fd, ok := reg.Resolve(strings.TrimSpace(name))
	if !ok {
		return types.FieldDescriptor{}, userError(fmt.Errorf("%w: %q", types.ErrUnknownField, name))
	}
	return fd, nil
}

// parseAssignments turns "field=value" arguments into values keyed by slug.
// Select values may be given by label.
func parseAssignments(reg *schema.Registry, args []string) (map[string]any, error) {
	out := make(map[string]any, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, userError(fmt.Errorf("expected field=value, got %q", arg))
		}
		fd, err := resolveField(reg, name)
		if err != nil {
			return nil, err
		}
		out[fd.Slug] = inputValue(fd, value)
	}
	return out, nil
}

// inputValue maps a select label to its choice id; other values pass through.
func inputValue(fd types.FieldDescriptor, value string) any {
	if fd.DataType == types.DataTypeSelect {
		for _, c := range fd.EnumChoices {
			if strings.EqualFold(c.Label, value) {
				return c.ID
			}
		}
	}
	return value
}

// printValidation lists field errors and warnings, sorted by key.
func printValidation(w io.Writer, res validate.Result) {
	for _, group := range []struct {
		prefix string
		msgs   map[string]string
	}{{"error", res.Errors}, {"warning", res.Warnings}} {
		keys := make([]string, 0, len(group.msgs))
		for k := range group.msgs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "%s: %s: %s\n", group.prefix, k, group.msgs[k])
		}
	}
}

// outputWidth is the terminal width when w is a terminal.
func outputWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		return projection.Width(f)
	}
	return projection.DefaultWidth
}

// printRecords renders rows as a table of the visible columns.
func printRecords(w io.Writer, reg *schema.Registry, rows []types.EditableRecord) error {
	tbl, err := projection.Render(rows, projection.Columns(reg))
	if err != nil {
		return err
	}
	return projection.Write(w, tbl, outputWidth(w))
}
