package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newSchemaCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the field blocks served by the backend",
		Args:  cobra.NoArgs,
		RunE: withApp(f, func(cmd *cobra.Command, a *app, args []string) error {
			reg, err := a.registry(cmd.Context())
			if err != nil {
				return err
			}
			if f.jsonMode {
				return a.printJSON(reg.Blocks())
			}
			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			for _, b := range reg.Blocks() {
				fmt.Fprintf(tw, "%s\n", b.Title(reg.Locale()))
				for _, fd := range b.Fields {
					fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", fd.Slug, fd.Label(reg.Locale()), fd.DataType, flagsOf(fd.Required, fd.Unique, fd.Display))
				}
			}
			return tw.Flush()
		}),
	}
}

func flagsOf(required, unique, display bool) string {
	s := ""
	for _, f := range []struct {
		on   bool
		name string
	}{{required, "required"}, {unique, "unique"}, {display, "shown"}} {
		if !f.on {
			continue
		}
		if s != "" {
			s += ","
		}
		s += f.name
	}
	return s
}
