package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/clientdesk/internal/projection"
)

func newColumnsCmd(f *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "columns",
		Short: "List and toggle listing columns",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List fields and whether each is shown as a column",
			Args:  cobra.NoArgs,
			RunE: withApp(f, func(cmd *cobra.Command, a *app, args []string) error {
				reg, err := a.registry(cmd.Context())
				if err != nil {
					return err
				}
				if f.jsonMode {
					out := make([]map[string]any, 0)
					for _, fd := range reg.Fields() {
						out = append(out, map[string]any{"slug": fd.Slug, "label": fd.Label(reg.Locale()), "display": fd.Display})
					}
					return a.printJSON(out)
				}
				for _, fd := range reg.Fields() {
					mark := "[ ]"
					if fd.Display {
						mark = "[x]"
					}
					fmt.Fprintf(a.out, "%s %s (%s)\n", mark, fd.Label(reg.Locale()), fd.Slug)
				}
				return nil
			}),
		},
		newColumnToggleCmd(f, "show", true),
		newColumnToggleCmd(f, "hide", false),
	)
	return cmd
}

func newColumnToggleCmd(f *rootFlags, verb string, display bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <field>",
		Short: fmt.Sprintf("%s a column in the listing", capitalize(verb)),
		Args:  cobra.ExactArgs(1),
		RunE: withApp(f, func(cmd *cobra.Command, a *app, args []string) error {
			reg, err := a.registry(cmd.Context())
			if err != nil {
				return err
			}
			fd, err := resolveField(reg, args[0])
			if err != nil {
				return err
			}
			api, err := a.client()
			if err != nil {
				return err
			}
			if err := projection.SetVisible(cmd.Context(), reg, fd.Slug, display, api); err != nil {
				return err
			}
			state := "hidden"
			if display {
				state = "shown"
			}
			fmt.Fprintf(a.out, "Column %s %s\n", fd.Slug, state)
			return nil
		}),
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
