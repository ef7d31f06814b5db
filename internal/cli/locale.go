package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

func newLocaleCmd(f *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locale",
		Short: "Show or change the console locale",
		Args:  cobra.NoArgs,
		RunE: withApp(f, func(cmd *cobra.Command, a *app, args []string) error {
			return printLocale(a)
		}),
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "get",
			Short: "Print the active locale",
			Args:  cobra.NoArgs,
			RunE: withApp(f, func(cmd *cobra.Command, a *app, args []string) error {
				return printLocale(a)
			}),
		},
		&cobra.Command{
			Use:   "set <code>",
			Short: "Persist the locale used for labels, messages and fetches",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(f, func(cmd *cobra.Command, a *app, args []string) error {
				if err := a.locale.Set(args[0]); err != nil {
					return userError(err)
				}
				fmt.Fprintf(a.out, "Locale set to %s\n", a.locale.Current())
				return nil
			}),
		},
	)
	return cmd
}

func printLocale(a *app) error {
	if a.flags.jsonMode {
		return a.printJSON(map[string]any{"locale": a.locale.Current(), "supported": types.SupportedLocales})
	}
	fmt.Fprintln(a.out, a.locale.Current())
	return nil
}
