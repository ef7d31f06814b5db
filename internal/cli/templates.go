package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

func newTemplatesCmd(f *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List, clone and delete email templates",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List email templates",
			Args:  cobra.NoArgs,
			RunE: withApp(f, func(cmd *cobra.Command, a *app, args []string) error {
				api, err := a.client()
				if err != nil {
					return err
				}
				tpls, err := api.ListTemplates(cmd.Context())
				if err != nil {
					return err
				}
				if f.jsonMode {
					if tpls == nil {
						tpls = []types.EmailTemplate{}
					}
					return a.printJSON(tpls)
				}
				tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tSUBJECT\tLANG")
				for _, t := range tpls {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.ID, t.Name, t.Subject, t.Language)
				}
				return tw.Flush()
			}),
		},
		&cobra.Command{
			Use:   "clone <id>",
			Short: "Copy an email template",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(f, func(cmd *cobra.Command, a *app, args []string) error {
				api, err := a.client()
				if err != nil {
					return err
				}
				if err := api.CloneTemplate(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Cloned template %s\n", args[0])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete an email template",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(f, func(cmd *cobra.Command, a *app, args []string) error {
				api, err := a.client()
				if err != nil {
					return err
				}
				if err := api.DeleteTemplate(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Deleted template %s\n", args[0])
				return nil
			}),
		},
	)
	return cmd
}
