package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

func newProfilesCmd(f *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Inspect netfree profiles",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List netfree profiles; clients are created under one of them",
		Args:  cobra.NoArgs,
		RunE: withApp(f, func(cmd *cobra.Command, a *app, args []string) error {
			api, err := a.client()
			if err != nil {
				return err
			}
			profiles, err := api.ListProfiles(cmd.Context())
			if err != nil {
				return err
			}
			if f.jsonMode {
				if profiles == nil {
					profiles = []types.Profile{}
				}
				return a.printJSON(profiles)
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION\tDEFAULT")
			for _, p := range profiles {
				def := ""
				if p.IsDefault {
					def = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Description, def)
			}
			return tw.Flush()
		}),
	})
	return cmd
}
