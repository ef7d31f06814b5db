package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/clientdesk/internal/validate"
	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

// statusNameField describes the single input of the request status form.
var statusNameField = types.FieldDescriptor{
	Slug:                "name",
	DisplayName:         "Name",
	DisplayNameByLocale: map[string]string{types.LocaleHebrew: "שם"},
	DataType:            types.DataTypeText,
	Required:            true,
}

func newRequestsCmd(f *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "requests",
		Short: "Manage client request settings",
	}
	statuses := &cobra.Command{
		Use:   "statuses",
		Short: "List, create, rename and delete request statuses",
	}
	statuses.AddCommand(
		newStatusesListCmd(f),
		newStatusesCreateCmd(f),
		newStatusesUpdateCmd(f),
		newStatusesDeleteCmd(f),
	)
	cmd.AddCommand(statuses)
	return cmd
}

// checkStatusName validates a status name in the current locale.
func (a *app) checkStatusName(name string) (string, error) {
	name = strings.TrimSpace(name)
	res := validate.Build([]types.FieldDescriptor{statusNameField},
		validate.WithMinLength(statusNameField.Slug, types.RequestStatusMinName),
		validate.WithLocale(a.lang()),
	).Validate(map[string]any{statusNameField.Slug: name})
	printValidation(a.errOut, res)
	if err := res.Err(); err != nil {
		return "", userError(err)
	}
	return name, nil
}

func newStatusesListCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List request statuses",
		Args:  cobra.NoArgs,
		RunE: withApp(f, func(cmd *cobra.Command, a *app, args []string) error {
			api, err := a.client()
			if err != nil {
				return err
			}
			list, err := api.ListRequestStatuses(cmd.Context())
			if err != nil {
				return err
			}
			if f.jsonMode {
				if list == nil {
					list = []types.RequestStatus{}
				}
				return a.printJSON(list)
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME")
			for _, s := range list {
				fmt.Fprintf(tw, "%s\t%s\n", s.ID, s.Name)
			}
			return tw.Flush()
		}),
	}
}

func newStatusesCreateCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Add a request status",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(f, func(cmd *cobra.Command, a *app, args []string) error {
			name, err := a.checkStatusName(args[0])
			if err != nil {
				return err
			}
			api, err := a.client()
			if err != nil {
				return err
			}
			s, err := api.CreateRequestStatus(cmd.Context(), name)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Created request status %s (%s)\n", s.ID, s.Name)
			return nil
		}),
	}
}

func newStatusesUpdateCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "update <id> <name>",
		Short: "Rename a request status",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(f, func(cmd *cobra.Command, a *app, args []string) error {
			name, err := a.checkStatusName(args[1])
			if err != nil {
				return err
			}
			api, err := a.client()
			if err != nil {
				return err
			}
			s, err := api.UpdateRequestStatus(cmd.Context(), args[0], name)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Renamed request status %s to %s\n", s.ID, s.Name)
			return nil
		}),
	}
}

func newStatusesDeleteCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a request status",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(f, func(cmd *cobra.Command, a *app, args []string) error {
			api, err := a.client()
			if err != nil {
				return err
			}
			if err := api.DeleteRequestStatus(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted request status %s\n", args[0])
			return nil
		}),
	}
}
