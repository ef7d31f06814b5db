package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/clientdesk/pkg/clientdesk"
)

const modulePath = "github.com/mesh-intelligence/clientdesk"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the clientdesk version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "clientdesk v%s\nmodule: %s\n", clientdesk.Version, modulePath)
			return nil
		},
	}
}
