package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newImportCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Re-import customers and sales leads on the server",
		Long:  "Runs the Dynamics import on the server and waits for it to finish. Requires an API token.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := opts.client().Import(cmd.Context())
			if err != nil {
				return err
			}
			if opts.json {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d customers and %d leads (%s)\n",
				result.Customers, result.Leads, strings.Join(result.Owners, ", "))
			return nil
		},
	}
}
