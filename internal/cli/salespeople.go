package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newSalespeopleCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "salespeople",
		Short: "List lead owners by expected value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			people, err := opts.client().Salespeople(cmd.Context())
			if err != nil {
				return err
			}
			if opts.json {
				return writeJSON(cmd.OutOrStdout(), people)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "OWNER\tLEADS\tUPCOMING\tREVENUE\tEXPECTED")
			for _, p := range people {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%.2f\t%.2f\n", p.Owner, p.Leads, p.Upcoming, p.Revenue, p.ExpectedValue)
			}
			return tw.Flush()
		},
	}
}
