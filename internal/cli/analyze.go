package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"salesleads/internal/leads"
)

func newAnalyzeCommand(opts *options) *cobra.Command {
	var leadsPath, customersPath string

	cmd := &cobra.Command{
		Use:   "analyze <salesperson>",
		Short: "Show a salesperson's upcoming leads",
		Long: `Builds the analysis the add-in renders for one salesperson.
With --leads the analysis runs locally against exported JSON files instead
of the server.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				analysis leads.Analysis
				err      error
			)
			if leadsPath != "" {
				analysis, err = analyzeLocal(args[0], leadsPath, customersPath, opts)
			} else {
				analysis, err = opts.client().Analysis(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			if opts.json {
				return writeJSON(cmd.OutOrStdout(), analysis)
			}
			return printAnalysis(cmd.OutOrStdout(), analysis)
		},
	}

	cmd.Flags().StringVar(&leadsPath, "leads", "", "Analyze a local SalesLeads JSON file")
	cmd.Flags().StringVar(&customersPath, "customers", "", "Local Customers JSON file for account hyperlinks")
	return cmd
}

func analyzeLocal(owner, leadsPath, customersPath string, opts *options) (leads.Analysis, error) {
	salesLeads, err := readFile(leadsPath, leads.DecodeLeads)
	if err != nil {
		return leads.Analysis{}, err
	}
	var customers []leads.Customer
	if customersPath != "" {
		if customers, err = readFile(customersPath, leads.DecodeCustomers); err != nil {
			return leads.Analysis{}, err
		}
	}
	return leads.NewSession(owner, customers, salesLeads, opts.now()).Analyze()
}

func printAnalysis(w io.Writer, a leads.Analysis) error {
	fmt.Fprintf(w, "%s\n\n", a.Title)
	if len(a.Leads) == 0 {
		fmt.Fprintln(w, "No upcoming leads.")
	} else {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ACCOUNT\tTOPIC\tPROBABILITY\tREVENUE\tEXPECTED")
		for _, row := range a.Leads {
			fmt.Fprintf(tw, "%s\t%s\t%.0f%%\t%.2f\t%.2f\n",
				row.Account, row.Topic, row.Probability*100, row.EstRevenue, row.ExpectedValue)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	fmt.Fprintf(w, "\nTotal expected value: %.2f\n", a.TotalExpectedValue)
	fmt.Fprintf(w, "Closed sales last year: %d\n", len(a.ClosedSales))
	return nil
}
