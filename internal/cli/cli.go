// Package cli implements leadsctl, a command-line companion to the server.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"salesleads/internal/client"
)

type options struct {
	server  string
	token   string
	json    bool
	timeout time.Duration
	now     func() time.Time
}

func (o *options) client() *client.Client {
	return client.New(o.server, o.token, &http.Client{Timeout: o.timeout})
}

// NewCommand returns the leadsctl root command.
func NewCommand() *cobra.Command {
	opts := &options{now: time.Now}

	cmd := &cobra.Command{
		Use:   "leadsctl",
		Short: "Work with sales leads and stored workbooks",
		Long: `Query salesperson analyses, trigger Dynamics imports and download
stored workbooks slice by slice.

Output:
  default  Human-friendly summaries
  --json   Raw JSON for automation

Examples:
  leadsctl salespeople
  leadsctl analyze "Ana Diaz"
  leadsctl analyze "Ana Diaz" --leads SalesLeads.json --customers Customers.json
  leadsctl fetch 6f0c... -o Leads.xlsx`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.server, "server", envOr("SALESLEADS_SERVER", "http://localhost:8080"), "Server base URL")
	flags.StringVar(&opts.token, "token", os.Getenv("SALESLEADS_TOKEN"), "API token")
	flags.BoolVar(&opts.json, "json", false, "Output raw JSON instead of human-formatted summaries")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "HTTP request timeout")

	cmd.AddCommand(newAnalyzeCommand(opts))
	cmd.AddCommand(newSalespeopleCommand(opts))
	cmd.AddCommand(newImportCommand(opts))
	cmd.AddCommand(newFetchCommand(opts))

	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readFile[T any](path string, decode func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	items, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}
