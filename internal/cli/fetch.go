package cli

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"salesleads/internal/slicefile"
)

func newFetchCommand(opts *options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "fetch <document-id>",
		Short: "Download a stored workbook slice by slice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := opts.client().OpenDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output == "" {
				if output, err = defaultOutputPath(doc.Info().Name); err != nil {
					return err
				}
			}

			var data []byte
			slicefile.Assemble(cmd.Context(), doc, func(b []byte) {
				data = b
			}, func(e error) {
				err = e
			})
			if err != nil {
				return fmt.Errorf("fetch %s: %w", args[0], err)
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}

			sum := sha256.Sum256(data)
			result := map[string]any{
				"path":   output,
				"size":   len(data),
				"slices": doc.SliceCount(),
				"sha256": hex.EncodeToString(sum[:]),
			}
			if opts.json {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes, %d slices)\nsha256 %s\n",
				output, len(data), doc.SliceCount(), result["sha256"])
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination file (defaults to the document name)")
	return cmd
}

// defaultOutputPath keeps only the base name the server reports, so a
// hostile name cannot write outside the working directory.
func defaultOutputPath(name string) (string, error) {
	name = filepath.Base(filepath.Clean(strings.ReplaceAll(name, "\\", "/")))
	switch name {
	case ".", "..", "/":
		return "", errors.New("document has no usable name; pass --output")
	}
	return name, nil
}
