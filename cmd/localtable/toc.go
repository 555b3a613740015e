package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/eringen/localtable/markdown"
)

var tocJSON bool

var tocCmd = &cobra.Command{
	Use:   "toc <file|->",
	Short: "Print the table of contents of a post body",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			raw []byte
			err error
		)
		if args[0] == "-" {
			raw, err = io.ReadAll(cmd.InOrStdin())
		} else {
			raw, err = os.ReadFile(args[0])
		}
		if err != nil {
			return err
		}
		return printTOC(cmd.OutOrStdout(), markdown.Parse(string(raw)), tocJSON)
	},
}

func printTOC(w io.Writer, doc markdown.Document, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc.Headings)
	}
	for _, h := range doc.Headings {
		if _, err := fmt.Fprintf(w, "%s%s  #%s\n", strings.Repeat("  ", h.Level-1), h.Text, h.ID); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	tocCmd.Flags().BoolVar(&tocJSON, "json", false, "print headings as JSON")
}
