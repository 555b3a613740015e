// Command localtable serves the Local Table site and offers a few content
// maintenance tools.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "localtable",
	Short: "Local Table marketing site and blog",
	Long: `localtable serves the Local Table site: marketing pages, the blog, and the
contact and newsletter forms with email verification.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the localtable version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "localtable %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "localtable.yaml", "config file path")
	rootCmd.AddCommand(versionCmd, serveCmd, tocCmd, sitemapCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
