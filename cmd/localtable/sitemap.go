package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/localtable"
)

var sitemapOut string

var sitemapCmd = &cobra.Command{
	Use:   "sitemap",
	Short: "Write sitemap.xml from the post database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := localtable.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		store, err := localtable.NewStore(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer store.Close()

		posts, err := store.ListRecentlyUpdated(cmd.Context(), localtable.MaxSitemapPosts)
		if err != nil {
			return err
		}
		out, err := localtable.BuildSitemap(cfg, posts, time.Now())
		if err != nil {
			return err
		}
		if sitemapOut == "" || sitemapOut == "-" {
			_, err = cmd.OutOrStdout().Write(out)
			return err
		}
		if err := os.WriteFile(sitemapOut, out, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d posts to %s\n", len(posts), sitemapOut)
		return nil
	},
}

func init() {
	sitemapCmd.Flags().StringVarP(&sitemapOut, "out", "o", "", "output file (default stdout)")
}
