package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yu-a0/discovery-engine-suite/internal/watchlist"
)

func newWatchlistCommand(ctx *commandContext) *cobra.Command {
	watchlistCmd := &cobra.Command{
		Use:   "watchlist",
		Short: "Inspect saved titles",
	}

	var anime bool
	var asJSON bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print the movie (or anime) watchlist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.config
			path := cfg.Watchlist.MoviesPath
			if anime {
				path = cfg.Watchlist.AnimePath
			}
			entries, err := watchlist.New(path, ctx.loggerFor(cmd)).Entries()
			if err != nil {
				return err
			}
			if asJSON {
				if entries == nil {
					entries = []string{}
				}
				return writeJSON(cmd, entries)
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(out, "Watchlist %s is empty\n", path)
				return nil
			}
			for i, entry := range entries {
				fmt.Fprintf(out, "%3d. %s\n", i+1, entry)
			}
			return nil
		},
	}
	listCmd.Flags().BoolVar(&anime, "anime", false, "Show the anime watchlist")
	listCmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")

	watchlistCmd.AddCommand(listCmd)
	return watchlistCmd
}
