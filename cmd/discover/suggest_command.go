package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yu-a0/discovery-engine-suite/internal/discovery"
)

func newSuggestCommand(ctx *commandContext) *cobra.Command {
	var anime bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "suggest <prefix>",
		Short: "Suggest titles that start with a prefix",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := joinArgs(args)
			cfg := ctx.config
			limit := cfg.Discovery.SuggestionLimit
			minLen := cfg.Discovery.MinSuggestionLength
			runCtx := ctx.commandCtx(cmd)

			var titles []string
			if anime {
				client, err := ctx.anilistClient(cmd)
				if err != nil {
					return err
				}
				titles, err = discovery.SuggestAnime(runCtx, client, prefix, limit, minLen)
				if err != nil {
					return err
				}
			} else {
				client, err := ctx.tmdbClient(cmd)
				if err != nil {
					return err
				}
				titles, err = discovery.SuggestMovies(runCtx, client, prefix, limit, minLen)
				if err != nil {
					return err
				}
			}

			if asJSON {
				return writeJSON(cmd, titles)
			}
			if len(titles) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matches found.")
				return nil
			}
			for _, title := range titles {
				fmt.Fprintln(cmd.OutOrStdout(), title)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&anime, "anime", false, "Suggest AniList titles instead of movies")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}
