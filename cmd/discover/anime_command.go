package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yu-a0/discovery-engine-suite/internal/discovery"
	"github.com/yu-a0/discovery-engine-suite/internal/textutil"
	"github.com/yu-a0/discovery-engine-suite/internal/watchlist"
)

type animeOutput struct {
	Result  *discovery.AnimeResult  `json:"result"`
	Details *discovery.AnimeDetails `json:"details,omitempty"`
	Saved   string                  `json:"saved,omitempty"`
}

func newAnimeCommand(ctx *commandContext) *cobra.Command {
	var query discovery.AnimeQuery
	var sel selectionFlags

	cmd := &cobra.Command{
		Use:   "anime [base title]",
		Short: "Recommend anime from AniList",
		Long: `Search AniList by title, genre and season year. When a base title is given
and its top match has community recommendations, those are listed without
the title's own sequels; otherwise the search results are listed.

Examples:
  discover anime "Attack on Titan"
  discover anime --genre action --year 2013 --random
  discover anime "Attack on Titan" --details 1 --open 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := sel.validate(); err != nil {
				return err
			}
			query.Base = joinArgs(args)

			client, err := ctx.anilistClient(cmd)
			if err != nil {
				return err
			}
			cfg := ctx.config
			logger := ctx.loggerFor(cmd)
			runCtx := ctx.commandCtx(cmd)
			svc := discovery.NewAnime(
				client,
				watchlist.New(cfg.Watchlist.AnimePath, logger),
				discovery.WithAnimeLogger(logger),
				discovery.WithAnimeLimit(cfg.Discovery.ListLimit),
			)

			result, err := svc.Discover(runCtx, query)
			if err != nil {
				return handleNoResults(cmd, err)
			}

			out := animeOutput{Result: result}
			if idx := sel.detailIndex(); idx > 0 {
				details, err := svc.Details(result, idx)
				if err != nil {
					return err
				}
				out.Details = details
			}
			if sel.save > 0 {
				line, err := svc.Save(runCtx, result, sel.save)
				if err != nil {
					return err
				}
				out.Saved = line
			}

			if sel.json {
				if err := writeJSON(cmd, out); err != nil {
					return err
				}
			} else {
				printAnime(cmd, out, cfg.Watchlist.AnimePath)
			}

			if sel.open > 0 {
				return openURL(cmd, out.Details.URL)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&query.Year, "year", "", "Season year filter")
	cmd.Flags().StringVar(&query.Genre, "genre", "", "AniList genre, e.g. action or slice of life")
	cmd.Flags().BoolVar(&query.Random, "random", false, "Show one random pick instead of a list")
	cmd.Flags().IntVar(&query.Limit, "limit", 0, "Number of results to list (default discovery.list_limit)")
	sel.register(cmd, "Open the AniList page for list entry N in a browser")
	return cmd
}

func printAnime(cmd *cobra.Command, out animeOutput, watchlistPath string) {
	w := cmd.OutOrStdout()
	colorize := shouldColorize(w)
	result := out.Result

	if result.Base != nil {
		fmt.Fprintf(w, "Recommendations for %s\n", result.Base.Title.Display())
	}
	if result.Query.Random {
		fmt.Fprintf(w, "Random pick from %d matches\n", result.Total)
	}

	rows := make([][]string, 0, len(result.Entries))
	for i, entry := range result.Entries {
		score := "??/100"
		if entry.AverageScore > 0 {
			score = formatRating(float64(entry.AverageScore), 100)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			textutil.Truncate(entry.Title.Display(), titleWidth),
			strings.Join(entry.Genres, ", "),
			score,
		})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"#", "Title", "Genres", "Score"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
	))

	if d := out.Details; d != nil {
		fmt.Fprintln(w)
		for _, line := range renderSectionHeader(strings.ToUpper(d.Title), colorize) {
			fmt.Fprintln(w, line)
		}
		if d.Reason != "" {
			fmt.Fprintf(w, "Reason:   %s\n", d.Reason)
		}
		fmt.Fprintf(w, "AniList:  %s\n", d.URL)
		description := textutil.Ternary(d.Description != "", d.Description, "No description.")
		fmt.Fprintf(w, "Description:\n%s\n", textutil.Wrap(description, textutil.DefaultWrapWidth))
	}
	if out.Saved != "" {
		fmt.Fprintf(w, "Saved %q to %s\n", out.Saved, watchlistPath)
	}
}
