package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yu-a0/discovery-engine-suite/internal/discovery"
	"github.com/yu-a0/discovery-engine-suite/internal/reccache"
	"github.com/yu-a0/discovery-engine-suite/internal/textutil"
	"github.com/yu-a0/discovery-engine-suite/internal/watchlist"
)

type movieOutput struct {
	Result  *discovery.MovieResult  `json:"result"`
	Details *discovery.MovieDetails `json:"details,omitempty"`
	Saved   string                  `json:"saved,omitempty"`
}

func newMoviesCommand(ctx *commandContext) *cobra.Command {
	var query discovery.MovieQuery
	var sel selectionFlags

	cmd := &cobra.Command{
		Use:   "movies [base title]",
		Short: "Recommend movies from a base title or discover by filters",
		Long: `Recommend movies similar to a base title, or discover popular movies
matching the filters when no base title is given.

With a base title, TMDB recommendations drop the title's own sequels and are
narrowed by --year and --genre, relaxing to genre only and then to no filter
when nothing matches.

Examples:
  discover movies Dune --year 2017 --genre sci-fi
  discover movies --genre space --actor "Zendaya" --random
  discover movies Dune --details 2 --save 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := sel.validate(); err != nil {
				return err
			}
			query.Base = joinArgs(args)

			client, err := ctx.tmdbClient(cmd)
			if err != nil {
				return err
			}
			backend, err := ctx.cacheBackend(cmd)
			if err != nil {
				return err
			}
			defer backend.Close()

			cfg := ctx.config
			logger := ctx.loggerFor(cmd)
			runCtx := ctx.commandCtx(cmd)
			svc := discovery.NewMovies(
				client,
				reccache.New(backend, logger),
				watchlist.New(cfg.Watchlist.MoviesPath, logger),
				discovery.WithMovieLogger(logger),
				discovery.WithMovieLimit(cfg.Discovery.ListLimit),
			)

			result, err := svc.Discover(runCtx, query)
			if err != nil {
				return handleNoResults(cmd, err)
			}

			out := movieOutput{Result: result}
			if idx := sel.detailIndex(); idx > 0 {
				details, err := svc.Details(runCtx, result, idx)
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
				printMovies(cmd, out, cfg.Watchlist.MoviesPath)
			}

			if sel.open > 0 {
				if out.Details.TrailerKey == "" {
					fmt.Fprintln(cmd.ErrOrStderr(), "No trailer available for that movie.")
					return nil
				}
				return openURL(cmd, out.Details.TrailerURL())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&query.Year, "year", "", "Release year filter")
	cmd.Flags().StringVar(&query.Theme, "genre", "", "Genre or keyword, e.g. thriller or space")
	cmd.Flags().StringVar(&query.Actor, "actor", "", "Actor or actress (discover mode only)")
	cmd.Flags().BoolVar(&query.Random, "random", false, "Show one random pick instead of a list")
	cmd.Flags().IntVar(&query.Limit, "limit", 0, "Number of results to list (default discovery.list_limit)")
	sel.register(cmd, "Open the trailer for list entry N in a browser")
	return cmd
}

func printMovies(cmd *cobra.Command, out movieOutput, watchlistPath string) {
	w := cmd.OutOrStdout()
	colorize := shouldColorize(w)
	result := out.Result

	if result.Base != nil {
		kind, message := tierStatus(result.Tier, result.Query.Theme)
		fmt.Fprintf(w, "Recommendations for %s\n", result.Base.Title)
		fmt.Fprintln(w, renderStatusLine("Filters", kind, message, colorize))
	}
	if result.Query.Random {
		fmt.Fprintf(w, "Random pick from %d matches\n", result.Total)
	}

	rows := make([][]string, 0, len(result.Candidates))
	for i, movie := range result.Candidates {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			textutil.Truncate(movie.Title, titleWidth),
			yearOrUnknown(movie.Year()),
			formatRating(movie.Rating, 10),
		})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"#", "Title", "Year", "Rating"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
	))

	if d := out.Details; d != nil {
		fmt.Fprintln(w)
		for _, line := range renderSectionHeader(fmt.Sprintf("%s (%s)", strings.ToUpper(d.Movie.Title), yearOrUnknown(d.Movie.Year())), colorize) {
			fmt.Fprintln(w, line)
		}
		if d.Reason != "" {
			fmt.Fprintf(w, "Reason:   %s\n", d.Reason)
		}
		fmt.Fprintf(w, "Cast:     %s\n", textutil.Ternary(len(d.Cast) > 0, strings.Join(d.Cast, ", "), "unknown"))
		if url := d.TrailerURL(); url != "" {
			fmt.Fprintf(w, "Trailer:  %s\n", url)
		}
		overview := textutil.Ternary(strings.TrimSpace(d.Movie.Overview) != "", d.Movie.Overview, "No description.")
		fmt.Fprintf(w, "Overview:\n%s\n", textutil.Wrap(overview, textutil.DefaultWrapWidth))
	}
	if out.Saved != "" {
		fmt.Fprintf(w, "Saved %q to %s\n", out.Saved, watchlistPath)
	}
}
