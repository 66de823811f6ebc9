package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yu-a0/discovery-engine-suite/internal/anilist"
	"github.com/yu-a0/discovery-engine-suite/internal/textutil"
	"github.com/yu-a0/discovery-engine-suite/internal/tmdb"
)

func newExploreCommand(ctx *commandContext) *cobra.Command {
	exploreCmd := &cobra.Command{
		Use:   "explore",
		Short: "Browse TMDB and AniList reference data",
	}
	exploreCmd.AddCommand(newExploreTMDBCommand(ctx))
	exploreCmd.AddCommand(newExploreAniListCommand(ctx))
	return exploreCmd
}

func newExploreTMDBCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	tmdbCmd := &cobra.Command{
		Use:   "tmdb",
		Short: "Browse TMDB genres, people, theatrical releases and configuration",
	}
	tmdbCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Emit JSON")

	withClient := func(run func(cmd *cobra.Command, client *tmdb.Client) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			client, err := ctx.tmdbClient(cmd)
			if err != nil {
				return err
			}
			return run(cmd, client)
		}
	}

	tmdbCmd.AddCommand(&cobra.Command{
		Use:   "genres",
		Short: "List official movie genres",
		RunE: withClient(func(cmd *cobra.Command, client *tmdb.Client) error {
			list, err := client.GenreList(ctx.commandCtx(cmd))
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, list)
			}
			rows := make([][]string, 0, len(list))
			for _, g := range list {
				rows = append(rows, []string{strconv.FormatInt(g.ID, 10), g.Name})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Name"}, rows, []columnAlignment{alignRight, alignLeft}))
			return nil
		}),
	})

	tmdbCmd.AddCommand(&cobra.Command{
		Use:   "people",
		Short: "List popular people and what they are known for",
		RunE: withClient(func(cmd *cobra.Command, client *tmdb.Client) error {
			resp, err := client.PopularPeople(ctx.commandCtx(cmd))
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, resp.Results)
			}
			rows := make([][]string, 0, len(resp.Results))
			for _, p := range resp.Results {
				known := make([]string, 0, len(p.KnownFor))
				for _, k := range p.KnownFor {
					known = append(known, k.DisplayTitle())
				}
				rows = append(rows, []string{p.Name, textutil.Truncate(strings.Join(known, ", "), 60)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Name", "Known For"}, rows, nil))
			return nil
		}),
	})

	tmdbCmd.AddCommand(&cobra.Command{
		Use:   "now-playing",
		Short: "List titles currently in theaters",
		RunE: withClient(func(cmd *cobra.Command, client *tmdb.Client) error {
			resp, err := client.NowPlaying(ctx.commandCtx(cmd))
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, resp.Results)
			}
			rows := make([][]string, 0, len(resp.Results))
			for _, m := range resp.Results {
				rows = append(rows, []string{
					textutil.Truncate(m.Title, titleWidth),
					strconv.FormatInt(m.ID, 10),
					textutil.Ternary(m.ReleaseDate != "", m.ReleaseDate, "unknown"),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Title", "ID", "Released"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft}))
			return nil
		}),
	})

	tmdbCmd.AddCommand(&cobra.Command{
		Use:   "config",
		Short: "Show image sizes and the language and country counts",
		RunE: withClient(func(cmd *cobra.Command, client *tmdb.Client) error {
			runCtx := ctx.commandCtx(cmd)
			apiCfg, err := client.Configuration(runCtx)
			if err != nil {
				return err
			}
			languages, err := client.Languages(runCtx)
			if err != nil {
				return err
			}
			countries, err := client.Countries(runCtx)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, map[string]any{
					"poster_sizes": apiCfg.Images.PosterSizes,
					"languages":    len(languages),
					"countries":    len(countries),
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Poster sizes: %s\n", strings.Join(apiCfg.Images.PosterSizes, ", "))
			fmt.Fprintf(out, "Languages:    %d\n", len(languages))
			fmt.Fprintf(out, "Countries:    %d\n", len(countries))
			return nil
		}),
	})

	return tmdbCmd
}

func newExploreAniListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	anilistCmd := &cobra.Command{
		Use:   "anilist",
		Short: "Browse AniList genres, trending anime, staff and studios",
	}
	anilistCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Emit JSON")

	withClient := func(run func(cmd *cobra.Command, client *anilist.Client) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			client, err := ctx.anilistClient(cmd)
			if err != nil {
				return err
			}
			return run(cmd, client)
		}
	}

	anilistCmd.AddCommand(&cobra.Command{
		Use:   "genres",
		Short: "List official genres and the tag count",
		RunE: withClient(func(cmd *cobra.Command, client *anilist.Client) error {
			collections, err := client.Collections(ctx.commandCtx(cmd))
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, map[string]any{"genres": collections.Genres, "tag_count": collections.TagCount})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Genres: %s\n", strings.Join(collections.Genres, ", "))
			fmt.Fprintf(out, "Tags:   %d\n", collections.TagCount)
			return nil
		}),
	})

	anilistCmd.AddCommand(&cobra.Command{
		Use:   "trending",
		Short: "List trending anime",
		RunE: withClient(func(cmd *cobra.Command, client *anilist.Client) error {
			media, err := client.Trending(ctx.commandCtx(cmd))
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, media)
			}
			rows := make([][]string, 0, len(media))
			for _, m := range media {
				score := "??"
				if m.AverageScore > 0 {
					score = strconv.Itoa(m.AverageScore)
				}
				rows = append(rows, []string{score + "%", textutil.Truncate(m.Title.Display(), 40), m.Format})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Score", "Title", "Format"}, rows, []columnAlignment{alignRight}))
			return nil
		}),
	})

	anilistCmd.AddCommand(&cobra.Command{
		Use:   "staff",
		Short: "List the most favourited staff and voice actors",
		RunE: withClient(func(cmd *cobra.Command, client *anilist.Client) error {
			staff, err := client.TopStaff(ctx.commandCtx(cmd))
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, staff)
			}
			rows := make([][]string, 0, len(staff))
			for _, s := range staff {
				rows = append(rows, []string{s.Name.Full, s.Role()})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Name", "Primary Role"}, rows, nil))
			return nil
		}),
	})

	anilistCmd.AddCommand(&cobra.Command{
		Use:   "studios",
		Short: "List the most favourited animation studios",
		RunE: withClient(func(cmd *cobra.Command, client *anilist.Client) error {
			studios, err := client.TopStudios(ctx.commandCtx(cmd))
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, studios)
			}
			rows := make([][]string, 0, len(studios))
			for _, s := range studios {
				rows = append(rows, []string{s.Name, strconv.Itoa(s.Favourites)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Studio", "Fans"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		}),
	})

	return anilistCmd
}
