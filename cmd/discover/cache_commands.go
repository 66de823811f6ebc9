package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yu-a0/discovery-engine-suite/internal/services"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the recommendation cache",
	}
	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheRemoveCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	return cacheCmd
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache backend, location and entry count",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := ctx.cacheBackend(cmd)
			if err != nil {
				return err
			}
			defer backend.Close()

			keys, err := backend.Keys(ctx.commandCtx(cmd))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Backend:  %s\n", ctx.config.Cache.Backend)
			fmt.Fprintf(out, "Location: %s\n", backend.Location())
			fmt.Fprintf(out, "Entries:  %d\n", len(keys))
			return nil
		},
	}
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached base movie ids and their recommendation counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := ctx.cacheBackend(cmd)
			if err != nil {
				return err
			}
			defer backend.Close()

			runCtx := ctx.commandCtx(cmd)
			keys, err := backend.Keys(runCtx)
			if err != nil {
				return err
			}
			counts := make(map[string]int, len(keys))
			for _, key := range keys {
				records, _, err := backend.Get(runCtx, key)
				if err != nil {
					return err
				}
				counts[key] = len(records)
			}
			if asJSON {
				return writeJSON(cmd, counts)
			}
			if len(keys) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Cache is empty")
				return nil
			}
			rows := make([][]string, 0, len(keys))
			for _, key := range keys {
				rows = append(rows, []string{key, strconv.Itoa(counts[key])})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"TMDB ID", "Recommendations"}, rows, []columnAlignment{alignRight, alignRight}))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}

func newCacheRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <tmdb-id>...",
		Short: "Remove cached recommendations for base movie ids",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]string, 0, len(args))
			for _, arg := range args {
				id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
				if err != nil || id <= 0 {
					return services.Wrap(services.ErrValidation, "cli", "cache remove", fmt.Sprintf("invalid tmdb id %q", arg), nil)
				}
				ids = append(ids, strconv.FormatInt(id, 10))
			}

			backend, err := ctx.cacheBackend(cmd)
			if err != nil {
				return err
			}
			defer backend.Close()

			out := cmd.OutOrStdout()
			for _, id := range ids {
				removed, err := backend.Delete(ctx.commandCtx(cmd), id)
				if err != nil {
					return err
				}
				if removed {
					fmt.Fprintf(out, "Removed %s\n", id)
				} else {
					fmt.Fprintf(out, "%s was not cached\n", id)
				}
			}
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached recommendation list",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := ctx.cacheBackend(cmd)
			if err != nil {
				return err
			}
			defer backend.Close()

			if err := backend.Clear(ctx.commandCtx(cmd)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared")
			return nil
		},
	}
}
