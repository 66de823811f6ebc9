package main

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/yu-a0/discovery-engine-suite/internal/config"
	"github.com/yu-a0/discovery-engine-suite/internal/services"
)

func seedCache(t *testing.T, env *cliTestEnv) {
	t.Helper()
	if _, _, err := runCLI(t, []string{"movies", "Dune"}, env.configPath); err != nil {
		t.Fatalf("seed cache: %v", err)
	}
}

func TestCacheStatsAndList(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCache(t, env)

	out, _, err := runCLI(t, []string{"cache", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	requireContains(t, out, "Backend:  file")
	requireContains(t, out, "Location: "+env.cfg.Cache.Path)
	requireContains(t, out, "Entries:  1")

	out, _, err = runCLI(t, []string{"cache", "list", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	var counts map[string]int
	if err := json.Unmarshal([]byte(out), &counts); err != nil {
		t.Fatalf("decode json output: %v\n%s", err, out)
	}
	if counts["438631"] != 4 {
		t.Fatalf("expected 4 cached records for 438631, got %v", counts)
	}
}

func TestCacheRemoveAndClear(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCache(t, env)

	out, _, err := runCLI(t, []string{"cache", "remove", "438631", "42"}, env.configPath)
	if err != nil {
		t.Fatalf("cache remove: %v", err)
	}
	requireContains(t, out, "Removed 438631")
	requireContains(t, out, "42 was not cached")

	out, _, err = runCLI(t, []string{"cache", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	requireContains(t, out, "Cache is empty")

	seedCache(t, env)
	if got := env.tmdbHits.get("/movie/438631/recommendations"); got != 2 {
		t.Fatalf("expected refetch after removal, got %d requests", got)
	}
	if _, _, err := runCLI(t, []string{"cache", "clear"}, env.configPath); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	out, _, err = runCLI(t, []string{"cache", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	requireContains(t, out, "Entries:  0")
}

func TestCacheRemoveRejectsInvalidID(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"cache", "remove", "dune"}, env.configPath)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCacheCommandsWithSQLiteBackend(t *testing.T) {
	env := setupCLITestEnv(t, func(cfg *config.Config) {
		cfg.Cache.Backend = "sqlite"
	})
	seedCache(t, env)

	out, _, err := runCLI(t, []string{"cache", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	requireContains(t, out, "Backend:  sqlite")
	requireContains(t, out, "Entries:  1")
}
