package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yu-a0/discovery-engine-suite/internal/genres"
	"github.com/yu-a0/discovery-engine-suite/internal/logging"
	"github.com/yu-a0/discovery-engine-suite/internal/reccache"
	"github.com/yu-a0/discovery-engine-suite/internal/recommend"
	"github.com/yu-a0/discovery-engine-suite/internal/services"
	"github.com/yu-a0/discovery-engine-suite/internal/testsupport"
	"github.com/yu-a0/discovery-engine-suite/internal/tmdb"
	"github.com/yu-a0/discovery-engine-suite/internal/watchlist"
)

const (
	genreSciFi     = 878
	genreAdventure = 12
	genreDrama     = 18
)

func duneFake() *fakeTMDB {
	return &fakeTMDB{
		movies: map[string][]tmdb.Movie{
			"Dune": {{ID: 438631, Title: "Dune", ReleaseDate: "2021-09-15", GenreIDs: []int64{genreSciFi, genreAdventure}}},
		},
		recommendations: map[int64][]json.RawMessage{
			438631: {
				rec(693134, "Dune: Part Two", "2024-02-27", genreSciFi, genreAdventure),
				rec(335984, "Blade Runner 2049", "2017-10-04", genreSciFi, genreDrama),
				rec(157336, "Interstellar", "2014-11-05", genreAdventure, genreDrama, genreSciFi),
				rec(1, "Drama Only", "2021-01-01", genreDrama),
			},
		},
		credits: map[int64]tmdb.Credits{
			335984: {Cast: []tmdb.CastMember{{Name: "Ryan Gosling"}, {Name: "Harrison Ford"}, {Name: "Ana de Armas"}, {Name: "Sylvia Hoeks"}}},
		},
		videos: map[int64]tmdb.VideoResponse{
			335984: {Results: []tmdb.Video{{Key: "teaser", Type: "Teaser"}, {Key: "gCcx85zbxz4", Type: "Trailer"}}},
		},
	}
}

func newMovies(t *testing.T, fake *fakeTMDB, opts ...MovieOption) (*Movies, *watchlist.List) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	list := watchlist.New(cfg.Watchlist.MoviesPath, logging.NewNop())
	cache := reccache.New(reccache.NewFileStore(cfg.Cache.Path, logging.NewNop()), logging.NewNop())
	return NewMovies(fake, cache, list, opts...), list
}

func titles(candidates []recommend.Candidate) string {
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.Title
	}
	return strings.Join(out, "|")
}

func TestDiscoverFromBaseFiltersSequelsAndTiers(t *testing.T) {
	fake := duneFake()
	movies, _ := newMovies(t, fake)

	result, err := movies.Discover(context.Background(), MovieQuery{Base: "Dune", Year: "2017", Theme: "Sci-Fi"})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if result.Tier != recommend.TierExact {
		t.Fatalf("expected EXACT, got %s", result.Tier)
	}
	if titles(result.Candidates) != "Blade Runner 2049" {
		t.Fatalf("unexpected candidates %s", titles(result.Candidates))
	}
	if result.Base == nil || result.Base.ID != 438631 {
		t.Fatalf("expected base Dune, got %+v", result.Base)
	}
}

func TestDiscoverFromBaseFallsBackToGenreOnly(t *testing.T) {
	fake := duneFake()
	movies, _ := newMovies(t, fake)

	result, err := movies.Discover(context.Background(), MovieQuery{Base: "Dune", Year: "1999", Theme: "science fiction"})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if result.Tier != recommend.TierGenreOnly {
		t.Fatalf("expected GENRE_ONLY, got %s", result.Tier)
	}
	if titles(result.Candidates) != "Blade Runner 2049|Interstellar" {
		t.Fatalf("unexpected candidates %s", titles(result.Candidates))
	}
}

func TestDiscoverUsesCacheOnRepeat(t *testing.T) {
	fake := duneFake()
	movies, _ := newMovies(t, fake)

	for i := 0; i < 2; i++ {
		if _, err := movies.Discover(context.Background(), MovieQuery{Base: "Dune"}); err != nil {
			t.Fatalf("Discover #%d: %v", i, err)
		}
	}
	if fake.recCalls != 1 {
		t.Fatalf("expected one recommendations request, got %d", fake.recCalls)
	}
}

func TestDiscoverUnknownBaseIsNoResults(t *testing.T) {
	movies, _ := newMovies(t, duneFake())
	_, err := movies.Discover(context.Background(), MovieQuery{Base: "Nope"})
	if !errors.Is(err, services.ErrNoResults) {
		t.Fatalf("expected no results, got %v", err)
	}
}

func TestDiscoverRecommendationFailureIsNotCached(t *testing.T) {
	fake := duneFake()
	fake.failRecs = services.ErrUpstreamUnavailable
	movies, _ := newMovies(t, fake)

	if _, err := movies.Discover(context.Background(), MovieQuery{Base: "Dune"}); !errors.Is(err, services.ErrUpstreamUnavailable) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	fake.failRecs = nil
	if _, err := movies.Discover(context.Background(), MovieQuery{Base: "Dune"}); err != nil {
		t.Fatalf("Discover after recovery: %v", err)
	}
	if fake.recCalls != 2 {
		t.Fatalf("expected a second request after failure, got %d", fake.recCalls)
	}
}

func TestDiscoverWithoutBaseUsesDiscoverFilters(t *testing.T) {
	fake := &fakeTMDB{
		people:   map[string][]tmdb.Person{"Zendaya": {{ID: 505710, Name: "Zendaya"}}},
		keywords: map[string][]tmdb.Keyword{"space": {{ID: 9882, Name: "space"}}},
		discover: []tmdb.Movie{
			{ID: 1, Title: "A", ReleaseDate: "2024-01-01", GenreIDs: []int64{genreSciFi}},
			{ID: 2, Title: "B"},
		},
	}
	movies, _ := newMovies(t, fake)

	result, err := movies.Discover(context.Background(), MovieQuery{Year: "2024", Theme: "Space", Actor: "Zendaya"})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if fake.lastDiscover.CastID != 505710 || fake.lastDiscover.KeywordID != 9882 || fake.lastDiscover.GenreID != 0 || fake.lastDiscover.Year != "2024" {
		t.Fatalf("unexpected discover options %+v", fake.lastDiscover)
	}
	if result.Base != nil || result.Tier != "" {
		t.Fatalf("expected discover path without base, got %+v", result)
	}
	if titles(result.Candidates) != "A|B" {
		t.Fatalf("unexpected candidates %s", titles(result.Candidates))
	}
	if result.Theme.Kind != genres.KindKeyword {
		t.Fatalf("expected keyword theme, got %+v", result.Theme)
	}
}

func TestDiscoverGenreThemeUsesWithGenres(t *testing.T) {
	fake := &fakeTMDB{discover: []tmdb.Movie{{ID: 1, Title: "A"}}}
	movies, _ := newMovies(t, fake)

	if _, err := movies.Discover(context.Background(), MovieQuery{Theme: "Thriller", Actor: "Nobody"}); err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if fake.lastDiscover.GenreID != 53 || fake.lastDiscover.KeywordID != 0 || fake.lastDiscover.CastID != 0 {
		t.Fatalf("unexpected discover options %+v", fake.lastDiscover)
	}
}

func TestDiscoverRandomAndLimit(t *testing.T) {
	fake := duneFake()
	movies, _ := newMovies(t, fake, WithMovieRandom(fixedSource(1)), WithMovieLimit(2))

	listed, err := movies.Discover(context.Background(), MovieQuery{Base: "Dune"})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(listed.Candidates) != 2 || listed.Total != 3 {
		t.Fatalf("expected 2 of 3 candidates, got %d of %d", len(listed.Candidates), listed.Total)
	}

	picked, err := movies.Discover(context.Background(), MovieQuery{Base: "Dune", Random: true})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if titles(picked.Candidates) != "Interstellar" {
		t.Fatalf("expected fixed random pick Interstellar, got %s", titles(picked.Candidates))
	}
}

func TestDetailsAndSave(t *testing.T) {
	fake := duneFake()
	movies, list := newMovies(t, fake)
	ctx := context.Background()

	result, err := movies.Discover(ctx, MovieQuery{Base: "Dune"})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	details, err := movies.Details(ctx, result, 1)
	if err != nil {
		t.Fatalf("Details: %v", err)
	}
	if strings.Join(details.Cast, ", ") != "Ryan Gosling, Harrison Ford, Ana de Armas" {
		t.Fatalf("unexpected cast %v", details.Cast)
	}
	if details.TrailerURL() != "https://www.youtube.com/watch?v=gCcx85zbxz4" {
		t.Fatalf("unexpected trailer url %q", details.TrailerURL())
	}
	if details.Reason != "Both movies are "+genres.Name(genreSciFi) {
		t.Fatalf("unexpected reason %q", details.Reason)
	}

	if _, err := movies.Details(ctx, result, 9); !errors.Is(err, services.ErrInvalidSelection) {
		t.Fatalf("expected invalid selection, got %v", err)
	}

	line, err := movies.Save(ctx, result, 1)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if line != "Blade Runner 2049 (2017)" {
		t.Fatalf("unexpected line %q", line)
	}
	entries, err := list.Entries()
	if err != nil || len(entries) != 1 || entries[0] != line {
		t.Fatalf("unexpected watchlist entries %v err=%v", entries, err)
	}
	if filepath.Base(list.Path()) != "watchlist.txt" {
		t.Fatalf("unexpected watchlist path %s", list.Path())
	}
}

func TestDetailsReasonWithoutBase(t *testing.T) {
	fake := &fakeTMDB{discover: []tmdb.Movie{{ID: 1, Title: "A"}}}
	movies, _ := newMovies(t, fake)
	ctx := context.Background()

	result, err := movies.Discover(ctx, MovieQuery{Theme: "horror"})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	details, err := movies.Details(ctx, result, 1)
	if err != nil {
		t.Fatalf("Details: %v", err)
	}
	if details.Reason != "Matches your horror filters" {
		t.Fatalf("unexpected reason %q", details.Reason)
	}
	if details.TrailerKey != "" || len(details.Cast) != 0 {
		t.Fatalf("expected empty cast and trailer, got %+v", details)
	}
}
