package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/yu-a0/discovery-engine-suite/internal/anilist"
	"github.com/yu-a0/discovery-engine-suite/internal/logging"
	"github.com/yu-a0/discovery-engine-suite/internal/services"
	"github.com/yu-a0/discovery-engine-suite/internal/testsupport"
	"github.com/yu-a0/discovery-engine-suite/internal/watchlist"
)

const attackOnTitan = `[
  {
    "id": 16498,
    "title": {"romaji": "Shingeki no Kyojin", "english": "Attack on Titan"},
    "genres": ["Action", "Drama", "Fantasy"],
    "averageScore": 85,
    "description": "Humanity<br>fights back.",
    "recommendations": {"nodes": [
      {"mediaRecommendation": {"id": 20958, "title": {"romaji": "Shingeki no Kyojin 2", "english": "Attack on Titan Season 2"}, "genres": ["Action", "Drama"]}},
      {"mediaRecommendation": null},
      {"mediaRecommendation": {"id": 1535, "title": {"romaji": "Death Note", "english": "Death Note"}, "genres": ["Mystery", "Psychological"], "description": "<i>Light</i> finds a notebook."}},
      {"mediaRecommendation": {"id": 11061, "title": {"romaji": "Hunter x Hunter (2011)", "english": "Hunter x Hunter"}, "genres": ["Action", "Adventure", "Fantasy"]}}
    ]}
  },
  {"id": 99147, "title": {"romaji": "Shingeki no Kyojin 3", "english": ""}, "genres": ["Action"]}
]`

func decodeMedia(t *testing.T, doc string) []anilist.Media {
	t.Helper()
	var out []anilist.Media
	if err := json.Unmarshal([]byte(doc), &out); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return out
}

func displayTitles(entries []anilist.Media) string {
	out := make([]string, len(entries))
	for i, m := range entries {
		out[i] = m.Title.Display()
	}
	return strings.Join(out, "|")
}

func newAnime(t *testing.T, fake *fakeAniList, opts ...AnimeOption) (*Anime, *watchlist.List) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	list := watchlist.New(cfg.Watchlist.AnimePath, logging.NewNop())
	return NewAnime(fake, list, opts...), list
}

func TestAnimeWithBaseListsRecommendationsWithoutSequels(t *testing.T) {
	fake := &fakeAniList{media: decodeMedia(t, attackOnTitan)}
	anime, _ := newAnime(t, fake)

	result, err := anime.Discover(context.Background(), AnimeQuery{Base: "Attack on Titan", Genre: "action", Year: "2013"})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if fake.lastOpts.Genre != "Action" || fake.lastOpts.Year != 2013 || fake.lastOpts.Search != "Attack on Titan" {
		t.Fatalf("unexpected search options %+v", fake.lastOpts)
	}
	if result.Base == nil || result.Base.ID != 16498 {
		t.Fatalf("expected base entry, got %+v", result.Base)
	}
	if displayTitles(result.Entries) != "Death Note|Hunter x Hunter" {
		t.Fatalf("unexpected entries %s", displayTitles(result.Entries))
	}
}

const romajiOnlyBase = `[
  {
    "id": 9253,
    "title": {"romaji": "Steins;Gate", "english": ""},
    "genres": ["Drama", "Sci-Fi"],
    "recommendations": {"nodes": [
      {"mediaRecommendation": {"id": 30484, "title": {"romaji": "Steins;Gate 0", "english": ""}, "genres": ["Drama", "Sci-Fi"]}},
      {"mediaRecommendation": {"id": 21823, "title": {"romaji": "Boku dake ga Inai Machi", "english": "ERASED"}, "genres": ["Mystery"]}},
      {"mediaRecommendation": {"id": 5, "title": {"romaji": "Steins;Gate Movie", "english": "Steins;Gate: The Movie"}, "genres": ["Sci-Fi"]}}
    ]}
  }
]`

func TestAnimeDedupUsesRomajiWhenEnglishMissing(t *testing.T) {
	fake := &fakeAniList{media: decodeMedia(t, romajiOnlyBase)}
	anime, _ := newAnime(t, fake)

	result, err := anime.Discover(context.Background(), AnimeQuery{Base: "Steins;Gate"})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if displayTitles(result.Entries) != "ERASED" {
		t.Fatalf("expected sequels dropped by romaji title, got %s", displayTitles(result.Entries))
	}
}

func TestAnimeWithoutBaseListsSearchResults(t *testing.T) {
	fake := &fakeAniList{media: decodeMedia(t, attackOnTitan)}
	anime, _ := newAnime(t, fake)

	result, err := anime.Discover(context.Background(), AnimeQuery{Genre: "Action", Year: "soon"})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if fake.lastOpts.Year != 0 {
		t.Fatalf("expected non-numeric year to be ignored, got %d", fake.lastOpts.Year)
	}
	if result.Base != nil {
		t.Fatalf("expected no base")
	}
	if displayTitles(result.Entries) != "Attack on Titan|Shingeki no Kyojin 3" {
		t.Fatalf("unexpected entries %s", displayTitles(result.Entries))
	}
}

func TestAnimeNoResults(t *testing.T) {
	anime, _ := newAnime(t, &fakeAniList{})
	if _, err := anime.Discover(context.Background(), AnimeQuery{Base: "zzz"}); !errors.Is(err, services.ErrNoResults) {
		t.Fatalf("expected no results, got %v", err)
	}
}

func TestAnimeRandomPick(t *testing.T) {
	fake := &fakeAniList{media: decodeMedia(t, attackOnTitan)}
	anime, _ := newAnime(t, fake, WithAnimeRandom(fixedSource(1)))

	result, err := anime.Discover(context.Background(), AnimeQuery{Base: "Attack on Titan", Random: true})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if displayTitles(result.Entries) != "Hunter x Hunter" || result.Total != 2 {
		t.Fatalf("unexpected pick %s of %d", displayTitles(result.Entries), result.Total)
	}
}

func TestAnimeDetailsAndSave(t *testing.T) {
	fake := &fakeAniList{media: decodeMedia(t, attackOnTitan)}
	anime, list := newAnime(t, fake)
	ctx := context.Background()

	result, err := anime.Discover(ctx, AnimeQuery{Base: "Attack on Titan"})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	details, err := anime.Details(result, 2)
	if err != nil {
		t.Fatalf("Details: %v", err)
	}
	if details.Reason != "Both are Action, Fantasy" {
		t.Fatalf("unexpected reason %q", details.Reason)
	}
	if details.Title != "Hunter x Hunter (Hunter x Hunter (2011))" {
		t.Fatalf("unexpected title %q", details.Title)
	}
	if details.URL != "https://anilist.co/anime/11061" {
		t.Fatalf("unexpected url %q", details.URL)
	}

	first, err := anime.Details(result, 1)
	if err != nil {
		t.Fatalf("Details: %v", err)
	}
	if first.Reason != "" || first.Description != "Light finds a notebook." {
		t.Fatalf("unexpected details %+v", first)
	}

	if _, err := anime.Details(result, 0); !errors.Is(err, services.ErrInvalidSelection) {
		t.Fatalf("expected invalid selection, got %v", err)
	}

	line, err := anime.Save(ctx, result, 1)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	entries, err := list.Entries()
	if err != nil || len(entries) != 1 || entries[0] != "Death Note" || line != "Death Note" {
		t.Fatalf("unexpected watchlist %v line=%q err=%v", entries, line, err)
	}
}

func TestSuggestions(t *testing.T) {
	ctx := context.Background()
	if _, err := SuggestAnime(ctx, &fakeAniList{}, "at", 5, 3); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for short prefix, got %v", err)
	}

	fake := &fakeAniList{suggest: decodeMedia(t, attackOnTitan)}
	got, err := SuggestAnime(ctx, fake, "atta", 1, 3)
	if err != nil {
		t.Fatalf("SuggestAnime: %v", err)
	}
	if strings.Join(got, "|") != "Attack on Titan" {
		t.Fatalf("unexpected suggestions %v", got)
	}

	movies := duneFake()
	movies.movies["Dun"] = append(movies.movies["Dune"], movies.movies["Dune"][0])
	movies.movies["Dun"][1].ReleaseDate = ""
	titles, err := SuggestMovies(ctx, movies, "Dun", 5, 0)
	if err != nil {
		t.Fatalf("SuggestMovies: %v", err)
	}
	if strings.Join(titles, "|") != "Dune (2021)|Dune" {
		t.Fatalf("unexpected movie suggestions %v", titles)
	}
}
