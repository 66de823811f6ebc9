package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/yu-a0/discovery-engine-suite/internal/anilist"
	"github.com/yu-a0/discovery-engine-suite/internal/genres"
	"github.com/yu-a0/discovery-engine-suite/internal/logging"
	"github.com/yu-a0/discovery-engine-suite/internal/recommend"
	"github.com/yu-a0/discovery-engine-suite/internal/services"
	"github.com/yu-a0/discovery-engine-suite/internal/textutil"
	"github.com/yu-a0/discovery-engine-suite/internal/watchlist"
)

// AnimeSource is the subset of the AniList client the anime flow uses.
type AnimeSource interface {
	SearchMedia(ctx context.Context, opts anilist.SearchOptions) ([]anilist.Media, error)
}

type AnimeQuery struct {
	Base   string `json:"base,omitempty"`
	Year   string `json:"year,omitempty"`
	Genre  string `json:"genre,omitempty"`
	Random bool   `json:"random,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// AnimeResult lists anime entries. Base is set only when the entries are
// recommendations for a base title.
type AnimeResult struct {
	Query   AnimeQuery      `json:"query"`
	Base    *anilist.Media  `json:"base,omitempty"`
	Entries []anilist.Media `json:"entries"`
	Total   int             `json:"total"`
}

type AnimeDetails struct {
	Anime       anilist.Media `json:"anime"`
	Title       string        `json:"title"`
	Reason      string        `json:"reason,omitempty"`
	Description string        `json:"description"`
	URL         string        `json:"url"`
}

type AnimeOption func(*Anime)

// WithAnimeRandom overrides the random source used by random picks.
func WithAnimeRandom(src recommend.Source) AnimeOption {
	return func(a *Anime) { a.random = src }
}

func WithAnimeLogger(logger *slog.Logger) AnimeOption {
	return func(a *Anime) { a.logger = logger }
}

func WithAnimeLimit(n int) AnimeOption {
	return func(a *Anime) {
		if n > 0 {
			a.limit = n
		}
	}
}

// Anime runs anime lookups against AniList.
type Anime struct {
	source    AnimeSource
	watchlist *watchlist.List
	random    recommend.Source
	limit     int
	logger    *slog.Logger
}

func NewAnime(source AnimeSource, list *watchlist.List, opts ...AnimeOption) *Anime {
	a := &Anime{source: source, watchlist: list, limit: DefaultLimit}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = logging.NewComponentLogger(a.logger, "discovery")
	return a
}

// Discover searches AniList. With a base title whose top match carries
// recommendations, those recommendations are listed without entries whose
// title contains the base title; otherwise the search results themselves are.
func (a *Anime) Discover(ctx context.Context, q AnimeQuery) (*AnimeResult, error) {
	q.Base = strings.TrimSpace(q.Base)
	q.Year = strings.TrimSpace(q.Year)
	q.Genre = genres.AniListGenre(q.Genre)

	opts := anilist.SearchOptions{Search: q.Base, Genre: q.Genre}
	if q.Year != "" {
		year, err := strconv.Atoi(q.Year)
		if err != nil || year <= 0 {
			logging.WarnWithContext(a.logger, "ignoring non-numeric anime year", "anime_year_ignored",
				logging.String("year", q.Year),
				logging.String(logging.FieldImpact, "results are not filtered by year"))
		} else {
			opts.Year = year
		}
	}

	media, err := a.source.SearchMedia(ctx, opts)
	if err != nil {
		return nil, err
	}
	if len(media) == 0 {
		return nil, services.Wrap(services.ErrNoResults, "discovery", "anime", "no anime found", nil)
	}

	result := &AnimeResult{Query: q}
	entries := media
	if q.Base != "" {
		if recs := media[0].Recommended(); len(recs) > 0 {
			base := media[0]
			result.Base = &base
			entries = dedupeAnime(base.Title.Display(), recs)
			a.logger.Info("anime recommendations selected",
				logging.String("base", base.Title.Display()),
				logging.Int("recommendations", len(recs)),
				logging.Int("result_count", len(entries)))
		}
	}

	result.Total = len(entries)
	if len(entries) == 0 {
		return nil, services.Wrap(services.ErrNoResults, "discovery", "anime", "no matches found", nil)
	}
	if q.Random {
		pick, err := recommend.RandomPick(entries, a.random)
		if err != nil {
			return nil, err
		}
		result.Entries = []anilist.Media{pick}
		return result, nil
	}
	limit := textutil.Ternary(q.Limit > 0, q.Limit, a.limit)
	result.Entries = recommend.Limit(entries, limit)
	return result, nil
}

// dedupeAnime applies the recommend de-duplication rule to anime titles.
func dedupeAnime(baseTitle string, entries []anilist.Media) []anilist.Media {
	candidates := make([]recommend.Candidate, len(entries))
	for i, entry := range entries {
		candidates[i] = recommend.Candidate{ID: int64(i), Title: entry.Title.Display()}
	}
	kept := recommend.Deduplicate(baseTitle, candidates)
	out := make([]anilist.Media, 0, len(kept))
	for _, c := range kept {
		out = append(out, entries[c.ID])
	}
	return out
}

// Details renders the 1-based index into result. No request is made; the
// search already returned everything shown.
func (a *Anime) Details(result *AnimeResult, index int) (*AnimeDetails, error) {
	entry, err := recommend.At(result.Entries, index)
	if err != nil {
		return nil, err
	}
	details := &AnimeDetails{
		Anime:       entry,
		Title:       entry.Title.Full(),
		Description: textutil.StripMarkup(entry.Description),
		URL:         entry.PageURL(),
	}
	if result.Base != nil {
		shared := recommend.SharedGenreNames(
			recommend.Base{Genres: result.Base.Genres},
			recommend.Candidate{Genres: entry.Genres},
		)
		if len(shared) > 0 {
			details.Reason = "Both are " + strings.Join(shared, ", ")
		}
	}
	return details, nil
}

// Save appends the 1-based index into result to the anime watchlist.
func (a *Anime) Save(ctx context.Context, result *AnimeResult, index int) (string, error) {
	entry, err := recommend.At(result.Entries, index)
	if err != nil {
		return "", err
	}
	if a.watchlist == nil {
		return "", services.Wrap(services.ErrConfiguration, "discovery", "save", "no anime watchlist configured", nil)
	}
	line := watchlist.AnimeLine(entry.Title.Display())
	if err := a.watchlist.Add(ctx, line); err != nil {
		return "", fmt.Errorf("save %q: %w", line, err)
	}
	return line, nil
}
