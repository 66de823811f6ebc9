package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yu-a0/discovery-engine-suite/internal/genres"
	"github.com/yu-a0/discovery-engine-suite/internal/logging"
	"github.com/yu-a0/discovery-engine-suite/internal/reccache"
	"github.com/yu-a0/discovery-engine-suite/internal/recommend"
	"github.com/yu-a0/discovery-engine-suite/internal/services"
	"github.com/yu-a0/discovery-engine-suite/internal/tmdb"
	"github.com/yu-a0/discovery-engine-suite/internal/watchlist"
)

// DefaultLimit is the list length when none is configured.
const DefaultLimit = 5

// MovieSource is the subset of the TMDB client the movie flow uses.
type MovieSource interface {
	genres.KeywordSearcher
	SearchMovie(ctx context.Context, query string) (*tmdb.Response, error)
	SearchPerson(ctx context.Context, query string) (*tmdb.PersonResponse, error)
	MovieRecommendations(ctx context.Context, movieID int64) ([]json.RawMessage, error)
	DiscoverMovies(ctx context.Context, opts tmdb.DiscoverOptions) (*tmdb.Response, error)
	MovieCredits(ctx context.Context, movieID int64) (*tmdb.Credits, error)
	MovieVideos(ctx context.Context, movieID int64) (*tmdb.VideoResponse, error)
}

// MovieQuery holds the user's movie filters. Every field is optional.
type MovieQuery struct {
	Base   string `json:"base,omitempty"`
	Year   string `json:"year,omitempty"`
	Theme  string `json:"theme,omitempty"`
	Actor  string `json:"actor,omitempty"`
	Random bool   `json:"random,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// MovieResult is what a movie lookup shows. Base is nil and Tier empty on
// the discover path.
type MovieResult struct {
	Query      MovieQuery            `json:"query"`
	Base       *recommend.Base       `json:"base,omitempty"`
	Tier       recommend.Tier        `json:"tier,omitempty"`
	Theme      genres.Token          `json:"-"`
	Candidates []recommend.Candidate `json:"candidates"`
	Total      int                   `json:"total"`
}

// MovieDetails is the expanded view of one listed movie.
type MovieDetails struct {
	Movie      recommend.Candidate `json:"movie"`
	Cast       []string            `json:"cast"`
	TrailerKey string              `json:"trailer_key,omitempty"`
	Reason     string              `json:"reason,omitempty"`
}

// TrailerURL returns the YouTube link for the trailer, or "".
func (d MovieDetails) TrailerURL() string {
	if d.TrailerKey == "" {
		return ""
	}
	return "https://www.youtube.com/watch?v=" + d.TrailerKey
}

// MovieOption customizes a Movies service.
type MovieOption func(*Movies)

// WithMovieRandom overrides the random source used by random picks.
func WithMovieRandom(src recommend.Source) MovieOption {
	return func(m *Movies) { m.random = src }
}

// WithMovieLogger sets the logger.
func WithMovieLogger(logger *slog.Logger) MovieOption {
	return func(m *Movies) { m.logger = logger }
}

// WithMovieLimit sets the default list length.
func WithMovieLimit(n int) MovieOption {
	return func(m *Movies) {
		if n > 0 {
			m.limit = n
		}
	}
}

// Movies runs movie lookups against TMDB.
type Movies struct {
	source    MovieSource
	cache     *reccache.Cache
	resolver  *genres.Resolver
	watchlist *watchlist.List
	random    recommend.Source
	limit     int
	logger    *slog.Logger
}

// NewMovies wires the movie flow. list may be nil when saving is not needed.
func NewMovies(source MovieSource, cache *reccache.Cache, list *watchlist.List, opts ...MovieOption) *Movies {
	m := &Movies{
		source:    source,
		cache:     cache,
		watchlist: list,
		limit:     DefaultLimit,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logging.NewComponentLogger(m.logger, "discovery")
	m.resolver = genres.NewResolver(source, m.logger)
	return m
}

// Discover runs a movie lookup. It returns an ErrNoResults error when the
// base title is unknown or nothing survives the filters.
func (m *Movies) Discover(ctx context.Context, q MovieQuery) (*MovieResult, error) {
	q = normalizeMovieQuery(q)

	theme, err := m.resolver.Resolve(ctx, q.Theme)
	if err != nil {
		return nil, err
	}

	result := &MovieResult{Query: q, Theme: theme}
	var candidates []recommend.Candidate
	if q.Base != "" {
		candidates, err = m.fromBase(ctx, q, theme, result)
	} else {
		candidates, err = m.fromDiscover(ctx, q, theme)
	}
	if err != nil {
		return nil, err
	}

	result.Total = len(candidates)
	if len(candidates) == 0 {
		return nil, services.Wrap(services.ErrNoResults, "discovery", "movies", "no matches found", nil)
	}
	picked, err := m.present(candidates, q)
	if err != nil {
		return nil, err
	}
	result.Candidates = picked
	return result, nil
}

func (m *Movies) fromBase(ctx context.Context, q MovieQuery, theme genres.Token, result *MovieResult) ([]recommend.Candidate, error) {
	search, err := m.source.SearchMovie(ctx, q.Base)
	if err != nil {
		return nil, err
	}
	if len(search.Results) == 0 {
		return nil, services.Wrap(services.ErrNoResults, "discovery", "base search", fmt.Sprintf("no movie matched %q", q.Base), nil)
	}
	movie := search.Results[0]
	base := recommend.Base{
		ID:       movie.ID,
		Title:    movie.Title,
		GenreIDs: movie.GenreIDs,
		Genres:   genres.Names(movie.GenreIDs),
	}
	result.Base = &base
	if q.Actor != "" {
		m.logger.Debug("actor filter ignored",
			logging.Args(logging.DecisionAttrs("actor_filter", "skipped", "recommendations come from the base title")...)...)
	}

	records, err := m.cache.GetOrFetch(ctx, movie.ID, func(ctx context.Context) ([]json.RawMessage, error) {
		return m.source.MovieRecommendations(ctx, movie.ID)
	})
	if err != nil {
		return nil, err
	}
	candidates, skipped := recommend.DecodeCandidates(records)
	if skipped > 0 {
		logging.WarnWithContext(m.logger, "skipped unreadable recommendation records", "recommendation_decode_skipped",
			logging.Int64("base_id", movie.ID),
			logging.Int("skipped", skipped))
	}

	selection := recommend.Select(base, candidates, recommend.Criteria{Year: q.Year, GenreID: theme.ID})
	result.Tier = selection.Tier
	m.logger.Info("recommendations selected",
		logging.String("base", base.Title),
		logging.String("tier", string(selection.Tier)),
		logging.Int("result_count", len(selection.Candidates)))
	return selection.Candidates, nil
}

func (m *Movies) fromDiscover(ctx context.Context, q MovieQuery, theme genres.Token) ([]recommend.Candidate, error) {
	opts := tmdb.DiscoverOptions{Year: q.Year}
	switch theme.Kind {
	case genres.KindGenre:
		opts.GenreID = theme.ID
	case genres.KindKeyword:
		opts.KeywordID = theme.ID
	}
	if q.Actor != "" {
		people, err := m.source.SearchPerson(ctx, q.Actor)
		if err != nil {
			return nil, err
		}
		if len(people.Results) > 0 {
			opts.CastID = people.Results[0].ID
		} else {
			logging.WarnWithContext(m.logger, "actor matched no person", "actor_unresolved",
				logging.String("actor", q.Actor),
				logging.String(logging.FieldImpact, "results are not filtered by cast"))
		}
	}

	resp, err := m.source.DiscoverMovies(ctx, opts)
	if err != nil {
		return nil, err
	}
	candidates := make([]recommend.Candidate, 0, len(resp.Results))
	for _, movie := range resp.Results {
		candidates = append(candidates, candidateFromMovie(movie))
	}
	m.logger.Info("discover results",
		logging.Int("result_count", len(candidates)),
		logging.Int64("cast_id", opts.CastID),
		logging.Int64("genre_id", opts.GenreID),
		logging.Int64("keyword_id", opts.KeywordID))
	return candidates, nil
}

func (m *Movies) present(candidates []recommend.Candidate, q MovieQuery) ([]recommend.Candidate, error) {
	if q.Random {
		pick, err := recommend.RandomPick(candidates, m.random)
		if err != nil {
			return nil, err
		}
		return []recommend.Candidate{pick}, nil
	}
	limit := q.Limit
	if limit <= 0 {
		limit = m.limit
	}
	return recommend.Limit(candidates, limit), nil
}

// Details loads cast and trailer for the 1-based index into result and
// explains why the movie was listed.
func (m *Movies) Details(ctx context.Context, result *MovieResult, index int) (*MovieDetails, error) {
	movie, err := recommend.At(result.Candidates, index)
	if err != nil {
		return nil, err
	}

	credits, err := m.source.MovieCredits(ctx, movie.ID)
	if err != nil {
		return nil, err
	}
	videos, err := m.source.MovieVideos(ctx, movie.ID)
	if err != nil {
		return nil, err
	}
	if len(movie.Genres) == 0 {
		movie.Genres = genres.Names(movie.GenreIDs)
	}
	return &MovieDetails{
		Movie:      movie,
		Cast:       credits.TopCast(3),
		TrailerKey: videos.TrailerKey(),
		Reason:     movieReason(result, movie),
	}, nil
}

// Save appends the 1-based index into result to the movie watchlist and
// returns the written line.
func (m *Movies) Save(ctx context.Context, result *MovieResult, index int) (string, error) {
	movie, err := recommend.At(result.Candidates, index)
	if err != nil {
		return "", err
	}
	if m.watchlist == nil {
		return "", services.Wrap(services.ErrConfiguration, "discovery", "save", "no movie watchlist configured", nil)
	}
	line := watchlist.MovieLine(movie.Title, movie.ReleaseDate)
	if err := m.watchlist.Add(ctx, line); err != nil {
		return "", err
	}
	return line, nil
}

func movieReason(result *MovieResult, movie recommend.Candidate) string {
	if result.Base != nil {
		shared := genres.Names(recommend.SharedGenres(*result.Base, movie))
		if len(shared) == 0 {
			return ""
		}
		return "Both movies are " + strings.Join(shared, ", ")
	}
	if result.Query.Theme != "" {
		return fmt.Sprintf("Matches your %s filters", result.Query.Theme)
	}
	var filters []string
	if result.Query.Year != "" {
		filters = append(filters, result.Query.Year)
	}
	if result.Query.Actor != "" {
		filters = append(filters, result.Query.Actor)
	}
	if len(filters) == 0 {
		return "Popular on TMDB right now"
	}
	return fmt.Sprintf("Matches your %s filters", strings.Join(filters, " + "))
}

func candidateFromMovie(movie tmdb.Movie) recommend.Candidate {
	ids := movie.AllGenreIDs()
	return recommend.Candidate{
		ID:          movie.ID,
		Title:       movie.Title,
		ReleaseDate: movie.ReleaseDate,
		GenreIDs:    ids,
		Genres:      genres.Names(ids),
		Rating:      movie.VoteAverage,
		Overview:    movie.Overview,
		Popularity:  movie.Popularity,
	}
}

func normalizeMovieQuery(q MovieQuery) MovieQuery {
	q.Base = strings.TrimSpace(q.Base)
	q.Year = strings.TrimSpace(q.Year)
	q.Theme = strings.ToLower(strings.TrimSpace(q.Theme))
	q.Actor = strings.TrimSpace(q.Actor)
	return q
}
