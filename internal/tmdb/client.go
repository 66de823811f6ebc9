package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/yu-a0/discovery-engine-suite/internal/logging"
	"github.com/yu-a0/discovery-engine-suite/internal/services"
	"github.com/yu-a0/discovery-engine-suite/internal/upstream"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultSearchTTL = 10 * time.Minute
	memoSize         = 256
)

// Credentials holds the two TMDB auth styles. Token wins when both are set.
type Credentials struct {
	Token  string
	APIKey string
}

// Client provides access to the TMDB API.
type Client struct {
	creds      Credentials
	baseURL    string
	language   string
	httpClient *http.Client
	guard      *upstream.Guard
	memoTTL    time.Duration
	memo       *expirable.LRU[string, any]
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithGuard routes every request through guard.
func WithGuard(guard *upstream.Guard) Option {
	return func(c *Client) {
		c.guard = guard
	}
}

// WithSearchTTL changes how long search results are memoized. Zero disables
// memoization.
func WithSearchTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.memoTTL = ttl
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a TMDB client.
func New(creds Credentials, baseURL, language string, opts ...Option) (*Client, error) {
	creds.Token = strings.TrimSpace(creds.Token)
	creds.APIKey = strings.TrimSpace(creds.APIKey)
	if creds.Token == "" && creds.APIKey == "" {
		return nil, errors.New("tmdb token or api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		creds:      creds,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(language),
		httpClient: &http.Client{Timeout: defaultTimeout},
		memoTTL:    defaultSearchTTL,
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "tmdb")
	if client.memoTTL > 0 {
		client.memo = expirable.NewLRU[string, any](memoSize, nil, client.memoTTL)
	}
	return client, nil
}

// SearchMovie searches TMDB for the supplied title.
func (c *Client) SearchMovie(ctx context.Context, query string) (*Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, services.Wrap(services.ErrValidation, "tmdb", "search movie", "query must not be empty", nil)
	}
	params := url.Values{}
	params.Set("query", query)
	return memoGet[Response](ctx, c, "/search/movie", params, "search movie")
}

// SearchKeyword looks up keyword ids for free-text themes such as "space".
func (c *Client) SearchKeyword(ctx context.Context, query string) (*KeywordResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, services.Wrap(services.ErrValidation, "tmdb", "search keyword", "query must not be empty", nil)
	}
	params := url.Values{}
	params.Set("query", query)
	return memoGet[KeywordResponse](ctx, c, "/search/keyword", params, "search keyword")
}

func (c *Client) SearchPerson(ctx context.Context, query string) (*PersonResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, services.Wrap(services.ErrValidation, "tmdb", "search person", "query must not be empty", nil)
	}
	params := url.Values{}
	params.Set("query", query)
	return memoGet[PersonResponse](ctx, c, "/search/person", params, "search person")
}

// MovieRecommendations returns the first page of recommendations for movieID
// with each record left undecoded.
func (c *Client) MovieRecommendations(ctx context.Context, movieID int64) ([]json.RawMessage, error) {
	if movieID <= 0 {
		return nil, services.Wrap(services.ErrValidation, "tmdb", "recommendations", "movie id must be positive", nil)
	}
	var page rawPage
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/recommendations", movieID), nil, "recommendations", &page); err != nil {
		return nil, err
	}
	if page.Results == nil {
		page.Results = []json.RawMessage{}
	}
	return page.Results, nil
}

// DiscoverMovies queries /discover/movie ordered by popularity.
func (c *Client) DiscoverMovies(ctx context.Context, opts DiscoverOptions) (*Response, error) {
	params := url.Values{}
	params.Set("sort_by", "popularity.desc")
	if year := strings.TrimSpace(opts.Year); year != "" {
		params.Set("primary_release_year", year)
	}
	if opts.CastID > 0 {
		params.Set("with_cast", strconv.FormatInt(opts.CastID, 10))
	}
	if opts.GenreID > 0 {
		params.Set("with_genres", strconv.FormatInt(opts.GenreID, 10))
	}
	if opts.KeywordID > 0 {
		params.Set("with_keywords", strconv.FormatInt(opts.KeywordID, 10))
	}
	if opts.Page > 1 {
		params.Set("page", strconv.Itoa(opts.Page))
	}
	var payload Response
	if err := c.get(ctx, "/discover/movie", params, "discover", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) MovieDetails(ctx context.Context, movieID int64) (*Movie, error) {
	if movieID <= 0 {
		return nil, services.Wrap(services.ErrValidation, "tmdb", "movie details", "movie id must be positive", nil)
	}
	var payload Movie
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", movieID), nil, "movie details", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) MovieCredits(ctx context.Context, movieID int64) (*Credits, error) {
	if movieID <= 0 {
		return nil, services.Wrap(services.ErrValidation, "tmdb", "movie credits", "movie id must be positive", nil)
	}
	var payload Credits
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/credits", movieID), nil, "movie credits", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) MovieVideos(ctx context.Context, movieID int64) (*VideoResponse, error) {
	if movieID <= 0 {
		return nil, services.Wrap(services.ErrValidation, "tmdb", "movie videos", "movie id must be positive", nil)
	}
	var payload VideoResponse
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/videos", movieID), nil, "movie videos", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// GenreList returns TMDB's official movie genre table.
func (c *Client) GenreList(ctx context.Context) ([]Genre, error) {
	payload, err := memoGet[genreList](ctx, c, "/genre/movie/list", nil, "genre list")
	if err != nil {
		return nil, err
	}
	return payload.Genres, nil
}

func (c *Client) PopularPeople(ctx context.Context) (*PersonResponse, error) {
	var payload PersonResponse
	if err := c.get(ctx, "/person/popular", nil, "popular people", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) NowPlaying(ctx context.Context) (*Response, error) {
	var payload Response
	if err := c.get(ctx, "/movie/now_playing", nil, "now playing", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) Configuration(ctx context.Context) (*APIConfiguration, error) {
	return memoGet[APIConfiguration](ctx, c, "/configuration", nil, "configuration")
}

func (c *Client) Languages(ctx context.Context) ([]Language, error) {
	payload, err := memoGet[[]Language](ctx, c, "/configuration/languages", nil, "languages")
	if err != nil {
		return nil, err
	}
	return *payload, nil
}

func (c *Client) Countries(ctx context.Context) ([]Country, error) {
	payload, err := memoGet[[]Country](ctx, c, "/configuration/countries", nil, "countries")
	if err != nil {
		return nil, err
	}
	return *payload, nil
}

// memoGet serves repeat lookups of the same path and parameters from the
// in-process memo until its TTL lapses.
func memoGet[T any](ctx context.Context, c *Client, path string, params url.Values, operation string) (*T, error) {
	key := path + "?" + params.Encode()
	if c.memo != nil {
		if cached, ok := c.memo.Get(key); ok {
			if typed, ok := cached.(*T); ok {
				c.logger.Debug("tmdb memo hit", logging.String("path", path))
				return typed, nil
			}
		}
	}
	var payload T
	if err := c.get(ctx, path, params, operation, &payload); err != nil {
		return nil, err
	}
	if c.memo != nil {
		c.memo.Add(key, &payload)
	}
	return &payload, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, operation string, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "tmdb", operation, "parse tmdb url", err)
	}
	query := url.Values{}
	for key, values := range params {
		query[key] = values
	}
	if c.creds.Token == "" {
		query.Set("api_key", c.creds.APIKey)
	}
	if c.language != "" && query.Get("language") == "" {
		query.Set("language", c.language)
	}
	endpoint.RawQuery = query.Encode()

	return c.guard.Do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
		if err != nil {
			return services.Wrap(services.ErrValidation, "tmdb", operation, "build request", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.creds.Token != "" {
			req.Header.Set("Authorization", "Bearer "+c.creds.Token)
		}

		requestStart := time.Now()
		resp, err := c.httpClient.Do(req)
		latency := time.Since(requestStart)
		if err != nil {
			return services.Wrap(services.ErrUpstreamUnavailable, "tmdb", operation,
				fmt.Sprintf("execute request (latency=%v)", latency), err)
		}
		defer resp.Body.Close()

		c.logger.Debug("tmdb request",
			logging.String("path", path),
			logging.Int("status", resp.StatusCode),
			logging.Duration("latency", latency),
		)

		if err := statusError(resp, operation, latency); err != nil {
			return err
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return services.Wrap(services.ErrUpstreamUnavailable, "tmdb", operation, "decode tmdb response", err)
		}
		return nil
	})
}

func statusError(resp *http.Response, operation string, latency time.Duration) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	// Drain a little of the body so the connection can be reused.
	_, _ = io.CopyN(io.Discard, resp.Body, 4096)
	message := fmt.Sprintf("tmdb returned %d (latency=%v)", resp.StatusCode, latency)
	switch resp.StatusCode {
	case http.StatusNotFound:
		return services.Wrap(services.ErrNoResults, "tmdb", operation, message, nil)
	case http.StatusUnauthorized:
		return services.Wrap(services.ErrConfiguration, "tmdb", operation, message+"; check tmdb.token or tmdb.api_key", nil)
	default:
		return services.Wrap(services.ErrUpstreamUnavailable, "tmdb", operation, message, nil)
	}
}
