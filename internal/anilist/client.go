package anilist

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/yu-a0/discovery-engine-suite/internal/logging"
	"github.com/yu-a0/discovery-engine-suite/internal/services"
	"github.com/yu-a0/discovery-engine-suite/internal/upstream"
)

const (
	// DefaultURL is the public AniList GraphQL endpoint.
	DefaultURL = "https://graphql.anilist.co"

	defaultTimeout   = 10 * time.Second
	searchPageSize   = 15
	explorerPageSize = 10
)

// PageURL returns the public AniList page for an anime id.
func PageURL(id int64) string {
	return "https://anilist.co/anime/" + strconv.FormatInt(id, 10)
}

// Client posts GraphQL queries to AniList.
type Client struct {
	endpoint   string
	httpClient *http.Client
	guard      *upstream.Guard
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithGuard routes every request through guard, which should carry
// AniList's rate limit.
func WithGuard(guard *upstream.Guard) Option {
	return func(c *Client) {
		c.guard = guard
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates an AniList client for endpoint (DefaultURL when empty).
func New(endpoint string, opts ...Option) *Client {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = DefaultURL
	}
	client := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "anilist")
	return client
}

type pageData[T any] struct {
	Page T `json:"Page"`
}

type mediaPage struct {
	Media []Media `json:"media"`
}

// SearchMedia runs the popularity-sorted anime search with nested
// recommendations for every hit.
func (c *Client) SearchMedia(ctx context.Context, opts SearchOptions) ([]Media, error) {
	vars := map[string]any{"perPage": searchPageSize}
	if s := strings.TrimSpace(opts.Search); s != "" {
		vars["search"] = s
	}
	if g := strings.TrimSpace(opts.Genre); g != "" {
		vars["genre"] = g
	}
	if opts.Year > 0 {
		vars["year"] = opts.Year
	}
	var data pageData[mediaPage]
	if err := c.query(ctx, "search media", searchQuery, vars, &data); err != nil {
		return nil, err
	}
	return data.Page.Media, nil
}

// Suggest returns up to limit titles matching prefix.
func (c *Client) Suggest(ctx context.Context, prefix string, limit int) ([]Media, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, services.Wrap(services.ErrValidation, "anilist", "suggest", "prefix must not be empty", nil)
	}
	if limit <= 0 {
		limit = 5
	}
	var data pageData[mediaPage]
	if err := c.query(ctx, "suggest", suggestQuery, map[string]any{"s": prefix, "perPage": limit}, &data); err != nil {
		return nil, err
	}
	return data.Page.Media, nil
}

// Media fetches a single anime by id.
func (c *Client) Media(ctx context.Context, id int64) (*Media, error) {
	if id <= 0 {
		return nil, services.Wrap(services.ErrValidation, "anilist", "media", "id must be positive", nil)
	}
	var data struct {
		Media *Media `json:"Media"`
	}
	if err := c.query(ctx, "media", mediaQuery, map[string]any{"id": id}, &data); err != nil {
		return nil, err
	}
	if data.Media == nil {
		return nil, services.Wrap(services.ErrNoResults, "anilist", "media", fmt.Sprintf("no anime with id %d", id), nil)
	}
	return data.Media, nil
}

// Collections returns the official genre list and the number of tags.
func (c *Client) Collections(ctx context.Context) (*Collections, error) {
	var data struct {
		GenreCollection    []string `json:"GenreCollection"`
		MediaTagCollection []struct {
			Name string `json:"name"`
		} `json:"MediaTagCollection"`
	}
	if err := c.query(ctx, "collections", collectionsQuery, nil, &data); err != nil {
		return nil, err
	}
	return &Collections{Genres: data.GenreCollection, TagCount: len(data.MediaTagCollection)}, nil
}

func (c *Client) Trending(ctx context.Context) ([]Media, error) {
	var data pageData[mediaPage]
	if err := c.query(ctx, "trending", trendingQuery, map[string]any{"perPage": explorerPageSize}, &data); err != nil {
		return nil, err
	}
	return data.Page.Media, nil
}

func (c *Client) TopStaff(ctx context.Context) ([]Staff, error) {
	var data pageData[struct {
		Staff []Staff `json:"staff"`
	}]
	if err := c.query(ctx, "top staff", staffQuery, map[string]any{"perPage": explorerPageSize}, &data); err != nil {
		return nil, err
	}
	return data.Page.Staff, nil
}

func (c *Client) TopStudios(ctx context.Context) ([]Studio, error) {
	var data pageData[struct {
		Studios []Studio `json:"studios"`
	}]
	if err := c.query(ctx, "top studios", studiosQuery, map[string]any{"perPage": explorerPageSize}, &data); err != nil {
		return nil, err
	}
	return data.Page.Studios, nil
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

type envelope[T any] struct {
	Data   *T             `json:"data"`
	Errors []graphQLError `json:"errors"`
}

func (c *Client) query(ctx context.Context, operation, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return services.Wrap(services.ErrValidation, "anilist", operation, "encode request", err)
	}

	return c.guard.Do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return services.Wrap(services.ErrConfiguration, "anilist", operation, "build request", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		requestStart := time.Now()
		resp, err := c.httpClient.Do(req)
		latency := time.Since(requestStart)
		if err != nil {
			return services.Wrap(services.ErrUpstreamUnavailable, "anilist", operation,
				fmt.Sprintf("execute request (latency=%v)", latency), err)
		}
		defer resp.Body.Close()

		c.logger.Debug("anilist request",
			logging.String("operation", operation),
			logging.Int("status", resp.StatusCode),
			logging.Duration("latency", latency),
		)

		payload, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
		if err != nil {
			return services.Wrap(services.ErrUpstreamUnavailable, "anilist", operation, "read response", err)
		}

		var env envelope[json.RawMessage]
		decodeErr := json.Unmarshal(payload, &env)
		if gqlErr := classify(resp.StatusCode, env.Errors, operation, latency); gqlErr != nil {
			return gqlErr
		}
		if decodeErr != nil {
			return services.Wrap(services.ErrUpstreamUnavailable, "anilist", operation, "decode anilist response", decodeErr)
		}
		if env.Data == nil {
			return services.Wrap(services.ErrUpstreamUnavailable, "anilist", operation, "response missing data", nil)
		}
		if err := json.Unmarshal(*env.Data, out); err != nil {
			return services.Wrap(services.ErrUpstreamUnavailable, "anilist", operation, "decode anilist data", err)
		}
		return nil
	})
}

// classify maps HTTP status and GraphQL errors onto the service markers.
// AniList reports a missing Media(id) as a 404 inside the errors array.
func classify(status int, errs []graphQLError, operation string, latency time.Duration) error {
	notFound := status == http.StatusNotFound
	for _, e := range errs {
		if e.Status == http.StatusNotFound {
			notFound = true
		}
	}
	if notFound {
		return services.Wrap(services.ErrNoResults, "anilist", operation, "not found", nil)
	}
	if status != http.StatusOK {
		message := fmt.Sprintf("anilist returned %d (latency=%v)", status, latency)
		if len(errs) > 0 {
			message += ": " + errs[0].Message
		}
		if status == http.StatusBadRequest {
			return services.Wrap(services.ErrValidation, "anilist", operation, message, nil)
		}
		return services.Wrap(services.ErrUpstreamUnavailable, "anilist", operation, message, nil)
	}
	if len(errs) > 0 {
		messages := make([]string, 0, len(errs))
		for _, e := range errs {
			messages = append(messages, e.Message)
		}
		return services.Wrap(services.ErrUpstreamUnavailable, "anilist", operation, strings.Join(messages, "; "), nil)
	}
	return nil
}
