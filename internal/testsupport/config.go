package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/yu-a0/discovery-engine-suite/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose cache and watchlist paths live in a
// per-test temp directory. Upstream URLs point at unroutable defaults until
// overridden with WithTMDBServer or WithAniListServer.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.TMDB.Token = "test-token"
	cfgVal.TMDB.BaseURL = "http://127.0.0.1:0"
	cfgVal.AniList.URL = "http://127.0.0.1:0"
	cfgVal.AniList.RequestsPerMinute = 0
	cfgVal.Cache.Path = filepath.Join(base, "cache", "tmdb_pantry.json")
	cfgVal.Cache.SQLitePath = filepath.Join(base, "cache", "cache.db")
	cfgVal.Watchlist.MoviesPath = filepath.Join(base, "watchlist.txt")
	cfgVal.Watchlist.AnimePath = filepath.Join(base, "anime_watchlist.txt")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithTMDBServer points the TMDB client at url (typically an httptest server).
func WithTMDBServer(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.BaseURL = url
	}
}

// WithAniListServer points the AniList client at url.
func WithAniListServer(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.AniList.URL = url
	}
}

// WithoutTMDBCredentials clears the token and API key.
func WithoutTMDBCredentials() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.Token = ""
		b.cfg.TMDB.APIKey = ""
	}
}

// WithCacheBackend selects the recommendation cache backend.
func WithCacheBackend(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Backend = backend
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Watchlist.MoviesPath)
}
