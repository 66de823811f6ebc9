package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeTMDB()
	c.normalizeAniList()
	if err := c.normalizeCache(); err != nil {
		return err
	}
	if err := c.normalizeWatchlist(); err != nil {
		return err
	}
	c.normalizeDiscovery()
	c.normalizeBreaker()
	return c.normalizeLogging()
}

func lookupEnv(current, key string) string {
	current = strings.TrimSpace(current)
	if current != "" {
		return current
	}
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

func (c *Config) normalizeTMDB() {
	c.TMDB.Token = lookupEnv(c.TMDB.Token, "TMDB_TOKEN")
	c.TMDB.APIKey = lookupEnv(c.TMDB.APIKey, "TMDB_API_KEY")
	c.TMDB.BaseURL = strings.TrimRight(lookupEnv(c.TMDB.BaseURL, "BASE_URL"), "/")
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
	if c.TMDB.Language == "" {
		c.TMDB.Language = defaultTMDBLanguage
	}
	if c.TMDB.TimeoutSeconds <= 0 {
		c.TMDB.TimeoutSeconds = defaultTimeoutSeconds
	}
}

func (c *Config) normalizeAniList() {
	c.AniList.URL = lookupEnv(c.AniList.URL, "ANILIST_URL")
	if c.AniList.URL == "" {
		c.AniList.URL = defaultAniListURL
	}
	if c.AniList.RequestsPerMinute <= 0 {
		c.AniList.RequestsPerMinute = defaultAniListRPM
	}
	if c.AniList.TimeoutSeconds <= 0 {
		c.AniList.TimeoutSeconds = defaultTimeoutSeconds
	}
}

func (c *Config) normalizeCache() error {
	var err error
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	if c.Cache.Backend == "" {
		c.Cache.Backend = defaultCacheBackend
	}
	if strings.TrimSpace(c.Cache.Path) == "" {
		c.Cache.Path = defaultCachePath
	}
	if c.Cache.Path, err = expandPath(c.Cache.Path); err != nil {
		return fmt.Errorf("cache.path: %w", err)
	}
	if strings.TrimSpace(c.Cache.SQLitePath) == "" {
		c.Cache.SQLitePath = defaultCacheSQLitePath
	}
	if c.Cache.SQLitePath, err = expandPath(c.Cache.SQLitePath); err != nil {
		return fmt.Errorf("cache.sqlite_path: %w", err)
	}
	c.Cache.RedisAddr = lookupEnv(c.Cache.RedisAddr, "REDIS_ADDR")
	if c.Cache.RedisAddr == "" {
		c.Cache.RedisAddr = defaultRedisAddr
	}
	if c.Cache.RedisPrefix == "" {
		c.Cache.RedisPrefix = defaultRedisPrefix
	}
	return nil
}

func (c *Config) normalizeWatchlist() error {
	var err error
	if strings.TrimSpace(c.Watchlist.MoviesPath) == "" {
		c.Watchlist.MoviesPath = defaultMoviesWatchlist
	}
	if c.Watchlist.MoviesPath, err = expandPath(c.Watchlist.MoviesPath); err != nil {
		return fmt.Errorf("watchlist.movies_path: %w", err)
	}
	if strings.TrimSpace(c.Watchlist.AnimePath) == "" {
		c.Watchlist.AnimePath = defaultAnimeWatchlist
	}
	if c.Watchlist.AnimePath, err = expandPath(c.Watchlist.AnimePath); err != nil {
		return fmt.Errorf("watchlist.anime_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeDiscovery() {
	if c.Discovery.ListLimit <= 0 {
		c.Discovery.ListLimit = defaultListLimit
	}
	if c.Discovery.SuggestionLimit <= 0 {
		c.Discovery.SuggestionLimit = defaultSuggestionLimit
	}
	if c.Discovery.MinSuggestionLength <= 0 {
		c.Discovery.MinSuggestionLength = defaultMinSuggestionLength
	}
}

func (c *Config) normalizeBreaker() {
	if c.Breaker.FailureThreshold <= 0 {
		c.Breaker.FailureThreshold = defaultBreakerFailures
	}
	if c.Breaker.OpenSeconds <= 0 {
		c.Breaker.OpenSeconds = defaultBreakerOpenSeconds
	}
}

func (c *Config) normalizeLogging() error {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if format == "" {
		format = defaultLogFormat
	}
	c.Logging.Format = format

	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	c.Logging.Level = level

	if strings.TrimSpace(c.Logging.Dir) == "" {
		c.Logging.Dir = ""
		return nil
	}
	var err error
	if c.Logging.Dir, err = expandPath(c.Logging.Dir); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}
