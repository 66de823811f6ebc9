package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable. TMDB credentials are checked
// separately by RequireTMDB because anime commands run without them.
func (c *Config) Validate() error {
	if err := c.validateURLs(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateDiscovery(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateURLs() error {
	for field, raw := range map[string]string{
		"tmdb.base_url": c.TMDB.BaseURL,
		"anilist.url":   c.AniList.URL,
	} {
		parsed, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("%s must be an http or https URL, got %q", field, raw)
		}
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case CacheBackendFile, CacheBackendSQLite, CacheBackendMemory:
	case CacheBackendRedis:
		if c.Cache.RedisDB < 0 {
			return errors.New("cache.redis_db must be non-negative")
		}
	default:
		return fmt.Errorf("cache.backend must be one of file, sqlite, redis, memory; got %q", c.Cache.Backend)
	}
	return nil
}

func (c *Config) validateDiscovery() error {
	if c.Discovery.SuggestionLimit > 50 {
		return errors.New("discovery.suggestion_limit must be 50 or fewer")
	}
	if c.Discovery.ListLimit > 20 {
		return errors.New("discovery.list_limit must be 20 or fewer")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error; got %q", c.Logging.Level)
	}
	return nil
}
