package config

const (
	defaultConfigPath          = "~/.config/discover/config.toml"
	defaultTMDBBaseURL         = "https://api.themoviedb.org/3"
	defaultTMDBLanguage        = "en-US"
	defaultTimeoutSeconds      = 10
	defaultAniListURL          = "https://graphql.anilist.co"
	defaultAniListRPM          = 90
	defaultCacheBackend        = CacheBackendFile
	defaultCachePath           = "~/.local/share/discover/tmdb_pantry.json"
	defaultCacheSQLitePath     = "~/.local/share/discover/cache.db"
	defaultRedisAddr           = "127.0.0.1:6379"
	defaultRedisPrefix         = "discover:recs:"
	defaultMoviesWatchlist     = "~/.local/share/discover/watchlist.txt"
	defaultAnimeWatchlist      = "~/.local/share/discover/anime_watchlist.txt"
	defaultListLimit           = 5
	defaultSuggestionLimit     = 5
	defaultMinSuggestionLength = 3
	defaultBreakerFailures     = 3
	defaultBreakerOpenSeconds  = 30
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Cache backend identifiers accepted by cache.backend.
const (
	CacheBackendFile   = "file"
	CacheBackendSQLite = "sqlite"
	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"
)

// Default returns a Config populated with defaults. URLs that honour an
// environment fallback stay empty here and are filled during normalization.
func Default() Config {
	return Config{
		TMDB: TMDB{
			Language:       defaultTMDBLanguage,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		AniList: AniList{
			RequestsPerMinute: defaultAniListRPM,
			TimeoutSeconds:    defaultTimeoutSeconds,
		},
		Cache: Cache{
			Backend:     defaultCacheBackend,
			Path:        defaultCachePath,
			SQLitePath:  defaultCacheSQLitePath,
			RedisPrefix: defaultRedisPrefix,
		},
		Watchlist: Watchlist{
			MoviesPath: defaultMoviesWatchlist,
			AnimePath:  defaultAnimeWatchlist,
		},
		Discovery: Discovery{
			ListLimit:           defaultListLimit,
			SuggestionLimit:     defaultSuggestionLimit,
			MinSuggestionLength: defaultMinSuggestionLength,
		},
		Breaker: Breaker{
			FailureThreshold: defaultBreakerFailures,
			OpenSeconds:      defaultBreakerOpenSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
