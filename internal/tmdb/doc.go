// Package tmdb provides the TMDB API client behind the movie commands.
//
// It authenticates with either a v4 bearer token or a v3 api_key, and exposes
// title, keyword and person search, recommendations, discover queries, movie
// details/credits/videos and the reference endpoints the explorer commands
// print. Every request passes through an upstream.Guard. Search-style lookups
// are memoized in-process for a short TTL; recommendations are left to the
// reccache package so they persist between runs.
package tmdb
